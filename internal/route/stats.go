package route

import (
	"strings"

	"github.com/LJTian/FeedHub/internal/feed"
	"github.com/LJTian/FeedHub/internal/fetch"
	"github.com/LJTian/FeedHub/internal/normalize"
)

const statsSJFBURL = "https://www.stats.gov.cn/sj/zxfb/"

// NewStatsSJFB 国家统计局 最新数据发布，列表标题取 a 的 title 属性
func NewStatsSJFB(env *Env) Adapter {
	return &listDetail{
		env: env,
		meta: Metadata{
			Namespace:   "stats",
			Path:        "/sjfb",
			Name:        "最新数据发布",
			URL:         statsSJFBURL,
			Categories:  []string{"government"},
			Example:     "/stats/sjfb",
			Maintainers: []string{"c71an"},
		},
		listURL: statsSJFBURL,
		rule:    feed.ListRule{Selector: "div.wrapper-list-right .list-content ul li a.fl.pc_1600", Limit: 10},
		channel: feed.Channel{
			Title:       "国家统计局 - 最新数据发布",
			Link:        statsSJFBURL,
			Description: "中华人民共和国国家统计局官网最新数据发布栏目。",
		},
		parse: func(page *fetch.Page, d feed.Descriptor) feed.Item {
			// 形如 “发布时间：2023年01月01日 10:00”
			dateText := normalize.StripPrefix(page.Doc.Find(".detail-title-des h2 p").First().Text(), "发布时间：", "发布时间:")
			return feed.Item{
				Title:       d.Title,
				Link:        d.Link,
				Description: innerHTML(page.Doc.Find(".txt-content .trs_editor_view")),
				PubDate:     normalize.ParseDatePtr(strings.TrimSpace(dateText)),
			}
		},
	}
}
