package route

import (
	"github.com/LJTian/FeedHub/internal/feed"
	"github.com/LJTian/FeedHub/internal/fetch"
	"github.com/LJTian/FeedHub/internal/normalize"
)

const govZXZCURL = "https://www.gov.cn/zhengce/zuixin/"

// NewGovZXZC 中国政府网 最新政策
func NewGovZXZC(env *Env) Adapter {
	return &listDetail{
		env: env,
		meta: Metadata{
			Namespace:   "gov",
			Path:        "/zxzc",
			Name:        "最新政策",
			URL:         govZXZCURL,
			Categories:  []string{"government"},
			Example:     "/gov/zxzc",
			Maintainers: []string{"c71an"},
		},
		listURL: govZXZCURL,
		rule:    feed.ListRule{Selector: "div.news_box .list.list_1.list_2 ul li h4 a", Limit: 10, Map: feed.TextDescriptor},
		channel: feed.Channel{
			Title:       "国务院办公厅 - 最新政策",
			Link:        govZXZCURL,
			Description: "中华人民共和国中央人民政府门户网站发布的最新政策信息。",
		},
		parse: func(page *fetch.Page, d feed.Descriptor) feed.Item {
			it := feed.Item{
				Title:       d.Title,
				Link:        d.Link,
				Description: innerHTML(page.Doc.Find("#UCAP-CONTENT > div.trs_editor_view.TRS_UEDITOR.trs_paper_default")),
			}
			// meta 中的时间形如 2023-10-20-09:00:00
			if v, ok := page.Doc.Find(`meta[name="firstpublishedtime"]`).Attr("content"); ok {
				it.PubDate = normalize.ParseDatePtr(v)
			}
			return it
		},
	}
}
