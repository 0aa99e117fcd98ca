package route

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/LJTian/FeedHub/internal/feed"
	"github.com/LJTian/FeedHub/internal/fetch"
	"github.com/LJTian/FeedHub/internal/normalize"
)

const pbcSJJDURL = "http://www.pbc.gov.cn/diaochatongjisi/116219/116225/index.html"

// NewPBCSJJD 中国人民银行调查统计司 数据解读。
// 页面的容器 id 以数字开头，CSS 的 #id 写法不合法，改用属性选择器。
func NewPBCSJJD(env *Env) Adapter {
	return &listDetail{
		env: env,
		meta: Metadata{
			Namespace:   "pbc",
			Path:        "/sjjd",
			Name:        "数据解读",
			URL:         pbcSJJDURL,
			Categories:  []string{"finance"},
			Example:     "/pbc/sjjd",
			Maintainers: []string{"c71an"},
		},
		listURL: pbcSJJDURL,
		rule: feed.ListRule{
			Selector: `[id="11871"] table table a`,
			Limit:    10,
			Map: func(page *fetch.Page, s *goquery.Selection) (feed.Descriptor, bool) {
				title := strings.TrimSpace(s.AttrOr("title", ""))
				if title == "" {
					title = "无标题"
				}
				href, _ := s.Attr("href")
				return feed.Descriptor{Title: title, Link: page.Resolve(href)}, true
			},
		},
		channel: feed.Channel{
			Title:       "中国人民银行 - 数据解读",
			Link:        pbcSJJDURL,
			Description: "中国人民银行调查统计司",
		},
		parse: func(page *fetch.Page, d feed.Descriptor) feed.Item {
			row := page.Doc.Find(`[id="11880"] > div:nth-child(2) > div table:nth-child(4) tr`).First()
			dateText := strings.TrimSpace(page.Doc.Find("#shijian").Text())
			return feed.Item{
				Title:       d.Title,
				Link:        d.Link,
				Description: innerHTML(row.Find("td")),
				PubDate:     normalize.ParseDatePtr(dateText, "2006年01月02日 15:04", "2006-01-02 15:04"),
			}
		},
	}
}
