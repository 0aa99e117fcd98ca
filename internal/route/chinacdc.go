package route

import (
	"strings"

	"github.com/LJTian/FeedHub/internal/feed"
	"github.com/LJTian/FeedHub/internal/fetch"
	"github.com/LJTian/FeedHub/internal/normalize"
)

const chinaCDCWeekURL = "https://www.chinacdc.cn/jksj/jksj04_14275/"

// NewChinaCDCWeek 中国疾控中心 全国急性呼吸道传染病哨点监测情况（最近 4 期）
func NewChinaCDCWeek(env *Env) Adapter {
	return &listDetail{
		env: env,
		meta: Metadata{
			Namespace:   "chinacdc",
			Path:        "/week",
			Name:        "全国急性呼吸道传染病哨点监测情况",
			URL:         chinaCDCWeekURL,
			Categories:  []string{"health"},
			Example:     "/chinacdc/week",
			Maintainers: []string{"c71an"},
		},
		listURL: chinaCDCWeekURL,
		rule:    feed.ListRule{Selector: ".xw_list > li > dl > dd > a", Limit: 4, Map: feed.TextDescriptor},
		channel: feed.Channel{
			Title:       "全国急性呼吸道传染病哨点监测情况 - 中国疾病预防控制中心",
			Link:        chinaCDCWeekURL,
			Description: "中国疾病预防控制中心发布的全国急性呼吸道传染病哨点监测情况报告。",
		},
		parse: func(page *fetch.Page, d feed.Descriptor) feed.Item {
			// 日期形如 2023-10-20 或 2023/10/20
			dateText := strings.TrimSpace(page.Doc.Find("div.xqCon span.fb em").Text())
			return feed.Item{
				Title:       d.Title,
				Link:        d.Link,
				Description: innerHTML(page.Doc.Find("#articleCon > div")),
				PubDate:     normalize.ParseDatePtr(dateText),
			}
		},
	}
}
