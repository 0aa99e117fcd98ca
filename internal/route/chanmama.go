package route

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"github.com/LJTian/FeedHub/internal/feed"
	"github.com/LJTian/FeedHub/internal/fetch"
	"github.com/LJTian/FeedHub/internal/normalize"
)

const (
	chanmamaAPI  = "https://api-service.chanmama.com/v1/home/rank/hotAweme"
	chanmamaLink = "https://www.chanmama.com/awake"
	chanmamaTop  = 10
)

type chanmamaAweme struct {
	Title string `json:"aweme_title"`
	URL   string `json:"aweme_url"`
	Cover string `json:"aweme_cover"`
}

type chanmamaResp struct {
	Data []chanmamaAweme `json:"data"`
}

// ChanmamaDY 蝉妈妈 抖音热点视频日榜。整张榜单汇总为一条，按日期去重。
type ChanmamaDY struct {
	env *Env
	API string
}

func NewChanmamaDY(env *Env) Adapter {
	return &ChanmamaDY{env: env, API: chanmamaAPI}
}

func (c *ChanmamaDY) Meta() Metadata {
	return Metadata{
		Namespace:   "chanmama",
		Path:        "/dy",
		Name:        "抖音热点视频日榜 Top 10",
		URL:         "https://www.chanmama.com",
		Categories:  []string{"social-media"},
		Example:     "/chanmama/dy",
		Maintainers: []string{"c71an"},
	}
}

func (c *ChanmamaDY) Run(ctx context.Context, _ Params) (*feed.Document, error) {
	// 榜单按北京时间的“昨天”统计
	now := c.env.now().In(normalize.East8())
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, normalize.East8()).AddDate(0, 0, -1)
	day := dayStart.Format(time.DateOnly)

	q := url.Values{}
	q.Set("day_type", "day")
	q.Set("day", day)
	q.Set("star_category", "")
	q.Set("order_by", "synthesize")
	q.Set("page", "1")
	q.Set("size", "50")

	var resp chanmamaResp
	if err := c.env.Fetch.JSON(ctx, fetch.Get(c.API+"?"+q.Encode()), &resp); err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}

	ch := feed.Channel{
		Title:       "蝉妈妈 - 抖音热点视频日榜 Top 10 - " + day,
		Link:        chanmamaLink,
		Description: "蝉妈妈提供的抖音热点视频日榜 Top 10，数据截止至 " + day,
	}
	item := &feed.Item{
		Title:       "抖音日榜 Top 10 视频 - " + day,
		Link:        chanmamaLink,
		Description: chanmamaDigest(feed.Truncate(resp.Data, chanmamaTop)),
		PubDate:     &dayStart,
		GUID:        "chanmama_hot_aweme_" + day,
	}
	return feed.Assemble(ch, []*feed.Item{item}), nil
}

func chanmamaDigest(list []chanmamaAweme) string {
	parts := make([]string, 0, len(list))
	for i, a := range list {
		// 去掉追踪参数
		link, _, _ := strings.Cut(a.URL, "?")
		title := html.EscapeString(a.Title)
		parts = append(parts, fmt.Sprintf(
			"<p><strong>%d. <a href=\"%s\" target=\"_blank\">%s</a></strong></p>\n<p><img src=\"%s\" alt=\"%s 封面\" /></p>",
			i+1, html.EscapeString(link), title, html.EscapeString(a.Cover), title,
		))
	}
	return strings.Join(parts, "\n")
}
