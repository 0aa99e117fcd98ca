package route

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/LJTian/FeedHub/internal/feed"
	"github.com/LJTian/FeedHub/internal/fetch"
	"github.com/LJTian/FeedHub/internal/normalize"
)

const komatsuURL = "https://www.city.komatsu.lg.jp/soshiki/1042/surveillance/14588.html"

var locTokyo = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		return time.FixedZone("JST", 9*3600)
	}
	return loc
}()

// KomatsuWeek 小松市 下水モニタリング，单页报告，只产出一条
type KomatsuWeek struct {
	env *Env
	URL string
}

func NewKomatsuWeek(env *Env) Adapter {
	return &KomatsuWeek{env: env, URL: komatsuURL}
}

func (k *KomatsuWeek) Meta() Metadata {
	return Metadata{
		Namespace:   "komatsu",
		Path:        "/week",
		Name:        "小松市 下水モニタリング",
		URL:         komatsuURL,
		Categories:  []string{"health"},
		Example:     "/komatsu/week",
		Maintainers: []string{"c71an"},
	}
}

func (k *KomatsuWeek) Run(ctx context.Context, _ Params) (*feed.Document, error) {
	page, err := k.env.Fetch.Page(ctx, fetch.Get(k.URL))
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}

	title := strings.TrimSpace(page.Doc.Find("#contents > h1 > span > span").Text())
	// 形如“更新日 令和7年3月28日”
	update := strings.TrimSpace(page.Doc.Find("#social-update-area > p").Text())

	// 页面没有时间戳 meta 时以当前时间作为发布时间；meta 存在但无法解析时不填
	var pubDate *time.Time
	if v, ok := page.Doc.Find(`meta[name="nsls:timestamp"]`).Attr("content"); ok {
		if t, ok := normalize.ParseDateIn(v, locTokyo); ok {
			pubDate = &t
		}
	} else {
		now := k.env.now()
		pubDate = &now
	}

	ch := feed.Channel{
		Title:       title + "／小松市",
		Link:        k.URL,
		Description: "小松市的 COVID-19 下水监测数据更新",
	}
	item := &feed.Item{
		Title:       title + " - " + update,
		Link:        k.URL,
		Description: innerHTML(page.Doc.Find("#contents-in > div.free-layout-area > div")),
		PubDate:     pubDate,
		GUID:        "komatsu_sewer_monitoring_" + update,
	}
	return feed.Assemble(ch, []*feed.Item{item}), nil
}
