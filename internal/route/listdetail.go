package route

import (
	"context"

	"github.com/LJTian/FeedHub/internal/feed"
	"github.com/LJTian/FeedHub/internal/fetch"
)

// listDetail 列表页 + 缓存详情页的通用路由，站点差异全部在配置里
type listDetail struct {
	env     *Env
	meta    Metadata
	listURL string
	rule    feed.ListRule
	channel feed.Channel
	// charset 详情页编码，空为 UTF-8
	charset string
	// parse 从详情页取正文与日期
	parse func(page *fetch.Page, d feed.Descriptor) feed.Item
}

func (l *listDetail) Meta() Metadata {
	return l.meta
}

func (l *listDetail) Run(ctx context.Context, _ Params) (*feed.Document, error) {
	p := &feed.Pipeline{
		Source: feed.HTMLSource(l.env.Fetch, fetch.Get(l.listURL), l.rule, l.channel, nil),
		Detail: func(ctx context.Context, d feed.Descriptor) (feed.Item, error) {
			page, err := l.env.Fetch.HTML(ctx, fetch.Get(d.Link), l.charset)
			if err != nil {
				return feed.Item{}, err
			}
			return l.parse(page, d), nil
		},
		Resolver: l.env.resolver(l.meta.Namespace+l.meta.Path, nil, true),
	}
	return p.Run(ctx)
}
