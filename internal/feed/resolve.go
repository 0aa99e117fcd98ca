package feed

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/LJTian/FeedHub/internal/cache"
)

// DefaultFallback 详情获取失败时的默认描述
const DefaultFallback = "点击标题查看详情"

// DetailFunc 为一条目取得完整内容
type DetailFunc func(ctx context.Context, d Descriptor) (Item, error)

// FallbackFunc 决定失败条目的替代内容；返回 false 表示从结果中去掉该条
type FallbackFunc func(d Descriptor, err error) (Item, bool)

// Resolver 并发获取详情，结果按输入顺序排列。
// 单条失败只影响该条，不重试、不提前取消其它请求。
type Resolver struct {
	// Cache 为空时不缓存；失败结果从不写入缓存
	Cache cache.Store
	TTL   time.Duration
	// Concurrency 同时进行的详情请求数上限，0 表示不限
	Concurrency int
	Fallback    FallbackFunc
	// Route 仅用于日志
	Route string
}

// PlaceholderFallback 保留条目标题与链接，描述替换为 text
func PlaceholderFallback(text string) FallbackFunc {
	return func(d Descriptor, _ error) (Item, bool) {
		return Item{Title: d.Title, Link: d.Link, Description: text}, true
	}
}

// DropFailed 直接丢弃失败条目
func DropFailed(Descriptor, error) (Item, bool) {
	return Item{}, false
}

// Resolve 返回与 descs 等长的结果，被丢弃的位置为 nil
func (r *Resolver) Resolve(ctx context.Context, descs []Descriptor, detail DetailFunc) []*Item {
	results := make([]*Item, len(descs))

	var sem chan struct{}
	if r.Concurrency > 0 {
		sem = make(chan struct{}, r.Concurrency)
	}

	var wg sync.WaitGroup
	for i := range descs {
		wg.Add(1)
		if sem != nil {
			sem <- struct{}{}
		}
		go func(idx int) {
			defer wg.Done()
			if sem != nil {
				defer func() { <-sem }()
			}
			results[idx] = r.one(ctx, descs[idx], detail)
		}(i)
	}
	wg.Wait()
	return results
}

func (r *Resolver) one(ctx context.Context, d Descriptor, detail DetailFunc) *Item {
	compute := func(ctx context.Context) (Item, error) {
		return detail(ctx, d)
	}

	var (
		item Item
		err  error
	)
	if r.Cache != nil && d.Link != "" {
		item, err = cache.TryGet(ctx, r.Cache, d.Link, r.TTL, compute)
	} else {
		item, err = compute(ctx)
	}
	if err == nil {
		return &item
	}

	r.report(d, err)
	fallback := r.Fallback
	if fallback == nil {
		fallback = PlaceholderFallback(DefaultFallback)
	}
	if fb, keep := fallback(d, err); keep {
		return &fb
	}
	return nil
}

// report 只负责记录失败事件，不影响返回结果
func (r *Resolver) report(d Descriptor, err error) {
	log.WithFields(log.Fields{
		"route": r.Route,
		"id":    d.ID,
		"link":  d.Link,
	}).WithError(err).Warn("feed: resolve detail failed, use fallback")
}
