// Package route 定义站点适配器（路由）的统一能力与注册表。
// 每个站点一个文件，按 列表 → 详情 → 规范化 → 组装 的流程产出 feed.Document。
package route

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/lo"

	"github.com/LJTian/FeedHub/internal/cache"
	"github.com/LJTian/FeedHub/internal/feed"
	"github.com/LJTian/FeedHub/internal/fetch"
)

var ErrNotFound = errors.New("route: not found")

// Metadata 路由的声明信息
type Metadata struct {
	Namespace   string            `json:"namespace"`
	Path        string            `json:"path"`
	Name        string            `json:"name"`
	URL         string            `json:"url"`
	Categories  []string          `json:"categories"`
	Example     string            `json:"example"`
	Parameters  map[string]string `json:"parameters,omitempty"`
	Maintainers []string          `json:"maintainers"`
}

// Params 路径参数
type Params map[string]string

// Adapter 一个站点的 feed 生成能力
type Adapter interface {
	Meta() Metadata
	Run(ctx context.Context, params Params) (*feed.Document, error)
}

// Env 各路由共享的外部依赖
type Env struct {
	Fetch *fetch.Client
	// Cache 为空时不缓存详情
	Cache       cache.Store
	TTL         time.Duration
	Concurrency int
	Now         func() time.Time
}

func (e *Env) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Env) resolver(name string, fallback feed.FallbackFunc, cached bool) *feed.Resolver {
	r := &feed.Resolver{
		TTL:         e.TTL,
		Concurrency: e.Concurrency,
		Fallback:    fallback,
		Route:       name,
	}
	if cached {
		r.Cache = e.Cache
	}
	return r
}

// Registry 路由注册表
type Registry struct {
	adapters []Adapter
}

func NewRegistry(adapters ...Adapter) *Registry {
	return &Registry{adapters: adapters}
}

// Default 注册全部站点
func Default(env *Env) *Registry {
	return NewRegistry(
		NewSevenKid(env),
		NewChanmamaDY(env),
		NewChinaCDCWeek(env),
		NewGovZXZC(env),
		NewKomatsuWeek(env),
		NewPBCSJJD(env),
		NewSSMWeek(env),
		NewStatsSJFB(env),
		NewZaixs(env),
	)
}

func (r *Registry) All() []Adapter {
	return r.adapters
}

// Metas 返回全部路由的声明信息
func (r *Registry) Metas() []Metadata {
	return lo.Map(r.adapters, func(a Adapter, _ int) Metadata { return a.Meta() })
}

// Match 在命名空间内按路径模板匹配，返回绑定后的参数
func (r *Registry) Match(namespace, path string) (Adapter, Params, error) {
	for _, a := range r.adapters {
		m := a.Meta()
		if m.Namespace != namespace {
			continue
		}
		if params, ok := matchTemplate(m.Path, path); ok {
			return a, params, nil
		}
	}
	return nil, nil, ErrNotFound
}

// MatchPath 匹配完整路径，如 /7kid/718336990898551810
func (r *Registry) MatchPath(full string) (Adapter, Params, error) {
	trimmed := strings.Trim(full, "/")
	ns, rest, _ := strings.Cut(trimmed, "/")
	if ns == "" {
		return nil, nil, ErrNotFound
	}
	return r.Match(ns, "/"+rest)
}

func matchTemplate(tmpl, path string) (Params, bool) {
	ts := splitPath(tmpl)
	ps := splitPath(path)
	if len(ts) != len(ps) {
		return nil, false
	}
	params := Params{}
	for i, seg := range ts {
		if name, ok := strings.CutPrefix(seg, ":"); ok {
			if ps[i] == "" {
				return nil, false
			}
			params[name] = ps[i]
			continue
		}
		if seg != ps[i] {
			return nil, false
		}
	}
	return params, true
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// innerHTML 取首个匹配元素的内部 HTML，未命中时为空
func innerHTML(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	h, err := sel.First().Html()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(h)
}
