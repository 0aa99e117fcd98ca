// Package scheduler 定时预热详情缓存：按 cron 表达式依次运行每个路由的示例路径。
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/LJTian/FeedHub/internal/cache"
	"github.com/LJTian/FeedHub/internal/route"
)

// purger 由支持过期清理的缓存后端实现（如 cache.Postgres）
type purger interface {
	Purge(ctx context.Context) (int64, error)
}

// Result 单个路由一次预热的结果
type Result struct {
	Route string
	Items int
	Err   error
}

type Scheduler struct {
	cron     *cron.Cron
	registry *route.Registry
	store    cache.Store
	// RouteTimeout 单个路由一次预热的超时
	RouteTimeout time.Duration
	StartupDelay time.Duration
}

func New(spec string, registry *route.Registry, store cache.Store) (*Scheduler, error) {
	c := cron.New()

	s := &Scheduler{
		cron:         c,
		registry:     registry,
		store:        store,
		RouteTimeout: 2 * time.Minute,
		// 延迟首轮预热，避免与服务启动后的首批请求争抢资源
		StartupDelay: 15 * time.Second,
	}

	_, err := c.AddFunc(spec, func() { s.RunOnce(context.Background()) })
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Scheduler) Cron() *cron.Cron {
	return s.cron
}

func (s *Scheduler) Start() {
	s.cron.Start()
	time.AfterFunc(s.StartupDelay, func() {
		go s.RunOnce(context.Background())
	})
}

// Stop 停止调度并等待正在执行的任务结束
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunOnce 并发运行所有路由的示例路径一次，结果顺序与注册顺序一致
func (s *Scheduler) RunOnce(ctx context.Context) []Result {
	log.Info("scheduler: start warm job...")

	metas := s.registry.Metas()
	results := make([]Result, len(metas))

	var wg sync.WaitGroup
	for i, m := range metas {
		wg.Add(1)
		go func(idx int, m route.Metadata) {
			defer wg.Done()
			results[idx] = s.warm(ctx, m)
		}(i, m)
	}
	wg.Wait()

	if p, ok := s.store.(purger); ok {
		n, err := p.Purge(ctx)
		if err != nil {
			log.WithError(err).Warn("scheduler: purge expired cache failed")
		} else if n > 0 {
			log.Infof("scheduler: purged %d expired cache entries", n)
		}
	}

	log.Info("scheduler: warm job done (all routes)")
	return results
}

func (s *Scheduler) warm(ctx context.Context, m route.Metadata) Result {
	res := Result{Route: m.Example}
	a, params, err := s.registry.MatchPath(m.Example)
	if err != nil {
		res.Err = err
		log.WithError(err).Warnf("scheduler: example %s does not match any route", m.Example)
		return res
	}

	if s.RouteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.RouteTimeout)
		defer cancel()
	}

	doc, err := a.Run(ctx, params)
	if err != nil {
		res.Err = err
		log.WithError(err).Warnf("scheduler: warm %s failed", m.Example)
		return res
	}
	res.Items = len(doc.Items)
	log.Infof("scheduler: %s done, items=%d", m.Example, res.Items)
	return res
}
