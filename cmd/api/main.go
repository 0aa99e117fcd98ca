package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/LJTian/FeedHub/internal/api"
	"github.com/LJTian/FeedHub/internal/cache"
	"github.com/LJTian/FeedHub/internal/config"
	"github.com/LJTian/FeedHub/internal/fetch"
	"github.com/LJTian/FeedHub/internal/route"
	"github.com/LJTian/FeedHub/internal/scheduler"
)

func main() {
	cfg := config.Load()

	store, err := cache.New(cfg.CacheBackend, cfg.RedisAddr, cfg.PostgresDSN, cfg.CacheTTL)
	if err != nil {
		log.Fatalf("init cache failed: %v", err)
	}

	registry := route.Default(&route.Env{
		Fetch:       fetch.New(cfg.FetchTimeout, cfg.UserAgent),
		Cache:       store,
		TTL:         cfg.CacheTTL,
		Concurrency: cfg.DetailConcurrency,
	})

	// 配置了 cron 表达式时定时预热详情缓存
	var onShutdown []func()
	if cfg.WarmCronSpec != "" {
		s, err := scheduler.New(cfg.WarmCronSpec, registry, store)
		if err != nil {
			log.Fatalf("init scheduler failed: %v", err)
		}
		s.Start()
		onShutdown = append(onShutdown, s.Stop)
	}

	r := gin.Default()
	// 若配置了全局访问密码，则启用 Basic Auth 保护（/health 仍然免认证）
	if cfg.BasicAuthUser != "" && cfg.BasicAuthPass != "" {
		r.Use(api.BasicAuth(cfg.BasicAuthUser, cfg.BasicAuthPass))
	}
	api.NewServer(registry).RegisterRoutes(r)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := ":" + cfg.AppPort
	log.Infof("starting api server at %s ...", addr)
	if err := api.Serve(ctx, addr, r, onShutdown...); err != nil {
		log.Errorf("server exit: %v", err)
		stop()
		os.Exit(1)
	}
	log.Info("api server stopped")
}
