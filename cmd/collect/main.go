// 命令行入口：列出路由、手动运行单个路由、执行一轮缓存预热
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/LJTian/FeedHub/internal/cache"
	"github.com/LJTian/FeedHub/internal/config"
	"github.com/LJTian/FeedHub/internal/feed"
	"github.com/LJTian/FeedHub/internal/fetch"
	"github.com/LJTian/FeedHub/internal/route"
	"github.com/LJTian/FeedHub/internal/scheduler"
)

func main() {
	if err := app().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func app() *cli.App {
	return &cli.App{
		Name:  "collect",
		Usage: "Run FeedHub routes from the command line",
		Description: `Settings are read from the same environment variables as the API server,
		e.g. CACHE_BACKEND, REDIS_ADDR, POSTGRES_DSN, FETCH_TIMEOUT.`,
		Commands: []*cli.Command{
			listCmd(),
			runCmd(),
			warmCmd(),
		},
		Action: func(ctx *cli.Context) error {
			return ctx.App.Run([]string{"", "help"})
		},
	}
}

// setup 按环境变量初始化日志、缓存与路由表
func setup() (*route.Registry, cache.Store, error) {
	cfg := config.Load()

	store, err := cache.New(cfg.CacheBackend, cfg.RedisAddr, cfg.PostgresDSN, cfg.CacheTTL)
	if err != nil {
		return nil, nil, fmt.Errorf("init cache: %w", err)
	}
	reg := route.Default(&route.Env{
		Fetch:       fetch.New(cfg.FetchTimeout, cfg.UserAgent),
		Cache:       store,
		TTL:         cfg.CacheTTL,
		Concurrency: cfg.DetailConcurrency,
	})
	return reg, store, nil
}

func listCmd() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List all registered routes",
		Action: func(ctx *cli.Context) error {
			reg := route.Default(&route.Env{})
			w := tabwriter.NewWriter(ctx.App.Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ROUTE\tNAME\tEXAMPLE")
			for _, m := range reg.Metas() {
				fmt.Fprintf(w, "/%s%s\t%s\t%s\n", m.Namespace, m.Path, m.Name, m.Example)
			}
			return w.Flush()
		},
	}
}

func runCmd() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Run one route and print the feed",
		ArgsUsage: "<path>, e.g. /7kid/718336990898551810",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "rss",
				Usage:   "Output format: rss or json",
			},
		},
		Action: func(ctx *cli.Context) error {
			path := ctx.Args().First()
			if path == "" {
				return cli.Exit("missing route path", 2)
			}
			reg, _, err := setup()
			if err != nil {
				return err
			}
			a, params, err := reg.MatchPath(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			doc, err := a.Run(ctx.Context, params)
			if err != nil {
				return err
			}
			if ctx.String("format") == "json" {
				enc := json.NewEncoder(ctx.App.Writer)
				enc.SetIndent("", "  ")
				return enc.Encode(doc)
			}
			_, err = fmt.Fprintln(ctx.App.Writer, feed.RSS(doc, ""))
			return err
		},
	}
}

func warmCmd() *cli.Command {
	return &cli.Command{
		Name:  "warm",
		Usage: "Run every route's example once to fill the detail cache",
		Action: func(ctx *cli.Context) error {
			reg, store, err := setup()
			if err != nil {
				return err
			}
			// 这里只用 RunOnce，不启动定时任务
			s, err := scheduler.New("@hourly", reg, store)
			if err != nil {
				return err
			}
			failed := 0
			for _, r := range s.RunOnce(ctx.Context) {
				if r.Err != nil {
					failed++
				}
			}
			if failed > 0 {
				return cli.Exit(fmt.Sprintf("%d route(s) failed", failed), 1)
			}
			return nil
		},
	}
}
