package config

import (
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

type Config struct {
	AppPort string

	// CacheBackend 取值 memory / redis / postgres / none
	CacheBackend string
	CacheTTL     time.Duration
	PostgresDSN  string
	RedisAddr    string

	FetchTimeout      time.Duration
	UserAgent         string
	DetailConcurrency int

	// WarmCronSpec 为空表示不启用定时预热
	WarmCronSpec string

	LogLevel  string
	LogFormat string

	// 全站访问密码，两者都配置时启用 Basic Auth（/health 除外）
	BasicAuthUser string
	BasicAuthPass string
}

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/140.0.0.0 Safari/537.36"

// Load 读取环境变量；日志格式最先生效，之后的告警与汇总都按配置输出
func Load() *Config {
	cfg := &Config{
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
	cfg.SetupLogging()

	cfg.AppPort = getEnv("APP_PORT", "9000")
	cfg.CacheBackend = getEnv("CACHE_BACKEND", "memory")
	cfg.CacheTTL = getDuration("CACHE_TTL", time.Hour)
	cfg.PostgresDSN = getEnv("POSTGRES_DSN", "host=localhost user=feedhub password=feedhub dbname=feedhub port=5432 sslmode=disable TimeZone=UTC")
	cfg.RedisAddr = getEnv("REDIS_ADDR", "localhost:6380")
	cfg.FetchTimeout = getDuration("FETCH_TIMEOUT", 15*time.Second)
	cfg.UserAgent = getEnv("USER_AGENT", DefaultUserAgent)
	cfg.DetailConcurrency = getInt("DETAIL_CONCURRENCY", 0)
	cfg.WarmCronSpec = getEnv("WARM_CRON_SPEC", "")
	cfg.BasicAuthUser = getEnv("APP_BASIC_USER", "")
	cfg.BasicAuthPass = getEnv("APP_BASIC_PASS", "")

	log.Infof("config loaded: port=%s cache=%s ttl=%s warm=%q", cfg.AppPort, cfg.CacheBackend, cfg.CacheTTL, cfg.WarmCronSpec)
	return cfg
}

// SetupLogging 按配置设置 logrus 的级别与输出格式
func (c *Config) SetupLogging() {
	if lvl, err := log.ParseLevel(c.LogLevel); err == nil {
		log.SetLevel(lvl)
	} else {
		log.Warnf("config: unknown log level %q, keep %s", c.LogLevel, log.GetLevel())
	}
	if c.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warnf("config: invalid duration %s=%q, use %s", key, v, def)
		return def
	}
	return d
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		log.Warnf("config: invalid int %s=%q, use %d", key, v, def)
		return def
	}
	return n
}
