// Package cache 提供按链接缓存条目的读写穿透能力。
// 各后端只负责字节的存取与过期，读写穿透的流程统一在 TryGet 中完成。
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// Store 是缓存后端的最小契约，需支持并发访问。
// Get 未命中时返回 ok=false 且 err=nil。
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

const keyPrefix = "feedhub:item:"

// Key 将链接规范为定长缓存 key
func Key(link string) string {
	h := sha1.New()
	h.Write([]byte(link))
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}

// TryGet 先读缓存，未命中时调用 compute 计算并回写。
// 不做同 key 去重：并发未命中时可能重复计算，后写覆盖先写。
// compute 失败时不写入缓存，错误原样返回。store 为 nil 时每次都重新计算。
func TryGet[T any](ctx context.Context, store Store, key string, ttl time.Duration, compute func(context.Context) (T, error)) (T, error) {
	if store == nil {
		return compute(ctx)
	}

	k := Key(key)
	if bs, ok, err := store.Get(ctx, k); err != nil {
		log.WithField("key", key).WithError(err).Warn("cache: read failed, treat as miss")
	} else if ok {
		var cached T
		if err := json.Unmarshal(bs, &cached); err == nil {
			return cached, nil
		}
		log.WithField("key", key).Warn("cache: undecodable entry, recompute")
	}

	v, err := compute(ctx)
	if err != nil {
		return v, err
	}

	bs, err := json.Marshal(v)
	if err != nil {
		log.WithField("key", key).WithError(err).Warn("cache: encode value failed")
		return v, nil
	}
	if err := store.Set(ctx, k, bs, ttl); err != nil {
		log.WithField("key", key).WithError(err).Warn("cache: write failed")
	}
	return v, nil
}

// New 按名称创建后端；none 返回 nil，表示不使用缓存
func New(backend, redisAddr, postgresDSN string, ttl time.Duration) (Store, error) {
	switch backend {
	case "", "memory":
		return NewMemory(ttl), nil
	case "redis":
		return NewRedis(redisAddr)
	case "postgres":
		return NewPostgres(postgresDSN)
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("cache: unknown backend %q", backend)
	}
}
