package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Entry 缓存表，一个 key 一行，ExpiresAt 为空表示不过期
type Entry struct {
	Key       string         `gorm:"primaryKey;column:cache_key;size:80"`
	Value     datatypes.JSON `gorm:"type:jsonb"`
	ExpiresAt *time.Time     `gorm:"index"`
	UpdatedAt time.Time
}

func (Entry) TableName() string {
	return "cache_entries"
}

// Postgres 持久化缓存后端，进程重启后仍可命中
type Postgres struct {
	db *gorm.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("cache: open postgres: %w", err)
	}
	return NewPostgresWithDB(db)
}

// NewPostgresWithDB 复用已有连接，并确保表结构存在
func NewPostgresWithDB(db *gorm.DB) (*Postgres, error) {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("cache: migrate cache_entries: %w", err)
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var e Entry
	err := p.db.WithContext(ctx).Where("cache_key = ?", key).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("postgres get %s: %w", key, err)
	}
	if e.ExpiresAt != nil && time.Now().After(*e.ExpiresAt) {
		return nil, false, nil
	}
	return []byte(e.Value), true, nil
}

func (p *Postgres) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	e := Entry{Key: key, Value: datatypes.JSON(value)}
	if ttl > 0 {
		exp := time.Now().Add(ttl)
		e.ExpiresAt = &exp
	}
	if err := p.db.WithContext(ctx).Save(&e).Error; err != nil {
		return fmt.Errorf("postgres set %s: %w", key, err)
	}
	return nil
}

// Purge 删除已过期条目，返回删除行数
func (p *Postgres) Purge(ctx context.Context) (int64, error) {
	res := p.db.WithContext(ctx).Where("expires_at IS NOT NULL AND expires_at < ?", time.Now()).Delete(&Entry{})
	return res.RowsAffected, res.Error
}
