// Package runlock — распределенная блокировка запусков через Redis.
package runlock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"leasing_hub/internal/config"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// ErrNotObtained — блокировку держит другой процесс.
var ErrNotObtained = errors.New("run lock not obtained")

// Lock — захваченная блокировка.
type Lock interface {
	Release(ctx context.Context) error
}

// Locker захватывает блокировку по ключу на ttl.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error)
	Close() error
}

type redisLocker struct {
	rdb    *redis.Client
	locker *redislock.Client
	log    *slog.Logger
}

// NewLocker подключается к Redis. Если Redis выключен, возвращается noop-блокировка.
func NewLocker(ctx context.Context, cfg config.RedisConfig, log *slog.Logger) (Locker, error) {
	const op = "runlock.NewLocker"

	if !cfg.Enabled {
		log.Info("redis run lock disabled")
		return noopLocker{}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%s: ping %s: %w", op, cfg.Addr, err)
	}

	log.Info("connected to redis", slog.String("addr", cfg.Addr))
	return &redisLocker{rdb: rdb, locker: redislock.New(rdb), log: log}, nil
}

func (l *redisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error) {
	const op = "runlock.Obtain"

	lock, err := l.locker.Obtain(ctx, key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("%s: %s: %w", op, key, ErrNotObtained)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, key, err)
	}
	return lock, nil
}

func (l *redisLocker) Close() error {
	return l.rdb.Close()
}

type noopLocker struct{}

func (noopLocker) Obtain(context.Context, string, time.Duration) (Lock, error) {
	return noopLock{}, nil
}

func (noopLocker) Close() error { return nil }

type noopLock struct{}

func (noopLock) Release(context.Context) error { return nil }
