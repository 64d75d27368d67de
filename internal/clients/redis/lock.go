package redis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/pitstop/pitstop-backend/internal/logger"
)

// ErrLockHeld means another reconciliation for the same learner+calendar is
// in flight; the caller should report a conflict, not retry in a loop.
var ErrLockHeld = errors.New("sync lock already held")

// Locker serializes find-or-create calendar work per learner+calendar-name,
// closing the duplicate-calendar race on concurrent submissions.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

type syncLock struct {
	log *logger.Logger
	rdb *goredis.Client
}

func NewSyncLock(log *logger.Logger) (Locker, error) {
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &syncLock{log: log.With("client", "RedisSyncLock"), rdb: rdb}, nil
}

func (l *syncLock) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	full := "pitstop:lock:" + key
	ok, err := l.rdb.SetNX(ctx, full, "1", ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %q: %w", key, err)
	}
	if !ok {
		return nil, ErrLockHeld
	}
	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if delErr := l.rdb.Del(releaseCtx, full).Err(); delErr != nil {
			l.log.Warn("Failed to release sync lock, it will expire on its own", "key", key, "error", delErr)
		}
	}, nil
}
