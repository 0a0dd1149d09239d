package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Locker holds short-lived "in progress" markers in Redis so that
// replicas of the service agree on who is working on a key.
type Locker struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewLocker(rdb *redis.Client, prefix string, ttl time.Duration) *Locker {
	return &Locker{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (l *Locker) key(k string) string { return l.prefix + k }

// TryLock sets the marker if absent. false means someone else holds it.
func (l *Locker) TryLock(ctx context.Context, key string) (bool, error) {
	return l.rdb.SetNX(ctx, l.key(key), time.Now().UTC().Format(time.RFC3339Nano), l.ttl).Result()
}

func (l *Locker) Unlock(ctx context.Context, key string) error {
	return l.rdb.Del(ctx, l.key(key)).Err()
}
