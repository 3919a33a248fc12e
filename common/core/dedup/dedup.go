// Package dedup suppresses repeat Findings for the same attacker address
// within a sliding TTL window, backed by the cache's atomic
// set-if-absent-with-expiry primitive.
package dedup

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/devansh0703/mev-bot-detector/common/core/dedup/deduperrors"
)

const keyPrefix = "mev-sandwich:seen:"

// Cache is the narrow slice of go-redis's client the Deduplicator needs;
// *redis.Client satisfies it. Kept as an interface so fail-open behavior
// can be exercised with a fake in tests, without a real Redis instance.
type Cache interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

type Deduplicator struct {
	rdb    Cache
	ttl    time.Duration
	logger *zap.Logger

	failOpenCount atomic.Int64
}

func New(rdb Cache, ttl time.Duration, logger *zap.Logger) (*Deduplicator, error) {
	if rdb == nil {
		return nil, deduperrors.ErrNilClient
	}
	if ttl <= 0 {
		ttl = 300 * time.Second
	}
	return &Deduplicator{rdb: rdb, ttl: ttl, logger: logger}, nil
}

// CheckAndMark reports whether address was first_seen (true) or
// recently_seen (false) within the TTL window. On cache failure the
// policy is fail-open: treat as first_seen, count the failure, and let
// the caller proceed. Duplicate alerts are preferable to missed ones.
func (d *Deduplicator) CheckAndMark(ctx context.Context, address string) bool {
	ok, err := d.rdb.SetNX(ctx, keyPrefix+address, 1, d.ttl).Result()
	if err != nil {
		d.failOpenCount.Add(1)
		d.logger.Warn("dedup cache unreachable, failing open", zap.Error(err), zap.String("address", address))
		return true
	}
	return ok
}

// FailOpenCount returns the number of dedup calls that fell back to
// fail-open due to a cache error, for the Supervisor's health signal.
func (d *Deduplicator) FailOpenCount() int64 {
	return d.failOpenCount.Load()
}
