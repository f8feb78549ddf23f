package providers

import (
	"context"
	"encoding/json"
	"time"

	"SignalGate/internal/domain/models"
	icache "SignalGate/internal/service/cache"
	svcmetrics "SignalGate/internal/service/metrics"
)

// WithCache wraps the slow lookups (holders, token age, liquidity lock,
// transaction history) in a TTL cache so repeated symbols within the TTL
// skip the network call. Honeypot and social results are deliberately not
// cached: the sniper stage is fail-closed and wants fresh data.
func WithCache(s *Set, c icache.BytesCache, ttl time.Duration) *Set {
	if c == nil || ttl <= 0 {
		return s
	}
	return &Set{
		Holders:  &cachedHolders{inner: s.Holders, cache: c, ttl: ttl},
		Txs:      &cachedTxs{inner: s.Txs, cache: c, ttl: ttl},
		Locks:    &cachedLocks{inner: s.Locks, cache: c, ttl: ttl},
		Ages:     &cachedAges{inner: s.Ages, cache: c, ttl: ttl},
		Honeypot: s.Honeypot,
		Social:   s.Social,
	}
}

// lookup fetches key from the cache, falling back to fill on miss. Cache
// errors are ignored; the live call is the source of truth.
func lookup[T any](ctx context.Context, c icache.BytesCache, provider, key string, ttl time.Duration, fill func(context.Context) (*T, error)) (*T, error) {
	if b, ok, err := c.GetBytes(key); err == nil && ok {
		var v T
		if json.Unmarshal(b, &v) == nil {
			svcmetrics.ProviderCacheHits.WithLabelValues(provider).Inc()
			return &v, nil
		}
	}
	v, err := fill(ctx)
	if err != nil {
		return nil, err
	}
	if v != nil {
		if b, err := json.Marshal(v); err == nil {
			_ = c.SetBytes(key, b, ttl)
		}
	}
	return v, nil
}

type cachedHolders struct {
	inner interface {
		Distribution(ctx context.Context, token string) (*models.HolderDistribution, error)
	}
	cache icache.BytesCache
	ttl   time.Duration
}

func (c *cachedHolders) Distribution(ctx context.Context, token string) (*models.HolderDistribution, error) {
	return lookup(ctx, c.cache, "holders", "holders:"+token, c.ttl, func(ctx context.Context) (*models.HolderDistribution, error) {
		return c.inner.Distribution(ctx, token)
	})
}

type cachedTxs struct {
	inner interface {
		History(ctx context.Context, token string) (*models.TxHistory, error)
	}
	cache icache.BytesCache
	ttl   time.Duration
}

func (c *cachedTxs) History(ctx context.Context, token string) (*models.TxHistory, error) {
	return lookup(ctx, c.cache, "txhistory", "txs:"+token, c.ttl, func(ctx context.Context) (*models.TxHistory, error) {
		return c.inner.History(ctx, token)
	})
}

type cachedLocks struct {
	inner interface {
		Lock(ctx context.Context, token string) (*models.LiquidityLock, error)
	}
	cache icache.BytesCache
	ttl   time.Duration
}

func (c *cachedLocks) Lock(ctx context.Context, token string) (*models.LiquidityLock, error) {
	return lookup(ctx, c.cache, "liquiditylock", "lock:"+token, c.ttl, func(ctx context.Context) (*models.LiquidityLock, error) {
		return c.inner.Lock(ctx, token)
	})
}

type cachedAges struct {
	inner interface {
		Age(ctx context.Context, token string) (*models.TokenAge, error)
	}
	cache icache.BytesCache
	ttl   time.Duration
}

func (c *cachedAges) Age(ctx context.Context, token string) (*models.TokenAge, error) {
	return lookup(ctx, c.cache, "tokenage", "age:"+token, c.ttl, func(ctx context.Context) (*models.TokenAge, error) {
		return c.inner.Age(ctx, token)
	})
}
