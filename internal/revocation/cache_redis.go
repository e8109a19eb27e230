// Copyright (c) 2026 Mercata. All rights reserved.
// Author: platform@mercata.shop

package revocation

import (
	stdctx "context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mercata/mercata/internal/platform/constants"
)

// # Cached Ledger

// Cache is the slice of the Redis API the positive-verdict cache uses.
// [*redis.Client] satisfies it.
type Cache interface {
	Set(ctx stdctx.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Exists(ctx stdctx.Context, keys ...string) *redis.IntCmd
}

// CachedLedger decorates a Ledger with a Redis fast path for revocation
// lookups.
//
// Only positive verdicts are cached. A "not revoked" answer is never stored,
// so a revocation issued after a lookup is visible on the very next check.
// Cached entries carry a TTL no longer than the token's own remaining
// lifetime, which keeps a stale positive from outliving the token.
type CachedLedger struct {
	inner  Ledger
	client Cache
	logger *slog.Logger
}

/*
NewCachedLedger wraps inner with the Redis positive-verdict cache.

Parameters:
  - inner: Ledger (the authoritative store)
  - client: Cache (normally a *redis.Client)
  - logger: *slog.Logger

Returns:
  - *CachedLedger: Decorated ledger
*/
func NewCachedLedger(inner Ledger, client Cache, logger *slog.Logger) *CachedLedger {
	return &CachedLedger{
		inner:  inner,
		client: client,
		logger: logger,
	}
}

// Add writes through to the authoritative ledger and then seeds the cache.
// A cache write failure is logged and swallowed: the ledger row is already
// committed and every uncached lookup will see it.
func (ledger *CachedLedger) Add(context stdctx.Context, jti string, expiresAt time.Time, reason string, now time.Time) error {
	if err := ledger.inner.Add(context, jti, expiresAt, reason, now); err != nil {
		return err
	}

	ttl := ledger.cacheTTL(expiresAt, now)
	if ttl <= 0 {
		return nil
	}
	if err := ledger.client.Set(context, cacheKey(jti), "1", ttl).Err(); err != nil {
		ledger.logger.Warn("revocation cache seed failed", "jti", jti, "error", err)
	}
	return nil
}

// IsRevoked answers from Redis when a positive entry exists, otherwise reads
// the authoritative ledger. Cache errors fall through to the ledger rather
// than failing the lookup.
func (ledger *CachedLedger) IsRevoked(context stdctx.Context, jti string) (bool, error) {
	exists, err := ledger.client.Exists(context, cacheKey(jti)).Result()
	if err != nil {
		ledger.logger.Warn("revocation cache lookup failed", "jti", jti, "error", err)
	} else if exists > 0 {
		return true, nil
	}

	return ledger.inner.IsRevoked(context, jti)
}

// Get delegates to the authoritative ledger; audit reads never touch the cache.
func (ledger *CachedLedger) Get(context stdctx.Context, jti string) (*TokenRevocation, error) {
	return ledger.inner.Get(context, jti)
}

// PurgeExpired delegates to the authoritative ledger. Cached positives expire
// on their own TTLs, which never exceed the token expiry used for purging.
func (ledger *CachedLedger) PurgeExpired(context stdctx.Context, now time.Time) (int64, error) {
	return ledger.inner.PurgeExpired(context, now)
}

func (ledger *CachedLedger) cacheTTL(expiresAt time.Time, now time.Time) time.Duration {
	ttl := expiresAt.Sub(now)
	if ttl > constants.RevocationCacheMaxTTL {
		ttl = constants.RevocationCacheMaxTTL
	}
	return ttl
}

func cacheKey(jti string) string {
	return constants.RedisPrefixRevoked + jti
}
