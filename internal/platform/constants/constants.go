// Copyright (c) 2026 Mercata. All rights reserved.
// Author: platform@mercata.shop

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Security: Token lifetimes, revocation-check deadlines, cookie configuration.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "mercata-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the expected 'iss' claim in tokens minted by the identity service.
	AuthIssuer = "id.mercata.shop"

	// RefreshTokenCookieName is the name of the cookie that stores the refresh token.
	RefreshTokenCookieName = "refresh_token"

	// RefreshTokenCookiePath is the scoped path for the refresh token cookie.
	RefreshTokenCookiePath = "/api/v1/auth"

	// MsgInvalidSession is the single message returned for every rejected
	// session. Revoked, expired and unverifiable tokens are indistinguishable
	// to the caller.
	MsgInvalidSession = "Invalid session"
)

// # Revocation & Sweep Timing

const (
	// StorageOpTimeout bounds each storage call made by the background
	// sweep, which otherwise runs under the unbounded application context.
	// Request-scoped storage calls are bounded by the request deadline.
	StorageOpTimeout = 3 * time.Second

	// RevocationCheckTimeout bounds the per-request revocation lookup.
	// An answer that does not arrive in time is treated as revoked.
	RevocationCheckTimeout = 2 * time.Second

	// RevocationCacheMaxTTL caps how long a cached "revoked" verdict may
	// outlive its write. The real bound is always the token's own expiry.
	RevocationCacheMaxTTL = 30 * 24 * time.Hour

	// DefaultSweepInterval is the fallback cadence for the expiry sweep.
	DefaultSweepInterval = 5 * time.Minute
)

// # JSON Field Identifiers

const (
	FieldError = "error"
	FieldCode  = "code"
)

// # Storage Names

const (
	// CollectionTokenRevocations is the MongoDB collection backing the ledger.
	CollectionTokenRevocations = "token_revocations"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixRevoked = "auth:revoked:"
)
