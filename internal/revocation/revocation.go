// Copyright (c) 2026 Mercata. All rights reserved.
// Author: platform@mercata.shop

/*
Package revocation implements the token revocation ledger and the
authentication gate that consults it.

A ledger row for a jti means that token is invalid for every consumer,
regardless of the expiry claim embedded in the token itself, until the row is
purged. Rows become purgeable only after the token's natural expiry — at that
point the token is unusable either way, so dropping the record can never
re-enable it.

# Architecture

  - Ledger: Append/lookup/purge contract keyed by jti (MongoDB).
  - CachedLedger: Redis fast path that only ever caches POSITIVE verdicts.
  - Gate: The per-request revocation check, failing closed on any doubt.
*/
package revocation

import (
	"context"
	"time"
)

// # Domain Entities

// TokenRevocation is one row of the revocation ledger.
//
// The BSON keys are wire-stable: other services read this collection
// directly and the field names must not drift.
type TokenRevocation struct {
	JTI       string    `bson:"jti"       json:"jti"`
	ExpiresAt time.Time `bson:"expiresAt" json:"expires_at"`
	Reason    string    `bson:"reason"    json:"reason"`
	CreatedAt time.Time `bson:"createdAt" json:"created_at"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updated_at"`
}

// # Ledger Contract

// Ledger defines the data access contract for the revocation ledger.
type Ledger interface {

	/*
		Add records a jti as revoked. It is an idempotent upsert: re-adding
		the same jti refreshes reason and expiry (last-write-wins) and never
		errors on repeats. createdAt is set only on first insert.

		Parameters:
		  - context: context.Context
		  - jti: string
		  - expiresAt: time.Time (the token's own natural expiry)
		  - reason: string
		  - now: time.Time (injected clock reading for audit stamps)

		Returns:
		  - error: Persistence failures
	*/
	Add(context context.Context, jti string, expiresAt time.Time, reason string, now time.Time) error

	/*
		IsRevoked reports whether a non-purged ledger row exists for jti.

		It is a single read: a caller that observed Add commit must observe
		the revocation here (read-your-writes).

		Parameters:
		  - context: context.Context
		  - jti: string

		Returns:
		  - bool: true iff the jti is revoked
		  - error: Retrieval failures — the caller must treat these as
		    "unable to confirm", never as "not revoked"
	*/
	IsRevoked(context context.Context, jti string) (bool, error)

	/*
		Get retrieves the full ledger row for a jti, for audit and support
		tooling. The gate never calls this; it only needs [Ledger.IsRevoked].

		Parameters:
		  - context: context.Context
		  - jti: string

		Returns:
		  - *TokenRevocation: The ledger row
		  - error: apperr.NotFound when no row exists
	*/
	Get(context context.Context, jti string) (*TokenRevocation, error)

	/*
		PurgeExpired deletes every row whose expiresAt is at or before now
		and returns the number removed. Rows with expiresAt in the future
		are never touched (no premature un-revocation).

		Parameters:
		  - context: context.Context
		  - now: time.Time

		Returns:
		  - int64: Rows removed
		  - error: Deletion failures
	*/
	PurgeExpired(context context.Context, now time.Time) (int64, error)
}
