// Copyright (c) 2026 Mercata. All rights reserved.
// Author: platform@mercata.shop

package sessions

import (
	"context"
	"time"
)

// Repository defines the data access contract for session persistence.
//
// Every method that evaluates liveness takes the caller's clock reading so
// the cutoff is decided in exactly one place and tests stay deterministic.
type Repository interface {

	/*
		Create persists a new session row.

		Parameters:
		  - context: context.Context
		  - session: *Session (CreatedAt/UpdatedAt are stamped by the caller)

		Returns:
		  - error: apperr.Conflict on a duplicate refresh hash, otherwise
		    persistence failures
	*/
	Create(context context.Context, session *Session) error

	/*
		FindLiveByRefreshHash retrieves the live session matching the given
		refresh-token digest. Revoked and expired rows are invisible here.

		Parameters:
		  - context: context.Context
		  - refreshHash: string
		  - now: time.Time (liveness cutoff)

		Returns:
		  - *Session: The live session
		  - error: apperr.NotFound when no live row matches
	*/
	FindLiveByRefreshHash(context context.Context, refreshHash string, now time.Time) (*Session, error)

	/*
		RevokeByJTI marks the session carrying the given jti as revoked.
		Already-revoked rows keep their original stamp and reason; the call
		is idempotent and reports success either way.

		Parameters:
		  - context: context.Context
		  - jti: string
		  - reason: string
		  - now: time.Time (becomes RevokedAt on first revocation)

		Returns:
		  - error: Persistence failures
	*/
	RevokeByJTI(context context.Context, jti string, reason string, now time.Time) error

	/*
		RevokeAllForUser revokes every live session owned by userID and
		returns how many rows changed.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - reason: string
		  - now: time.Time

		Returns:
		  - int64: Sessions revoked by this call
		  - error: Persistence failures
	*/
	RevokeAllForUser(context context.Context, userID string, reason string, now time.Time) (int64, error)

	/*
		DeleteExpired permanently removes sessions whose expiry is at or
		before now, revoked or not, and returns the number removed.

		Parameters:
		  - context: context.Context
		  - now: time.Time

		Returns:
		  - int64: Rows removed
		  - error: Deletion failures
	*/
	DeleteExpired(context context.Context, now time.Time) (int64, error)
}
