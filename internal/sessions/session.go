// Copyright (c) 2026 Mercata. All rights reserved.
// Author: platform@mercata.shop

/*
Package sessions implements refresh-token session tracking for Mercata.

# Architecture

A Session is the server-side record of one refresh token: the token itself is
held only by the client, the database stores a peppered digest. Liveness is
derived, never stored. A session is live exactly when it has not been revoked
and its expiry is still in the future; there is no EXPIRED flag to drift out
of date, and a crashed sweep can never change an authorization decision.
*/
package sessions

import "time"

// # Lifetimes

const (
	// RefreshTokenByteLength is the entropy, in bytes, behind each raw
	// refresh token.
	RefreshTokenByteLength = 32

	// RefreshTokenTTL is how long an established session stays usable.
	RefreshTokenTTL = 30 * 24 * time.Hour
)

// # Domain Entity

// Session represents one tracked refresh token.
type Session struct {
	// ID is the UUIDv7 primary key.
	ID string `json:"id"`
	// UserID is the owning account.
	UserID string `json:"user_id"`
	// JTI links the session to the access tokens minted against it and to
	// the revocation ledger.
	JTI string `json:"jti"`
	// RefreshHash is the peppered HMAC digest of the raw refresh token.
	// The raw value is never stored.
	RefreshHash string `json:"-"`
	// ExpiresAt is the session's natural expiry.
	ExpiresAt time.Time `json:"expires_at"`
	// RevokedAt is nil while the session has never been revoked.
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
	// RevocationReason is a free-form audit note ("logout", "compromised").
	RevocationReason string `json:"revocation_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// # Derived State

// IsExpired reports whether the session's natural lifetime has passed at
// the given instant.
func (session *Session) IsExpired(now time.Time) bool {
	return !session.ExpiresAt.After(now)
}

// IsLive reports whether the session may authenticate requests at the given
// instant: never revoked AND not yet expired.
func (session *Session) IsLive(now time.Time) bool {
	return session.RevokedAt == nil && !session.IsExpired(now)
}
