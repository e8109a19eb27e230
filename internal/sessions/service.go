// Copyright (c) 2026 Mercata. All rights reserved.
// Author: platform@mercata.shop

package sessions

import (
	stdctx "context"
	"fmt"
	"net/http"
	"time"

	"github.com/mercata/mercata/internal/platform/apperr"
	"github.com/mercata/mercata/internal/platform/constants"
	"github.com/mercata/mercata/internal/platform/sec"
	"github.com/mercata/mercata/internal/revocation"
	"github.com/mercata/mercata/pkg/uuidv7"
)

// RevocationRecorder covers the ledger operations the service needs: the
// write that kills a token and the audit read behind the support tooling.
type RevocationRecorder interface {
	Add(context stdctx.Context, jti string, expiresAt time.Time, reason string, now time.Time) error
	Get(context stdctx.Context, jti string) (*revocation.TokenRevocation, error)
}

// Service implements session lifecycle use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to digest handling or
// revocation ordering must be reviewed by the security team.
type Service struct {
	repository Repository
	ledger     RevocationRecorder
	hasher     *sec.TokenHasher

	// now is the injected clock. Every timestamp and liveness cutoff in
	// this service flows from a single read of it per operation.
	now func() time.Time
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(repository Repository, ledger RevocationRecorder, hasher *sec.TokenHasher) *Service {
	return &Service{
		repository: repository,
		ledger:     ledger,
		hasher:     hasher,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the service clock. Intended for tests.
func (service *Service) WithClock(clock func() time.Time) *Service {
	service.now = clock
	return service
}

// EstablishInput holds the data required to track a freshly issued session.
type EstablishInput struct {
	UserID string
	JTI    string
}

// EstablishedSession carries the raw refresh token back to the transport
// layer exactly once. It is never persisted.
type EstablishedSession struct {
	Session      *Session
	RefreshToken string
}

/*
Establish creates and persists a new session for a token the identity
service just minted.

Parameters:
  - context: context.Context
  - input: The owning user and the minted token's jti

Returns:
  - *EstablishedSession: The stored session plus the one-time raw refresh token
  - error: apperr.Conflict on a digest collision, otherwise persistence failures

Flow:
 1. Generate a 32-byte random refresh token.
 2. Store only its peppered digest.
 3. Return the raw token for the Set-Cookie header.
*/
func (service *Service) Establish(context stdctx.Context, input EstablishInput) (*EstablishedSession, error) {
	now := service.now()

	// ── 1. Refresh Token Generation ───────────────────────────────────────

	refreshToken, err := sec.GenerateSecureToken(RefreshTokenByteLength)
	if err != nil {
		return nil, fmt.Errorf("sessions_service_refresh_token_failed: %w", err)
	}

	// ── 2. Entity Construction ────────────────────────────────────────────

	session := &Session{
		ID:          uuidv7.New(), // Time-sortable ID to prevent PG index fragmentation.
		UserID:      input.UserID,
		JTI:         input.JTI,
		RefreshHash: service.hasher.Hash(refreshToken),
		ExpiresAt:   now.Add(RefreshTokenTTL),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// ── 3. Persistence ────────────────────────────────────────────────────

	if err := service.repository.Create(context, session); err != nil {
		return nil, err
	}

	return &EstablishedSession{Session: session, RefreshToken: refreshToken}, nil
}

/*
ResolveRefresh validates a presented raw refresh token and returns its live
session.

A miss is reported with the same generic unauthorized error whether the
token is unknown, revoked, or expired. Distinguishing those cases would hand
an attacker a probe for which stolen tokens are still worth replaying.

Storage failures are NOT folded into that generic miss: a 503 from a
degraded database propagates as a 503, so clients retry instead of
discarding a token that may still be valid.

Parameters:
  - context: context.Context
  - refreshToken: string (the raw value from the client cookie)

Returns:
  - *Session: The live session matching the token
  - error: apperr.Unauthorized on any miss, storage failures unchanged
*/
func (service *Service) ResolveRefresh(context stdctx.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, apperr.Unauthorized(constants.MsgInvalidSession)
	}

	session, err := service.repository.FindLiveByRefreshHash(context, service.hasher.Hash(refreshToken), service.now())
	if err != nil {
		if appError := apperr.As(err); appError != nil && appError.HTTPStatus == http.StatusNotFound {
			return nil, apperr.Unauthorized(constants.MsgInvalidSession)
		}
		return nil, fmt.Errorf("sessions_service_resolve_refresh_failed: %w", err)
	}

	return session, nil
}

/*
RevokeToken invalidates the token identified by jti everywhere.

Ordering matters: the ledger row is written FIRST, so the gate starts
rejecting the token even if the session update below fails. The session row
is then marked for audit.

Parameters:
  - context: context.Context
  - jti: string
  - expiresAt: time.Time (the token's natural expiry, bounds the ledger row)
  - reason: string

Returns:
  - error: Persistence failures from either store
*/
func (service *Service) RevokeToken(context stdctx.Context, jti string, expiresAt time.Time, reason string) error {
	now := service.now()

	// ── 1. Ledger First ───────────────────────────────────────────────────

	if err := service.ledger.Add(context, jti, expiresAt, reason, now); err != nil {
		return fmt.Errorf("sessions_service_revoke_ledger_failed: %w", err)
	}

	// ── 2. Session Audit Trail ────────────────────────────────────────────

	if err := service.repository.RevokeByJTI(context, jti, reason, now); err != nil {
		return fmt.Errorf("sessions_service_revoke_session_failed: %w", err)
	}

	return nil
}

/*
GetRevocation retrieves the ledger row for a jti, for support tooling.

Parameters:
  - context: context.Context
  - jti: string

Returns:
  - *revocation.TokenRevocation: The ledger row
  - error: apperr.NotFound when the jti has never been revoked (or its row
    has already been purged)
*/
func (service *Service) GetRevocation(context stdctx.Context, jti string) (*revocation.TokenRevocation, error) {
	return service.ledger.Get(context, jti)
}

/*
Logout revokes the session behind a presented refresh token.

It is idempotent from the client's perspective: a token that no longer
resolves is treated as already logged out.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - error: Persistence failures. A missing session is NOT an error.
*/
func (service *Service) Logout(context stdctx.Context, refreshToken string) error {
	session, err := service.ResolveRefresh(context, refreshToken)
	if err != nil {
		if appError := apperr.As(err); appError != nil && appError.HTTPStatus == http.StatusUnauthorized {
			// Session already gone or invalid: logout is idempotent.
			return nil
		}
		return err
	}

	return service.RevokeToken(context, session.JTI, session.ExpiresAt, "logout")
}

/*
RevokeAllForUser invalidates every live session of one account, the
"log me out everywhere" and compromise-response operation.

Only the session rows change here. Short-lived access tokens already in the
wild run out on their own; individually ledgering each jti is the job of
[Service.RevokeToken] when a specific token must die immediately.

Parameters:
  - context: context.Context
  - userID: string
  - reason: string

Returns:
  - int64: Sessions revoked
  - error: Persistence failures
*/
func (service *Service) RevokeAllForUser(context stdctx.Context, userID string, reason string) (int64, error) {
	now := service.now()

	count, err := service.repository.RevokeAllForUser(context, userID, reason, now)
	if err != nil {
		return 0, fmt.Errorf("sessions_service_revoke_all_failed: %w", err)
	}

	return count, nil
}
