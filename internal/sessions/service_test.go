// Copyright (c) 2026 Mercata. All rights reserved.
// Author: platform@mercata.shop

package sessions

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mercata/mercata/internal/platform/apperr"
	"github.com/mercata/mercata/internal/platform/sec"
	"github.com/mercata/mercata/internal/revocation"
)

// # Test Fixtures

type memorySessionRepository struct {
	sessions map[string]*Session // keyed by ID
}

func newMemorySessionRepository() *memorySessionRepository {
	return &memorySessionRepository{sessions: map[string]*Session{}}
}

func (repository *memorySessionRepository) Create(_ context.Context, session *Session) error {
	for _, existing := range repository.sessions {
		if existing.RefreshHash == session.RefreshHash {
			return apperr.Conflict("Session already exists")
		}
	}
	clone := *session
	repository.sessions[session.ID] = &clone
	return nil
}

func (repository *memorySessionRepository) FindLiveByRefreshHash(_ context.Context, refreshHash string, now time.Time) (*Session, error) {
	for _, session := range repository.sessions {
		if session.RefreshHash == refreshHash && session.IsLive(now) {
			clone := *session
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("Session")
}

func (repository *memorySessionRepository) RevokeByJTI(_ context.Context, jti string, reason string, now time.Time) error {
	for _, session := range repository.sessions {
		if session.JTI == jti && session.RevokedAt == nil {
			stamp := now
			session.RevokedAt = &stamp
			session.RevocationReason = reason
			session.UpdatedAt = now
		}
	}
	return nil
}

func (repository *memorySessionRepository) RevokeAllForUser(_ context.Context, userID string, reason string, now time.Time) (int64, error) {
	var count int64
	for _, session := range repository.sessions {
		if session.UserID == userID && session.IsLive(now) {
			stamp := now
			session.RevokedAt = &stamp
			session.RevocationReason = reason
			session.UpdatedAt = now
			count++
		}
	}
	return count, nil
}

func (repository *memorySessionRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var count int64
	for id, session := range repository.sessions {
		if session.IsExpired(now) {
			delete(repository.sessions, id)
			count++
		}
	}
	return count, nil
}

// unavailableSessionRepository simulates a database that times out on every
// call, the way the pgx repository reports a degraded dependency.
type unavailableSessionRepository struct {
	memorySessionRepository
}

func (repository *unavailableSessionRepository) FindLiveByRefreshHash(_ context.Context, _ string, _ time.Time) (*Session, error) {
	return nil, apperr.Unavailable(errors.New("dial timeout"))
}

type memoryLedger struct {
	entries map[string]*revocation.TokenRevocation
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{entries: map[string]*revocation.TokenRevocation{}}
}

func (ledger *memoryLedger) Add(_ context.Context, jti string, expiresAt time.Time, reason string, now time.Time) error {
	if existing, found := ledger.entries[jti]; found {
		existing.ExpiresAt = expiresAt
		existing.Reason = reason
		existing.UpdatedAt = now
		return nil
	}
	ledger.entries[jti] = &revocation.TokenRevocation{
		JTI:       jti,
		ExpiresAt: expiresAt,
		Reason:    reason,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return nil
}

func (ledger *memoryLedger) Get(_ context.Context, jti string) (*revocation.TokenRevocation, error) {
	row, found := ledger.entries[jti]
	if !found {
		return nil, apperr.NotFound("Revocation")
	}
	return row, nil
}

func (ledger *memoryLedger) reason(jti string) string {
	if row, found := ledger.entries[jti]; found {
		return row.Reason
	}
	return ""
}

var testClock = time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *memorySessionRepository, *memoryLedger) {
	t.Helper()

	hasher, err := sec.NewTokenHasher("unit-test-pepper")
	require.NoError(t, err)

	repository := newMemorySessionRepository()
	ledger := newMemoryLedger()
	service := NewService(repository, ledger, hasher).WithClock(func() time.Time { return testClock })

	return service, repository, ledger
}

// # Establish

func TestEstablish_StoresDigestNotToken(t *testing.T) {
	service, repository, _ := newTestService(t)

	established, err := service.Establish(context.Background(), EstablishInput{UserID: "user-1", JTI: "jti-1"})
	require.NoError(t, err)

	assert.Len(t, established.RefreshToken, RefreshTokenByteLength*2)

	stored := repository.sessions[established.Session.ID]
	require.NotNil(t, stored)
	assert.NotEqual(t, established.RefreshToken, stored.RefreshHash)
	assert.Len(t, stored.RefreshHash, 64)
	assert.Equal(t, testClock.Add(RefreshTokenTTL), stored.ExpiresAt)
	assert.Nil(t, stored.RevokedAt)
}

// # ResolveRefresh

func TestResolveRefresh_LiveSession(t *testing.T) {
	service, _, _ := newTestService(t)

	established, err := service.Establish(context.Background(), EstablishInput{UserID: "user-1", JTI: "jti-1"})
	require.NoError(t, err)

	session, err := service.ResolveRefresh(context.Background(), established.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, established.Session.ID, session.ID)
	assert.Equal(t, "jti-1", session.JTI)
}

func TestResolveRefresh_UnknownToken(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.ResolveRefresh(context.Background(), "completely-unknown")
	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, http.StatusUnauthorized, appError.HTTPStatus)
}

// A degraded database must surface as a 503, never as the generic 401:
// the client should retry, not throw a possibly-valid token away.
func TestResolveRefresh_StorageFailurePropagatesUnavailable(t *testing.T) {
	service, _, _ := newTestService(t)
	service.repository = &unavailableSessionRepository{}

	_, err := service.ResolveRefresh(context.Background(), "some-token")
	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, http.StatusServiceUnavailable, appError.HTTPStatus)
}

func TestResolveRefresh_RevokedAndExpiredLookAlike(t *testing.T) {
	service, repository, _ := newTestService(t)

	revoked, err := service.Establish(context.Background(), EstablishInput{UserID: "user-1", JTI: "jti-revoked"})
	require.NoError(t, err)
	require.NoError(t, service.RevokeToken(context.Background(), "jti-revoked", revoked.Session.ExpiresAt, "compromised"))

	expired, err := service.Establish(context.Background(), EstablishInput{UserID: "user-1", JTI: "jti-expired"})
	require.NoError(t, err)
	repository.sessions[expired.Session.ID].ExpiresAt = testClock.Add(-time.Minute)

	_, revokedErr := service.ResolveRefresh(context.Background(), revoked.RefreshToken)
	_, expiredErr := service.ResolveRefresh(context.Background(), expired.RefreshToken)

	revokedApp := apperr.As(revokedErr)
	expiredApp := apperr.As(expiredErr)
	require.NotNil(t, revokedApp)
	require.NotNil(t, expiredApp)
	assert.Equal(t, revokedApp.Message, expiredApp.Message)
	assert.Equal(t, revokedApp.HTTPStatus, expiredApp.HTTPStatus)
}

// # RevokeToken

func TestRevokeToken_WritesLedgerAndSession(t *testing.T) {
	service, repository, ledger := newTestService(t)

	established, err := service.Establish(context.Background(), EstablishInput{UserID: "user-1", JTI: "jti-1"})
	require.NoError(t, err)

	err = service.RevokeToken(context.Background(), "jti-1", established.Session.ExpiresAt, "compromised")
	require.NoError(t, err)

	assert.Equal(t, "compromised", ledger.reason("jti-1"))

	stored := repository.sessions[established.Session.ID]
	require.NotNil(t, stored.RevokedAt)
	assert.Equal(t, testClock, *stored.RevokedAt)
	assert.Equal(t, "compromised", stored.RevocationReason)
}

func TestRevokeToken_RepeatKeepsFirstSessionStamp(t *testing.T) {
	service, repository, ledger := newTestService(t)

	established, err := service.Establish(context.Background(), EstablishInput{UserID: "user-1", JTI: "jti-1"})
	require.NoError(t, err)

	require.NoError(t, service.RevokeToken(context.Background(), "jti-1", established.Session.ExpiresAt, "logout"))
	require.NoError(t, service.RevokeToken(context.Background(), "jti-1", established.Session.ExpiresAt, "compromised"))

	// The ledger converges to the last writer, the session keeps its
	// original audit trail.
	assert.Equal(t, "compromised", ledger.reason("jti-1"))
	assert.Equal(t, "logout", repository.sessions[established.Session.ID].RevocationReason)
}

// # Logout

func TestLogout_RevokesResolvedSession(t *testing.T) {
	service, _, ledger := newTestService(t)

	established, err := service.Establish(context.Background(), EstablishInput{UserID: "user-1", JTI: "jti-1"})
	require.NoError(t, err)

	require.NoError(t, service.Logout(context.Background(), established.RefreshToken))
	assert.Equal(t, "logout", ledger.reason("jti-1"))

	_, err = service.ResolveRefresh(context.Background(), established.RefreshToken)
	assert.Error(t, err)
}

func TestLogout_UnknownTokenIsIdempotent(t *testing.T) {
	service, _, _ := newTestService(t)

	assert.NoError(t, service.Logout(context.Background(), "never-issued"))
}

// Idempotency covers sessions that are genuinely gone, not a database that
// cannot answer. Swallowing a storage failure here would report a logout
// that never happened.
func TestLogout_StorageFailureIsNotSwallowed(t *testing.T) {
	service, _, _ := newTestService(t)
	service.repository = &unavailableSessionRepository{}

	err := service.Logout(context.Background(), "some-token")
	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, http.StatusServiceUnavailable, appError.HTTPStatus)
}

// # RevokeAllForUser

func TestRevokeAllForUser_OnlyLiveSessionsOfThatUser(t *testing.T) {
	service, repository, _ := newTestService(t)

	first, err := service.Establish(context.Background(), EstablishInput{UserID: "user-1", JTI: "jti-1"})
	require.NoError(t, err)
	second, err := service.Establish(context.Background(), EstablishInput{UserID: "user-1", JTI: "jti-2"})
	require.NoError(t, err)
	other, err := service.Establish(context.Background(), EstablishInput{UserID: "user-2", JTI: "jti-3"})
	require.NoError(t, err)

	// An already-expired session of user-1 must not count.
	repository.sessions[second.Session.ID].ExpiresAt = testClock.Add(-time.Hour)

	count, err := service.RevokeAllForUser(context.Background(), "user-1", "account compromised")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	assert.NotNil(t, repository.sessions[first.Session.ID].RevokedAt)
	assert.Nil(t, repository.sessions[second.Session.ID].RevokedAt)
	assert.Nil(t, repository.sessions[other.Session.ID].RevokedAt)
}

// # Full Lifecycle

// Establish, resolve, revoke, fail to resolve, then sweep the row away.
func TestSessionLifecycle_EstablishRevokeSweep(t *testing.T) {
	service, repository, _ := newTestService(t)

	established, err := service.Establish(context.Background(), EstablishInput{UserID: "user-1", JTI: "jti-1"})
	require.NoError(t, err)

	_, err = service.ResolveRefresh(context.Background(), established.RefreshToken)
	require.NoError(t, err)

	require.NoError(t, service.RevokeToken(context.Background(), "jti-1", established.Session.ExpiresAt, "logout"))

	_, err = service.ResolveRefresh(context.Background(), established.RefreshToken)
	require.Error(t, err)

	// Past the natural expiry the sweep may physically remove the row.
	removed, err := repository.DeleteExpired(context.Background(), established.Session.ExpiresAt.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	assert.Empty(t, repository.sessions)
}

// # Derived Liveness

func TestSessionLiveness(t *testing.T) {
	now := testClock

	testCases := []struct {
		name     string
		session  Session
		expected bool
	}{
		{
			name:     "future expiry, never revoked",
			session:  Session{ExpiresAt: now.Add(time.Hour)},
			expected: true,
		},
		{
			name:     "expiry exactly now counts as expired",
			session:  Session{ExpiresAt: now},
			expected: false,
		},
		{
			name: "revoked before expiry",
			session: Session{
				ExpiresAt: now.Add(time.Hour),
				RevokedAt: &now,
			},
			expected: false,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, testCase.session.IsLive(now))
		})
	}
}
