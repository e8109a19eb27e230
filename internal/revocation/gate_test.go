// Copyright (c) 2026 Mercata. All rights reserved.
// Author: platform@mercata.shop

package revocation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mercata/mercata/internal/platform/apperr"
	"github.com/mercata/mercata/internal/platform/constants"
)

type fakeChecker struct {
	revoked map[string]bool
	err     error
	slow    bool
}

func (checker *fakeChecker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if checker.err != nil {
		return false, checker.err
	}
	if checker.slow {
		<-ctx.Done()
		return false, ctx.Err()
	}
	return checker.revoked[jti], nil
}

func newTestGate(checker Checker) *Gate {
	return NewGate(checker, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestGateCheck_LiveToken(t *testing.T) {
	gate := newTestGate(&fakeChecker{revoked: map[string]bool{}})

	err := gate.Check(context.Background(), "jti-live")
	assert.NoError(t, err)
}

func TestGateCheck_RevokedToken(t *testing.T) {
	gate := newTestGate(&fakeChecker{revoked: map[string]bool{"jti-revoked": true}})

	err := gate.Check(context.Background(), "jti-revoked")
	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, http.StatusUnauthorized, appError.HTTPStatus)
	assert.Equal(t, constants.MsgInvalidSession, appError.Message)
}

func TestGateCheck_EmptyJTI(t *testing.T) {
	gate := newTestGate(&fakeChecker{})

	err := gate.Check(context.Background(), "")
	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, http.StatusUnauthorized, appError.HTTPStatus)
}

// A ledger failure must read as "revoked", never as "allowed".
func TestGateCheck_StorageErrorFailsClosed(t *testing.T) {
	gate := newTestGate(&fakeChecker{err: errors.New("connection refused")})

	err := gate.Check(context.Background(), "jti-unknown")
	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, http.StatusUnauthorized, appError.HTTPStatus)
	assert.Equal(t, constants.MsgInvalidSession, appError.Message)
}

// The rejection for an error is byte-identical to the rejection for a real
// revocation, so callers cannot probe ledger health through the gate.
func TestGateCheck_ErrorAndRevokedIndistinguishable(t *testing.T) {
	revokedGate := newTestGate(&fakeChecker{revoked: map[string]bool{"jti": true}})
	brokenGate := newTestGate(&fakeChecker{err: errors.New("boom")})

	revokedErr := apperr.As(revokedGate.Check(context.Background(), "jti"))
	brokenErr := apperr.As(brokenGate.Check(context.Background(), "jti"))

	require.NotNil(t, revokedErr)
	require.NotNil(t, brokenErr)
	assert.Equal(t, revokedErr.Message, brokenErr.Message)
	assert.Equal(t, revokedErr.Code, brokenErr.Code)
	assert.Equal(t, revokedErr.HTTPStatus, brokenErr.HTTPStatus)
}

func TestGateCheck_TimeoutFailsClosed(t *testing.T) {
	gate := newTestGate(&fakeChecker{slow: true})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := gate.Check(ctx, "jti-slow")
	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, http.StatusUnauthorized, appError.HTTPStatus)
}
