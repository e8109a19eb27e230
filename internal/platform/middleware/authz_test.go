// Copyright (c) 2026 Mercata. All rights reserved.
// Author: platform@mercata.shop

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"github.com/mercata/mercata/internal/platform/apperr"
	"github.com/mercata/mercata/internal/platform/constants"
	"github.com/mercata/mercata/internal/platform/sec"
)

type fakeVerifier struct {
	claims *sec.AuthClaims
	err    error
}

func (verifier *fakeVerifier) VerifyToken(string) (*sec.AuthClaims, error) {
	return verifier.claims, verifier.err
}

type fakeGate struct {
	calls int
	err   error
}

func (gate *fakeGate) Check(context.Context, string) error {
	gate.calls++
	return gate.err
}

func validClaims(jti string) *sec.AuthClaims {
	return &sec.AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{ID: jti},
		UserID:           "user-1",
		Role:             string(sec.RoleCustomer),
	}
}

func runAuthenticate(verifier TokenVerifier, gate RevocationGate, header string) (*httptest.ResponseRecorder, bool) {
	reachedHandler := false
	handler := Authenticate(verifier, gate)(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		reachedHandler = true
		writer.WriteHeader(http.StatusOK)
	}))

	request := httptest.NewRequest(http.MethodGet, "/orders", nil)
	if header != "" {
		request.Header.Set("Authorization", header)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	return recorder, reachedHandler
}

func TestAuthenticate_AnonymousPassesThrough(t *testing.T) {
	gate := &fakeGate{}
	recorder, reached := runAuthenticate(&fakeVerifier{}, gate, "")

	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Zero(t, gate.calls, "anonymous requests must not hit the gate")
}

func TestAuthenticate_ValidTokenConsultsGate(t *testing.T) {
	gate := &fakeGate{}
	recorder, reached := runAuthenticate(&fakeVerifier{claims: validClaims("jti-1")}, gate, "Bearer token")

	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, 1, gate.calls)
}

func TestAuthenticate_RevokedTokenRejected(t *testing.T) {
	gate := &fakeGate{err: apperr.Unauthorized(constants.MsgInvalidSession)}
	recorder, reached := runAuthenticate(&fakeVerifier{claims: validClaims("jti-1")}, gate, "Bearer token")

	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestAuthenticate_BadSignatureRejectedBeforeGate(t *testing.T) {
	gate := &fakeGate{}
	recorder, reached := runAuthenticate(&fakeVerifier{err: errors.New("bad signature")}, gate, "Bearer token")

	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Zero(t, gate.calls)
}

func TestAuthenticate_MalformedHeaderRejected(t *testing.T) {
	gate := &fakeGate{}
	recorder, reached := runAuthenticate(&fakeVerifier{claims: validClaims("jti-1")}, gate, "Basic abc123")

	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Zero(t, gate.calls)
}
