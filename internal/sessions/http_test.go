// Copyright (c) 2026 Mercata. All rights reserved.
// Author: platform@mercata.shop

package sessions

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type errorEnvelope struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"details"`
}

func postJSON(t *testing.T, handlerFunc http.HandlerFunc, target string, body string) *httptest.ResponseRecorder {
	t.Helper()

	request := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	handlerFunc(recorder, request)
	return recorder
}

// A request missing several fields reports every failure in one response,
// not one field per round trip.
func TestRevokeTokenEndpoint_AggregatesFieldErrors(t *testing.T) {
	service, _, _ := newTestService(t)
	handler := NewHandler(service)

	recorder := postJSON(t, handler.revokeToken, "/revocations", `{"reason":"cleanup"}`)

	require.Equal(t, http.StatusBadRequest, recorder.Code)

	var envelope errorEnvelope
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&envelope))
	assert.Equal(t, "VALIDATION_ERROR", envelope.Code)
	require.Len(t, envelope.Details, 2)

	fields := []string{envelope.Details[0].Field, envelope.Details[1].Field}
	assert.Contains(t, fields, "jti")
	assert.Contains(t, fields, "expires_at")
}

func TestRevokeTokenEndpoint_Success(t *testing.T) {
	service, _, ledger := newTestService(t)
	handler := NewHandler(service)

	body := `{"jti":"jti-1","expires_at":"2026-09-01T00:00:00Z","reason":"compromised"}`
	recorder := postJSON(t, handler.revokeToken, "/revocations", body)

	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Equal(t, "compromised", ledger.reason("jti-1"))
}
