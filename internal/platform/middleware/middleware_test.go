// Copyright (c) 2026 Mercata. All rights reserved.
// Author: platform@mercata.shop

package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mercata/mercata/internal/platform/constants"
)

func TestRateLimit_ExhaustedBucketReturns429Envelope(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := RateLimit(ctx)(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
	}))

	// Drain the burst allowance from a single address. The bucket refills
	// while the loop runs, so allow headroom beyond the configured burst.
	var limited *httptest.ResponseRecorder
	for i := 0; i < constants.DefaultRateLimitBurst*3; i++ {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set(constants.HeaderXRealIP, "203.0.113.77")

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)

		if recorder.Code == http.StatusTooManyRequests {
			limited = recorder
			break
		}
		require.Equal(t, http.StatusOK, recorder.Code)
	}

	require.NotNil(t, limited, "bucket was never exhausted")

	var envelope struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	require.NoError(t, json.NewDecoder(limited.Body).Decode(&envelope))
	assert.Equal(t, "RATE_LIMITED", envelope.Code)
	assert.Contains(t, envelope.Error, "Too many requests")
}
