// Copyright (c) 2026 Mercata. All rights reserved.
// Author: platform@mercata.shop

package dberr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mercata/mercata/internal/platform/apperr"
)

func TestWrap_Nil(t *testing.T) {
	assert.NoError(t, Wrap(nil, "Session"))
}

func TestWrap_NoRowsBecomesNotFound(t *testing.T) {
	err := Wrap(fmt.Errorf("query_failed: %w", pgx.ErrNoRows), "Session")

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, http.StatusNotFound, appError.HTTPStatus)
	assert.Equal(t, "Session not found", appError.Message)
	assert.NotNil(t, appError.Cause)
}

func TestWrap_UniqueViolationBecomesConflict(t *testing.T) {
	pgError := &pgconn.PgError{Code: pgerrcode.UniqueViolation}
	err := Wrap(fmt.Errorf("insert_failed: %w", pgError), "Session")

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, http.StatusConflict, appError.HTTPStatus)
}

// Timeouts and connection failures come back as 503, not 500: the caller
// hit a degraded dependency, not a bug.
func TestWrap_DegradedDependencyBecomesUnavailable(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "deadline exceeded", err: fmt.Errorf("query_failed: %w", context.DeadlineExceeded)},
		{name: "network error", err: fmt.Errorf("query_failed: %w", &net.OpError{Op: "dial", Err: errors.New("connection refused")})},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			appError := apperr.As(Wrap(test.err, "Session"))
			require.NotNil(t, appError)
			assert.Equal(t, http.StatusServiceUnavailable, appError.HTTPStatus)
			assert.Equal(t, "SERVICE_UNAVAILABLE", appError.Code)
		})
	}
}

func TestWrap_UnknownBecomesInternal(t *testing.T) {
	appError := apperr.As(Wrap(errors.New("splines unreticulated"), "Session"))
	require.NotNil(t, appError)
	assert.Equal(t, http.StatusInternalServerError, appError.HTTPStatus)
}
