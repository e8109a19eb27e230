// Copyright (c) 2026 Mercata. All rights reserved.
// Author: platform@mercata.shop

package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mercata/mercata/internal/platform/constants"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/mercata")
	t.Setenv("MONGO_URL", "mongodb://localhost:27017")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("TOKEN_PEPPER", "unit-test-pepper")
	t.Setenv("JWT_PUBLIC_KEY_PATH", "/etc/mercata/issuer.pem")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 5*time.Minute, cfg.SweepInterval)
}

func TestLoad_MissingRequiredFails(t *testing.T) {
	setRequiredEnv(t)
	require.NoError(t, os.Unsetenv("TOKEN_PEPPER"))

	_, err := Load()
	assert.Error(t, err)
}

// A zero interval would panic time.NewTicker, so Load clamps it to the
// platform default instead of letting it reach the sweeper.
func TestLoad_ZeroSweepIntervalFallsBack(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SWEEP_INTERVAL", "0s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, constants.DefaultSweepInterval, cfg.SweepInterval)
}
