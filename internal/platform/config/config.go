// Copyright (c) 2026 Mercata. All rights reserved.
// Author: platform@mercata.shop

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Mongo, Redis) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/mercata/mercata/internal/platform/constants"
)

// # Configuration Schema

// Config holds all runtime configuration for the Mercata API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL) — holds the session store.
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Document Database (MongoDB) — holds the token revocation ledger.
	MongoURL      string `env:"MONGO_URL,required"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"mercata"`

	// Key-Value Cache (Redis) — fast path for revocation lookups.
	RedisURL string `env:"REDIS_URL,required"`

	// TokenPepper is the process-wide secret appended to refresh tokens
	// before hashing. Startup fails if it is absent.
	TokenPepper string `env:"TOKEN_PEPPER,required"`

	// Public key of the external token issuer, used for verification only.
	JWTPubKeyPath string `env:"JWT_PUBLIC_KEY_PATH,required"`

	// SweepInterval is how often the expiry-cleanup sweep runs. Zero and
	// negative values fall back to [constants.DefaultSweepInterval].
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"5m"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	// A sweep that never runs only grows storage, but a zero interval would
	// panic the ticker. Fall back to the platform default.
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = constants.DefaultSweepInterval
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
