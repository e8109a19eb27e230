// Copyright (c) 2026 Mercata. All rights reserved.
// Author: platform@mercata.shop

/*
Package mongodb provides a managed MongoDB client for document collections.

It backs the collections whose shapes are document-first (the token revocation
ledger here; catalog collections elsewhere in the platform), complementing the
relational PostgreSQL store.

Core Responsibilities:

  - Connectivity: Validates the deployment is reachable at startup.
  - Atomicity: Single-document upserts are the only write primitive the core
    relies on; no multi-document transactions are used.
  - Safety: Bounded timeouts on connect and ping.
*/
package mongodb

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// Opinionated default timeouts for MongoDB operations.
const (
	connectTimeout = 5 * time.Second
	pingTimeout    = 2 * time.Second
)

// NewClient connects to a MongoDB deployment and validates connectivity.
//
// # Parameters
//   - ctx: Context for the initial ping.
//   - mongoURL: MongoDB connection URI.
//   - logger: Structured logger for connection events.
func NewClient(ctx context.Context, mongoURL string, logger *slog.Logger) (*mongo.Client, error) {
	clientOptions := options.Client().
		ApplyURI(mongoURL).
		SetConnectTimeout(connectTimeout)

	client, err := mongo.Connect(clientOptions)
	if err != nil {
		return nil, fmt.Errorf("mongodb: connect failed: %w", err)
	}

	// Validate connectivity immediately at startup.
	if err := Ping(ctx, client); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	logger.Info("mongodb client connected")

	return client, nil
}

// Ping verifies that the MongoDB client can reach a primary.
//
// # Consistency
//
// Reading from the primary is what gives the revocation ledger its
// read-your-writes guarantee; secondaries are never consulted.
func Ping(ctx context.Context, client *mongo.Client) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongodb: ping failed: %w", err)
	}

	return nil
}
