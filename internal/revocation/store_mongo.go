// Copyright (c) 2026 Mercata. All rights reserved.
// Author: platform@mercata.shop

package revocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/mercata/mercata/internal/platform/apperr"
	"github.com/mercata/mercata/internal/platform/constants"
)

// # Mongo Ledger

// MongoLedger is the MongoDB implementation of Ledger backed by the
// token_revocations collection.
type MongoLedger struct {
	collection *mongo.Collection
}

/*
NewMongoLedger creates a MongoLedger over the given database and guarantees
the unique index on jti that the upsert in Add relies on.

Parameters:
  - context: context.Context
  - database: *mongo.Database

Returns:
  - *MongoLedger: Ready-to-use ledger
  - error: Index creation failures
*/
func NewMongoLedger(context context.Context, database *mongo.Database) (*MongoLedger, error) {
	collection := database.Collection(constants.CollectionTokenRevocations)

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "jti", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := collection.Indexes().CreateOne(context, indexModel); err != nil {
		return nil, fmt.Errorf("mongo_ledger_ensure_index_failed: %w", err)
	}

	return &MongoLedger{collection: collection}, nil
}

// Add upserts a revocation row keyed by jti. Concurrent adds for the same jti
// converge to the last writer's expiresAt and reason; createdAt keeps the
// first writer's stamp.
func (ledger *MongoLedger) Add(context context.Context, jti string, expiresAt time.Time, reason string, now time.Time) error {
	filter := bson.D{{Key: "jti", Value: jti}}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "expiresAt", Value: expiresAt},
			{Key: "reason", Value: reason},
			{Key: "updatedAt", Value: now},
		}},
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "jti", Value: jti},
			{Key: "createdAt", Value: now},
		}},
	}

	_, err := ledger.collection.UpdateOne(context, filter, update, options.UpdateOne().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo_ledger_add_failed: %w", err)
	}
	return nil
}

// IsRevoked reports whether a ledger row exists for jti.
func (ledger *MongoLedger) IsRevoked(context context.Context, jti string) (bool, error) {
	count, err := ledger.collection.CountDocuments(context, bson.D{{Key: "jti", Value: jti}}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("mongo_ledger_is_revoked_failed: %w", err)
	}
	return count > 0, nil
}

// Get retrieves the full ledger row for a jti.
func (ledger *MongoLedger) Get(context context.Context, jti string) (*TokenRevocation, error) {
	row := &TokenRevocation{}
	err := ledger.collection.FindOne(context, bson.D{{Key: "jti", Value: jti}}).Decode(row)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("Revocation")
		}
		return nil, fmt.Errorf("mongo_ledger_get_failed: %w", err)
	}
	return row, nil
}

// PurgeExpired removes rows whose expiresAt is at or before now.
func (ledger *MongoLedger) PurgeExpired(context context.Context, now time.Time) (int64, error) {
	result, err := ledger.collection.DeleteMany(context, bson.D{
		{Key: "expiresAt", Value: bson.D{{Key: "$lte", Value: now}}},
	})
	if err != nil {
		return 0, fmt.Errorf("mongo_ledger_purge_expired_failed: %w", err)
	}
	return result.DeletedCount, nil
}
