// Copyright (c) 2026 Mercata. All rights reserved.
// Author: platform@mercata.shop

package sessions

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mercata/mercata/internal/platform/dberr"
)

// PostgresSessionRepository implements the Repository interface using pgx.
//
// # Error Mapping
//
// Every storage error goes through [dberr.Wrap], so missing rows surface as
// 404s, duplicate digests as 409s, and timeouts or connection failures as
// 503s rather than generic internal errors.
type PostgresSessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new PostgreSQL implementation of Repository.
func NewSessionRepository(pool *pgxpool.Pool) *PostgresSessionRepository {
	return &PostgresSessionRepository{pool: pool}
}

const sessionColumns = `
	id, user_id, jti, refresh_hash, exp, revoked_at, revocation_reason, created_at, updated_at`

// Create persists a new session record into the sessions table.
func (repository *PostgresSessionRepository) Create(context context.Context, session *Session) error {
	const query = `
		INSERT INTO sessions (
			id, user_id, jti, refresh_hash, exp, revoked_at, revocation_reason, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := repository.pool.Exec(context, query,
		session.ID,
		session.UserID,
		session.JTI,
		session.RefreshHash,
		session.ExpiresAt,
		session.RevokedAt,
		session.RevocationReason,
		session.CreatedAt,
		session.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_session_repo_create_failed: %w", err), "Session")
	}

	return nil
}

// FindLiveByRefreshHash retrieves a live session by its refresh-token digest.
//
// The liveness predicate lives in the WHERE clause so that revoked and
// expired rows are filtered on the same index scan that finds the digest.
func (repository *PostgresSessionRepository) FindLiveByRefreshHash(context context.Context, refreshHash string, now time.Time) (*Session, error) {
	const query = `
		SELECT` + sessionColumns + `
		FROM sessions
		WHERE refresh_hash = $1 AND revoked_at IS NULL AND exp > $2`

	session := &Session{}
	err := repository.pool.QueryRow(context, query, refreshHash, now).Scan(
		&session.ID,
		&session.UserID,
		&session.JTI,
		&session.RefreshHash,
		&session.ExpiresAt,
		&session.RevokedAt,
		&session.RevocationReason,
		&session.CreatedAt,
		&session.UpdatedAt,
	)

	if err != nil {
		return nil, dberr.Wrap(fmt.Errorf("postgres_session_repo_find_failed: %w", err), "Session")
	}

	return session, nil
}

// RevokeByJTI marks the session carrying the given jti as revoked. The
// revoked_at IS NULL guard preserves the first revocation's stamp and reason
// when the call repeats.
func (repository *PostgresSessionRepository) RevokeByJTI(context context.Context, jti string, reason string, now time.Time) error {
	const query = `
		UPDATE sessions
		SET revoked_at = $2, revocation_reason = $3, updated_at = $2
		WHERE jti = $1 AND revoked_at IS NULL`

	_, err := repository.pool.Exec(context, query, jti, now, reason)
	if err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_session_repo_revoke_failed: %w", err), "Session")
	}
	return nil
}

// RevokeAllForUser revokes every live session owned by the user. Expired
// rows are skipped: they cannot authenticate anyway and the sweep will
// remove them.
func (repository *PostgresSessionRepository) RevokeAllForUser(context context.Context, userID string, reason string, now time.Time) (int64, error) {
	const query = `
		UPDATE sessions
		SET revoked_at = $2, revocation_reason = $3, updated_at = $2
		WHERE user_id = $1 AND revoked_at IS NULL AND exp > $2`

	tag, err := repository.pool.Exec(context, query, userID, now, reason)
	if err != nil {
		return 0, dberr.Wrap(fmt.Errorf("postgres_session_repo_revoke_all_failed: %w", err), "Session")
	}
	return tag.RowsAffected(), nil
}

// DeleteExpired permanently removes all sessions past their expiry.
// Unexpired rows, including revoked ones, are never touched here.
func (repository *PostgresSessionRepository) DeleteExpired(context context.Context, now time.Time) (int64, error) {
	const query = "DELETE FROM sessions WHERE exp <= $1"

	tag, err := repository.pool.Exec(context, query, now)
	if err != nil {
		return 0, dberr.Wrap(fmt.Errorf("postgres_session_repo_delete_expired_failed: %w", err), "Session")
	}
	return tag.RowsAffected(), nil
}
