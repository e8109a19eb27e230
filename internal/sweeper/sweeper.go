// Copyright (c) 2026 Mercata. All rights reserved.
// Author: platform@mercata.shop

/*
Package sweeper implements the periodic cleanup of expired authentication
records.

# Architecture

The sweep is pure housekeeping. Liveness is always derived from expiry at
read time, so a sweep that is late, fails, or never runs affects storage
growth only, never an authorization decision. Each cycle deletes sessions
past their expiry and purges ledger rows whose tokens can no longer be used
anyway.
*/
package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/mercata/mercata/internal/platform/constants"
)

// SessionPurger deletes expired session rows.
type SessionPurger interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// LedgerPurger deletes revocation rows for tokens past their natural expiry.
type LedgerPurger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// Result reports what one sweep cycle removed.
type Result struct {
	SessionsRemoved    int64
	RevocationsRemoved int64
}

// Sweeper runs the cleanup cycle on a fixed interval.
type Sweeper struct {
	sessions SessionPurger
	ledger   LedgerPurger
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

/*
New constructs a [Sweeper].

Parameters:
  - sessions: SessionPurger (the PostgreSQL session store)
  - ledger: LedgerPurger (the MongoDB revocation ledger)
  - interval: time.Duration between cycles
  - logger: *slog.Logger

Returns:
  - *Sweeper: Ready to run
*/
func New(sessions SessionPurger, ledger LedgerPurger, interval time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		sessions: sessions,
		ledger:   ledger,
		interval: interval,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the sweeper clock. Intended for tests.
func (sweeper *Sweeper) WithClock(clock func() time.Time) *Sweeper {
	sweeper.now = clock
	return sweeper
}

// Run executes sweep cycles until the context is cancelled. It is meant to
// be launched once, as a goroutine, from main.
//
// The first cycle fires after one full interval, not at startup: the server
// should begin serving requests without waiting on housekeeping.
func (sweeper *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(sweeper.interval)
	defer ticker.Stop()

	sweeper.logger.Info("sweeper_started", slog.Duration("interval", sweeper.interval))

	for {
		select {
		case <-ticker.C:
			sweeper.Sweep(ctx)
		case <-ctx.Done():
			sweeper.logger.Info("sweeper_stopped")
			return
		}
	}
}

// Sweep runs one cleanup cycle and reports what it removed.
//
// Each store is swept independently: a failure in one never blocks the
// other, and failures are logged and swallowed so the loop always reaches
// the next tick. Every storage call runs under its own deadline so a hung
// store cannot stall the ticker loop; a timed-out delete retries on the
// next tick like any other failure.
func (sweeper *Sweeper) Sweep(ctx context.Context) Result {
	now := sweeper.now()
	result := Result{}

	sessionCtx, cancelSessions := context.WithTimeout(ctx, constants.StorageOpTimeout)
	sessionsRemoved, err := sweeper.sessions.DeleteExpired(sessionCtx, now)
	cancelSessions()
	if err != nil {
		sweeper.logger.Error("sweep_sessions_failed", slog.Any("error", err))
	} else {
		result.SessionsRemoved = sessionsRemoved
	}

	ledgerCtx, cancelLedger := context.WithTimeout(ctx, constants.StorageOpTimeout)
	revocationsRemoved, err := sweeper.ledger.PurgeExpired(ledgerCtx, now)
	cancelLedger()
	if err != nil {
		sweeper.logger.Error("sweep_ledger_failed", slog.Any("error", err))
	} else {
		result.RevocationsRemoved = revocationsRemoved
	}

	if result.SessionsRemoved > 0 || result.RevocationsRemoved > 0 {
		sweeper.logger.Info("sweep_finished",
			slog.Int64("sessions_removed", result.SessionsRemoved),
			slog.Int64("revocations_removed", result.RevocationsRemoved),
		)
	}

	return result
}
