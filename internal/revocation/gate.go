// Copyright (c) 2026 Mercata. All rights reserved.
// Author: platform@mercata.shop

package revocation

import (
	stdctx "context"
	"log/slog"

	"github.com/mercata/mercata/internal/platform/apperr"
	"github.com/mercata/mercata/internal/platform/constants"
)

// # Authentication Gate

// Checker is the single read the gate needs from the ledger.
type Checker interface {
	IsRevoked(context stdctx.Context, jti string) (bool, error)
}

// Gate is the per-request revocation check. It fails closed: a revoked jti,
// a missing jti, a ledger error, and a timed-out lookup all yield the same
// generic unauthorized error, so a caller cannot distinguish "revoked" from
// "could not confirm".
type Gate struct {
	checker Checker
	logger  *slog.Logger
}

/*
NewGate creates the authentication gate over the given revocation checker.

Parameters:
  - checker: Checker
  - logger: *slog.Logger

Returns:
  - *Gate: Ready-to-use gate
*/
func NewGate(checker Checker, logger *slog.Logger) *Gate {
	return &Gate{checker: checker, logger: logger}
}

/*
Check validates that the token identified by jti has not been revoked.

The ledger lookup runs under its own deadline so a slow store cannot stall
the request beyond the revocation budget.

Parameters:
  - context: context.Context
  - jti: string (the token's unique identifier claim)

Returns:
  - error: nil when the token is confirmed live, otherwise a generic
    unauthorized error
*/
func (gate *Gate) Check(context stdctx.Context, jti string) error {
	if jti == "" {
		return apperr.Unauthorized(constants.MsgInvalidSession)
	}

	checkContext, cancel := stdctx.WithTimeout(context, constants.RevocationCheckTimeout)
	defer cancel()

	revoked, err := gate.checker.IsRevoked(checkContext, jti)
	if err != nil {
		gate.logger.Error("revocation check failed, rejecting session", "jti", jti, "error", err)
		return apperr.Unauthorized(constants.MsgInvalidSession)
	}
	if revoked {
		return apperr.Unauthorized(constants.MsgInvalidSession)
	}
	return nil
}
