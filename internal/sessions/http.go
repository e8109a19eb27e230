// Copyright (c) 2026 Mercata. All rights reserved.
// Author: platform@mercata.shop

package sessions

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mercata/mercata/internal/platform/constants"
	"github.com/mercata/mercata/internal/platform/middleware"
	requestutil "github.com/mercata/mercata/internal/platform/request"
	"github.com/mercata/mercata/internal/platform/respond"
	"github.com/mercata/mercata/internal/platform/sec"
	"github.com/mercata/mercata/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements session and revocation HTTP endpoints.
//
// # Scope
//
// Token ISSUANCE lives in the external identity service. This handler owns
// what happens afterwards: establishing the tracking record, ending sessions,
// and administratively killing tokens.
type Handler struct {
	sessionService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{sessionService: service}
}

// Routes returns a [chi.Router] configured with session-specific routes.
//
// # Endpoints
//   - POST /logout                     : Ends the caller's current session.
//   - POST /logout-all                 : Ends every session of the caller.
//   - POST /sessions                   : (support+) Tracks a freshly minted token.
//   - POST /revocations                : (support+) Kills a specific token by jti.
//   - GET  /revocations/{jti}          : (support+) Audit lookup of a ledger row.
//   - POST /users/{userID}/revoke-all  : (support+) Kills every session of an account.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Self-service endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/logout", handler.logout)
		r.Post("/logout-all", handler.logoutAll)
	})

	// Privileged endpoints, used by the identity service and the
	// account-compromise workflow.
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(sec.RoleSupport))
		r.Post("/sessions", handler.establish)
		r.Post("/revocations", handler.revokeToken)
		r.Get("/revocations/{jti}", handler.getRevocation)
		r.Post("/users/{userID}/revoke-all", handler.revokeAllForUser)
	})

	return router
}

// # Request Payloads

type establishRequest struct {
	UserID string `json:"user_id"`
	JTI    string `json:"jti"`
}

type revokeTokenRequest struct {
	JTI       string    `json:"jti"`
	ExpiresAt time.Time `json:"expires_at"`
	Reason    string    `json:"reason"`
}

type revokeAllRequest struct {
	Reason string `json:"reason"`
}

// # Endpoints

/*
establish tracks a session for a token the identity service just minted.

POST /api/v1/auth/sessions

Description: Creates the server-side session record and returns the raw
refresh token exactly once. The caller is responsible for delivering it to
the end user's client; Mercata keeps only the digest.

Request:
  - Body: establishRequest (UserID, JTI)

Response:
  - 201: Session plus the one-time refresh token
  - 400: Validation failure
  - 409: Digest collision (retry with a new call)
*/
func (handler *Handler) establish(writer http.ResponseWriter, request *http.Request) {
	var input establishRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required("user_id", input.UserID).UUID("user_id", input.UserID)
	validator.Required("jti", input.JTI)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	established, err := handler.sessionService.Establish(request.Context(), EstablishInput{
		UserID: input.UserID,
		JTI:    input.JTI,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, map[string]any{
		"session":       established.Session,
		"refresh_token": established.RefreshToken,
	})
}

/*
logout terminates the caller's current session.

POST /api/v1/auth/logout

Description: Invalidates the refresh token (if present) and clears the
security cookie from the client. Always succeeds, even when the session is
already gone.

Response:
  - 204: No Content: Session terminated
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	cookie, err := request.Cookie(constants.RefreshTokenCookieName)

	if err == nil && cookie != nil && cookie.Value != "" {
		if err := handler.sessionService.Logout(request.Context(), cookie.Value); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	clearRefreshCookie(writer)
	respond.NoContent(writer)
}

/*
logoutAll terminates every session belonging to the caller.

POST /api/v1/auth/logout-all

Description: The "log me out everywhere" operation. Revokes all live
sessions of the authenticated account and clears the local cookie.

Response:
  - 200: Count of sessions ended
  - 401: Not authenticated
*/
func (handler *Handler) logoutAll(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	count, err := handler.sessionService.RevokeAllForUser(request.Context(), claims.UserID, "logout all devices")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	clearRefreshCookie(writer)
	respond.OK(writer, map[string]any{"sessions_revoked": count})
}

/*
revokeToken kills one specific token by jti, everywhere, immediately.

POST /api/v1/auth/revocations

Description: Writes the jti to the revocation ledger (the gate starts
rejecting it on the next request) and marks the matching session for audit.
Re-revoking an already revoked jti is a success, with the latest reason and
expiry winning in the ledger.

Request:
  - Body: revokeTokenRequest (JTI, ExpiresAt, Reason)

Response:
  - 204: Token revoked
  - 400: Validation failure
*/
func (handler *Handler) revokeToken(writer http.ResponseWriter, request *http.Request) {
	var input revokeTokenRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required("jti", input.JTI)
	validator.RequiredTime("expires_at", input.ExpiresAt)
	validator.MaxLen("reason", input.Reason, 256)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.sessionService.RevokeToken(request.Context(), input.JTI, input.ExpiresAt, input.Reason); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
getRevocation returns the ledger row for a jti.

GET /api/v1/auth/revocations/{jti}

Description: Audit lookup used by support staff to answer "when was this
token killed, and why". A 404 means the jti was never revoked, or its row
has already been purged past the token's expiry.

Response:
  - 200: The revocation record
  - 404: No ledger row for this jti
*/
func (handler *Handler) getRevocation(writer http.ResponseWriter, request *http.Request) {
	jti := requestutil.Param(request, "jti")
	if jti == "" {
		respond.Error(writer, request, validate.RequiredError("jti", "is required"))
		return
	}

	row, err := handler.sessionService.GetRevocation(request.Context(), jti)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, row)
}

/*
revokeAllForUser kills every live session of one account.

POST /api/v1/auth/users/{userID}/revoke-all

Description: The compromise-response operation used by support staff when an
account is taken over.

Request:
  - Path: userID (UUID of the target account)
  - Body: revokeAllRequest (Reason)

Response:
  - 200: Count of sessions revoked
  - 400: Validation failure
*/
func (handler *Handler) revokeAllForUser(writer http.ResponseWriter, request *http.Request) {
	userID := requestutil.Param(request, "userID")

	var input revokeAllRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required("user_id", userID).UUID("user_id", userID)
	// Mass revocation lands in the audit trail; a one-letter reason is useless there.
	validator.MinLen("reason", input.Reason, 3).MaxLen("reason", input.Reason, 256)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	count, err := handler.sessionService.RevokeAllForUser(request.Context(), userID, input.Reason)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{"sessions_revoked": count})
}

// clearRefreshCookie expires the refresh token cookie on the client.
func clearRefreshCookie(writer http.ResponseWriter) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    "",
		Path:     constants.RefreshTokenCookiePath,
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}
