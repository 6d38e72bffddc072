package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/shist-app/shist/internal/shist/service"
	"github.com/shist-app/shist/pkg/httpx"
	"github.com/shist-app/shist/pkg/invitex"
	"github.com/shist-app/shist/pkg/slogx"
)

// invitationTokenDesc is the single outward message for every token
// verification failure. The distinct internal reasons (malformed, bad
// signature, expired) stay in the logs; leaking them to callers would tell
// an attacker which forgeries got furthest.
const invitationTokenDesc = "invitation link invalid or expired"

// writeServiceError maps service-layer sentinels onto HTTP status codes.
// Anything unrecognized is a 500 and gets logged.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, service.ErrInvitationNotFound),
		errors.Is(err, service.ErrConnectionNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", "resource not found")

	case errors.Is(err, service.ErrForbidden):
		httpx.WriteError(w, http.StatusForbidden, "forbidden", "insufficient permissions")

	case errors.Is(err, invitex.ErrInvalidToken),
		errors.Is(err, invitex.ErrInvalidSignature),
		errors.Is(err, invitex.ErrTokenExpired):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_invitation", invitationTokenDesc)

	case errors.Is(err, service.ErrInvitationNotPending),
		errors.Is(err, service.ErrAlreadyMember),
		errors.Is(err, service.ErrAlreadyConnected):
		httpx.WriteError(w, http.StatusConflict, "conflict", err.Error())

	case errors.Is(err, service.ErrSelfInvitation),
		errors.Is(err, service.ErrInvalidInvitation),
		errors.Is(err, service.ErrInvalidInvitationRole),
		errors.Is(err, service.ErrInvalidListName),
		errors.Is(err, service.ErrInvalidItemName),
		errors.Is(err, service.ErrInvalidRegistration):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())

	case errors.Is(err, service.ErrUsernameTaken):
		httpx.WriteError(w, http.StatusConflict, "username_taken", err.Error())

	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "invalid username or password")

	default:
		slogx.FromContext(r.Context()).Error("unhandled service error", slog.Any("error", err))
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "something went wrong")
	}
}

// requireUserID pulls the authenticated user out of the request context.
// The authn middleware guarantees it for secured routes; an empty value
// means a route was wired without the middleware.
func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := httpx.UserIDFromContext(r.Context())
	if userID == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return "", false
	}
	return userID, true
}
