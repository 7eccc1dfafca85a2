package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/AdityaBhosale22/vidtube/internal/models"
)

type contextKey string

const userContextKey contextKey = "authenticatedUser"

// ContextWithUser stores the authenticated user in the provided context.
func ContextWithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext retrieves the authenticated user from context if present.
func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userContextKey).(models.User)
	return user, ok
}

// AuthenticateRequest validates the access token on the request and returns
// the user. Codec failures of any kind collapse to a generic error so callers
// cannot distinguish a forged token from an expired one.
func (h *Handler) AuthenticateRequest(r *http.Request) (models.User, error) {
	token := ExtractToken(r)
	if token == "" {
		return models.User{}, fmt.Errorf("missing access token")
	}
	userID, err := h.Tokens.Verify(token)
	if err != nil {
		h.debugLog(r.Context(), "access token rejected", "error", err)
		return models.User{}, fmt.Errorf("invalid or expired access token")
	}
	user, exists := h.Store.GetUser(userID)
	if !exists {
		return models.User{}, fmt.Errorf("account not found")
	}
	return user, nil
}

func (h *Handler) requireAuthenticatedUser(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, fmt.Errorf("authentication required"))
		return models.User{}, false
	}
	return user, true
}

// ExtractToken pulls the access token from the access cookie or the
// Authorization header, in that order. The cookie is the session channel the
// server itself set, so it wins when both are present.
func ExtractToken(r *http.Request) string {
	if cookie, err := r.Cookie(accessCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return ""
}

// The refresh cookie takes precedence over a token carried in the request
// body, mirroring the access token resolution above.
func extractRefreshToken(r *http.Request, bodyToken string) string {
	if cookie, err := r.Cookie(refreshCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return strings.TrimSpace(bodyToken)
}
