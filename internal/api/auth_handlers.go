package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/AdityaBhosale22/vidtube/internal/auth"
	"github.com/AdityaBhosale22/vidtube/internal/models"
	"github.com/AdityaBhosale22/vidtube/internal/storage"
)

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FullName  string `json:"fullName"`
	Password  string `json:"password"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	CoverURL  string `json:"coverUrl,omitempty"`
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken,omitempty"`
}

type authResponse struct {
	User             models.User `json:"user"`
	AccessToken      string      `json:"accessToken"`
	RefreshToken     string      `json:"refreshToken"`
	AccessExpiresAt  time.Time   `json:"accessExpiresAt"`
	RefreshExpiresAt time.Time   `json:"refreshExpiresAt"`
}

func publicUser(user models.User) models.User {
	user.PasswordHash = ""
	return user
}

func newAuthResponse(user models.User, pair auth.TokenPair) authResponse {
	return authResponse{
		User:             publicUser(user),
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		AccessExpiresAt:  pair.AccessExpiresAt.UTC(),
		RefreshExpiresAt: pair.RefreshExpiresAt.UTC(),
	}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, errMethodNotAllowed(r.Method))
		return
	}

	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, fmt.Errorf("password must be at least 8 characters"))
		return
	}

	user, err := h.Store.CreateUser(storage.CreateUserParams{
		Username:  req.Username,
		Email:     req.Email,
		FullName:  req.FullName,
		Password:  req.Password,
		AvatarURL: req.AvatarURL,
		CoverURL:  req.CoverURL,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	pair, err := h.Tokens.Issue(r.Context(), user.ID)
	if err != nil {
		slog.Error("issue tokens after register failed", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, errors.New("unable to establish session"))
		return
	}

	h.observeAuth("register")
	h.setSessionCookies(w, r, pair)
	writeJSON(w, http.StatusCreated, newAuthResponse(user, pair))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, errMethodNotAllowed(r.Method))
		return
	}

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	user, err := h.Store.AuthenticateUser(req.Identifier, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, fmt.Errorf("invalid credentials"))
		return
	}

	pair, err := h.Tokens.Issue(r.Context(), user.ID)
	if err != nil {
		slog.Error("issue tokens after login failed", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, errors.New("unable to establish session"))
		return
	}

	h.observeAuth("login")
	h.setSessionCookies(w, r, pair)
	writeJSON(w, http.StatusOK, newAuthResponse(user, pair))
}

// Refresh exchanges a valid refresh token for a fresh pair. The token may
// arrive in the request body or the refresh cookie. A mismatch against the
// stored token invalidates the presented one without touching the live
// session.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, errMethodNotAllowed(r.Method))
		return
	}

	var req refreshRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	token := extractRefreshToken(r, req.RefreshToken)
	if token == "" {
		writeError(w, http.StatusUnauthorized, errors.New("refresh token is required"))
		return
	}

	pair, err := h.Tokens.Renew(r.Context(), token)
	switch {
	case errors.Is(err, auth.ErrTokenMismatch):
		h.observeAuth("renew_conflict")
		writeError(w, http.StatusUnauthorized, errors.New("refresh token is no longer valid"))
		return
	case errors.Is(err, auth.ErrInvalidRefreshToken), errors.Is(err, auth.ErrIdentityNotFound):
		writeError(w, http.StatusUnauthorized, errors.New("refresh token is no longer valid"))
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, errors.New("unable to renew session"))
		return
	}

	userID, err := h.Tokens.Verify(pair.AccessToken)
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.New("unable to renew session"))
		return
	}
	user, ok := h.Store.GetUser(userID)
	if !ok {
		writeError(w, http.StatusUnauthorized, errors.New("account not found"))
		return
	}

	h.observeAuth("renew")
	h.setSessionCookies(w, r, pair)
	writeJSON(w, http.StatusOK, newAuthResponse(user, pair))
}

// Logout revokes the caller's refresh token and clears both cookies. It is
// idempotent: a request without a valid access token still clears cookies.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, errMethodNotAllowed(r.Method))
		return
	}

	if user, err := h.AuthenticateRequest(r); err == nil {
		if err := h.Tokens.Revoke(r.Context(), user.ID); err != nil {
			slog.Error("revoke refresh token failed", "user_id", user.ID, "error", err)
			writeError(w, http.StatusInternalServerError, errors.New("unable to end session"))
			return
		}
		h.observeAuth("revoke")
	}

	h.ClearSessionCookies(w, r)
	w.WriteHeader(http.StatusNoContent)
}

// Session reports the currently authenticated account.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, errMethodNotAllowed(r.Method))
		return
	}
	user, err := h.AuthenticateRequest(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": publicUser(user)})
}
