package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/AdityaBhosale22/vidtube/internal/storage"
)

type updateAccountRequest struct {
	FullName  *string `json:"fullName"`
	Email     *string `json:"email"`
	AvatarURL *string `json:"avatarUrl"`
	CoverURL  *string `json:"coverUrl"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// Account serves the authenticated user's own record.
func (h *Handler) Account(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireAuthenticatedUser(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]interface{}{"user": publicUser(user)})
	case http.MethodPatch:
		var req updateAccountRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		updated, err := h.Store.UpdateUser(user.ID, storage.UserUpdate{
			FullName:  req.FullName,
			Email:     req.Email,
			AvatarURL: req.AvatarURL,
			CoverURL:  req.CoverURL,
		})
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"user": publicUser(updated)})
	default:
		w.Header().Set("Allow", "GET, PATCH")
		writeError(w, http.StatusMethodNotAllowed, errMethodNotAllowed(r.Method))
	}
}

// ChangePassword verifies the current password before replacing it. The
// refresh token is revoked so other devices must sign in again.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, errMethodNotAllowed(r.Method))
		return
	}
	user, ok := h.requireAuthenticatedUser(w, r)
	if !ok {
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(req.NewPassword) < 8 {
		writeError(w, http.StatusBadRequest, fmt.Errorf("password must be at least 8 characters"))
		return
	}
	if _, err := h.Store.AuthenticateUser(user.Username, req.CurrentPassword); err != nil {
		writeError(w, http.StatusUnauthorized, errors.New("current password is incorrect"))
		return
	}
	if err := h.Store.SetUserPassword(user.ID, req.NewPassword); err != nil {
		writeError(w, http.StatusInternalServerError, errors.New("unable to update password"))
		return
	}
	if err := h.Tokens.Revoke(r.Context(), user.ID); err != nil {
		writeError(w, http.StatusInternalServerError, errors.New("unable to end other sessions"))
		return
	}
	h.observeAuth("revoke")
	w.WriteHeader(http.StatusNoContent)
}

// History serves the authenticated user's watch history.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, errMethodNotAllowed(r.Method))
		return
	}
	user, ok := h.requireAuthenticatedUser(w, r)
	if !ok {
		return
	}
	videos, err := h.Store.WatchHistory(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.New("unable to load watch history"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"videos": videos})
}

// ChannelByUsername serves public channel pages: the profile itself and the
// channel's published videos.
func (h *Handler) ChannelByUsername(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, errMethodNotAllowed(r.Method))
		return
	}

	trimmed := strings.TrimPrefix(r.URL.Path, "/api/channels/")
	parts := strings.Split(strings.Trim(trimmed, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusNotFound, errors.New("channel not found"))
		return
	}
	username := parts[0]

	viewerID := ""
	if viewer, ok := UserFromContext(r.Context()); ok {
		viewerID = viewer.ID
	}

	switch {
	case len(parts) == 1:
		profile, err := h.Store.ChannelProfile(username, viewerID)
		if errors.Is(err, storage.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, errors.New("channel not found"))
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, errors.New("unable to load channel"))
			return
		}
		writeJSON(w, http.StatusOK, profile)
	case len(parts) == 2 && parts[1] == "videos":
		owner, ok := h.Store.FindUserByUsername(username)
		if !ok {
			writeError(w, http.StatusNotFound, errors.New("channel not found"))
			return
		}
		page, limit := paginationParams(r)
		videos, err := h.Store.ListVideos(storage.ListVideosParams{
			OwnerID:       owner.ID,
			Page:          page,
			Limit:         limit,
			SortBy:        r.URL.Query().Get("sortBy"),
			SortAscending: r.URL.Query().Get("order") == "asc",
			PublishedOnly: true,
		})
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"videos": videos})
	default:
		writeError(w, http.StatusNotFound, errors.New("channel resource not found"))
	}
}

// Subscriptions lists the channels the caller follows (GET) and toggles a
// subscription when a channel ID trails the path (POST).
func (h *Handler) Subscriptions(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireAuthenticatedUser(w, r)
	if !ok {
		return
	}

	trimmed := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/subscriptions"), "/")
	switch {
	case trimmed == "":
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", "GET")
			writeError(w, http.StatusMethodNotAllowed, errMethodNotAllowed(r.Method))
			return
		}
		channels, err := h.Store.ListSubscribedChannels(user.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, errors.New("unable to load subscriptions"))
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"channels": channels})
	default:
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", "POST")
			writeError(w, http.StatusMethodNotAllowed, errMethodNotAllowed(r.Method))
			return
		}
		subscribed, err := h.Store.ToggleSubscription(user.ID, trimmed)
		if errors.Is(err, storage.ErrSelfSubscription) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if errors.Is(err, storage.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, errors.New("channel not found"))
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, errors.New("unable to update subscription"))
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"subscribed": subscribed})
	}
}

// Subscribers lists the accounts following the caller's channel.
func (h *Handler) Subscribers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, errMethodNotAllowed(r.Method))
		return
	}
	user, ok := h.requireAuthenticatedUser(w, r)
	if !ok {
		return
	}
	subscribers, err := h.Store.ListChannelSubscribers(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.New("unable to load subscribers"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"subscribers": subscribers})
}
