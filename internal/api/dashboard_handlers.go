package api

import (
	"errors"
	"net/http"
	"strings"
)

// Dashboard serves the channel owner's private overview: aggregate stats and
// the full upload list including drafts.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, errMethodNotAllowed(r.Method))
		return
	}
	user, ok := h.requireAuthenticatedUser(w, r)
	if !ok {
		return
	}

	trimmed := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/dashboard"), "/")
	switch trimmed {
	case "stats":
		stats, err := h.Store.ChannelStats(user.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, errors.New("unable to load channel stats"))
			return
		}
		writeJSON(w, http.StatusOK, stats)
	case "videos":
		videos, err := h.Store.ChannelVideos(user.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, errors.New("unable to load channel videos"))
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"videos": videos})
	default:
		writeError(w, http.StatusNotFound, errors.New("dashboard resource not found"))
	}
}
