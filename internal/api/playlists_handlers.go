package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/AdityaBhosale22/vidtube/internal/models"
	"github.com/AdityaBhosale22/vidtube/internal/storage"
)

type createPlaylistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type updatePlaylistRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// Playlists handles the collection: creating a playlist and listing the
// caller's playlists.
func (h *Handler) Playlists(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireAuthenticatedUser(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodPost:
		var req createPlaylistRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		playlist, err := h.Store.CreatePlaylist(user.ID, req.Name, req.Description)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusCreated, playlist)
	case http.MethodGet:
		playlists, err := h.Store.ListUserPlaylists(user.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, errors.New("unable to load playlists"))
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"playlists": playlists})
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, errMethodNotAllowed(r.Method))
	}
}

func (h *Handler) requirePlaylistOwner(w http.ResponseWriter, r *http.Request, playlistID string) (models.Playlist, bool) {
	user, ok := h.requireAuthenticatedUser(w, r)
	if !ok {
		return models.Playlist{}, false
	}
	playlist, exists := h.Store.GetPlaylist(playlistID)
	if !exists {
		writeError(w, http.StatusNotFound, errors.New("playlist not found"))
		return models.Playlist{}, false
	}
	if playlist.OwnerID != user.ID {
		writeError(w, http.StatusForbidden, errors.New("forbidden"))
		return models.Playlist{}, false
	}
	return playlist, true
}

// PlaylistByID routes /api/playlists/{id} and the nested video membership
// endpoints.
func (h *Handler) PlaylistByID(w http.ResponseWriter, r *http.Request) {
	trimmed := strings.TrimPrefix(r.URL.Path, "/api/playlists/")
	parts := strings.Split(strings.Trim(trimmed, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusNotFound, errors.New("playlist not found"))
		return
	}
	playlistID := parts[0]

	switch {
	case len(parts) == 1:
		h.handlePlaylist(w, r, playlistID)
	case len(parts) == 3 && parts[1] == "videos":
		h.handlePlaylistVideo(w, r, playlistID, parts[2])
	default:
		writeError(w, http.StatusNotFound, errors.New("playlist resource not found"))
	}
}

func (h *Handler) handlePlaylist(w http.ResponseWriter, r *http.Request, playlistID string) {
	switch r.Method {
	case http.MethodGet:
		playlist, ok := h.requirePlaylistOwner(w, r, playlistID)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, playlist)
	case http.MethodPatch:
		if _, ok := h.requirePlaylistOwner(w, r, playlistID); !ok {
			return
		}
		var req updatePlaylistRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		playlist, err := h.Store.UpdatePlaylist(playlistID, storage.PlaylistUpdate{
			Name:        req.Name,
			Description: req.Description,
		})
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, playlist)
	case http.MethodDelete:
		if _, ok := h.requirePlaylistOwner(w, r, playlistID); !ok {
			return
		}
		if err := h.Store.DeletePlaylist(playlistID); err != nil {
			writeError(w, http.StatusInternalServerError, errors.New("unable to delete playlist"))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.Header().Set("Allow", "GET, PATCH, DELETE")
		writeError(w, http.StatusMethodNotAllowed, errMethodNotAllowed(r.Method))
	}
}

func (h *Handler) handlePlaylistVideo(w http.ResponseWriter, r *http.Request, playlistID, videoID string) {
	if _, ok := h.requirePlaylistOwner(w, r, playlistID); !ok {
		return
	}
	switch r.Method {
	case http.MethodPost:
		playlist, err := h.Store.AddVideoToPlaylist(playlistID, videoID)
		if errors.Is(err, storage.ErrVideoNotFound) {
			writeError(w, http.StatusNotFound, errors.New("video not found"))
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, errors.New("unable to update playlist"))
			return
		}
		writeJSON(w, http.StatusOK, playlist)
	case http.MethodDelete:
		playlist, err := h.Store.RemoveVideoFromPlaylist(playlistID, videoID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, errors.New("unable to update playlist"))
			return
		}
		writeJSON(w, http.StatusOK, playlist)
	default:
		w.Header().Set("Allow", "POST, DELETE")
		writeError(w, http.StatusMethodNotAllowed, errMethodNotAllowed(r.Method))
	}
}
