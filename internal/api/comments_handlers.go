package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/AdityaBhosale22/vidtube/internal/storage"
)

type commentRequest struct {
	Content string `json:"content"`
}

func (h *Handler) handleVideoComments(w http.ResponseWriter, r *http.Request, videoID string) {
	switch r.Method {
	case http.MethodGet:
		page, limit := paginationParams(r)
		comments, err := h.Store.ListComments(videoID, page, limit)
		if errors.Is(err, storage.ErrVideoNotFound) {
			writeError(w, http.StatusNotFound, errors.New("video not found"))
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, errors.New("unable to load comments"))
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"comments": comments})
	case http.MethodPost:
		user, ok := h.requireAuthenticatedUser(w, r)
		if !ok {
			return
		}
		var req commentRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		comment, err := h.Store.AddComment(videoID, user.ID, req.Content)
		if errors.Is(err, storage.ErrVideoNotFound) {
			writeError(w, http.StatusNotFound, errors.New("video not found"))
			return
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		h.observeContent("comment_added")
		writeJSON(w, http.StatusCreated, comment)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, errMethodNotAllowed(r.Method))
	}
}

// CommentByID handles edits and deletion of a single comment. Only the author
// may modify it.
func (h *Handler) CommentByID(w http.ResponseWriter, r *http.Request) {
	commentID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/comments/"), "/")
	if commentID == "" || strings.Contains(commentID, "/") {
		writeError(w, http.StatusNotFound, errors.New("comment not found"))
		return
	}
	user, ok := h.requireAuthenticatedUser(w, r)
	if !ok {
		return
	}
	comment, exists := h.Store.GetComment(commentID)
	if !exists {
		writeError(w, http.StatusNotFound, errors.New("comment not found"))
		return
	}
	if comment.OwnerID != user.ID {
		writeError(w, http.StatusForbidden, errors.New("forbidden"))
		return
	}

	switch r.Method {
	case http.MethodPatch:
		var req commentRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		updated, err := h.Store.UpdateComment(commentID, req.Content)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		if err := h.Store.DeleteComment(commentID); err != nil {
			writeError(w, http.StatusInternalServerError, errors.New("unable to delete comment"))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.Header().Set("Allow", "PATCH, DELETE")
		writeError(w, http.StatusMethodNotAllowed, errMethodNotAllowed(r.Method))
	}
}
