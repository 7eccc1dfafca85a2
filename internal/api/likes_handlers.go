package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/AdityaBhosale22/vidtube/internal/models"
	"github.com/AdityaBhosale22/vidtube/internal/storage"
)

var likeTargetsByPath = map[string]models.LikeTarget{
	"videos":   models.LikeTargetVideo,
	"comments": models.LikeTargetComment,
	"tweets":   models.LikeTargetTweet,
}

// Likes routes /api/likes. GET /api/likes/videos lists the caller's liked
// videos; POST /api/likes/{videos|comments|tweets}/{id} toggles a like.
func (h *Handler) Likes(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireAuthenticatedUser(w, r)
	if !ok {
		return
	}

	trimmed := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/likes"), "/")
	parts := strings.Split(trimmed, "/")

	if r.Method == http.MethodGet && trimmed == "videos" {
		videos, err := h.Store.ListLikedVideos(user.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, errors.New("unable to load liked videos"))
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"videos": videos})
		return
	}

	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		writeError(w, http.StatusNotFound, errors.New("like target not found"))
		return
	}
	target, ok := likeTargetsByPath[parts[0]]
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("like target not found"))
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, errMethodNotAllowed(r.Method))
		return
	}

	liked, err := h.Store.ToggleLike(user.ID, target, parts[1])
	switch {
	case errors.Is(err, storage.ErrVideoNotFound),
		errors.Is(err, storage.ErrCommentNotFound),
		errors.Is(err, storage.ErrTweetNotFound):
		writeError(w, http.StatusNotFound, err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, errors.New("unable to update like"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"liked": liked,
		"likes": h.Store.CountLikes(target, parts[1]),
	})
}
