package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/AdityaBhosale22/vidtube/internal/storage"
)

type tweetRequest struct {
	Content string `json:"content"`
}

// Tweets handles the collection: creating a post and listing a user's posts.
func (h *Handler) Tweets(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireAuthenticatedUser(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodPost:
		var req tweetRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		tweet, err := h.Store.CreateTweet(user.ID, req.Content)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		h.observeContent("tweet_created")
		writeJSON(w, http.StatusCreated, tweet)
	case http.MethodGet:
		ownerID := strings.TrimSpace(r.URL.Query().Get("userId"))
		if ownerID == "" {
			ownerID = user.ID
		}
		tweets, err := h.Store.ListUserTweets(ownerID)
		if errors.Is(err, storage.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, errors.New("user not found"))
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, errors.New("unable to load tweets"))
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"tweets": tweets})
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, errMethodNotAllowed(r.Method))
	}
}

// TweetByID handles edits and deletion of a single post by its author.
func (h *Handler) TweetByID(w http.ResponseWriter, r *http.Request) {
	tweetID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/tweets/"), "/")
	if tweetID == "" || strings.Contains(tweetID, "/") {
		writeError(w, http.StatusNotFound, errors.New("tweet not found"))
		return
	}
	user, ok := h.requireAuthenticatedUser(w, r)
	if !ok {
		return
	}
	tweet, exists := h.Store.GetTweet(tweetID)
	if !exists {
		writeError(w, http.StatusNotFound, errors.New("tweet not found"))
		return
	}
	if tweet.OwnerID != user.ID {
		writeError(w, http.StatusForbidden, errors.New("forbidden"))
		return
	}

	switch r.Method {
	case http.MethodPatch:
		var req tweetRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		updated, err := h.Store.UpdateTweet(tweetID, req.Content)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		if err := h.Store.DeleteTweet(tweetID); err != nil {
			writeError(w, http.StatusInternalServerError, errors.New("unable to delete tweet"))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.Header().Set("Allow", "PATCH, DELETE")
		writeError(w, http.StatusMethodNotAllowed, errMethodNotAllowed(r.Method))
	}
}
