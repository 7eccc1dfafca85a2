package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/AdityaBhosale22/vidtube/internal/models"
	"github.com/AdityaBhosale22/vidtube/internal/storage"
)

type publishVideoRequest struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	VideoURL     string  `json:"videoUrl"`
	ThumbnailURL string  `json:"thumbnailUrl"`
	Duration     float64 `json:"duration"`
}

type updateVideoRequest struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	ThumbnailURL *string `json:"thumbnailUrl"`
}

func paginationParams(r *http.Request) (page, limit int) {
	query := r.URL.Query()
	page, _ = strconv.Atoi(query.Get("page"))
	limit, _ = strconv.Atoi(query.Get("limit"))
	return page, limit
}

// Videos handles the collection: publishing a new video and listing a
// channel's uploads. Anonymous callers only see published videos; owners also
// see their drafts.
func (h *Handler) Videos(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		user, ok := h.requireAuthenticatedUser(w, r)
		if !ok {
			return
		}
		var req publishVideoRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		video, err := h.Store.PublishVideo(storage.PublishVideoParams{
			OwnerID:      user.ID,
			Title:        req.Title,
			Description:  req.Description,
			VideoURL:     req.VideoURL,
			ThumbnailURL: req.ThumbnailURL,
			Duration:     req.Duration,
		})
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		h.observeContent("video_published")
		writeJSON(w, http.StatusCreated, video)
	case http.MethodGet:
		ownerID := strings.TrimSpace(r.URL.Query().Get("ownerId"))
		viewer, authed := UserFromContext(r.Context())
		if ownerID == "" && authed {
			ownerID = viewer.ID
		}
		if ownerID == "" {
			writeError(w, http.StatusBadRequest, errors.New("ownerId query parameter is required"))
			return
		}
		page, limit := paginationParams(r)
		videos, err := h.Store.ListVideos(storage.ListVideosParams{
			OwnerID:       ownerID,
			Page:          page,
			Limit:         limit,
			SortBy:        r.URL.Query().Get("sortBy"),
			SortAscending: r.URL.Query().Get("order") == "asc",
			PublishedOnly: !authed || viewer.ID != ownerID,
		})
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"videos": videos})
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, errMethodNotAllowed(r.Method))
	}
}

// VideoByID routes /api/videos/{id} and its subresources.
func (h *Handler) VideoByID(w http.ResponseWriter, r *http.Request) {
	trimmed := strings.TrimPrefix(r.URL.Path, "/api/videos/")
	parts := strings.Split(strings.Trim(trimmed, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusNotFound, errors.New("video not found"))
		return
	}
	videoID := parts[0]

	if len(parts) == 1 {
		h.handleVideo(w, r, videoID)
		return
	}
	switch parts[1] {
	case "comments":
		h.handleVideoComments(w, r, videoID)
	case "toggle-publish":
		h.handleTogglePublish(w, r, videoID)
	case "view":
		h.handleVideoView(w, r, videoID)
	default:
		writeError(w, http.StatusNotFound, errors.New("video resource not found"))
	}
}

func (h *Handler) videoVisibleTo(video models.Video, r *http.Request) bool {
	if video.IsPublished {
		return true
	}
	viewer, ok := UserFromContext(r.Context())
	return ok && viewer.ID == video.OwnerID
}

func (h *Handler) requireVideoOwner(w http.ResponseWriter, r *http.Request, videoID string) (models.Video, bool) {
	user, ok := h.requireAuthenticatedUser(w, r)
	if !ok {
		return models.Video{}, false
	}
	video, exists := h.Store.GetVideo(videoID)
	if !exists {
		writeError(w, http.StatusNotFound, errors.New("video not found"))
		return models.Video{}, false
	}
	if video.OwnerID != user.ID {
		writeError(w, http.StatusForbidden, errors.New("forbidden"))
		return models.Video{}, false
	}
	return video, true
}

func (h *Handler) handleVideo(w http.ResponseWriter, r *http.Request, videoID string) {
	switch r.Method {
	case http.MethodGet:
		video, ok := h.Store.GetVideo(videoID)
		if !ok || !h.videoVisibleTo(video, r) {
			writeError(w, http.StatusNotFound, errors.New("video not found"))
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"video": video,
			"likes": h.Store.CountLikes(models.LikeTargetVideo, videoID),
		})
	case http.MethodPatch:
		if _, ok := h.requireVideoOwner(w, r, videoID); !ok {
			return
		}
		var req updateVideoRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		video, err := h.Store.UpdateVideo(videoID, storage.VideoUpdate{
			Title:        req.Title,
			Description:  req.Description,
			ThumbnailURL: req.ThumbnailURL,
		})
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, video)
	case http.MethodDelete:
		if _, ok := h.requireVideoOwner(w, r, videoID); !ok {
			return
		}
		if err := h.Store.DeleteVideo(videoID); err != nil {
			writeError(w, http.StatusInternalServerError, errors.New("unable to delete video"))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.Header().Set("Allow", "GET, PATCH, DELETE")
		writeError(w, http.StatusMethodNotAllowed, errMethodNotAllowed(r.Method))
	}
}

func (h *Handler) handleTogglePublish(w http.ResponseWriter, r *http.Request, videoID string) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, errMethodNotAllowed(r.Method))
		return
	}
	if _, ok := h.requireVideoOwner(w, r, videoID); !ok {
		return
	}
	video, err := h.Store.TogglePublishStatus(videoID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.New("unable to update publish status"))
		return
	}
	writeJSON(w, http.StatusOK, video)
}

// handleVideoView counts a playback and, for signed-in viewers, records the
// video in their watch history.
func (h *Handler) handleVideoView(w http.ResponseWriter, r *http.Request, videoID string) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, errMethodNotAllowed(r.Method))
		return
	}
	video, ok := h.Store.GetVideo(videoID)
	if !ok || !h.videoVisibleTo(video, r) {
		writeError(w, http.StatusNotFound, errors.New("video not found"))
		return
	}
	video, err := h.Store.IncrementVideoViews(videoID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.New("unable to record view"))
		return
	}
	if viewer, authed := UserFromContext(r.Context()); authed {
		if err := h.Store.RecordWatchEvent(viewer.ID, videoID); err != nil {
			writeError(w, http.StatusInternalServerError, errors.New("unable to record view"))
			return
		}
	}
	h.observeContent("video_viewed")
	writeJSON(w, http.StatusOK, map[string]int64{"views": video.Views})
}
