package storage

import (
	"errors"
	"sort"
	"strings"

	"github.com/AdityaBhosale22/vidtube/internal/models"
)

// PublishVideoParams captures the attributes of a newly published video. The
// media itself lives in external storage; only URLs are recorded here.
type PublishVideoParams struct {
	OwnerID      string
	Title        string
	Description  string
	VideoURL     string
	ThumbnailURL string
	Duration     float64
}

// VideoUpdate represents the fields that can be modified on a video.
type VideoUpdate struct {
	Title        *string
	Description  *string
	ThumbnailURL *string
}

// ListVideosParams controls pagination and ordering for video listings.
type ListVideosParams struct {
	OwnerID       string
	Page          int
	Limit         int
	SortBy        string // createdAt | views | duration | title
	SortAscending bool
	PublishedOnly bool
}

// PublishVideo records a new video for the owner.
func (s *Storage) PublishVideo(params PublishVideoParams) (models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.Users[params.OwnerID]; !ok {
		return models.Video{}, ErrUserNotFound
	}
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return models.Video{}, errors.New("title is required")
	}
	if strings.TrimSpace(params.Description) == "" {
		return models.Video{}, errors.New("description is required")
	}
	if strings.TrimSpace(params.VideoURL) == "" {
		return models.Video{}, errors.New("videoUrl is required")
	}
	if strings.TrimSpace(params.ThumbnailURL) == "" {
		return models.Video{}, errors.New("thumbnailUrl is required")
	}
	if params.Duration < 0 {
		return models.Video{}, errors.New("duration cannot be negative")
	}

	now := nowUTC()
	video := models.Video{
		ID:           s.generateID(),
		OwnerID:      params.OwnerID,
		Title:        title,
		Description:  strings.TrimSpace(params.Description),
		VideoURL:     strings.TrimSpace(params.VideoURL),
		ThumbnailURL: strings.TrimSpace(params.ThumbnailURL),
		Duration:     params.Duration,
		IsPublished:  true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.data.Videos[video.ID] = video
	if err := s.persist(); err != nil {
		delete(s.data.Videos, video.ID)
		return models.Video{}, err
	}
	return video, nil
}

// GetVideo looks up a video by ID.
func (s *Storage) GetVideo(id string) (models.Video, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	video, ok := s.data.Videos[id]
	return video, ok
}

// ListVideos returns a page of videos, newest first unless overridden.
func (s *Storage) ListVideos(params ListVideosParams) ([]models.Video, error) {
	if params.OwnerID == "" {
		return nil, errors.New("ownerId is required")
	}
	s.mu.RLock()
	videos := make([]models.Video, 0)
	for _, video := range s.data.Videos {
		if video.OwnerID != params.OwnerID {
			continue
		}
		if params.PublishedOnly && !video.IsPublished {
			continue
		}
		videos = append(videos, video)
	}
	s.mu.RUnlock()

	less := func(i, j int) bool {
		switch params.SortBy {
		case "views":
			return videos[i].Views < videos[j].Views
		case "duration":
			return videos[i].Duration < videos[j].Duration
		case "title":
			return videos[i].Title < videos[j].Title
		default:
			return videos[i].CreatedAt.Before(videos[j].CreatedAt)
		}
	}
	if params.SortAscending {
		sort.Slice(videos, less)
	} else {
		sort.Slice(videos, func(i, j int) bool { return less(j, i) })
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	limit := params.Limit
	if limit < 1 {
		limit = 10
	}
	start := (page - 1) * limit
	if start >= len(videos) {
		return []models.Video{}, nil
	}
	end := start + limit
	if end > len(videos) {
		end = len(videos)
	}
	return videos[start:end], nil
}

// UpdateVideo applies partial updates to a video.
func (s *Storage) UpdateVideo(id string, update VideoUpdate) (models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	video, ok := s.data.Videos[id]
	if !ok {
		return models.Video{}, ErrVideoNotFound
	}
	previous := video
	if update.Title != nil {
		trimmed := strings.TrimSpace(*update.Title)
		if trimmed == "" {
			return models.Video{}, errors.New("title cannot be empty")
		}
		video.Title = trimmed
	}
	if update.Description != nil {
		trimmed := strings.TrimSpace(*update.Description)
		if trimmed == "" {
			return models.Video{}, errors.New("description cannot be empty")
		}
		video.Description = trimmed
	}
	if update.ThumbnailURL != nil {
		trimmed := strings.TrimSpace(*update.ThumbnailURL)
		if trimmed == "" {
			return models.Video{}, errors.New("thumbnailUrl cannot be empty")
		}
		video.ThumbnailURL = trimmed
	}
	video.UpdatedAt = nowUTC()
	s.data.Videos[id] = video
	if err := s.persist(); err != nil {
		s.data.Videos[id] = previous
		return models.Video{}, err
	}
	return video, nil
}

// TogglePublishStatus flips a video between published and unpublished.
func (s *Storage) TogglePublishStatus(id string) (models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	video, ok := s.data.Videos[id]
	if !ok {
		return models.Video{}, ErrVideoNotFound
	}
	previous := video
	video.IsPublished = !video.IsPublished
	video.UpdatedAt = nowUTC()
	s.data.Videos[id] = video
	if err := s.persist(); err != nil {
		s.data.Videos[id] = previous
		return models.Video{}, err
	}
	return video, nil
}

// IncrementVideoViews bumps the view counter.
func (s *Storage) IncrementVideoViews(id string) (models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	video, ok := s.data.Videos[id]
	if !ok {
		return models.Video{}, ErrVideoNotFound
	}
	previous := video
	video.Views++
	s.data.Videos[id] = video
	if err := s.persist(); err != nil {
		s.data.Videos[id] = previous
		return models.Video{}, err
	}
	return video, nil
}

// DeleteVideo removes a video along with its comments, likes, and playlist
// references.
func (s *Storage) DeleteVideo(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.Videos[id]; !ok {
		return ErrVideoNotFound
	}
	snapshot := cloneDataset(s.data)
	delete(s.data.Videos, id)
	for commentID, comment := range s.data.Comments {
		if comment.VideoID == id {
			delete(s.data.Comments, commentID)
		}
	}
	for likeID, like := range s.data.Likes {
		if like.Target == models.LikeTargetVideo && like.TargetID == id {
			delete(s.data.Likes, likeID)
		}
	}
	for playlistID, playlist := range s.data.Playlists {
		filtered := playlist.VideoIDs[:0:0]
		for _, videoID := range playlist.VideoIDs {
			if videoID != id {
				filtered = append(filtered, videoID)
			}
		}
		if len(filtered) != len(playlist.VideoIDs) {
			playlist.VideoIDs = filtered
			playlist.UpdatedAt = nowUTC()
			s.data.Playlists[playlistID] = playlist
		}
	}
	if err := s.persist(); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}
