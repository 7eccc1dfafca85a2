package storage

import (
	"errors"
	"sort"
	"strings"

	"github.com/AdityaBhosale22/vidtube/internal/models"
)

const maxCommentLength = 1000

// AddComment records a comment on a video.
func (s *Storage) AddComment(videoID, ownerID, content string) (models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.Videos[videoID]; !ok {
		return models.Comment{}, ErrVideoNotFound
	}
	if _, ok := s.data.Users[ownerID]; !ok {
		return models.Comment{}, ErrUserNotFound
	}
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return models.Comment{}, errors.New("content is required")
	}
	if len(trimmed) > maxCommentLength {
		return models.Comment{}, errors.New("content exceeds maximum length")
	}

	now := nowUTC()
	comment := models.Comment{
		ID:        s.generateID(),
		VideoID:   videoID,
		OwnerID:   ownerID,
		Content:   trimmed,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.data.Comments[comment.ID] = comment
	if err := s.persist(); err != nil {
		delete(s.data.Comments, comment.ID)
		return models.Comment{}, err
	}
	return comment, nil
}

// GetComment looks up a comment by ID.
func (s *Storage) GetComment(id string) (models.Comment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	comment, ok := s.data.Comments[id]
	return comment, ok
}

// ListComments returns a page of a video's comments, newest first.
func (s *Storage) ListComments(videoID string, page, limit int) ([]models.Comment, error) {
	s.mu.RLock()
	if _, ok := s.data.Videos[videoID]; !ok {
		s.mu.RUnlock()
		return nil, ErrVideoNotFound
	}
	comments := make([]models.Comment, 0)
	for _, comment := range s.data.Comments {
		if comment.VideoID == videoID {
			comments = append(comments, comment)
		}
	}
	s.mu.RUnlock()

	sort.Slice(comments, func(i, j int) bool {
		return comments[i].CreatedAt.After(comments[j].CreatedAt)
	})
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	start := (page - 1) * limit
	if start >= len(comments) {
		return []models.Comment{}, nil
	}
	end := start + limit
	if end > len(comments) {
		end = len(comments)
	}
	return comments[start:end], nil
}

// UpdateComment replaces a comment's content.
func (s *Storage) UpdateComment(id, content string) (models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	comment, ok := s.data.Comments[id]
	if !ok {
		return models.Comment{}, ErrCommentNotFound
	}
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return models.Comment{}, errors.New("content is required")
	}
	if len(trimmed) > maxCommentLength {
		return models.Comment{}, errors.New("content exceeds maximum length")
	}
	previous := comment
	comment.Content = trimmed
	comment.UpdatedAt = nowUTC()
	s.data.Comments[id] = comment
	if err := s.persist(); err != nil {
		s.data.Comments[id] = previous
		return models.Comment{}, err
	}
	return comment, nil
}

// DeleteComment removes a comment and any likes attached to it.
func (s *Storage) DeleteComment(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.Comments[id]; !ok {
		return ErrCommentNotFound
	}
	snapshot := cloneDataset(s.data)
	delete(s.data.Comments, id)
	for likeID, like := range s.data.Likes {
		if like.Target == models.LikeTargetComment && like.TargetID == id {
			delete(s.data.Likes, likeID)
		}
	}
	if err := s.persist(); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}
