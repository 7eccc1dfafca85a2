package storage

import (
	"errors"
	"sort"
	"strings"

	"github.com/AdityaBhosale22/vidtube/internal/models"
)

const maxTweetLength = 280

// CreateTweet records a short text post for the owner.
func (s *Storage) CreateTweet(ownerID, content string) (models.Tweet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.Users[ownerID]; !ok {
		return models.Tweet{}, ErrUserNotFound
	}
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return models.Tweet{}, errors.New("content is required")
	}
	if len(trimmed) > maxTweetLength {
		return models.Tweet{}, errors.New("content exceeds maximum length")
	}

	now := nowUTC()
	tweet := models.Tweet{
		ID:        s.generateID(),
		OwnerID:   ownerID,
		Content:   trimmed,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.data.Tweets[tweet.ID] = tweet
	if err := s.persist(); err != nil {
		delete(s.data.Tweets, tweet.ID)
		return models.Tweet{}, err
	}
	return tweet, nil
}

// GetTweet looks up a tweet by ID.
func (s *Storage) GetTweet(id string) (models.Tweet, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tweet, ok := s.data.Tweets[id]
	return tweet, ok
}

// ListUserTweets returns all of a user's tweets, newest first.
func (s *Storage) ListUserTweets(ownerID string) ([]models.Tweet, error) {
	s.mu.RLock()
	if _, ok := s.data.Users[ownerID]; !ok {
		s.mu.RUnlock()
		return nil, ErrUserNotFound
	}
	tweets := make([]models.Tweet, 0)
	for _, tweet := range s.data.Tweets {
		if tweet.OwnerID == ownerID {
			tweets = append(tweets, tweet)
		}
	}
	s.mu.RUnlock()

	sort.Slice(tweets, func(i, j int) bool {
		return tweets[i].CreatedAt.After(tweets[j].CreatedAt)
	})
	return tweets, nil
}

// UpdateTweet replaces a tweet's content.
func (s *Storage) UpdateTweet(id, content string) (models.Tweet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tweet, ok := s.data.Tweets[id]
	if !ok {
		return models.Tweet{}, ErrTweetNotFound
	}
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return models.Tweet{}, errors.New("content is required")
	}
	if len(trimmed) > maxTweetLength {
		return models.Tweet{}, errors.New("content exceeds maximum length")
	}
	previous := tweet
	tweet.Content = trimmed
	tweet.UpdatedAt = nowUTC()
	s.data.Tweets[id] = tweet
	if err := s.persist(); err != nil {
		s.data.Tweets[id] = previous
		return models.Tweet{}, err
	}
	return tweet, nil
}

// DeleteTweet removes a tweet and any likes attached to it.
func (s *Storage) DeleteTweet(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.Tweets[id]; !ok {
		return ErrTweetNotFound
	}
	snapshot := cloneDataset(s.data)
	delete(s.data.Tweets, id)
	for likeID, like := range s.data.Likes {
		if like.Target == models.LikeTargetTweet && like.TargetID == id {
			delete(s.data.Likes, likeID)
		}
	}
	if err := s.persist(); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}
