package storage

import (
	"fmt"
	"sort"

	"github.com/AdityaBhosale22/vidtube/internal/models"
)

// ToggleLike flips a user's like on a video, comment, or tweet, reporting
// whether the resource is liked after the call.
func (s *Storage) ToggleLike(userID string, target models.LikeTarget, targetID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.Users[userID]; !ok {
		return false, ErrUserNotFound
	}
	if err := s.ensureLikeTargetLocked(target, targetID); err != nil {
		return false, err
	}

	for likeID, like := range s.data.Likes {
		if like.UserID == userID && like.Target == target && like.TargetID == targetID {
			delete(s.data.Likes, likeID)
			if err := s.persist(); err != nil {
				s.data.Likes[likeID] = like
				return true, err
			}
			return false, nil
		}
	}

	like := models.Like{
		ID:        s.generateID(),
		UserID:    userID,
		Target:    target,
		TargetID:  targetID,
		CreatedAt: nowUTC(),
	}
	s.data.Likes[like.ID] = like
	if err := s.persist(); err != nil {
		delete(s.data.Likes, like.ID)
		return false, err
	}
	return true, nil
}

func (s *Storage) ensureLikeTargetLocked(target models.LikeTarget, targetID string) error {
	switch target {
	case models.LikeTargetVideo:
		if _, ok := s.data.Videos[targetID]; !ok {
			return ErrVideoNotFound
		}
	case models.LikeTargetComment:
		if _, ok := s.data.Comments[targetID]; !ok {
			return ErrCommentNotFound
		}
	case models.LikeTargetTweet:
		if _, ok := s.data.Tweets[targetID]; !ok {
			return ErrTweetNotFound
		}
	default:
		return fmt.Errorf("unknown like target %q", target)
	}
	return nil
}

// CountLikes returns how many likes a resource has.
func (s *Storage) CountLikes(target models.LikeTarget, targetID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, like := range s.data.Likes {
		if like.Target == target && like.TargetID == targetID {
			count++
		}
	}
	return count
}

// ListLikedVideos returns the videos a user has liked, most recently liked
// first. Likes pointing at deleted videos are skipped.
func (s *Storage) ListLikedVideos(userID string) ([]models.Video, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.data.Users[userID]; !ok {
		return nil, ErrUserNotFound
	}
	likes := make([]models.Like, 0)
	for _, like := range s.data.Likes {
		if like.UserID == userID && like.Target == models.LikeTargetVideo {
			likes = append(likes, like)
		}
	}
	sort.Slice(likes, func(i, j int) bool {
		return likes[i].CreatedAt.After(likes[j].CreatedAt)
	})
	videos := make([]models.Video, 0, len(likes))
	for _, like := range likes {
		if video, ok := s.data.Videos[like.TargetID]; ok {
			videos = append(videos, video)
		}
	}
	return videos, nil
}
