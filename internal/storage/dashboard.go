package storage

import (
	"sort"

	"github.com/AdityaBhosale22/vidtube/internal/models"
)

// ChannelStats aggregates dashboard totals for the channel: owned video
// count, summed views, likes received on owned videos, and subscribers.
func (s *Storage) ChannelStats(channelID string) (models.ChannelStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.data.Users[channelID]; !ok {
		return models.ChannelStats{}, ErrUserNotFound
	}

	stats := models.ChannelStats{ChannelID: channelID}
	owned := make(map[string]struct{})
	for _, video := range s.data.Videos {
		if video.OwnerID != channelID {
			continue
		}
		owned[video.ID] = struct{}{}
		stats.Videos++
		stats.Views += video.Views
	}
	for _, like := range s.data.Likes {
		if like.Target != models.LikeTargetVideo {
			continue
		}
		if _, ok := owned[like.TargetID]; ok {
			stats.Likes++
		}
	}
	for _, sub := range s.data.Subscriptions {
		if sub.ChannelID == channelID {
			stats.Subscribers++
		}
	}
	return stats, nil
}

// ChannelVideos returns every video owned by the channel, published or not,
// newest first. The dashboard shows drafts alongside published uploads.
func (s *Storage) ChannelVideos(channelID string) ([]models.Video, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.data.Users[channelID]; !ok {
		return nil, ErrUserNotFound
	}
	videos := make([]models.Video, 0)
	for _, video := range s.data.Videos {
		if video.OwnerID == channelID {
			videos = append(videos, video)
		}
	}
	sort.Slice(videos, func(i, j int) bool {
		return videos[i].CreatedAt.After(videos[j].CreatedAt)
	})
	return videos, nil
}
