package storage

import (
	"errors"
	"sort"

	"github.com/AdityaBhosale22/vidtube/internal/models"
)

// ErrSelfSubscription is returned when a user attempts to subscribe to
// their own channel.
var ErrSelfSubscription = errors.New("cannot subscribe to own channel")

// ToggleSubscription flips subscriberID's subscription to channelID,
// reporting whether the subscription exists after the call.
func (s *Storage) ToggleSubscription(subscriberID, channelID string) (bool, error) {
	if subscriberID == channelID {
		return false, ErrSelfSubscription
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.Users[subscriberID]; !ok {
		return false, ErrUserNotFound
	}
	if _, ok := s.data.Users[channelID]; !ok {
		return false, ErrUserNotFound
	}

	for subID, sub := range s.data.Subscriptions {
		if sub.SubscriberID == subscriberID && sub.ChannelID == channelID {
			delete(s.data.Subscriptions, subID)
			if err := s.persist(); err != nil {
				s.data.Subscriptions[subID] = sub
				return true, err
			}
			return false, nil
		}
	}

	sub := models.Subscription{
		ID:           s.generateID(),
		SubscriberID: subscriberID,
		ChannelID:    channelID,
		CreatedAt:    nowUTC(),
	}
	s.data.Subscriptions[sub.ID] = sub
	if err := s.persist(); err != nil {
		delete(s.data.Subscriptions, sub.ID)
		return false, err
	}
	return true, nil
}

// ListChannelSubscribers returns the users subscribed to a channel,
// newest subscription first.
func (s *Storage) ListChannelSubscribers(channelID string) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.data.Users[channelID]; !ok {
		return nil, ErrUserNotFound
	}
	subs := make([]models.Subscription, 0)
	for _, sub := range s.data.Subscriptions {
		if sub.ChannelID == channelID {
			subs = append(subs, sub)
		}
	}
	sort.Slice(subs, func(i, j int) bool {
		return subs[i].CreatedAt.After(subs[j].CreatedAt)
	})
	users := make([]models.User, 0, len(subs))
	for _, sub := range subs {
		if user, ok := s.data.Users[sub.SubscriberID]; ok {
			users = append(users, sanitizeUser(user))
		}
	}
	return users, nil
}

// ListSubscribedChannels returns the channels a user subscribes to,
// newest subscription first.
func (s *Storage) ListSubscribedChannels(subscriberID string) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.data.Users[subscriberID]; !ok {
		return nil, ErrUserNotFound
	}
	subs := make([]models.Subscription, 0)
	for _, sub := range s.data.Subscriptions {
		if sub.SubscriberID == subscriberID {
			subs = append(subs, sub)
		}
	}
	sort.Slice(subs, func(i, j int) bool {
		return subs[i].CreatedAt.After(subs[j].CreatedAt)
	})
	channels := make([]models.User, 0, len(subs))
	for _, sub := range subs {
		if user, ok := s.data.Users[sub.ChannelID]; ok {
			channels = append(channels, sanitizeUser(user))
		}
	}
	return channels, nil
}
