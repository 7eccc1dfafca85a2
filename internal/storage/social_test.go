package storage

import (
	"errors"
	"testing"

	"github.com/AdityaBhosale22/vidtube/internal/models"
)

func TestToggleLikeFlips(t *testing.T) {
	store := newTestStore(t)
	ownerID := createTestUser(t, store, "owner")
	fanID := createTestUser(t, store, "fan")
	videoID := publishTestVideo(t, store, ownerID, "clip")

	liked, err := store.ToggleLike(fanID, models.LikeTargetVideo, videoID)
	if err != nil {
		t.Fatalf("ToggleLike: %v", err)
	}
	if !liked {
		t.Fatalf("expected first toggle to like")
	}
	if got := store.CountLikes(models.LikeTargetVideo, videoID); got != 1 {
		t.Fatalf("expected 1 like, got %d", got)
	}

	liked, err = store.ToggleLike(fanID, models.LikeTargetVideo, videoID)
	if err != nil {
		t.Fatalf("ToggleLike repeat: %v", err)
	}
	if liked {
		t.Fatalf("expected second toggle to unlike")
	}
	if got := store.CountLikes(models.LikeTargetVideo, videoID); got != 0 {
		t.Fatalf("expected 0 likes, got %d", got)
	}
}

func TestToggleLikeValidatesTargets(t *testing.T) {
	store := newTestStore(t)
	ownerID := createTestUser(t, store, "owner")
	videoID := publishTestVideo(t, store, ownerID, "clip")
	comment, err := store.AddComment(videoID, ownerID, "hi")
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	tweet, err := store.CreateTweet(ownerID, "hello")
	if err != nil {
		t.Fatalf("CreateTweet: %v", err)
	}

	for _, tc := range []struct {
		target models.LikeTarget
		id     string
	}{
		{models.LikeTargetVideo, videoID},
		{models.LikeTargetComment, comment.ID},
		{models.LikeTargetTweet, tweet.ID},
	} {
		if _, err := store.ToggleLike(ownerID, tc.target, tc.id); err != nil {
			t.Fatalf("ToggleLike %s: %v", tc.target, err)
		}
	}
	if _, err := store.ToggleLike(ownerID, models.LikeTargetVideo, "missing"); !errors.Is(err, ErrVideoNotFound) {
		t.Fatalf("expected ErrVideoNotFound, got %v", err)
	}
	if _, err := store.ToggleLike(ownerID, models.LikeTarget("channel"), videoID); err == nil {
		t.Fatalf("expected unknown target to be rejected")
	}
	if _, err := store.ToggleLike("missing", models.LikeTargetVideo, videoID); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestListLikedVideosNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ownerID := createTestUser(t, store, "owner")
	fanID := createTestUser(t, store, "fan")
	first := publishTestVideo(t, store, ownerID, "first")
	second := publishTestVideo(t, store, ownerID, "second")

	if _, err := store.ToggleLike(fanID, models.LikeTargetVideo, first); err != nil {
		t.Fatalf("ToggleLike first: %v", err)
	}
	if _, err := store.ToggleLike(fanID, models.LikeTargetVideo, second); err != nil {
		t.Fatalf("ToggleLike second: %v", err)
	}

	liked, err := store.ListLikedVideos(fanID)
	if err != nil {
		t.Fatalf("ListLikedVideos: %v", err)
	}
	if len(liked) != 2 {
		t.Fatalf("expected 2 liked videos, got %d", len(liked))
	}
	if liked[0].ID != second {
		t.Fatalf("expected most recently liked first")
	}
}

func TestToggleSubscription(t *testing.T) {
	store := newTestStore(t)
	channelID := createTestUser(t, store, "channel")
	fanID := createTestUser(t, store, "fan")

	subscribed, err := store.ToggleSubscription(fanID, channelID)
	if err != nil {
		t.Fatalf("ToggleSubscription: %v", err)
	}
	if !subscribed {
		t.Fatalf("expected first toggle to subscribe")
	}

	subscribers, err := store.ListChannelSubscribers(channelID)
	if err != nil {
		t.Fatalf("ListChannelSubscribers: %v", err)
	}
	if len(subscribers) != 1 || subscribers[0].ID != fanID {
		t.Fatalf("expected fan in subscriber list, got %+v", subscribers)
	}
	if subscribers[0].PasswordHash != "" {
		t.Fatalf("expected password hash stripped from listing")
	}

	channels, err := store.ListSubscribedChannels(fanID)
	if err != nil {
		t.Fatalf("ListSubscribedChannels: %v", err)
	}
	if len(channels) != 1 || channels[0].ID != channelID {
		t.Fatalf("expected channel in subscription list, got %+v", channels)
	}

	subscribed, err = store.ToggleSubscription(fanID, channelID)
	if err != nil {
		t.Fatalf("ToggleSubscription repeat: %v", err)
	}
	if subscribed {
		t.Fatalf("expected second toggle to unsubscribe")
	}

	if _, err := store.ToggleSubscription(fanID, fanID); !errors.Is(err, ErrSelfSubscription) {
		t.Fatalf("expected ErrSelfSubscription, got %v", err)
	}
	if _, err := store.ToggleSubscription(fanID, "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestChannelProfileAggregates(t *testing.T) {
	store := newTestStore(t)
	channelID := createTestUser(t, store, "creator")
	fanID := createTestUser(t, store, "fan")
	otherID := createTestUser(t, store, "other")

	published := publishTestVideo(t, store, channelID, "published")
	draft := publishTestVideo(t, store, channelID, "draft")
	if _, err := store.TogglePublishStatus(draft); err != nil {
		t.Fatalf("TogglePublishStatus: %v", err)
	}
	_ = published

	if _, err := store.ToggleSubscription(fanID, channelID); err != nil {
		t.Fatalf("ToggleSubscription fan: %v", err)
	}
	if _, err := store.ToggleSubscription(otherID, channelID); err != nil {
		t.Fatalf("ToggleSubscription other: %v", err)
	}
	if _, err := store.ToggleSubscription(channelID, otherID); err != nil {
		t.Fatalf("ToggleSubscription creator: %v", err)
	}

	profile, err := store.ChannelProfile("creator", fanID)
	if err != nil {
		t.Fatalf("ChannelProfile: %v", err)
	}
	if profile.Subscribers != 2 {
		t.Fatalf("expected 2 subscribers, got %d", profile.Subscribers)
	}
	if profile.SubscribedTo != 1 {
		t.Fatalf("expected 1 subscription, got %d", profile.SubscribedTo)
	}
	if !profile.IsSubscribed {
		t.Fatalf("expected viewer to show as subscribed")
	}
	if profile.PublishedVideos != 1 {
		t.Fatalf("expected 1 published video, got %d", profile.PublishedVideos)
	}

	anonymous, err := store.ChannelProfile("creator", "")
	if err != nil {
		t.Fatalf("ChannelProfile anonymous: %v", err)
	}
	if anonymous.IsSubscribed {
		t.Fatalf("expected anonymous viewer to show unsubscribed")
	}

	if _, err := store.ChannelProfile("missing", ""); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestChannelStats(t *testing.T) {
	store := newTestStore(t)
	channelID := createTestUser(t, store, "creator")
	fanID := createTestUser(t, store, "fan")

	first := publishTestVideo(t, store, channelID, "first")
	second := publishTestVideo(t, store, channelID, "second")
	for i := 0; i < 3; i++ {
		if _, err := store.IncrementVideoViews(first); err != nil {
			t.Fatalf("IncrementVideoViews: %v", err)
		}
	}
	if _, err := store.ToggleLike(fanID, models.LikeTargetVideo, first); err != nil {
		t.Fatalf("ToggleLike first: %v", err)
	}
	if _, err := store.ToggleLike(fanID, models.LikeTargetVideo, second); err != nil {
		t.Fatalf("ToggleLike second: %v", err)
	}
	if _, err := store.ToggleSubscription(fanID, channelID); err != nil {
		t.Fatalf("ToggleSubscription: %v", err)
	}

	stats, err := store.ChannelStats(channelID)
	if err != nil {
		t.Fatalf("ChannelStats: %v", err)
	}
	if stats.Videos != 2 {
		t.Fatalf("expected 2 videos, got %d", stats.Videos)
	}
	if stats.Views != 3 {
		t.Fatalf("expected 3 views, got %d", stats.Views)
	}
	if stats.Likes != 2 {
		t.Fatalf("expected 2 likes, got %d", stats.Likes)
	}
	if stats.Subscribers != 1 {
		t.Fatalf("expected 1 subscriber, got %d", stats.Subscribers)
	}

	videos, err := store.ChannelVideos(channelID)
	if err != nil {
		t.Fatalf("ChannelVideos: %v", err)
	}
	if len(videos) != 2 {
		t.Fatalf("expected 2 channel videos, got %d", len(videos))
	}
	if videos[0].ID != second {
		t.Fatalf("expected newest video first")
	}
}
