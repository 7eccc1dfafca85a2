package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AdityaBhosale22/vidtube/internal/models"
)

func TestToggleLikeEndpoint(t *testing.T) {
	handler, store := newTestHandler(t)
	owner := registerTestUser(t, store, "creator")
	fan := registerTestUser(t, store, "fan")
	video := publishVideoFor(t, store, owner, "clip")

	rec := httptest.NewRecorder()
	handler.Likes(rec, withUser(httptest.NewRequest(http.MethodPost, "/api/likes/videos/"+video.ID, nil), fan))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Liked bool `json:"liked"`
		Likes int  `json:"likes"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Liked || resp.Likes != 1 {
		t.Fatalf("expected liked=true likes=1, got %+v", resp)
	}

	rec = httptest.NewRecorder()
	handler.Likes(rec, withUser(httptest.NewRequest(http.MethodPost, "/api/likes/videos/"+video.ID, nil), fan))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Liked || resp.Likes != 0 {
		t.Fatalf("expected toggle off, got %+v", resp)
	}

	rec = httptest.NewRecorder()
	handler.Likes(rec, withUser(httptest.NewRequest(http.MethodPost, "/api/likes/videos/missing", nil), fan))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.Likes(rec, withUser(httptest.NewRequest(http.MethodPost, "/api/likes/channels/"+video.ID, nil), fan))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected unknown target to 404, got %d", rec.Code)
	}
}

func TestListLikedVideosEndpoint(t *testing.T) {
	handler, store := newTestHandler(t)
	owner := registerTestUser(t, store, "creator")
	fan := registerTestUser(t, store, "fan")
	video := publishVideoFor(t, store, owner, "clip")

	if _, err := store.ToggleLike(fan.ID, models.LikeTargetVideo, video.ID); err != nil {
		t.Fatalf("ToggleLike: %v", err)
	}

	rec := httptest.NewRecorder()
	handler.Likes(rec, withUser(httptest.NewRequest(http.MethodGet, "/api/likes/videos", nil), fan))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var resp struct {
		Videos []models.Video `json:"videos"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Videos) != 1 || resp.Videos[0].ID != video.ID {
		t.Fatalf("expected liked video in list, got %+v", resp.Videos)
	}
}

func TestSubscriptionEndpoints(t *testing.T) {
	handler, store := newTestHandler(t)
	creator := registerTestUser(t, store, "creator")
	fan := registerTestUser(t, store, "fan")

	rec := httptest.NewRecorder()
	handler.Subscriptions(rec, withUser(httptest.NewRequest(http.MethodPost, "/api/subscriptions/"+creator.ID, nil), fan))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	handler.Subscriptions(rec, withUser(httptest.NewRequest(http.MethodPost, "/api/subscriptions/"+fan.ID, nil), fan))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected self-subscription to 400, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.Subscriptions(rec, withUser(httptest.NewRequest(http.MethodGet, "/api/subscriptions", nil), fan))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var channels struct {
		Channels []models.User `json:"channels"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&channels); err != nil {
		t.Fatalf("decode channels: %v", err)
	}
	if len(channels.Channels) != 1 || channels.Channels[0].ID != creator.ID {
		t.Fatalf("expected creator in subscriptions, got %+v", channels.Channels)
	}

	rec = httptest.NewRecorder()
	handler.Subscribers(rec, withUser(httptest.NewRequest(http.MethodGet, "/api/subscribers", nil), creator))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var subscribers struct {
		Subscribers []models.User `json:"subscribers"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&subscribers); err != nil {
		t.Fatalf("decode subscribers: %v", err)
	}
	if len(subscribers.Subscribers) != 1 || subscribers.Subscribers[0].ID != fan.ID {
		t.Fatalf("expected fan in subscribers, got %+v", subscribers.Subscribers)
	}
}

func TestChannelProfileEndpoint(t *testing.T) {
	handler, store := newTestHandler(t)
	creator := registerTestUser(t, store, "creator")
	fan := registerTestUser(t, store, "fan")
	publishVideoFor(t, store, creator, "clip")
	if _, err := store.ToggleSubscription(fan.ID, creator.ID); err != nil {
		t.Fatalf("ToggleSubscription: %v", err)
	}

	rec := httptest.NewRecorder()
	handler.ChannelByUsername(rec, withUser(httptest.NewRequest(http.MethodGet, "/api/channels/creator", nil), fan))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var profile models.ChannelProfile
	if err := json.NewDecoder(rec.Body).Decode(&profile); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if profile.Subscribers != 1 || !profile.IsSubscribed || profile.PublishedVideos != 1 {
		t.Fatalf("unexpected profile %+v", profile)
	}

	rec = httptest.NewRecorder()
	handler.ChannelByUsername(rec, httptest.NewRequest(http.MethodGet, "/api/channels/creator/videos", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ChannelByUsername(rec, httptest.NewRequest(http.MethodGet, "/api/channels/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestDashboardEndpoints(t *testing.T) {
	handler, store := newTestHandler(t)
	creator := registerTestUser(t, store, "creator")
	fan := registerTestUser(t, store, "fan")
	video := publishVideoFor(t, store, creator, "clip")
	if _, err := store.IncrementVideoViews(video.ID); err != nil {
		t.Fatalf("IncrementVideoViews: %v", err)
	}
	if _, err := store.ToggleLike(fan.ID, models.LikeTargetVideo, video.ID); err != nil {
		t.Fatalf("ToggleLike: %v", err)
	}
	if _, err := store.ToggleSubscription(fan.ID, creator.ID); err != nil {
		t.Fatalf("ToggleSubscription: %v", err)
	}

	rec := httptest.NewRecorder()
	handler.Dashboard(rec, withUser(httptest.NewRequest(http.MethodGet, "/api/dashboard/stats", nil), creator))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var stats models.ChannelStats
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Videos != 1 || stats.Views != 1 || stats.Likes != 1 || stats.Subscribers != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	rec = httptest.NewRecorder()
	handler.Dashboard(rec, withUser(httptest.NewRequest(http.MethodGet, "/api/dashboard/videos", nil), creator))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.Dashboard(rec, withUser(httptest.NewRequest(http.MethodGet, "/api/dashboard/unknown", nil), creator))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestTweetEndpoints(t *testing.T) {
	handler, store := newTestHandler(t)
	author := registerTestUser(t, store, "author")
	other := registerTestUser(t, store, "other")

	payload, _ := json.Marshal(tweetRequest{Content: "short thought"})
	rec := httptest.NewRecorder()
	handler.Tweets(rec, withUser(httptest.NewRequest(http.MethodPost, "/api/tweets", bytes.NewReader(payload)), author))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var tweet models.Tweet
	if err := json.NewDecoder(rec.Body).Decode(&tweet); err != nil {
		t.Fatalf("decode tweet: %v", err)
	}

	rec = httptest.NewRecorder()
	handler.Tweets(rec, withUser(httptest.NewRequest(http.MethodGet, "/api/tweets?userId="+author.ID, nil), other))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	payload, _ = json.Marshal(tweetRequest{Content: "hijacked"})
	rec = httptest.NewRecorder()
	handler.TweetByID(rec, withUser(httptest.NewRequest(http.MethodPatch, "/api/tweets/"+tweet.ID, bytes.NewReader(payload)), other))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.TweetByID(rec, withUser(httptest.NewRequest(http.MethodDelete, "/api/tweets/"+tweet.ID, nil), author))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}
}

func TestPlaylistEndpoints(t *testing.T) {
	handler, store := newTestHandler(t)
	owner := registerTestUser(t, store, "owner")
	stranger := registerTestUser(t, store, "stranger")
	video := publishVideoFor(t, store, owner, "clip")

	payload, _ := json.Marshal(createPlaylistRequest{Name: "mix", Description: "late night"})
	rec := httptest.NewRecorder()
	handler.Playlists(rec, withUser(httptest.NewRequest(http.MethodPost, "/api/playlists", bytes.NewReader(payload)), owner))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var playlist models.Playlist
	if err := json.NewDecoder(rec.Body).Decode(&playlist); err != nil {
		t.Fatalf("decode playlist: %v", err)
	}

	rec = httptest.NewRecorder()
	handler.PlaylistByID(rec, withUser(httptest.NewRequest(http.MethodPost, "/api/playlists/"+playlist.ID+"/videos/"+video.ID, nil), owner))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	handler.PlaylistByID(rec, withUser(httptest.NewRequest(http.MethodGet, "/api/playlists/"+playlist.ID, nil), stranger))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.PlaylistByID(rec, withUser(httptest.NewRequest(http.MethodDelete, "/api/playlists/"+playlist.ID+"/videos/"+video.ID, nil), owner))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.PlaylistByID(rec, withUser(httptest.NewRequest(http.MethodDelete, "/api/playlists/"+playlist.ID, nil), owner))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}
}
