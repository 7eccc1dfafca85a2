package models

import (
	"strings"
	"time"
)

// User is the account entity that owns credentials, uploads, and subscriptions.
// PasswordHash stores the salted pbkdf2 verifier, never the plaintext password.
// The currently valid refresh token is not part of the user record; it lives in
// the auth token store keyed by user ID.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullName"`
	PasswordHash string    `json:"passwordHash,omitempty"`
	AvatarURL    string    `json:"avatarUrl,omitempty"`
	CoverURL     string    `json:"coverUrl,omitempty"`
	WatchHistory []string  `json:"watchHistory,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// HasUsername reports whether the user's username matches, ignoring case.
func (u User) HasUsername(username string) bool {
	return strings.EqualFold(u.Username, username)
}

type Video struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"ownerId"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	VideoURL     string    `json:"videoUrl"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	Duration     float64   `json:"duration"`
	Views        int64     `json:"views"`
	IsPublished  bool      `json:"isPublished"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Comment struct {
	ID        string    `json:"id"`
	VideoID   string    `json:"videoId"`
	OwnerID   string    `json:"ownerId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Tweet struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Playlist struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	VideoIDs    []string  `json:"videoIds"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// LikeTarget discriminates the resource a like points at.
type LikeTarget string

const (
	LikeTargetVideo   LikeTarget = "video"
	LikeTargetComment LikeTarget = "comment"
	LikeTargetTweet   LikeTarget = "tweet"
)

// Like records a user liking exactly one video, comment, or tweet.
type Like struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Target    LikeTarget `json:"target"`
	TargetID  string     `json:"targetId"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Subscription records a user following a channel (another user).
type Subscription struct {
	ID           string    `json:"id"`
	SubscriberID string    `json:"subscriberId"`
	ChannelID    string    `json:"channelId"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ChannelProfile is the aggregated public view of a user's channel.
type ChannelProfile struct {
	UserID          string `json:"userId"`
	Username        string `json:"username"`
	FullName        string `json:"fullName"`
	AvatarURL       string `json:"avatarUrl,omitempty"`
	CoverURL        string `json:"coverUrl,omitempty"`
	Subscribers     int    `json:"subscribers"`
	SubscribedTo    int    `json:"subscribedTo"`
	IsSubscribed    bool   `json:"isSubscribed"`
	PublishedVideos int    `json:"publishedVideos"`
}

// ChannelStats aggregates dashboard totals for a channel.
type ChannelStats struct {
	ChannelID   string `json:"channelId"`
	Videos      int    `json:"videos"`
	Views       int64  `json:"views"`
	Likes       int    `json:"likes"`
	Subscribers int    `json:"subscribers"`
}
