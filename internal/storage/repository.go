package storage

import (
	"context"

	"github.com/AdityaBhosale22/vidtube/internal/models"
)

// Repository is the persistence contract consumed by the HTTP layer. The
// JSON-file Storage is the only implementation today; the interface keeps
// handlers testable against fakes.
type Repository interface {
	// Users and channels.
	CreateUser(params CreateUserParams) (models.User, error)
	GetUser(id string) (models.User, bool)
	UserExists(id string) bool
	FindUserByUsername(username string) (models.User, bool)
	FindUserByEmail(email string) (models.User, bool)
	AuthenticateUser(identifier, password string) (models.User, error)
	UpdateUser(id string, update UserUpdate) (models.User, error)
	SetUserPassword(id, password string) error
	RecordWatchEvent(userID, videoID string) error
	WatchHistory(userID string) ([]models.Video, error)
	ChannelProfile(username, viewerID string) (models.ChannelProfile, error)
	ListUsers() []models.User

	// Videos.
	PublishVideo(params PublishVideoParams) (models.Video, error)
	GetVideo(id string) (models.Video, bool)
	ListVideos(params ListVideosParams) ([]models.Video, error)
	UpdateVideo(id string, update VideoUpdate) (models.Video, error)
	TogglePublishStatus(id string) (models.Video, error)
	IncrementVideoViews(id string) (models.Video, error)
	DeleteVideo(id string) error

	// Comments.
	AddComment(videoID, ownerID, content string) (models.Comment, error)
	GetComment(id string) (models.Comment, bool)
	ListComments(videoID string, page, limit int) ([]models.Comment, error)
	UpdateComment(id, content string) (models.Comment, error)
	DeleteComment(id string) error

	// Tweets.
	CreateTweet(ownerID, content string) (models.Tweet, error)
	GetTweet(id string) (models.Tweet, bool)
	ListUserTweets(ownerID string) ([]models.Tweet, error)
	UpdateTweet(id, content string) (models.Tweet, error)
	DeleteTweet(id string) error

	// Playlists.
	CreatePlaylist(ownerID, name, description string) (models.Playlist, error)
	GetPlaylist(id string) (models.Playlist, bool)
	ListUserPlaylists(ownerID string) ([]models.Playlist, error)
	AddVideoToPlaylist(playlistID, videoID string) (models.Playlist, error)
	RemoveVideoFromPlaylist(playlistID, videoID string) (models.Playlist, error)
	UpdatePlaylist(id string, update PlaylistUpdate) (models.Playlist, error)
	DeletePlaylist(id string) error

	// Likes and subscriptions.
	ToggleLike(userID string, target models.LikeTarget, targetID string) (bool, error)
	CountLikes(target models.LikeTarget, targetID string) int
	ListLikedVideos(userID string) ([]models.Video, error)
	ToggleSubscription(subscriberID, channelID string) (bool, error)
	ListChannelSubscribers(channelID string) ([]models.User, error)
	ListSubscribedChannels(subscriberID string) ([]models.User, error)

	// Dashboard.
	ChannelStats(channelID string) (models.ChannelStats, error)
	ChannelVideos(channelID string) ([]models.Video, error)

	Ping(ctx context.Context) error
}

var _ Repository = (*Storage)(nil)
