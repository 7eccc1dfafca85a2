package storage

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/AdityaBhosale22/vidtube/internal/models"
)

const watchHistoryLimit = 100

// CreateUserParams captures the attributes required to register a user.
type CreateUserParams struct {
	Username  string
	Email     string
	FullName  string
	Password  string
	AvatarURL string
	CoverURL  string
}

// UserUpdate represents the fields that can be modified on an existing user.
type UserUpdate struct {
	FullName  *string
	Email     *string
	AvatarURL *string
	CoverURL  *string
}

// CreateUser registers a new account. Usernames and emails are normalized to
// lower case and must be unique.
func (s *Storage) CreateUser(params CreateUserParams) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	username := strings.TrimSpace(strings.ToLower(params.Username))
	if username == "" {
		return models.User{}, errors.New("username is required")
	}
	email := strings.TrimSpace(strings.ToLower(params.Email))
	if email == "" {
		return models.User{}, errors.New("email is required")
	}
	fullName := strings.TrimSpace(params.FullName)
	if fullName == "" {
		return models.User{}, errors.New("fullName is required")
	}
	if params.Password == "" {
		return models.User{}, errors.New("password is required")
	}
	for _, user := range s.data.Users {
		if user.Username == username {
			return models.User{}, fmt.Errorf("username %s already in use", params.Username)
		}
		if user.Email == email {
			return models.User{}, fmt.Errorf("email %s already in use", params.Email)
		}
	}

	passwordHash, err := hashPassword(params.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := nowUTC()
	user := models.User{
		ID:           s.generateID(),
		Username:     username,
		Email:        email,
		FullName:     fullName,
		PasswordHash: passwordHash,
		AvatarURL:    strings.TrimSpace(params.AvatarURL),
		CoverURL:     strings.TrimSpace(params.CoverURL),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.data.Users[user.ID] = user
	if err := s.persist(); err != nil {
		delete(s.data.Users, user.ID)
		return models.User{}, err
	}
	return user, nil
}

// GetUser looks up a user by ID.
func (s *Storage) GetUser(id string) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.data.Users[id]
	return user, ok
}

// UserExists reports whether the user ID refers to a live account. It
// satisfies the token service's directory contract.
func (s *Storage) UserExists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data.Users[id]
	return ok
}

// FindUserByUsername looks up a user by their normalized username.
func (s *Storage) FindUserByUsername(username string) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	trimmed := strings.TrimSpace(username)
	for _, user := range s.data.Users {
		if user.HasUsername(trimmed) {
			return user, true
		}
	}
	return models.User{}, false
}

// FindUserByEmail looks up a user by their normalized email address.
func (s *Storage) FindUserByEmail(email string) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	normalized := strings.TrimSpace(strings.ToLower(email))
	for _, user := range s.data.Users {
		if user.Email == normalized {
			return user, true
		}
	}
	return models.User{}, false
}

// AuthenticateUser verifies credentials and returns the matching user. The
// identifier may be a username or an email address.
func (s *Storage) AuthenticateUser(identifier, password string) (models.User, error) {
	if password == "" {
		return models.User{}, errors.New("password is required")
	}
	user, ok := s.FindUserByUsername(identifier)
	if !ok {
		user, ok = s.FindUserByEmail(identifier)
	}
	if !ok {
		return models.User{}, ErrInvalidCredentials
	}
	if err := verifyPassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}
	return user, nil
}

// UpdateUser applies partial account updates.
func (s *Storage) UpdateUser(id string, update UserUpdate) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.data.Users[id]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	previous := user
	if update.FullName != nil {
		trimmed := strings.TrimSpace(*update.FullName)
		if trimmed == "" {
			return models.User{}, errors.New("fullName cannot be empty")
		}
		user.FullName = trimmed
	}
	if update.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*update.Email))
		if email == "" {
			return models.User{}, errors.New("email cannot be empty")
		}
		for otherID, other := range s.data.Users {
			if otherID != id && other.Email == email {
				return models.User{}, fmt.Errorf("email %s already in use", email)
			}
		}
		user.Email = email
	}
	if update.AvatarURL != nil {
		user.AvatarURL = strings.TrimSpace(*update.AvatarURL)
	}
	if update.CoverURL != nil {
		user.CoverURL = strings.TrimSpace(*update.CoverURL)
	}
	user.UpdatedAt = nowUTC()
	s.data.Users[id] = user
	if err := s.persist(); err != nil {
		s.data.Users[id] = previous
		return models.User{}, err
	}
	return user, nil
}

// SetUserPassword replaces the stored password verifier after the caller has
// checked the old password.
func (s *Storage) SetUserPassword(id, password string) error {
	if password == "" {
		return errors.New("password is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.data.Users[id]
	if !ok {
		return ErrUserNotFound
	}
	hashed, err := hashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	previous := user
	user.PasswordHash = hashed
	user.UpdatedAt = nowUTC()
	s.data.Users[id] = user
	if err := s.persist(); err != nil {
		s.data.Users[id] = previous
		return err
	}
	return nil
}

// RecordWatchEvent prepends the video to the user's watch history, dropping
// duplicates and capping the history length.
func (s *Storage) RecordWatchEvent(userID, videoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.data.Users[userID]
	if !ok {
		return ErrUserNotFound
	}
	history := make([]string, 0, len(user.WatchHistory)+1)
	history = append(history, videoID)
	for _, id := range user.WatchHistory {
		if id != videoID {
			history = append(history, id)
		}
	}
	if len(history) > watchHistoryLimit {
		history = history[:watchHistoryLimit]
	}
	previous := user
	user.WatchHistory = history
	s.data.Users[userID] = user
	if err := s.persist(); err != nil {
		s.data.Users[userID] = previous
		return err
	}
	return nil
}

// WatchHistory resolves the user's watch history to videos, most recent
// first. Videos deleted since they were watched are skipped.
func (s *Storage) WatchHistory(userID string) ([]models.Video, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.data.Users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	videos := make([]models.Video, 0, len(user.WatchHistory))
	for _, videoID := range user.WatchHistory {
		if video, ok := s.data.Videos[videoID]; ok {
			videos = append(videos, video)
		}
	}
	return videos, nil
}

// ChannelProfile aggregates the public channel view for a username. viewerID
// may be empty for anonymous requests.
func (s *Storage) ChannelProfile(username, viewerID string) (models.ChannelProfile, error) {
	user, ok := s.FindUserByUsername(username)
	if !ok {
		return models.ChannelProfile{}, ErrUserNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	profile := models.ChannelProfile{
		UserID:    user.ID,
		Username:  user.Username,
		FullName:  user.FullName,
		AvatarURL: user.AvatarURL,
		CoverURL:  user.CoverURL,
	}
	for _, sub := range s.data.Subscriptions {
		if sub.ChannelID == user.ID {
			profile.Subscribers++
			if viewerID != "" && sub.SubscriberID == viewerID {
				profile.IsSubscribed = true
			}
		}
		if sub.SubscriberID == user.ID {
			profile.SubscribedTo++
		}
	}
	for _, video := range s.data.Videos {
		if video.OwnerID == user.ID && video.IsPublished {
			profile.PublishedVideos++
		}
	}
	return profile, nil
}

// sanitizeUser strips fields that must not leave the storage layer when a
// user appears in someone else's listing.
func sanitizeUser(user models.User) models.User {
	user.PasswordHash = ""
	user.WatchHistory = nil
	return user
}

// ListUsers returns all users ordered by creation time.
func (s *Storage) ListUsers() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]models.User, 0, len(s.data.Users))
	for _, user := range s.data.Users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users
}
