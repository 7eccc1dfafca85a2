package storage

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/pbkdf2"

	"github.com/AdityaBhosale22/vidtube/internal/models"
)

const (
	passwordHashSaltLength = 16
	passwordHashKeyLength  = 32
	passwordHashIterations = 120000
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrVideoNotFound      = errors.New("video not found")
	ErrCommentNotFound    = errors.New("comment not found")
	ErrTweetNotFound      = errors.New("tweet not found")
	ErrPlaylistNotFound   = errors.New("playlist not found")
)

type dataset struct {
	Users         map[string]models.User         `json:"users"`
	Videos        map[string]models.Video        `json:"videos"`
	Comments      map[string]models.Comment      `json:"comments"`
	Tweets        map[string]models.Tweet        `json:"tweets"`
	Playlists     map[string]models.Playlist     `json:"playlists"`
	Likes         map[string]models.Like         `json:"likes"`
	Subscriptions map[string]models.Subscription `json:"subscriptions"`
}

func newDataset() dataset {
	return dataset{
		Users:         make(map[string]models.User),
		Videos:        make(map[string]models.Video),
		Comments:      make(map[string]models.Comment),
		Tweets:        make(map[string]models.Tweet),
		Playlists:     make(map[string]models.Playlist),
		Likes:         make(map[string]models.Like),
		Subscriptions: make(map[string]models.Subscription),
	}
}

// cloneDataset snapshots the dataset so multi-record mutations can restore it
// when persistence fails. Slice-backed fields get their own copies.
func cloneDataset(src dataset) dataset {
	out := newDataset()
	for id, user := range src.Users {
		if len(user.WatchHistory) > 0 {
			user.WatchHistory = append([]string(nil), user.WatchHistory...)
		}
		out.Users[id] = user
	}
	for id, video := range src.Videos {
		out.Videos[id] = video
	}
	for id, comment := range src.Comments {
		out.Comments[id] = comment
	}
	for id, tweet := range src.Tweets {
		out.Tweets[id] = tweet
	}
	for id, playlist := range src.Playlists {
		if len(playlist.VideoIDs) > 0 {
			playlist.VideoIDs = append([]string(nil), playlist.VideoIDs...)
		}
		out.Playlists[id] = playlist
	}
	for id, like := range src.Likes {
		out.Likes[id] = like
	}
	for id, sub := range src.Subscriptions {
		out.Subscriptions[id] = sub
	}
	return out
}

// Storage is a mutex-guarded dataset persisted as a JSON document. An empty
// file path keeps the dataset in memory only, which tests and local
// development rely on.
type Storage struct {
	mu       sync.RWMutex
	filePath string
	data     dataset
	// persistOverride allows tests to intercept persist operations.
	persistOverride func(dataset) error
}

// Option mutates storage configuration.
type Option func(*Storage)

// WithPersistOverride intercepts persistence, primarily for tests.
func WithPersistOverride(fn func(dataset) error) Option {
	return func(s *Storage) {
		s.persistOverride = fn
	}
}

// NewStorage opens (or initialises) the datastore at path.
func NewStorage(path string, opts ...Option) (*Storage, error) {
	store := &Storage{filePath: path}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	if err := store.load(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *Storage) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.filePath == "" {
		s.data = newDataset()
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	file, err := os.Open(s.filePath)
	if errors.Is(err, os.ErrNotExist) {
		s.data = newDataset()
		return nil
	} else if err != nil {
		return fmt.Errorf("open store file: %w", err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&s.data); err != nil {
		if errors.Is(err, io.EOF) {
			s.data = newDataset()
			return nil
		}
		return fmt.Errorf("decode store file: %w", err)
	}
	s.ensureDatasetInitializedLocked()
	return nil
}

func (s *Storage) ensureDatasetInitializedLocked() {
	if s.data.Users == nil {
		s.data.Users = make(map[string]models.User)
	}
	if s.data.Videos == nil {
		s.data.Videos = make(map[string]models.Video)
	}
	if s.data.Comments == nil {
		s.data.Comments = make(map[string]models.Comment)
	}
	if s.data.Tweets == nil {
		s.data.Tweets = make(map[string]models.Tweet)
	}
	if s.data.Playlists == nil {
		s.data.Playlists = make(map[string]models.Playlist)
	}
	if s.data.Likes == nil {
		s.data.Likes = make(map[string]models.Like)
	}
	if s.data.Subscriptions == nil {
		s.data.Subscriptions = make(map[string]models.Subscription)
	}
}

func (s *Storage) persist() error {
	if s.persistOverride != nil {
		if err := s.persistOverride(s.data); err != nil {
			return err
		}
	}
	if s.filePath == "" {
		return nil
	}

	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, "store-*.json")
	if err != nil {
		return fmt.Errorf("create temp store file: %w", err)
	}
	tmpPath := tmpFile.Name()
	success := false
	defer func() {
		if !success {
			_ = tmpFile.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	encoder := json.NewEncoder(tmpFile)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(s.data); err != nil {
		return fmt.Errorf("encode store file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("flush store file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp store file: %w", err)
	}
	if err := os.Rename(tmpPath, s.filePath); err != nil {
		return fmt.Errorf("replace store file: %w", err)
	}
	success = true
	return nil
}

func (s *Storage) generateID() string {
	return uuid.NewString()
}

// Ping reports whether the datastore is usable.
func (s *Storage) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data.Users == nil {
		return errors.New("storage not initialised")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	salt := make([]byte, passwordHashSaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	derived := pbkdf2.Key([]byte(password), salt, passwordHashIterations, passwordHashKeyLength, sha256.New)
	encodedSalt := base64.RawStdEncoding.EncodeToString(salt)
	encodedKey := base64.RawStdEncoding.EncodeToString(derived)
	return fmt.Sprintf("pbkdf2$sha256$%d$%s$%s", passwordHashIterations, encodedSalt, encodedKey), nil
}

func verifyPassword(encodedHash, candidate string) error {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 5 {
		return fmt.Errorf("verify password: invalid hash format")
	}
	if parts[0] != "pbkdf2" || parts[1] != "sha256" {
		return fmt.Errorf("verify password: unsupported hash identifier")
	}
	iterations, err := strconv.Atoi(parts[2])
	if err != nil || iterations <= 0 {
		return fmt.Errorf("verify password: invalid iteration count")
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[3])
	if err != nil {
		return fmt.Errorf("verify password: decode salt: %w", err)
	}
	storedKey, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return fmt.Errorf("verify password: decode hash: %w", err)
	}
	derived := pbkdf2.Key([]byte(candidate), salt, iterations, len(storedKey), sha256.New)
	if len(derived) != len(storedKey) || subtle.ConstantTimeCompare(derived, storedKey) != 1 {
		return ErrInvalidCredentials
	}
	return nil
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
