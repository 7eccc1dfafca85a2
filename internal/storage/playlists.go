package storage

import (
	"errors"
	"sort"
	"strings"

	"github.com/AdityaBhosale22/vidtube/internal/models"
)

// PlaylistUpdate represents the fields that can be modified on a playlist.
type PlaylistUpdate struct {
	Name        *string
	Description *string
}

// CreatePlaylist records an empty playlist for the owner.
func (s *Storage) CreatePlaylist(ownerID, name, description string) (models.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.Users[ownerID]; !ok {
		return models.Playlist{}, ErrUserNotFound
	}
	trimmedName := strings.TrimSpace(name)
	if trimmedName == "" {
		return models.Playlist{}, errors.New("name is required")
	}

	now := nowUTC()
	playlist := models.Playlist{
		ID:          s.generateID(),
		OwnerID:     ownerID,
		Name:        trimmedName,
		Description: strings.TrimSpace(description),
		VideoIDs:    []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.data.Playlists[playlist.ID] = playlist
	if err := s.persist(); err != nil {
		delete(s.data.Playlists, playlist.ID)
		return models.Playlist{}, err
	}
	return playlist, nil
}

// GetPlaylist looks up a playlist by ID.
func (s *Storage) GetPlaylist(id string) (models.Playlist, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	playlist, ok := s.data.Playlists[id]
	return playlist, ok
}

// ListUserPlaylists returns all playlists owned by the user, newest first.
func (s *Storage) ListUserPlaylists(ownerID string) ([]models.Playlist, error) {
	s.mu.RLock()
	if _, ok := s.data.Users[ownerID]; !ok {
		s.mu.RUnlock()
		return nil, ErrUserNotFound
	}
	playlists := make([]models.Playlist, 0)
	for _, playlist := range s.data.Playlists {
		if playlist.OwnerID == ownerID {
			playlists = append(playlists, playlist)
		}
	}
	s.mu.RUnlock()

	sort.Slice(playlists, func(i, j int) bool {
		return playlists[i].CreatedAt.After(playlists[j].CreatedAt)
	})
	return playlists, nil
}

// AddVideoToPlaylist appends a video to the playlist unless already present.
func (s *Storage) AddVideoToPlaylist(playlistID, videoID string) (models.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	playlist, ok := s.data.Playlists[playlistID]
	if !ok {
		return models.Playlist{}, ErrPlaylistNotFound
	}
	if _, ok := s.data.Videos[videoID]; !ok {
		return models.Playlist{}, ErrVideoNotFound
	}
	for _, existing := range playlist.VideoIDs {
		if existing == videoID {
			return playlist, nil
		}
	}
	previous := playlist
	playlist.VideoIDs = append(append([]string(nil), playlist.VideoIDs...), videoID)
	playlist.UpdatedAt = nowUTC()
	s.data.Playlists[playlistID] = playlist
	if err := s.persist(); err != nil {
		s.data.Playlists[playlistID] = previous
		return models.Playlist{}, err
	}
	return playlist, nil
}

// RemoveVideoFromPlaylist drops a video from the playlist if present.
func (s *Storage) RemoveVideoFromPlaylist(playlistID, videoID string) (models.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	playlist, ok := s.data.Playlists[playlistID]
	if !ok {
		return models.Playlist{}, ErrPlaylistNotFound
	}
	filtered := make([]string, 0, len(playlist.VideoIDs))
	for _, existing := range playlist.VideoIDs {
		if existing != videoID {
			filtered = append(filtered, existing)
		}
	}
	if len(filtered) == len(playlist.VideoIDs) {
		return playlist, nil
	}
	previous := playlist
	playlist.VideoIDs = filtered
	playlist.UpdatedAt = nowUTC()
	s.data.Playlists[playlistID] = playlist
	if err := s.persist(); err != nil {
		s.data.Playlists[playlistID] = previous
		return models.Playlist{}, err
	}
	return playlist, nil
}

// UpdatePlaylist applies partial updates to a playlist.
func (s *Storage) UpdatePlaylist(id string, update PlaylistUpdate) (models.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	playlist, ok := s.data.Playlists[id]
	if !ok {
		return models.Playlist{}, ErrPlaylistNotFound
	}
	previous := playlist
	if update.Name != nil {
		trimmed := strings.TrimSpace(*update.Name)
		if trimmed == "" {
			return models.Playlist{}, errors.New("name cannot be empty")
		}
		playlist.Name = trimmed
	}
	if update.Description != nil {
		playlist.Description = strings.TrimSpace(*update.Description)
	}
	playlist.UpdatedAt = nowUTC()
	s.data.Playlists[id] = playlist
	if err := s.persist(); err != nil {
		s.data.Playlists[id] = previous
		return models.Playlist{}, err
	}
	return playlist, nil
}

// DeletePlaylist removes a playlist.
func (s *Storage) DeletePlaylist(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous, ok := s.data.Playlists[id]
	if !ok {
		return ErrPlaylistNotFound
	}
	delete(s.data.Playlists, id)
	if err := s.persist(); err != nil {
		s.data.Playlists[id] = previous
		return err
	}
	return nil
}
