package auth

import (
	"context"
	"crypto/subtle"
	"sync"
)

// RefreshTokenStore defines the persistence contract for the single currently
// valid refresh token tracked per user. Implementations must make
// CompareAndSwap atomic with respect to concurrent calls for the same user;
// it is the only mutation the rotation path is allowed to use.
type RefreshTokenStore interface {
	Get(ctx context.Context, userID string) (string, bool, error)
	Set(ctx context.Context, userID, token string) error
	Clear(ctx context.Context, userID string) error
	// CompareAndSwap replaces the stored token with next only when the stored
	// value equals old, reporting whether the swap happened.
	CompareAndSwap(ctx context.Context, userID, old, next string) (bool, error)
}

// MemoryRefreshTokenStore keeps refresh tokens in memory. It is safe for
// concurrent use and intended for development or single-instance deployments.
type MemoryRefreshTokenStore struct {
	mu     sync.RWMutex
	tokens map[string]string
}

// NewMemoryRefreshTokenStore constructs an in-memory store implementation.
func NewMemoryRefreshTokenStore() *MemoryRefreshTokenStore {
	return &MemoryRefreshTokenStore{tokens: make(map[string]string)}
}

// Get retrieves the recorded refresh token for the user.
func (s *MemoryRefreshTokenStore) Get(_ context.Context, userID string) (string, bool, error) {
	s.mu.RLock()
	token, ok := s.tokens[userID]
	s.mu.RUnlock()
	return token, ok, nil
}

// Set records the refresh token for the user, replacing any prior value.
func (s *MemoryRefreshTokenStore) Set(_ context.Context, userID, token string) error {
	s.mu.Lock()
	s.tokens[userID] = token
	s.mu.Unlock()
	return nil
}

// Clear removes the recorded refresh token for the user.
func (s *MemoryRefreshTokenStore) Clear(_ context.Context, userID string) error {
	s.mu.Lock()
	delete(s.tokens, userID)
	s.mu.Unlock()
	return nil
}

// CompareAndSwap atomically replaces the recorded token when it equals old.
func (s *MemoryRefreshTokenStore) CompareAndSwap(_ context.Context, userID, old, next string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.tokens[userID]
	if !ok {
		return false, nil
	}
	if subtle.ConstantTimeCompare([]byte(current), []byte(old)) != 1 {
		return false, nil
	}
	s.tokens[userID] = next
	return true, nil
}

// Ping always reports success for the in-memory store.
func (s *MemoryRefreshTokenStore) Ping(context.Context) error {
	return nil
}
