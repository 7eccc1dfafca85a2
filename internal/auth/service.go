package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

var (
	// ErrIdentityNotFound indicates the referenced user no longer exists.
	ErrIdentityNotFound = errors.New("identity not found")
	// ErrInvalidRefreshToken indicates the presented refresh token failed
	// codec verification.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	// ErrTokenMismatch indicates the presented refresh token does not match
	// the one on record: it was rotated away, revoked on logout, or lost a
	// concurrent rotation race. The client must re-authenticate.
	ErrTokenMismatch = errors.New("refresh token mismatch")
)

// UserDirectory reports whether an identity exists. The storage layer
// satisfies it.
type UserDirectory interface {
	UserExists(id string) bool
}

// TokenPair bundles a freshly issued access and refresh token.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// ServiceOption configures a Service instance.
type ServiceOption func(*Service)

// WithAccessTTL overrides the access token lifetime.
func WithAccessTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.accessTTL = ttl
		}
	}
}

// WithRefreshTTL overrides the refresh token lifetime.
func WithRefreshTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.refreshTTL = ttl
		}
	}
}

// WithLogger injects a logger for session lifecycle events.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Service issues, rotates, and revokes token pairs against a refresh token
// store. Access tokens are never persisted; the store tracks only the single
// currently valid refresh token per user.
type Service struct {
	codec      *Codec
	store      RefreshTokenStore
	users      UserDirectory
	accessTTL  time.Duration
	refreshTTL time.Duration
	logger     *slog.Logger
}

// NewService constructs a token Service. Defaults: 15 minute access TTL,
// 7 day refresh TTL, in-memory store when none is supplied.
func NewService(codec *Codec, store RefreshTokenStore, users UserDirectory, opts ...ServiceOption) *Service {
	service := &Service{
		codec:      codec,
		store:      store,
		users:      users,
		accessTTL:  15 * time.Minute,
		refreshTTL: 7 * 24 * time.Hour,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(service)
		}
	}
	if service.store == nil {
		service.store = NewMemoryRefreshTokenStore()
	}
	return service
}

// Verify checks an access token and returns the embedded user ID. It is the
// read-only path the request guard uses; it never touches the store.
func (s *Service) Verify(token string) (string, error) {
	return s.codec.Verify(token, KindAccess)
}

// Issue builds a fresh access/refresh pair for the user and records the
// refresh token unconditionally. Used at login, where there is no prior
// session to race against. Fails only when the user does not exist.
func (s *Service) Issue(ctx context.Context, userID string) (TokenPair, error) {
	if s.users != nil && !s.users.UserExists(userID) {
		return TokenPair{}, ErrIdentityNotFound
	}
	pair, err := s.signPair(userID)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.store.Set(ctx, userID, pair.RefreshToken); err != nil {
		return TokenPair{}, fmt.Errorf("record refresh token: %w", err)
	}
	return pair, nil
}

// Renew rotates a refresh token: the presented token must verify as
// refresh-kind and match the recorded value byte for byte, and the record is
// replaced atomically. A presented token that was already rotated away,
// revoked, or beaten by a concurrent renewal fails with ErrTokenMismatch even
// though its signature is still valid; exactly one concurrent caller wins.
func (s *Service) Renew(ctx context.Context, presented string) (TokenPair, error) {
	userID, err := s.codec.Verify(presented, KindRefresh)
	if err != nil {
		s.logger.Debug("refresh token rejected by codec", "error", err)
		return TokenPair{}, fmt.Errorf("%w: %w", ErrInvalidRefreshToken, err)
	}
	recorded, ok, err := s.store.Get(ctx, userID)
	if err != nil {
		return TokenPair{}, fmt.Errorf("load refresh token: %w", err)
	}
	if !ok || subtle.ConstantTimeCompare([]byte(recorded), []byte(presented)) != 1 {
		s.logger.Warn("refresh token mismatch", "user_id", userID)
		return TokenPair{}, ErrTokenMismatch
	}
	pair, err := s.signPair(userID)
	if err != nil {
		return TokenPair{}, err
	}
	swapped, err := s.store.CompareAndSwap(ctx, userID, presented, pair.RefreshToken)
	if err != nil {
		return TokenPair{}, fmt.Errorf("rotate refresh token: %w", err)
	}
	if !swapped {
		s.logger.Warn("refresh token rotation lost race", "user_id", userID)
		return TokenPair{}, ErrTokenMismatch
	}
	return pair, nil
}

// Revoke clears the recorded refresh token for the user. It is idempotent;
// afterwards any previously issued refresh token fails Renew with
// ErrTokenMismatch regardless of its own validity.
func (s *Service) Revoke(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	return s.store.Clear(ctx, userID)
}

// Ping verifies the underlying token store is reachable when it exposes a
// ping method.
func (s *Service) Ping(ctx context.Context) error {
	if s == nil || s.store == nil {
		return nil
	}
	if pinger, ok := s.store.(interface{ Ping(context.Context) error }); ok {
		return pinger.Ping(ctx)
	}
	return nil
}

func (s *Service) signPair(userID string) (TokenPair, error) {
	access, accessExpiry, err := s.codec.Sign(userID, KindAccess, s.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, refreshExpiry, err := s.codec.Sign(userID, KindRefresh, s.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExpiry,
		RefreshExpiresAt: refreshExpiry,
	}, nil
}
