package auth

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRefreshTokenStore persists refresh tokens to a Postgres table,
// allowing multiple API replicas to share session state. The compare-and-swap
// is a single conditional UPDATE so concurrent rotations for the same user
// cannot both win.
type PostgresRefreshTokenStore struct {
	pool *pgxpool.Pool
}

// NewPostgresRefreshTokenStore opens a Postgres-backed store using the
// provided DSN and creates the backing table when missing.
func NewPostgresRefreshTokenStore(ctx context.Context, dsn string) (*PostgresRefreshTokenStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres refresh token dsn required")
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres refresh token config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres refresh token pool: %w", err)
	}
	store := &PostgresRefreshTokenStore{pool: pool}
	if err := store.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

func (s *PostgresRefreshTokenStore) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS auth_refresh_tokens (
    user_id    TEXT PRIMARY KEY,
    token      TEXT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)
`)
	if err != nil {
		return fmt.Errorf("migrate auth_refresh_tokens: %w", err)
	}
	return nil
}

// Close releases the connection pool resources.
func (s *PostgresRefreshTokenStore) Close(ctx context.Context) error {
	if s == nil || s.pool == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		s.pool.Close()
		close(done)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// Get fetches the recorded refresh token for the user.
func (s *PostgresRefreshTokenStore) Get(ctx context.Context, userID string) (string, bool, error) {
	if s.pool == nil {
		return "", false, fmt.Errorf("postgres refresh token pool not configured")
	}
	row := s.pool.QueryRow(ctx, `SELECT token FROM auth_refresh_tokens WHERE user_id = $1`, userID)
	var token string
	if err := row.Scan(&token); err != nil {
		if err == pgx.ErrNoRows {
			return "", false, nil
		}
		return "", false, err
	}
	return token, true, nil
}

// Set stores or replaces the refresh token for the user.
func (s *PostgresRefreshTokenStore) Set(ctx context.Context, userID, token string) error {
	if s.pool == nil {
		return fmt.Errorf("postgres refresh token pool not configured")
	}
	_, err := s.pool.Exec(ctx, `
INSERT INTO auth_refresh_tokens (user_id, token, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (user_id) DO UPDATE SET token = EXCLUDED.token, updated_at = now()
`, userID, token)
	return err
}

// Clear removes the recorded refresh token for the user.
func (s *PostgresRefreshTokenStore) Clear(ctx context.Context, userID string) error {
	if s.pool == nil {
		return fmt.Errorf("postgres refresh token pool not configured")
	}
	_, err := s.pool.Exec(ctx, `DELETE FROM auth_refresh_tokens WHERE user_id = $1`, userID)
	return err
}

// CompareAndSwap replaces the stored token only when it currently equals old.
// The conditional UPDATE executes as one atomic statement; exactly one of
// several concurrent rotations presenting the same old token observes a row
// change.
func (s *PostgresRefreshTokenStore) CompareAndSwap(ctx context.Context, userID, old, next string) (bool, error) {
	if s.pool == nil {
		return false, fmt.Errorf("postgres refresh token pool not configured")
	}
	tag, err := s.pool.Exec(ctx, `
UPDATE auth_refresh_tokens SET token = $3, updated_at = now()
WHERE user_id = $1 AND token = $2
`, userID, old, next)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Ping verifies the backing pool is reachable.
func (s *PostgresRefreshTokenStore) Ping(ctx context.Context) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("postgres refresh token pool not configured")
	}
	return s.pool.Ping(ctx)
}
