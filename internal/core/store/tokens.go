package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shelfline/shelfline/internal/core"
)

// GetOAuthToken returns the stored credential set for a provider, or nil
// when none exists.
func (s *Store) GetOAuthToken(ctx context.Context, provider string) (*core.OAuthToken, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	provider = strings.TrimSpace(provider)
	if provider == "" {
		return nil, errors.New("provider is required")
	}

	var (
		token        core.OAuthToken
		refreshToken sql.NullString
		expiresAt    int64
		updatedAt    int64
	)

	row := s.DB.QueryRowContext(ctx, `
		SELECT provider, access_token, refresh_token, expires_at, updated_at
		FROM oauth_tokens
		WHERE provider = ?
	`, provider)

	if err := row.Scan(&token.Provider, &token.AccessToken, &refreshToken, &expiresAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch oauth token: %w", err)
	}

	token.RefreshToken = refreshToken.String
	token.ExpiresAt = time.Unix(expiresAt, 0).UTC()
	token.UpdatedAt = time.Unix(updatedAt, 0).UTC()

	return &token, nil
}

// PutOAuthToken creates or replaces a provider's credential set.
func (s *Store) PutOAuthToken(ctx context.Context, token *core.OAuthToken) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if token == nil || strings.TrimSpace(token.Provider) == "" {
		return errors.New("token provider is required")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	updatedAt := token.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO oauth_tokens (provider, access_token, refresh_token, expires_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(provider) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`, token.Provider, token.AccessToken, nullString(token.RefreshToken), token.ExpiresAt.Unix(), updatedAt.Unix())
	if err != nil {
		return fmt.Errorf("store oauth token: %w", err)
	}

	return nil
}

// DeleteOAuthToken removes a provider's credential set. Deleting an absent
// token is not an error.
func (s *Store) DeleteOAuthToken(ctx context.Context, provider string) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM oauth_tokens WHERE provider = ?`, provider); err != nil {
		return fmt.Errorf("delete oauth token: %w", err)
	}
	return nil
}
