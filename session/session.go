// Package session holds the bearer credential of a DrugGuard client.
//
// A Session is the single source of truth for the current token. It is
// injected into the API client, which consults it before every request and
// clears it when the server rejects the credential.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Joeboy77/drug-guard-fe/logger"
	"github.com/golang-jwt/jwt/v5"
)

// TokenKey is the Store key holding the raw bearer token.
const TokenKey = "auth_token"

// ErrNoToken is returned when the session has no stored token.
var ErrNoToken = errors.New("no auth token stored")

// Session reads and writes the bearer token through a Store.
type Session struct {
	store Store
}

// New creates a Session backed by store.
func New(store Store) *Session {
	return &Session{store: store}
}

// Token returns the stored token. A Store failure is logged and reported as
// no token, so the request goes out unauthenticated and the server decides.
func (s *Session) Token(ctx context.Context) (string, bool) {
	token, err := s.store.Get(ctx, TokenKey)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logger.WarnContext(ctx, "Failed to read auth token", slog.Any("error", err))
		}

		return "", false
	}

	return token, token != ""
}

// SetToken persists token, replacing any previous one.
func (s *Session) SetToken(ctx context.Context, token string) error {
	if err := s.store.Set(ctx, TokenKey, token); err != nil {
		return fmt.Errorf("storing auth token: %w", err)
	}

	return nil
}

// Clear removes the stored token.
func (s *Session) Clear(ctx context.Context) error {
	if err := s.store.Delete(ctx, TokenKey); err != nil {
		return fmt.Errorf("removing auth token: %w", err)
	}

	return nil
}

// Claims is the display-only content of a JWT bearer token.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token carries an expiry that has passed at now.
func (c *Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// Claims decodes the stored token without verifying its signature. The
// result is for display only; the server is the authority on validity.
func (s *Session) Claims(ctx context.Context) (*Claims, error) {
	token, ok := s.Token(ctx)
	if !ok {
		return nil, ErrNoToken
	}

	var rc jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &rc); err != nil {
		return nil, fmt.Errorf("decoding auth token: %w", err)
	}

	c := &Claims{Subject: rc.Subject}
	if rc.IssuedAt != nil {
		c.IssuedAt = rc.IssuedAt.Time
	}
	if rc.ExpiresAt != nil {
		c.ExpiresAt = rc.ExpiresAt.Time
	}

	return c, nil
}
