package drugguard

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Joeboy77/drug-guard-fe/logger"
)

const (
	SignInEndpoint   = "/auth/signin"
	SignOutEndpoint  = "/auth/signout"
	ValidateEndpoint = "/auth/validate"
)

// Login authenticates a staff member. The returned token is persisted in the
// session before Login returns, so any call made afterwards carries it.
func (c *Client) Login(ctx context.Context, creds LoginRequest) (*LoginResponse, error) {
	var resp LoginResponse
	err := c.makeRequest(ctx, request{method: http.MethodPost, endpoint: SignInEndpoint, body: creds}, &resp)
	if err != nil {
		return nil, err
	}

	if c.Session != nil {
		if err := c.Session.SetToken(ctx, resp.Token); err != nil {
			return nil, fmt.Errorf("login succeeded but token was not persisted: %w", err)
		}
	}

	return &resp, nil
}

// Logout signs out on the server and always clears the local token, even
// when the server cannot be reached. It never fails.
func (c *Client) Logout(ctx context.Context) {
	defer func() {
		if c.Session == nil {
			return
		}
		if err := c.Session.Clear(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to clear auth token on logout", slog.Any("error", err))
		}
	}()

	if err := c.makeRequest(ctx, request{method: http.MethodPost, endpoint: SignOutEndpoint}, nil); err != nil {
		logger.WarnContext(ctx, "Remote sign-out failed", slog.String("error", ErrorMessage(err)))
	}
}

// ValidateToken returns the staff profile of the current token.
func (c *Client) ValidateToken(ctx context.Context) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.makeRequest(ctx, request{method: http.MethodGet, endpoint: ValidateEndpoint}, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}
