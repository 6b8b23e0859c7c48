package client

import (
	"context"
	"net/url"
	"time"
)

// TokenResponse is returned by the token endpoints. Each endpoint fills
// only the tokens it issues.
type TokenResponse struct {
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
}

// Account is a marketplace account as returned by /users/me
type Account struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// RefreshRequest carries a refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Login exchanges email and password for an access and refresh token pair
func (c *Client) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	form := url.Values{"username": {email}, "password": {password}}
	var resp TokenResponse
	if err := c.PostForm(ctx, "/users/token", form, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RenewRefreshToken trades a refresh token for a new one
func (c *Client) RenewRefreshToken(ctx context.Context, refreshToken string) (string, error) {
	var resp TokenResponse
	if err := c.Post(ctx, "/users/refresh-token", RefreshRequest{RefreshToken: refreshToken}, &resp); err != nil {
		return "", err
	}
	return resp.RefreshToken, nil
}

// NewAccessToken trades a refresh token for an access token
func (c *Client) NewAccessToken(ctx context.Context, refreshToken string) (string, error) {
	var resp TokenResponse
	if err := c.Post(ctx, "/users/access-token", RefreshRequest{RefreshToken: refreshToken}, &resp); err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

// Refresh renews the refresh token and obtains a fresh access token with it
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	renewed, err := c.RenewRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	access, err := c.NewAccessToken(ctx, renewed)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{AccessToken: access, RefreshToken: renewed, TokenType: "bearer"}, nil
}

// Me returns the account the current access token belongs to
func (c *Client) Me(ctx context.Context) (*Account, error) {
	var resp Account
	if err := c.Get(ctx, "/users/me", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
