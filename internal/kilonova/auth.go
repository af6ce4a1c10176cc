package kilonova

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	q := url.Values{}
	q.Set("username", username)
	q.Set("password", password)

	req, err := c.newRequest(ctx, http.MethodPost, "/api/auth/login", q, nil)
	if err != nil {
		return "", err
	}

	var token string
	err = c.doAPI(req, &token)
	var apiErr *APIError
	if errors.As(err, &apiErr) || errors.Is(err, ErrUnauthorized) {
		return "", fmt.Errorf("logging in as %s: %w", username, ErrLoginFailed)
	}
	if err != nil {
		return "", fmt.Errorf("logging in: %w", err)
	}
	if token == "" {
		return "", fmt.Errorf("logging in: empty token")
	}
	return token, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	if err != nil {
		return err
	}
	authorize(req, token)

	resp, err := c.do(req)
	if err != nil {
		return fmt.Errorf("logging out: %w", err)
	}
	return resp.Body.Close()
}

// ExtendSession renews the token's expiry on the server.
func (c *Client) ExtendSession(ctx context.Context, token string) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/api/auth/extendSession", nil, nil)
	if err != nil {
		return err
	}
	authorize(req, token)

	if err := c.doAPI(req, nil); err != nil {
		return fmt.Errorf("extending session: %w", err)
	}
	return nil
}

// User is the account behind a token.
type User struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Self returns the user the token belongs to.
func (c *Client) Self(ctx context.Context, token string) (*User, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/user/self", nil, nil)
	if err != nil {
		return nil, err
	}
	authorize(req, token)

	var u User
	if err := c.doAPI(req, &u); err != nil {
		return nil, fmt.Errorf("fetching user: %w", err)
	}
	return &u, nil
}

// Ping reports whether the site answers within a short timeout.
func (c *Client) Ping(ctx context.Context) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	req, err := c.newRequest(ctx, http.MethodGet, "/", nil, nil)
	if err != nil {
		return false, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("pinging %s: %w", c.baseURL, err)
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}
