package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// The upstream betting API wraps most payloads in a {success, data} envelope,
// but not all of them (some endpoints return raw arrays). unwrapData returns
// the data member when the envelope is present, the body untouched otherwise.
func unwrapData(body json.RawMessage) json.RawMessage {
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err == nil && env.Data != nil {
		return env.Data
	}
	return body
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// Register creates a new user account.
func (c *Client) Register(ctx context.Context, payload any) (json.RawMessage, error) {
	body, err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/api/auth/register", Body: payload})
	if err != nil {
		return nil, err
	}
	return unwrapData(body), nil
}

// Login authenticates a user and returns the session payload (token included).
func (c *Client) Login(ctx context.Context, payload any) (json.RawMessage, error) {
	body, err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/api/auth/login", Body: payload})
	if err != nil {
		return nil, err
	}
	return unwrapData(body), nil
}

// Profile fetches the authenticated user's profile. Never cached.
func (c *Client) Profile(ctx context.Context, token string) (json.RawMessage, error) {
	body, err := c.Do(ctx, Request{
		Method: http.MethodGet,
		Path:   "/api/auth/profile",
		Header: bearer(token),
	})
	if err != nil {
		return nil, err
	}
	return unwrapData(body), nil
}

// Events lists the available events. Cache-eligible.
func (c *Client) Events(ctx context.Context) (json.RawMessage, error) {
	body, err := c.Do(ctx, Request{
		Method:    http.MethodGet,
		Path:      "/api/events",
		Cacheable: true,
	})
	if err != nil {
		return nil, err
	}
	return unwrapData(body), nil
}

// EventByID fetches a single event. Cache-eligible.
func (c *Client) EventByID(ctx context.Context, eventID int) (json.RawMessage, error) {
	body, err := c.Do(ctx, Request{
		Method:    http.MethodGet,
		Path:      fmt.Sprintf("/api/events/%d", eventID),
		Cacheable: true,
	})
	if err != nil {
		return nil, err
	}
	return unwrapData(body), nil
}

// EventStats fetches the betting statistics of an event. Cache-eligible.
func (c *Client) EventStats(ctx context.Context, eventID int) (json.RawMessage, error) {
	body, err := c.Do(ctx, Request{
		Method:    http.MethodGet,
		Path:      fmt.Sprintf("/api/events/%d/stats", eventID),
		Cacheable: true,
	})
	if err != nil {
		return nil, err
	}
	return unwrapData(body), nil
}

// CreateBet places a new bet. Money-moving; never cached, never retried.
func (c *Client) CreateBet(ctx context.Context, payload any, token string) (json.RawMessage, error) {
	return c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/api/bets",
		Body:   payload,
		Header: bearer(token),
	})
}

// PreviewBet simulates a bet without placing it.
func (c *Client) PreviewBet(ctx context.Context, payload any, token string) (json.RawMessage, error) {
	return c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/api/bets/preview",
		Body:   payload,
		Header: bearer(token),
	})
}

// UserBets lists the authenticated user's bets. Personal data; never cached.
func (c *Client) UserBets(ctx context.Context, token string, query url.Values) (json.RawMessage, error) {
	return c.Do(ctx, Request{
		Method: http.MethodGet,
		Path:   "/api/bets/my-bets",
		Query:  query,
		Header: bearer(token),
	})
}

// UserBetStats fetches the authenticated user's betting statistics.
func (c *Client) UserBetStats(ctx context.Context, token string) (json.RawMessage, error) {
	body, err := c.Do(ctx, Request{
		Method: http.MethodGet,
		Path:   "/api/bets/my-stats",
		Header: bearer(token),
	})
	if err != nil {
		return nil, err
	}
	return unwrapData(body), nil
}

// CancelBet cancels a bet. Money-moving; never cached, never retried.
func (c *Client) CancelBet(ctx context.Context, betID int, token string) (json.RawMessage, error) {
	return c.Do(ctx, Request{
		Method: http.MethodDelete,
		Path:   fmt.Sprintf("/api/bets/%d", betID),
		Header: bearer(token),
	})
}

// Health probes the upstream health endpoint. Never cached.
func (c *Client) Health(ctx context.Context) (json.RawMessage, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: "/health"})
}
