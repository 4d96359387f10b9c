// Package syncclient talks to the repcoach sync API and mirrors a local progress store to it.
package syncclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/myrjola/repcoach/internal/errors"
	"github.com/myrjola/repcoach/internal/history"
	"github.com/myrjola/repcoach/internal/progress"
	"golang.org/x/sync/errgroup"
)

var (
	ErrUnauthorized     = errors.NewSentinel("unauthorized")
	ErrUnexpectedStatus = errors.NewSentinel("unexpected status")
)

// maxConcurrentPushes bounds PushAll.
const maxConcurrentPushes = 4

// Session mirrors the server's register and login response.
type Session struct {
	Token    string `json:"token"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// Client is safe for concurrent use. Register and Login store the token for later calls.
type Client struct {
	http *http.Client
	url  string

	mu    sync.RWMutex
	token string
}

// New returns a client for the server at baseURL. A nil httpClient uses a client with a 10 second timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second} //nolint:mnd // generous for a single JSON call.
	}
	return &Client{http: httpClient, url: baseURL}
}

// SetToken replaces the bearer token.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (c *Client) Register(ctx context.Context, username, password string) (Session, error) {
	return c.authenticate(ctx, "/auth/register", username, password)
}

func (c *Client) Login(ctx context.Context, username, password string) (Session, error) {
	return c.authenticate(ctx, "/auth/login", username, password)
}

func (c *Client) authenticate(ctx context.Context, path, username, password string) (Session, error) {
	var s Session
	if err := c.Do(ctx, http.MethodPost, path, credentials{Username: username, Password: password}, &s); err != nil {
		return Session{}, err
	}
	c.SetToken(s.Token)
	return s, nil
}

// FetchProgress returns the completed days stored on the server.
func (c *Client) FetchProgress(ctx context.Context) (history.CompletedDays, error) {
	days := history.CompletedDays{}
	if err := c.Do(ctx, http.MethodGet, "/api/progress", nil, &days); err != nil {
		return nil, err
	}
	return days, nil
}

// PushDay marks a day completed on the server. Pushing a known day succeeds.
func (c *Client) PushDay(ctx context.Context, d progress.DayRef) error {
	var res struct {
		Success bool `json:"success"`
	}
	if err := c.Do(ctx, http.MethodPost, "/api/progress", d, &res); err != nil {
		return err
	}
	if !res.Success {
		return errors.Wrap(ErrUnexpectedStatus, "push day", slog.String("day_id", d.DayID))
	}
	return nil
}

// PushAll pushes days concurrently and returns the days that could not be pushed with the first error.
func (c *Client) PushAll(ctx context.Context, days []progress.DayRef) ([]progress.DayRef, error) {
	var (
		mu     sync.Mutex
		failed []progress.DayRef
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentPushes)
	for _, d := range days {
		g.Go(func() error {
			if err := c.PushDay(gctx, d); err != nil {
				mu.Lock()
				failed = append(failed, d)
				mu.Unlock()
				return err
			}
			return nil
		})
	}
	err := g.Wait()
	return failed, err
}

// Do sends in as JSON and decodes the response into out when out is not nil.
func (c *Client) Do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "marshal request")
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.url+path, body)
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "do request", slog.String("path", path))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return errors.Wrap(ErrUnauthorized, method+" "+path)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512)) //nolint:mnd // enough for an error message.
		return errors.Wrap(ErrUnexpectedStatus, method+" "+path,
			slog.Int("status", resp.StatusCode), slog.String("body", string(bytes.TrimSpace(msg))))
	}
	if out == nil {
		return nil
	}
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode response", slog.String("path", path))
	}
	return nil
}
