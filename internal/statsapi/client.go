package statsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"stat-wizard/internal/quiz"

	"github.com/cenkalti/backoff/v5"
)

const (
	defaultBaseURL  = "http://localhost:5000"
	defaultMaxTries = 3
	maxErrorBody    = 512
)

// ErrUnavailable marks failures worth retrying: the backend could not be
// reached or answered with a 5xx status.
var ErrUnavailable = errors.New("stats backend unavailable")

type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("stats backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("stats backend returned status %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	if e.StatusCode >= http.StatusInternalServerError {
		return ErrUnavailable
	}
	return nil
}

type Option func(*Client)

func WithMaxTries(tries uint) Option {
	return func(c *Client) {
		if tries > 0 {
			c.maxTries = tries
		}
	}
}

// WithBackOff replaces the exponential retry schedule. A fresh BackOff is
// built for every request.
func WithBackOff(newBackOff func() backoff.BackOff) Option {
	return func(c *Client) {
		if newBackOff != nil {
			c.newBackOff = newBackOff
		}
	}
}

// Client talks to the stats backend that serves the player pool and team
// logos.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxTries   uint
	newBackOff func() backoff.BackOff
}

type poolResponse struct {
	UsedPlayers map[string]quiz.PlayerRecord `json:"usedPlayers"`
}

func NewClient(baseURL string, httpClient *http.Client, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	client := &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		maxTries:   defaultMaxTries,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 250 * time.Millisecond
			b.MaxInterval = 2 * time.Second
			return b
		},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// FetchPool returns the backend's current player pool keyed by player id.
func (c *Client) FetchPool(ctx context.Context) (quiz.Pool, error) {
	var payload poolResponse
	if err := c.getJSON(ctx, "/", &payload); err != nil {
		return nil, err
	}

	pool := make(quiz.Pool, len(payload.UsedPlayers))
	for id, record := range payload.UsedPlayers {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		record.ID = id
		pool[id] = record
	}
	return pool, nil
}

func (c *Client) FetchTeamLogos(ctx context.Context, gameID string) (quiz.TeamLogos, error) {
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return quiz.TeamLogos{}, errors.New("game id is required")
	}

	var logos quiz.TeamLogos
	if err := c.getJSON(ctx, "/team_logos/"+url.PathEscape(gameID), &logos); err != nil {
		return quiz.TeamLogos{}, err
	}
	return logos, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, c.fetchOnce(ctx, path, out)
	}, backoff.WithBackOff(c.newBackOff()), backoff.WithMaxTries(c.maxTries))
	return err
}

func (c *Client) fetchOnce(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return backoff.Permanent(ctxErr)
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		statusErr := &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		if resp.StatusCode >= http.StatusInternalServerError {
			return statusErr
		}
		return backoff.Permanent(statusErr)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return backoff.Permanent(fmt.Errorf("decode %s response: %w", path, err))
	}
	return nil
}
