// Package sessionclient drives a remote stat-wizard service over HTTP. The
// client mirrors the quiz.Service methods the terminal front end needs, so
// local and remote play share one code path.
package sessionclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"stat-wizard/internal/quiz"
)

const DefaultServer = "http://127.0.0.1:8080"

var ErrServiceUnavailable = errors.New("stat-wizard service unavailable")

// Errors the service reports with their own message are matched back to the
// quiz sentinels so callers can use errors.Is on either side of the wire.
var knownErrors = []error{
	quiz.ErrSessionNotFound,
	quiz.ErrUnknownStat,
	quiz.ErrInputLocked,
	quiz.ErrNotGraded,
	quiz.ErrIntroActive,
	quiz.ErrSessionDone,
	quiz.ErrSessionConflict,
	quiz.ErrHistoryDisabled,
}

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	for _, known := range knownErrors {
		if e.Message == known.Error() {
			return known
		}
	}
	switch e.StatusCode {
	case http.StatusNotFound:
		return quiz.ErrSessionNotFound
	case http.StatusBadGateway:
		return quiz.ErrPoolUnavailable
	}
	return nil
}

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

type submitRequest struct {
	Answers map[string]string `json:"answers"`
}

type recentResultsResponse struct {
	Sessions []quiz.SessionSummary `json:"sessions"`
}

type leaderboardResponse struct {
	Leaderboard []quiz.LeaderboardEntry `json:"leaderboard"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewHTTPClient(baseURL string, httpClient *http.Client) *HTTPClient {
	baseURL = strings.TrimSpace(baseURL)
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = DefaultServer
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

func (c *HTTPClient) StartSession(ctx context.Context, input quiz.StartInput) (quiz.View, error) {
	var view quiz.View
	if err := c.doJSON(ctx, http.MethodPost, "/sessions", input, &view); err != nil {
		return quiz.View{}, err
	}
	return view, nil
}

func (c *HTTPClient) GetSession(ctx context.Context, sessionID string) (quiz.View, error) {
	var view quiz.View
	if err := c.doJSON(ctx, http.MethodGet, sessionPath(sessionID, ""), nil, &view); err != nil {
		return quiz.View{}, err
	}
	return view, nil
}

func (c *HTTPClient) Begin(ctx context.Context, sessionID string) (quiz.View, error) {
	var view quiz.View
	if err := c.doJSON(ctx, http.MethodPost, sessionPath(sessionID, "/begin"), nil, &view); err != nil {
		return quiz.View{}, err
	}
	return view, nil
}

func (c *HTTPClient) SetAnswer(ctx context.Context, sessionID string, stat quiz.StatCode, value string) (quiz.View, error) {
	request := map[string]string{"value": value}
	path := sessionPath(sessionID, "/answers/"+url.PathEscape(string(stat)))

	var view quiz.View
	if err := c.doJSON(ctx, http.MethodPut, path, request, &view); err != nil {
		return quiz.View{}, err
	}
	return view, nil
}

func (c *HTTPClient) Submit(ctx context.Context, sessionID string, answers map[quiz.StatCode]string) (quiz.SubmitOutcome, error) {
	request := submitRequest{Answers: make(map[string]string, len(answers))}
	for stat, value := range answers {
		request.Answers[string(stat)] = value
	}

	var outcome quiz.SubmitOutcome
	if err := c.doJSON(ctx, http.MethodPost, sessionPath(sessionID, "/submit"), request, &outcome); err != nil {
		return quiz.SubmitOutcome{}, err
	}
	return outcome, nil
}

func (c *HTTPClient) Advance(ctx context.Context, sessionID string) (quiz.View, error) {
	var view quiz.View
	if err := c.doJSON(ctx, http.MethodPost, sessionPath(sessionID, "/advance"), nil, &view); err != nil {
		return quiz.View{}, err
	}
	return view, nil
}

func (c *HTTPClient) ListRecent(ctx context.Context, limit int) ([]quiz.SessionSummary, error) {
	var payload recentResultsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/results/recent?"+limitQuery(limit), nil, &payload); err != nil {
		return nil, err
	}
	return payload.Sessions, nil
}

func (c *HTTPClient) GetLeaderboard(ctx context.Context, limit int) ([]quiz.LeaderboardEntry, error) {
	var payload leaderboardResponse
	if err := c.doJSON(ctx, http.MethodGet, "/leaderboard?"+limitQuery(limit), nil, &payload); err != nil {
		return nil, err
	}
	return payload.Leaderboard, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, requestBody any, responseBody any) error {
	fullURL := c.baseURL + path

	var body io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return err
	}
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer response.Body.Close()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		apiErr := APIError{StatusCode: response.StatusCode}
		var payload errorResponse
		if err := json.NewDecoder(response.Body).Decode(&payload); err == nil && strings.TrimSpace(payload.Error) != "" {
			apiErr.Message = payload.Error
		}
		if apiErr.Message == "" {
			apiErr.Message = response.Status
		}
		return &apiErr
	}

	if responseBody == nil {
		return nil
	}
	return json.NewDecoder(response.Body).Decode(responseBody)
}

func sessionPath(sessionID, suffix string) string {
	return "/sessions/" + url.PathEscape(strings.TrimSpace(sessionID)) + suffix
}

func limitQuery(limit int) string {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	return query.Encode()
}
