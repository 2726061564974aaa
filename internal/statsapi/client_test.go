package statsapi

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"stat-wizard/internal/quiz"

	"github.com/cenkalti/backoff/v5"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
		Header:     make(http.Header),
	}
}

func newTestClient(rt http.RoundTripper, opts ...Option) *Client {
	opts = append([]Option{WithBackOff(func() backoff.BackOff { return &backoff.ZeroBackOff{} })}, opts...)
	return NewClient("http://stats.test/", &http.Client{Transport: rt}, opts...)
}

const poolPayload = `{
  "usedPlayers": {
    "1628369": {
      "player_name": "Jayson Tatum",
      "player_data": {"PTS": 31.0, "AST": 6.0, "REB": 11.0, "STL": 1.0, "BLK": 0.0, "TO": 3.0},
      "team_logo": "https://cdn.nba.com/logos/nba/1610612738/global/L/logo.svg",
      "team1_logo": "https://cdn.nba.com/logos/nba/1610612738/global/L/logo.svg",
      "team2_logo": "https://cdn.nba.com/logos/nba/1610612748/global/L/logo.svg",
      "player_img": "https://cdn.nba.com/headshots/nba/latest/1040x760/1628369.png",
      "team_name": "Boston Celtics",
      "team_colors": ["#007A33", "#BA9653", "#963821"],
      "jersey_number": "0",
      "position": "F",
      "matchup": "BOS vs. MIA",
      "game_date": "Jan 15, 2025",
      "team_points": {"BOS": 118, "MIA": 104},
      "game_id": "0022400551"
    },
    "203999": {
      "player_name": "Nikola Jokic",
      "player_data": {"PTS": 27, "AST": 12, "REB": null, "STL": 2, "BLK": 1, "TO": 4},
      "game_id": "0022400552"
    }
  }
}`

func TestFetchPoolDecodesRecords(t *testing.T) {
	var seenPath string
	client := newTestClient(roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		seenPath = r.URL.Path
		return jsonResponse(http.StatusOK, poolPayload), nil
	}))

	pool, err := client.FetchPool(context.Background())
	if err != nil {
		t.Fatalf("FetchPool returned error: %v", err)
	}
	if seenPath != "/" {
		t.Fatalf("expected request to /, got %q", seenPath)
	}
	if len(pool) != 2 {
		t.Fatalf("expected 2 players, got %d", len(pool))
	}

	tatum := pool["1628369"]
	if tatum.ID != "1628369" || tatum.Name != "Jayson Tatum" {
		t.Fatalf("unexpected record: %+v", tatum)
	}
	if value, ok := tatum.Stats.Value(quiz.StatPoints); !ok || value != 31 {
		t.Fatalf("PTS = (%d, %t), want (31, true)", value, ok)
	}
	if tatum.GameID != "0022400551" || tatum.Matchup != "BOS vs. MIA" {
		t.Fatalf("game info not decoded: %+v", tatum.GameInfo)
	}
	if tatum.TeamColor(1) != "#BA9653" {
		t.Fatalf("secondary color = %q", tatum.TeamColor(1))
	}

	jokic := pool["203999"]
	if _, ok := jokic.Stats.Value(quiz.StatRebounds); ok {
		t.Fatalf("null rebounds should be absent")
	}
	if jokic.TeamColor(0) != "#FFFFFF" {
		t.Fatalf("missing colors should fall back to white, got %q", jokic.TeamColor(0))
	}
}

func TestFetchPoolRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		if calls.Add(1) < 3 {
			return jsonResponse(http.StatusServiceUnavailable, "warming up"), nil
		}
		return jsonResponse(http.StatusOK, poolPayload), nil
	}))

	pool, err := client.FetchPool(context.Background())
	if err != nil {
		t.Fatalf("FetchPool returned error: %v", err)
	}
	if len(pool) != 2 {
		t.Fatalf("expected 2 players, got %d", len(pool))
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestFetchPoolGivesUpAfterMaxTries(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		calls.Add(1)
		return nil, errors.New("connection refused")
	}), WithMaxTries(2))

	_, err := client.FetchPool(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls.Load())
	}
}

func TestFetchPoolDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		calls.Add(1)
		return jsonResponse(http.StatusNotFound, "no such route"), nil
	}))

	_, err := client.FetchPool(context.Background())
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 StatusError, got %v", err)
	}
	if errors.Is(err, ErrUnavailable) {
		t.Fatalf("4xx must not be reported as unavailable")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single attempt, got %d", calls.Load())
	}
}

func TestFetchPoolJSONDecodeError(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		calls.Add(1)
		return jsonResponse(http.StatusOK, "not-json"), nil
	}))

	if _, err := client.FetchPool(context.Background()); err == nil {
		t.Fatalf("expected JSON decode error")
	}
	if calls.Load() != 1 {
		t.Fatalf("decode errors must not be retried, got %d attempts", calls.Load())
	}
}

func TestFetchTeamLogosEscapesGameID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.EscapedPath() != "/team_logos/00224%2F00551" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"home_team_logo":"bos.svg","away_team_logo":"mia.svg"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	logos, err := client.FetchTeamLogos(context.Background(), "00224/00551")
	if err != nil {
		t.Fatalf("FetchTeamLogos returned error: %v", err)
	}
	if logos.Home != "bos.svg" || logos.Away != "mia.svg" {
		t.Fatalf("unexpected logos: %+v", logos)
	}
}

func TestFetchTeamLogosRequiresGameID(t *testing.T) {
	client := newTestClient(roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		t.Fatalf("no request expected")
		return nil, nil
	}))

	if _, err := client.FetchTeamLogos(context.Background(), "  "); err == nil {
		t.Fatalf("expected error for empty game id")
	}
}
