package httpapi

import (
	"log"
	"net/http"
	"strings"

	"stat-wizard/internal/quiz"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const defaultListLimit = 10

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func (a *API) HandleHealth(w http.ResponseWriter, r *http.Request) {
	clients := 0
	if a.hub != nil {
		clients = a.hub.ClientCount()
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "ok",
		ActiveClients: clients,
		History:       a.history != nil,
	})
}

func (a *API) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	var request createSessionRequest
	if err := decodeOptionalJSON(r, &request); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	view, err := a.service.StartSession(r.Context(), quiz.StartInput{
		Nickname:          request.Nickname,
		PreviousSessionID: request.PreviousSessionID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (a *API) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	view, err := a.service.GetSession(r.Context(), chi.URLParam(r, "session_id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (a *API) HandleBegin(w http.ResponseWriter, r *http.Request) {
	view, err := a.service.Begin(r.Context(), chi.URLParam(r, "session_id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (a *API) HandleSetAnswer(w http.ResponseWriter, r *http.Request) {
	stat, ok := quiz.ParseStatCode(chi.URLParam(r, "stat"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown stat"})
		return
	}

	var request setAnswerRequest
	if err := decodeOptionalJSON(r, &request); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	view, err := a.service.SetAnswer(r.Context(), chi.URLParam(r, "session_id"), stat, string(request.Value))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleSubmit grades the current round. An incomplete round is not an error:
// the response has graded=false and names the field to fill next.
func (a *API) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var request submitRequest
	if err := decodeOptionalJSON(r, &request); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	answers, err := parseAnswers(request.Answers)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	outcome, err := a.service.Submit(r.Context(), chi.URLParam(r, "session_id"), answers)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, submitResponse{
		Graded:    outcome.Graded,
		FocusStat: outcome.FocusStat,
		Correct:   outcome.Correct,
		View:      outcome.View,
	})
}

func (a *API) HandleAdvance(w http.ResponseWriter, r *http.Request) {
	view, err := a.service.Advance(r.Context(), chi.URLParam(r, "session_id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleSessionEvents upgrades to a websocket that receives the session view
// after every transition, starting with the current one.
func (a *API) HandleSessionEvents(w http.ResponseWriter, r *http.Request) {
	if a.hub == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "live updates are not enabled"})
		return
	}

	sessionID := strings.TrimSpace(chi.URLParam(r, "session_id"))
	if _, err := a.service.GetSession(r.Context(), sessionID); err != nil {
		writeServiceError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade for session %s: %v", sessionID, err)
		return
	}

	// Subscribe before reading the snapshot so no transition falls between
	// the two. Older views that arrive late are skipped by the write pump.
	client := NewClient(uuid.NewString(), sessionID, conn, a.hub)
	a.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	view, err := a.service.GetSession(r.Context(), sessionID)
	if err != nil {
		log.Printf("load session %s for events: %v", sessionID, err)
		a.hub.Unregister(client)
		return
	}
	a.hub.Send(client, view)
}

func (a *API) HandleRecentResults(w http.ResponseWriter, r *http.Request) {
	if a.history == nil {
		writeServiceError(w, quiz.ErrHistoryDisabled)
		return
	}
	limit, err := parseLimitParam(r, defaultListLimit)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	sessions, err := a.history.ListRecent(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recentResultsResponse{Sessions: sessions})
}

func (a *API) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if a.history == nil {
		writeServiceError(w, quiz.ErrHistoryDisabled)
		return
	}
	limit, err := parseLimitParam(r, defaultListLimit)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	entries, err := a.history.GetLeaderboard(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, leaderboardResponse{Leaderboard: entries})
}
