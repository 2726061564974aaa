package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"stat-wizard/internal/quiz"
)

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quiz.ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "session not found"})
	case errors.Is(err, quiz.ErrUnknownStat):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, quiz.ErrIntroActive),
		errors.Is(err, quiz.ErrInputLocked),
		errors.Is(err, quiz.ErrNotGraded),
		errors.Is(err, quiz.ErrSessionDone),
		errors.Is(err, quiz.ErrSessionConflict):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, quiz.ErrPoolUnavailable),
		errors.Is(err, quiz.ErrEmptyPool),
		errors.Is(err, quiz.ErrInsufficientPlayers):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "could not load players, try again"})
	case errors.Is(err, quiz.ErrHistoryDisabled):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	default:
		log.Printf("request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "request failed"})
	}
}

// decodeOptionalJSON decodes the body into dst. An empty body leaves dst
// untouched.
func decodeOptionalJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()

	err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func parseLimitParam(r *http.Request, defaultValue int) (int, error) {
	value := strings.TrimSpace(r.URL.Query().Get("limit"))
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return 0, errors.New("limit must be a positive integer")
	}
	return parsed, nil
}

func parseAnswers(raw map[string]answerValue) (map[quiz.StatCode]string, error) {
	answers := make(map[quiz.StatCode]string, len(raw))
	for key, value := range raw {
		stat, ok := quiz.ParseStatCode(key)
		if !ok {
			return nil, errors.New("unknown stat " + strconv.Quote(key))
		}
		answers[stat] = string(value)
	}
	return answers, nil
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}
