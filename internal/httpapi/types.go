package httpapi

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"stat-wizard/internal/quiz"
)

type createSessionRequest struct {
	Nickname          string `json:"nickname,omitempty"`
	PreviousSessionID string `json:"previous_session_id,omitempty"`
}

// answerValue accepts a typed field either as a JSON string or a number.
type answerValue string

func (v *answerValue) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*v = answerValue(text)
		return nil
	}

	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return errors.New("value must be a string or a number")
	}
	if _, err := strconv.ParseFloat(number.String(), 64); err != nil {
		return errors.New("value must be a string or a number")
	}
	*v = answerValue(number.String())
	return nil
}

type setAnswerRequest struct {
	Value answerValue `json:"value"`
}

type submitRequest struct {
	Answers map[string]answerValue `json:"answers,omitempty"`
}

type submitResponse struct {
	Graded    bool          `json:"graded"`
	FocusStat quiz.StatCode `json:"focus_stat,omitempty"`
	Correct   int           `json:"correct"`
	View      quiz.View     `json:"view"`
}

type recentResultsResponse struct {
	Sessions []quiz.SessionSummary `json:"sessions"`
}

type leaderboardResponse struct {
	Leaderboard []quiz.LeaderboardEntry `json:"leaderboard"`
}

type healthResponse struct {
	Status        string `json:"status"`
	ActiveClients int    `json:"active_clients"`
	History       bool   `json:"history"`
}

// sessionMessage is what the event feed writes for every session update.
type sessionMessage struct {
	Type      string    `json:"type"`
	View      quiz.View `json:"view"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error string `json:"error"`
}
