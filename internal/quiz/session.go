package quiz

import (
	"errors"
	"maps"
	"slices"
	"strconv"
	"time"
)

type Phase string

const (
	PhaseIntro     Phase = "intro"
	PhaseAnswering Phase = "answering"
	PhaseGraded    Phase = "graded"
	PhaseDone      Phase = "done"
)

type Round struct {
	Index    int                  `json:"index"`
	Stats    []StatCode           `json:"stats"`
	Inputs   map[StatCode]string  `json:"inputs"`
	Outcomes map[StatCode]Outcome `json:"outcomes"`
	Correct  int                  `json:"correct"`
}

type RoundResult struct {
	PlayerID    string           `json:"player_id"`
	PlayerName  string           `json:"player_name"`
	PlayerImage string           `json:"player_image"`
	TeamColor   string           `json:"team_color"`
	TeamLogo    string           `json:"team_logo"`
	Score       int              `json:"score"`
	Stats       []StatComparison `json:"stats"`
}

// Session is one play-through. Transitions below never modify their input:
// they return a new Session and leave the old one intact.
type Session struct {
	ID        string         `json:"id"`
	Nickname  string         `json:"nickname,omitempty"`
	Players   []PlayerRecord `json:"players"`
	Used      UsedPlayers    `json:"used"`
	Phase     Phase          `json:"phase"`
	Round     Round          `json:"round"`
	Completed []int          `json:"completed"`
	Score     int            `json:"score"`
	Results   []RoundResult  `json:"results"`
	Logos     TeamLogos      `json:"logos"`
	LogosKey  string         `json:"logos_key,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	// Version counts stored transitions. Repositories use it to refuse a
	// save that raced with another writer.
	Version int64 `json:"version"`
}

type SubmitResult struct {
	Graded     bool
	NoOp       bool
	FocusStat  StatCode
	FocusIndex int
	Correct    int
	// MissingData is set when the round had no player data to grade against.
	// The round is still graded, with zero credit.
	MissingData bool
}

// NewSession starts a session in the intro phase with round 0 prepared.
func NewSession(id string, players []PlayerRecord, used UsedPlayers, stats []StatCode) (Session, error) {
	if len(players) < RoundsPerSession {
		return Session{}, ErrInsufficientPlayers
	}
	if err := validateStats(stats); err != nil {
		return Session{}, err
	}

	return Session{
		ID:        id,
		Players:   slices.Clone(players[:RoundsPerSession]),
		Used:      used,
		Phase:     PhaseIntro,
		Round:     newRound(0, stats),
		Completed: []int{},
		Results:   []RoundResult{},
	}, nil
}

// Begin dismisses the intro. Any other phase is left untouched.
func Begin(s Session) Session {
	if s.Phase != PhaseIntro {
		return s
	}
	next := s.clone()
	next.Phase = PhaseAnswering
	return next
}

func SetAnswer(s Session, stat StatCode, value string) (Session, error) {
	if err := s.checkEditable(); err != nil {
		return s, err
	}
	if !slices.Contains(s.Round.Stats, stat) {
		return s, ErrUnknownStat
	}

	next := s.clone()
	next.Round.Inputs[stat] = value
	return next, nil
}

// Submit grades the current round once every field holds a value. An
// incomplete round is not graded; the result names the first empty field
// and the session is returned unchanged. Submitting a finished or already
// graded session is a no-op. A round without player data is graded with
// zero credit.
func Submit(s Session) (Session, SubmitResult, error) {
	switch s.Phase {
	case PhaseDone:
		return s, SubmitResult{NoOp: true}, nil
	case PhaseGraded:
		return s, SubmitResult{Graded: true, NoOp: true, Correct: s.Round.Correct}, nil
	case PhaseIntro:
		return s, SubmitResult{}, ErrIntroActive
	}

	if idx, stat, ok := s.Round.firstEmpty(); ok {
		return s, SubmitResult{FocusStat: stat, FocusIndex: idx}, nil
	}

	player, _ := s.CurrentPlayer()
	grade, err := GradeAnswers(player, s.Round.Stats, s.Round.Inputs)
	missing := errors.Is(err, ErrMissingPlayerData)
	if err != nil && !missing {
		return s, SubmitResult{}, err
	}

	next := s.clone()
	next.Round.Outcomes = grade.Outcomes
	next.Round.Correct = grade.Correct
	next.Phase = PhaseGraded
	return next, SubmitResult{Graded: true, Correct: grade.Correct, MissingData: missing}, nil
}

// Advance records the graded round and moves to the next uncompleted player,
// or to PhaseDone after the last one. nextStats is ignored when the session
// finishes. Advancing a finished session is a no-op.
func Advance(s Session, nextStats []StatCode) (Session, error) {
	if s.Phase == PhaseDone {
		return s, nil
	}
	if s.Phase != PhaseGraded {
		return s, ErrNotGraded
	}

	player, _ := s.CurrentPlayer()
	next := s.clone()
	next.Completed = append(next.Completed, s.Round.Index)
	next.Score += s.Round.Correct
	next.Results = append(next.Results, RoundResult{
		PlayerID:    player.ID,
		PlayerName:  player.Name,
		PlayerImage: player.ImageURL,
		TeamColor:   player.TeamColor(0),
		TeamLogo:    player.TeamLogo,
		Score:       s.Round.Correct,
		Stats:       compareStats(player, s.Round.Stats, s.Round.Inputs, s.Round.Outcomes),
	})

	if len(next.Completed) >= RoundsPerSession {
		next.Phase = PhaseDone
		return next, nil
	}

	if err := validateStats(nextStats); err != nil {
		return s, err
	}
	nextIndex := nextRoundIndex(s.Round.Index, next.Completed, len(s.Players))
	if nextIndex < 0 {
		next.Phase = PhaseDone
		return next, nil
	}

	next.Round = newRound(nextIndex, nextStats)
	next.Phase = PhaseAnswering
	next.Logos = TeamLogos{}
	next.LogosKey = ""
	return next, nil
}

// MaxScore is the best score reachable over the completed rounds.
func (s Session) MaxScore() int {
	return StatsPerRound * len(s.Completed)
}

func (s Session) IsDone() bool {
	return s.Phase == PhaseDone
}

func (s Session) CurrentPlayer() (PlayerRecord, bool) {
	if s.Round.Index < 0 || s.Round.Index >= len(s.Players) {
		return PlayerRecord{}, false
	}
	return s.Players[s.Round.Index], true
}

// RoundKey identifies the current round for asynchronous lookups. A lookup
// started under one key must be discarded once the key changes.
func (s Session) RoundKey() string {
	if s.Phase == PhaseDone {
		return ""
	}
	player, _ := s.CurrentPlayer()
	return strconv.Itoa(s.Round.Index) + ":" + player.GameID
}

func (s Session) checkEditable() error {
	switch s.Phase {
	case PhaseDone:
		return ErrSessionDone
	case PhaseIntro:
		return ErrIntroActive
	case PhaseGraded:
		return ErrInputLocked
	}
	return nil
}

func (s Session) clone() Session {
	next := s
	next.Players = slices.Clone(s.Players)
	next.Completed = slices.Clone(s.Completed)
	next.Results = slices.Clone(s.Results)
	next.Round = Round{
		Index:    s.Round.Index,
		Stats:    slices.Clone(s.Round.Stats),
		Inputs:   maps.Clone(s.Round.Inputs),
		Outcomes: maps.Clone(s.Round.Outcomes),
		Correct:  s.Round.Correct,
	}
	if next.Round.Inputs == nil {
		next.Round.Inputs = map[StatCode]string{}
	}
	if next.Round.Outcomes == nil {
		next.Round.Outcomes = map[StatCode]Outcome{}
	}
	return next
}

func (r Round) firstEmpty() (int, StatCode, bool) {
	for idx, stat := range r.Stats {
		if r.Inputs[stat] == "" {
			return idx, stat, true
		}
	}
	return -1, "", false
}

func newRound(index int, stats []StatCode) Round {
	return Round{
		Index:    index,
		Stats:    slices.Clone(stats),
		Inputs:   map[StatCode]string{},
		Outcomes: map[StatCode]Outcome{},
	}
}

// nextRoundIndex walks forward from current, wrapping, to the first index
// not yet completed. It returns -1 when every index is completed.
func nextRoundIndex(current int, completed []int, count int) int {
	for step := 1; step <= count; step++ {
		candidate := (current + step) % count
		if !slices.Contains(completed, candidate) {
			return candidate
		}
	}
	return -1
}

func validateStats(stats []StatCode) error {
	if len(stats) != StatsPerRound {
		return ErrUnknownStat
	}
	seen := make(map[StatCode]struct{}, len(stats))
	for _, stat := range stats {
		if _, ok := statNames[stat]; !ok {
			return ErrUnknownStat
		}
		if _, dup := seen[stat]; dup {
			return ErrUnknownStat
		}
		seen[stat] = struct{}{}
	}
	return nil
}
