package quiz

import (
	"maps"
	"slices"
	"time"
)

// PlayerCard is the part of a player record that may be shown before the
// round is graded.
type PlayerCard struct {
	ID           string   `json:"player_id"`
	Name         string   `json:"player_name"`
	ImageURL     string   `json:"player_img"`
	TeamName     string   `json:"team_name"`
	TeamLogo     string   `json:"team_logo"`
	TeamColors   []string `json:"team_colors"`
	JerseyNumber string   `json:"jersey_number"`
	Position     string   `json:"position"`
	GameInfo
}

type RoundView struct {
	Number   int                  `json:"number"`
	Index    int                  `json:"index"`
	Stats    []StatCode           `json:"stats"`
	Inputs   map[StatCode]string  `json:"inputs"`
	Outcomes map[StatCode]Outcome `json:"outcomes"`
	Correct  int                  `json:"correct"`
	Player   PlayerCard           `json:"player"`
	Answers  map[StatCode]int     `json:"answers,omitempty"`
}

type View struct {
	ID        string        `json:"id"`
	Nickname  string        `json:"nickname,omitempty"`
	Phase     Phase         `json:"phase"`
	Round     *RoundView    `json:"round,omitempty"`
	Remaining []bool        `json:"remaining"`
	Completed []int         `json:"completed"`
	Score     int           `json:"score"`
	MaxScore  int           `json:"max_score"`
	Results   []RoundResult `json:"results"`
	Logos     TeamLogos     `json:"logos"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Version   int64         `json:"version"`
}

func (v View) IsDone() bool {
	return v.Phase == PhaseDone
}

// View renders the session for clients. Box-score values of the current
// round are only included once the round is graded.
func (s Session) View() View {
	view := View{
		ID:        s.ID,
		Nickname:  s.Nickname,
		Phase:     s.Phase,
		Remaining: make([]bool, RoundsPerSession),
		Completed: slices.Clone(s.Completed),
		Score:     s.Score,
		MaxScore:  s.MaxScore(),
		Results:   slices.Clone(s.Results),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		Version:   s.Version,
	}
	for idx := range view.Remaining {
		view.Remaining[idx] = !slices.Contains(s.Completed, idx)
	}
	if view.Completed == nil {
		view.Completed = []int{}
	}
	if view.Results == nil {
		view.Results = []RoundResult{}
	}

	if s.Phase == PhaseDone {
		return view
	}

	player, _ := s.CurrentPlayer()
	round := &RoundView{
		Number:   len(s.Completed) + 1,
		Index:    s.Round.Index,
		Stats:    slices.Clone(s.Round.Stats),
		Inputs:   maps.Clone(s.Round.Inputs),
		Outcomes: maps.Clone(s.Round.Outcomes),
		Correct:  s.Round.Correct,
		Player:   cardFor(player),
	}
	if s.Phase == PhaseGraded {
		round.Answers = make(map[StatCode]int, len(s.Round.Stats))
		for _, stat := range s.Round.Stats {
			if value, ok := player.Stats.Value(stat); ok {
				round.Answers[stat] = value
			}
		}
	}
	view.Round = round

	view.Logos = TeamLogos{Home: player.Team1Logo, Away: player.Team2Logo}
	if s.LogosKey != "" && s.LogosKey == s.RoundKey() && !s.Logos.IsZero() {
		view.Logos = s.Logos
	}
	return view
}

func cardFor(player PlayerRecord) PlayerCard {
	return PlayerCard{
		ID:           player.ID,
		Name:         player.Name,
		ImageURL:     player.ImageURL,
		TeamName:     player.TeamName,
		TeamLogo:     player.TeamLogo,
		TeamColors:   slices.Clone(player.TeamColors),
		JerseyNumber: player.JerseyNumber,
		Position:     player.Position,
		GameInfo:     player.GameInfo,
	}
}
