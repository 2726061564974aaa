package quiz

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
)

type StatCode string

const (
	StatPoints    StatCode = "PTS"
	StatAssists   StatCode = "AST"
	StatRebounds  StatCode = "REB"
	StatSteals    StatCode = "STL"
	StatBlocks    StatCode = "BLK"
	StatTurnovers StatCode = "TO"
)

const (
	RoundsPerSession = 5
	StatsPerRound    = 3
)

var statLabels = [...]StatCode{StatPoints, StatAssists, StatRebounds, StatSteals, StatBlocks, StatTurnovers}

var statNames = map[StatCode]string{
	StatPoints:    "points",
	StatAssists:   "assists",
	StatRebounds:  "rebounds",
	StatSteals:    "steals",
	StatBlocks:    "blocks",
	StatTurnovers: "turnovers",
}

// AllStats returns the six stat codes in display order.
func AllStats() []StatCode {
	labels := make([]StatCode, len(statLabels))
	copy(labels, statLabels[:])
	return labels
}

// ParseStatCode accepts a stat code in any case. TOV is accepted as an alias
// for TO since the rules card spells it that way.
func ParseStatCode(raw string) (StatCode, bool) {
	code := StatCode(strings.ToUpper(strings.TrimSpace(raw)))
	if code == "TOV" {
		return StatTurnovers, true
	}
	if _, ok := statNames[code]; !ok {
		return "", false
	}
	return code, true
}

func (c StatCode) Name() string {
	if name, ok := statNames[c]; ok {
		return name
	}
	return string(c)
}

// StatLine maps stat codes to box-score values. The backend serializes
// numbers through pandas, so integral floats (20.0) and nulls both show up.
type StatLine map[StatCode]int

func (l *StatLine) UnmarshalJSON(data []byte) error {
	var raw map[string]*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	// A key spelled exactly like the code wins over aliases such as TOV or
	// lowercase variants, whatever order the keys come in.
	line := make(StatLine, len(raw))
	exact := make(map[StatCode]bool, len(raw))
	for key, value := range raw {
		code, ok := ParseStatCode(key)
		if !ok || value == nil {
			continue
		}
		if *value != math.Trunc(*value) {
			return fmt.Errorf("stat %s has non-integer value %v", key, *value)
		}
		if *value < math.MinInt || *value >= math.MaxInt {
			return fmt.Errorf("stat %s value %v is out of range", key, *value)
		}
		if exact[code] {
			continue
		}
		line[code] = int(*value)
		exact[code] = key == string(code)
	}
	*l = line
	return nil
}

func (l StatLine) Value(code StatCode) (int, bool) {
	value, ok := l[code]
	return value, ok
}

type TeamLogos struct {
	Home string `json:"home_team_logo"`
	Away string `json:"away_team_logo"`
}

func (l TeamLogos) IsZero() bool {
	return l.Home == "" && l.Away == ""
}

// GameInfo describes the game a player record was drawn from. Team1 is the
// side shown on the left of the matchup string.
type GameInfo struct {
	GameID     string             `json:"game_id"`
	Date       string             `json:"game_date"`
	Matchup    string             `json:"matchup"`
	Team1Logo  string             `json:"team1_logo"`
	Team2Logo  string             `json:"team2_logo"`
	TeamPoints map[string]float64 `json:"team_points,omitempty"`
}

type PlayerRecord struct {
	ID           string   `json:"player_id"`
	Name         string   `json:"player_name"`
	ImageURL     string   `json:"player_img"`
	TeamName     string   `json:"team_name"`
	TeamLogo     string   `json:"team_logo"`
	TeamColors   []string `json:"team_colors"`
	JerseyNumber string   `json:"jersey_number"`
	Position     string   `json:"position"`
	GameInfo
	Stats StatLine `json:"player_data"`
}

var defaultTeamColors = [3]string{"#FFFFFF", "#FFFFFF", "#FFFFFF"}

// TeamColor returns the primary (0), secondary (1) or tertiary (2) color,
// falling back to white when the record does not carry one.
func (p PlayerRecord) TeamColor(idx int) string {
	if idx < 0 || idx >= len(defaultTeamColors) {
		return ""
	}
	if idx < len(p.TeamColors) && strings.TrimSpace(p.TeamColors[idx]) != "" {
		return p.TeamColors[idx]
	}
	return defaultTeamColors[idx]
}

// HasStats reports whether the record can be graded against.
func (p PlayerRecord) HasStats() bool {
	return p.ID != "" && len(p.Stats) > 0
}

// Pool is the set of player records returned by the backend, keyed by player id.
type Pool map[string]PlayerRecord

// IDs returns the pool's identifiers in sorted order so that shuffles are
// reproducible for a given seed.
func (p Pool) IDs() []string {
	ids := make([]string, 0, len(p))
	for id := range p {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
