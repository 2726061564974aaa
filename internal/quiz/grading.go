package quiz

import (
	"strconv"
	"strings"
)

type Outcome string

const (
	OutcomeUnset     Outcome = ""
	OutcomeCorrect   Outcome = "correct"
	OutcomeIncorrect Outcome = "incorrect"
)

type Grade struct {
	Correct  int
	Outcomes map[StatCode]Outcome
}

// StatComparison is one line of a round result: what the user typed next to
// the box-score value.
type StatComparison struct {
	Stat         StatCode `json:"stat"`
	UserValue    string   `json:"user_value"`
	CorrectValue *int     `json:"correct_value,omitempty"`
	Outcome      Outcome  `json:"outcome"`
}

// GradeAnswers scores one round. A stat is correct only when the leading
// integer of the input equals the player's value; blank, unparsable, or
// missing values are incorrect. A player without stats gets every stat marked
// incorrect together with ErrMissingPlayerData.
func GradeAnswers(player PlayerRecord, stats []StatCode, inputs map[StatCode]string) (Grade, error) {
	grade := Grade{Outcomes: make(map[StatCode]Outcome, len(stats))}
	if !player.HasStats() {
		for _, stat := range stats {
			grade.Outcomes[stat] = OutcomeIncorrect
		}
		return grade, ErrMissingPlayerData
	}

	for _, stat := range stats {
		if answerMatches(player.Stats, stat, inputs[stat]) {
			grade.Outcomes[stat] = OutcomeCorrect
			grade.Correct++
			continue
		}
		grade.Outcomes[stat] = OutcomeIncorrect
	}
	return grade, nil
}

func answerMatches(line StatLine, stat StatCode, input string) bool {
	want, ok := line.Value(stat)
	if !ok {
		return false
	}
	got, ok := parseGuess(input)
	return ok && got == want
}

// parseGuess reads the leading integer of input: optional leading
// whitespace, an optional sign, then a run of digits. Anything after the
// digits is ignored, so "20.0" reads as 20 and "5 ast" as 5.
func parseGuess(input string) (int, bool) {
	input = strings.TrimLeft(input, " \t\r\n")
	end := 0
	if end < len(input) && (input[end] == '+' || input[end] == '-') {
		end++
	}
	digits := end
	for end < len(input) && input[end] >= '0' && input[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	value, err := strconv.Atoi(input[:end])
	if err != nil {
		return 0, false
	}
	return value, true
}

func compareStats(player PlayerRecord, stats []StatCode, inputs map[StatCode]string, outcomes map[StatCode]Outcome) []StatComparison {
	lines := make([]StatComparison, 0, len(stats))
	for _, stat := range stats {
		line := StatComparison{
			Stat:      stat,
			UserValue: inputs[stat],
			Outcome:   outcomes[stat],
		}
		if value, ok := player.Stats.Value(stat); ok {
			valueCopy := value
			line.CorrectValue = &valueCopy
		}
		lines = append(lines, line)
	}
	return lines
}
