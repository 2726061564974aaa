package cli

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"stat-wizard/internal/quiz"
)

const (
	circleDone    = "●"
	circlePending = "○"
	markCorrect   = "✓"
	markIncorrect = "✗"
)

func printRules(out io.Writer) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "How to play:")
	fmt.Fprintf(out, "  You will see %d players, one per round, each from a single game.\n", quiz.RoundsPerSession)
	fmt.Fprintf(out, "  Guess %d of their box-score stats for that game as whole numbers.\n", quiz.StatsPerRound)
	fmt.Fprintln(out, "  Press enter on an empty line to submit; every field must be filled in.")
	fmt.Fprintln(out, "  Each exact guess is worth one point.")
	fmt.Fprintln(out, "  Stats: PTS points, AST assists, REB rebounds, STL steals, BLK blocks, TO turnovers.")
	fmt.Fprintln(out, "  Type ? at any prompt to see these rules again, or quit to leave.")
	fmt.Fprintln(out)
}

func printProgress(out io.Writer, view quiz.View) {
	circles := make([]string, len(view.Remaining))
	for idx, remaining := range view.Remaining {
		if remaining {
			circles[idx] = circlePending
		} else {
			circles[idx] = circleDone
		}
	}
	number := 0
	if view.Round != nil {
		number = view.Round.Number
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Round %d/%d  %s  Score %d\n", number, quiz.RoundsPerSession, strings.Join(circles, " "), view.Score)
}

func printPlayerCard(out io.Writer, view quiz.View) {
	player := view.Round.Player

	fmt.Fprintln(out, strings.Repeat("-", 40))
	fmt.Fprintln(out, player.Name)

	details := make([]string, 0, 3)
	if player.TeamName != "" {
		details = append(details, player.TeamName)
	}
	if player.JerseyNumber != "" {
		details = append(details, "#"+player.JerseyNumber)
	}
	if player.Position != "" {
		details = append(details, player.Position)
	}
	if len(details) > 0 {
		fmt.Fprintln(out, strings.Join(details, " | "))
	}

	game := strings.TrimSpace(player.Matchup + "  " + player.Date)
	if game != "" {
		fmt.Fprintln(out, game)
	}
	if points := formatTeamPoints(player.TeamPoints); points != "" {
		fmt.Fprintln(out, points)
	}
	if view.Logos.Home != "" || view.Logos.Away != "" {
		fmt.Fprintf(out, "Logos: %s vs %s\n", view.Logos.Home, view.Logos.Away)
	}
	fmt.Fprintln(out, strings.Repeat("-", 40))
}

func printFeedback(out io.Writer, view quiz.View) {
	round := view.Round
	if round == nil {
		return
	}
	for _, stat := range round.Stats {
		mark := markIncorrect
		if round.Outcomes[stat] == quiz.OutcomeCorrect {
			mark = markCorrect
		}
		fmt.Fprintf(out, "%s %s: you said %s, actual %s\n", mark, stat, displayInput(round.Inputs[stat]), displayValue(round.Answers, stat))
	}
	fmt.Fprintf(out, "%d/%d correct\n", round.Correct, len(round.Stats))
}

func printResults(out io.Writer, view quiz.View) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Results")
	for idx, result := range view.Results {
		fmt.Fprintf(out, "%d. %s  %d/%d\n", idx+1, result.PlayerName, result.Score, len(result.Stats))
		for _, comparison := range result.Stats {
			mark := markIncorrect
			if comparison.Outcome == quiz.OutcomeCorrect {
				mark = markCorrect
			}
			actual := "n/a"
			if comparison.CorrectValue != nil {
				actual = strconv.Itoa(*comparison.CorrectValue)
			}
			fmt.Fprintf(out, "   %s %s %s (%s)\n", mark, comparison.Stat, displayInput(comparison.UserValue), actual)
		}
	}
	fmt.Fprintf(out, "Score: %d/%d\n", view.Score, view.MaxScore)
}

func formatTeamPoints(points map[string]float64) string {
	if len(points) == 0 {
		return ""
	}
	teams := make([]string, 0, len(points))
	for team := range points {
		teams = append(teams, team)
	}
	sort.Strings(teams)

	parts := make([]string, 0, len(teams))
	for _, team := range teams {
		parts = append(parts, team+" "+strconv.FormatFloat(points[team], 'f', -1, 64))
	}
	return strings.Join(parts, " - ")
}

func displayInput(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func displayValue(answers map[quiz.StatCode]int, stat quiz.StatCode) string {
	value, ok := answers[stat]
	if !ok {
		return "n/a"
	}
	return strconv.Itoa(value)
}
