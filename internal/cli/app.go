// Package cli is the terminal front end of Stat Wizard. It drives any
// Controller, either the in-process quiz.Service or a remote session
// service through sessionclient.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"stat-wizard/internal/quiz"
)

// Controller is the part of the session API the terminal needs.
type Controller interface {
	StartSession(ctx context.Context, input quiz.StartInput) (quiz.View, error)
	Begin(ctx context.Context, sessionID string) (quiz.View, error)
	Submit(ctx context.Context, sessionID string, answers map[quiz.StatCode]string) (quiz.SubmitOutcome, error)
	Advance(ctx context.Context, sessionID string) (quiz.View, error)
}

type Config struct {
	Nickname string
}

var errQuit = errors.New("quit")

// Run plays sessions until the user declines another one, types quit, or
// input ends.
func Run(ctx context.Context, in io.Reader, out io.Writer, controller Controller, cfg Config) error {
	reader := bufio.NewReader(in)
	previousID := ""

	for {
		view, err := startSession(ctx, reader, out, controller, quiz.StartInput{
			Nickname:          cfg.Nickname,
			PreviousSessionID: previousID,
		})
		if err != nil {
			return ignoreQuit(err)
		}

		final, err := playSession(ctx, reader, out, controller, view)
		if err != nil {
			return ignoreQuit(err)
		}
		printResults(out, final)

		again, err := promptYesNo(reader, out, "Play again? (yes/no): ")
		if err != nil || !again {
			return ignoreQuit(err)
		}
		previousID = final.ID
	}
}

// startSession retries a failed pool fetch for as long as the user asks to.
func startSession(ctx context.Context, reader *bufio.Reader, out io.Writer, controller Controller, input quiz.StartInput) (quiz.View, error) {
	for {
		view, err := controller.StartSession(ctx, input)
		if err == nil {
			return view, nil
		}
		if errors.Is(err, quiz.ErrSessionNotFound) && input.PreviousSessionID != "" {
			// The previous session expired; start without exclusions.
			input.PreviousSessionID = ""
			continue
		}

		log.Printf("start session: %v", err)
		fmt.Fprintf(out, "Could not load players: %v\n", err)
		retry, promptErr := promptYesNo(reader, out, "retry? (yes/no): ")
		if promptErr != nil || !retry {
			return quiz.View{}, errQuit
		}
	}
}

func playSession(ctx context.Context, reader *bufio.Reader, out io.Writer, controller Controller, view quiz.View) (quiz.View, error) {
	if view.Phase == quiz.PhaseIntro {
		if err := showIntro(reader, out); err != nil {
			return quiz.View{}, err
		}
		var err error
		if view, err = controller.Begin(ctx, view.ID); err != nil {
			return quiz.View{}, err
		}
	}

	for !view.IsDone() {
		if view.Round == nil {
			return quiz.View{}, errors.New("session has no active round")
		}
		printProgress(out, view)
		printPlayerCard(out, view)

		graded, err := playRound(ctx, reader, out, controller, view)
		if err != nil {
			return quiz.View{}, err
		}
		printFeedback(out, graded)

		if view, err = controller.Advance(ctx, view.ID); err != nil {
			return quiz.View{}, err
		}
	}
	return view, nil
}

// playRound prompts for the round's stats and submits them. An incomplete
// submission re-prompts from the field the controller reports as empty.
func playRound(ctx context.Context, reader *bufio.Reader, out io.Writer, controller Controller, view quiz.View) (quiz.View, error) {
	stats := view.Round.Stats
	answers := make(map[quiz.StatCode]string, len(stats))
	for stat, value := range view.Round.Inputs {
		answers[stat] = value
	}

	start := 0
	for {
		if err := promptStats(reader, out, stats[start:], answers); err != nil {
			return quiz.View{}, err
		}

		outcome, err := controller.Submit(ctx, view.ID, answers)
		if err != nil {
			return quiz.View{}, err
		}
		if outcome.Graded {
			return outcome.View, nil
		}

		fmt.Fprintf(out, "Fill in %s before submitting.\n", outcome.FocusStat)
		start = indexOf(stats, outcome.FocusStat)
	}
}

// promptStats asks for each stat in order. An empty line submits early and
// leaves the remaining fields as they are.
func promptStats(reader *bufio.Reader, out io.Writer, stats []quiz.StatCode, answers map[quiz.StatCode]string) error {
	for idx := 0; idx < len(stats); idx++ {
		stat := stats[idx]
		fmt.Fprintf(out, "%s (%s): ", stat, stat.Name())

		line, err := readLine(reader)
		if err != nil {
			return err
		}
		switch strings.ToLower(line) {
		case "":
			return nil
		case "?":
			printRules(out)
			idx--
			continue
		case "quit":
			return errQuit
		}
		answers[stat] = line
	}
	return nil
}

func showIntro(reader *bufio.Reader, out io.Writer) error {
	fmt.Fprintln(out, "STAT WIZARD")
	printRules(out)
	for {
		fmt.Fprint(out, "Press enter to start (? for rules, quit to exit): ")
		line, err := readLine(reader)
		if err != nil {
			return err
		}
		switch strings.ToLower(line) {
		case "?":
			printRules(out)
		case "quit":
			return errQuit
		default:
			return nil
		}
	}
}

func indexOf(stats []quiz.StatCode, target quiz.StatCode) int {
	for idx, stat := range stats {
		if stat == target {
			return idx
		}
	}
	return 0
}

func ignoreQuit(err error) error {
	if errors.Is(err, errQuit) {
		return nil
	}
	return err
}
