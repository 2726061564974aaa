package quiz

import (
	"errors"
	"testing"
)

var roundStats = []StatCode{StatPoints, StatAssists, StatRebounds}

func sessionPlayers() []PlayerRecord {
	players, _, err := SelectRound(samplePool(RoundsPerSession), UsedPlayers{}, newTestRand())
	if err != nil {
		panic(err)
	}
	return players
}

func newTestSession(t *testing.T) Session {
	t.Helper()
	session, err := NewSession("session-1", sessionPlayers(), UsedPlayers{}, roundStats)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	return Begin(session)
}

func answerRound(t *testing.T, session Session, values map[StatCode]string) Session {
	t.Helper()
	for _, stat := range session.Round.Stats {
		next, err := SetAnswer(session, stat, values[stat])
		if err != nil {
			t.Fatalf("SetAnswer(%s) failed: %v", stat, err)
		}
		session = next
	}
	return session
}

func exactAnswers() map[StatCode]string {
	return map[StatCode]string{
		StatPoints:    "20",
		StatAssists:   "5",
		StatRebounds:  "10",
		StatSteals:    "2",
		StatBlocks:    "1",
		StatTurnovers: "3",
	}
}

func TestNewSessionStartsInIntro(t *testing.T) {
	session, err := NewSession("s", sessionPlayers(), UsedPlayers{}, roundStats)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	if session.Phase != PhaseIntro {
		t.Fatalf("phase = %q, want intro", session.Phase)
	}
	if session.Round.Index != 0 || len(session.Completed) != 0 || session.Score != 0 {
		t.Fatalf("unexpected initial state: %+v", session)
	}

	if _, err := SetAnswer(session, StatPoints, "1"); !errors.Is(err, ErrIntroActive) {
		t.Fatalf("expected ErrIntroActive while intro is shown, got %v", err)
	}
	if _, _, err := Submit(session); !errors.Is(err, ErrIntroActive) {
		t.Fatalf("expected ErrIntroActive on submit, got %v", err)
	}

	begun := Begin(session)
	if begun.Phase != PhaseAnswering {
		t.Fatalf("phase after Begin = %q", begun.Phase)
	}
	if session.Phase != PhaseIntro {
		t.Fatalf("Begin must not modify its input")
	}
}

func TestNewSessionRejectsShortSelectionsAndBadStats(t *testing.T) {
	players := sessionPlayers()
	if _, err := NewSession("s", players[:4], UsedPlayers{}, roundStats); !errors.Is(err, ErrInsufficientPlayers) {
		t.Fatalf("expected ErrInsufficientPlayers, got %v", err)
	}
	if _, err := NewSession("s", players, UsedPlayers{}, []StatCode{StatPoints, StatPoints, StatBlocks}); !errors.Is(err, ErrUnknownStat) {
		t.Fatalf("expected ErrUnknownStat for duplicate stats, got %v", err)
	}
	if _, err := NewSession("s", players, UsedPlayers{}, []StatCode{StatPoints, "MIN", StatBlocks}); !errors.Is(err, ErrUnknownStat) {
		t.Fatalf("expected ErrUnknownStat for unknown stat, got %v", err)
	}
}

func TestFullSessionWithExactAnswersScoresFifteen(t *testing.T) {
	session := newTestSession(t)
	rng := newTestRand()

	for round := 0; round < RoundsPerSession; round++ {
		if session.IsDone() {
			t.Fatalf("session finished early after %d rounds", round)
		}
		session = answerRound(t, session, exactAnswers())

		graded, result, err := Submit(session)
		if err != nil {
			t.Fatalf("Submit round %d failed: %v", round, err)
		}
		if !result.Graded || result.Correct != StatsPerRound {
			t.Fatalf("round %d result = %+v", round, result)
		}

		session, err = Advance(graded, PickStats(rng))
		if err != nil {
			t.Fatalf("Advance round %d failed: %v", round, err)
		}
		if session.Score < 0 || session.Score > session.MaxScore() {
			t.Fatalf("score %d outside [0, %d]", session.Score, session.MaxScore())
		}
	}

	if !session.IsDone() {
		t.Fatalf("expected session to be done, phase %q", session.Phase)
	}
	if session.Score != 15 || session.MaxScore() != 15 {
		t.Fatalf("final score = %d/%d, want 15/15", session.Score, session.MaxScore())
	}
	if len(session.Results) != RoundsPerSession {
		t.Fatalf("expected %d round results, got %d", RoundsPerSession, len(session.Results))
	}

	seen := make(map[int]bool)
	for _, idx := range session.Completed {
		if seen[idx] {
			t.Fatalf("round %d completed twice: %v", idx, session.Completed)
		}
		seen[idx] = true
	}
}

func TestSubmitWithEmptyFieldReturnsFocus(t *testing.T) {
	session := newTestSession(t)
	session, _ = SetAnswer(session, StatPoints, "20")
	session, _ = SetAnswer(session, StatRebounds, "   ")

	next, result, err := Submit(session)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if result.Graded {
		t.Fatalf("incomplete round must not be graded")
	}
	if result.FocusStat != StatAssists || result.FocusIndex != 1 {
		t.Fatalf("focus = (%q, %d), want (AST, 1)", result.FocusStat, result.FocusIndex)
	}
	if next.Phase != PhaseAnswering || len(next.Round.Outcomes) != 0 || next.Score != 0 {
		t.Fatalf("session changed after incomplete submit: %+v", next.Round)
	}
}

func TestSubmitGradesWhitespaceOnlyField(t *testing.T) {
	session := newTestSession(t)
	session = answerRound(t, session, map[StatCode]string{
		StatPoints:   "20",
		StatAssists:  "  ",
		StatRebounds: "10",
	})

	next, result, err := Submit(session)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if !result.Graded || result.Correct != 2 {
		t.Fatalf("result = %+v, want graded with 2 correct", result)
	}
	if next.Round.Outcomes[StatAssists] != OutcomeIncorrect {
		t.Fatalf("whitespace-only answer should be incorrect, got %q", next.Round.Outcomes[StatAssists])
	}
}

func TestSubmitMixedAnswers(t *testing.T) {
	session := newTestSession(t)
	session = answerRound(t, session, map[StatCode]string{
		StatPoints:   "abc",
		StatAssists:  "5",
		StatRebounds: "11",
	})

	graded, result, err := Submit(session)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if result.Correct != 1 {
		t.Fatalf("correct = %d, want 1", result.Correct)
	}
	if graded.Round.Outcomes[StatPoints] != OutcomeIncorrect || graded.Round.Outcomes[StatAssists] != OutcomeCorrect {
		t.Fatalf("unexpected outcomes: %+v", graded.Round.Outcomes)
	}

	if _, err := SetAnswer(graded, StatPoints, "20"); !errors.Is(err, ErrInputLocked) {
		t.Fatalf("expected ErrInputLocked after grading, got %v", err)
	}

	again, repeat, err := Submit(graded)
	if err != nil {
		t.Fatalf("repeat Submit failed: %v", err)
	}
	if !repeat.NoOp || repeat.Correct != 1 || again.Score != graded.Score {
		t.Fatalf("repeat submit should be a no-op, got %+v", repeat)
	}
}

func TestSubmitWithoutPlayerDataAwardsNothing(t *testing.T) {
	players := sessionPlayers()
	players[0].Stats = nil
	session, err := NewSession("s", players, UsedPlayers{}, roundStats)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	session = answerRound(t, Begin(session), exactAnswers())

	graded, result, err := Submit(session)
	if err != nil {
		t.Fatalf("Submit should fail softly, got %v", err)
	}
	if !result.Graded || !result.MissingData || result.Correct != 0 {
		t.Fatalf("expected zero-credit grade, got %+v", result)
	}
	if graded.Phase != PhaseGraded {
		t.Fatalf("phase = %q, want graded", graded.Phase)
	}
	for _, stat := range roundStats {
		if graded.Round.Outcomes[stat] != OutcomeIncorrect {
			t.Fatalf("outcome for %s = %q, want incorrect", stat, graded.Round.Outcomes[stat])
		}
	}

	next, err := Advance(graded, []StatCode{StatSteals, StatBlocks, StatTurnovers})
	if err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	if next.Score != 0 || len(next.Completed) != 1 {
		t.Fatalf("score %d completed %v", next.Score, next.Completed)
	}
}

func TestAdvanceRequiresGradedRound(t *testing.T) {
	session := newTestSession(t)
	if _, err := Advance(session, roundStats); !errors.Is(err, ErrNotGraded) {
		t.Fatalf("expected ErrNotGraded, got %v", err)
	}
}

func TestAdvanceOnDoneSessionIsNoOp(t *testing.T) {
	session := newTestSession(t)
	rng := newTestRand()
	for !session.IsDone() {
		session = answerRound(t, session, exactAnswers())
		graded, _, err := Submit(session)
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
		if session, err = Advance(graded, PickStats(rng)); err != nil {
			t.Fatalf("Advance failed: %v", err)
		}
	}

	again, err := Advance(session, PickStats(rng))
	if err != nil {
		t.Fatalf("Advance on done session failed: %v", err)
	}
	if again.Score != session.Score || len(again.Completed) != len(session.Completed) {
		t.Fatalf("Advance on done session changed state")
	}
	if _, result, _ := Submit(again); !result.NoOp {
		t.Fatalf("Submit on done session should be a no-op")
	}
	if _, err := SetAnswer(again, StatPoints, "1"); !errors.Is(err, ErrSessionDone) {
		t.Fatalf("expected ErrSessionDone, got %v", err)
	}
}

func TestAdvanceResetsRoundAndLogos(t *testing.T) {
	session := newTestSession(t)
	session.Logos = TeamLogos{Home: "home.png", Away: "away.png"}
	session.LogosKey = session.RoundKey()
	session = answerRound(t, session, exactAnswers())
	graded, _, _ := Submit(session)

	next, err := Advance(graded, []StatCode{StatSteals, StatBlocks, StatTurnovers})
	if err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	if next.Round.Index != 1 || next.Phase != PhaseAnswering {
		t.Fatalf("round = %d phase = %q, want round 1 answering", next.Round.Index, next.Phase)
	}
	if len(next.Round.Inputs) != 0 || len(next.Round.Outcomes) != 0 {
		t.Fatalf("round inputs not reset: %+v", next.Round)
	}
	if !next.Logos.IsZero() || next.LogosKey != "" {
		t.Fatalf("logos should reset between rounds: %+v", next.Logos)
	}
	if graded.Round.Index != 0 || len(graded.Completed) != 0 {
		t.Fatalf("Advance must not modify its input")
	}
}

func TestNextRoundIndexWraps(t *testing.T) {
	if got := nextRoundIndex(3, []int{0, 3, 4}, 5); got != 1 {
		t.Fatalf("nextRoundIndex = %d, want 1", got)
	}
	if got := nextRoundIndex(4, []int{1, 2, 3, 4}, 5); got != 0 {
		t.Fatalf("nextRoundIndex = %d, want 0", got)
	}
	if got := nextRoundIndex(0, []int{0, 1, 2, 3, 4}, 5); got != -1 {
		t.Fatalf("nextRoundIndex = %d, want -1", got)
	}
}

func TestViewHidesAnswersUntilGraded(t *testing.T) {
	session := newTestSession(t)

	view := session.View()
	if view.Round == nil || view.Round.Answers != nil {
		t.Fatalf("answers must be hidden before grading: %+v", view.Round)
	}
	if len(view.Remaining) != RoundsPerSession {
		t.Fatalf("expected %d progress markers, got %d", RoundsPerSession, len(view.Remaining))
	}

	graded, _, _ := Submit(answerRound(t, session, exactAnswers()))
	view = graded.View()
	if view.Round.Answers[StatPoints] != 20 {
		t.Fatalf("graded view answers = %+v", view.Round.Answers)
	}

	next, _ := Advance(graded, roundStats)
	view = next.View()
	if view.Remaining[0] || !view.Remaining[1] {
		t.Fatalf("progress markers = %v", view.Remaining)
	}
	if view.Round.Number != 2 || view.MaxScore != 3 {
		t.Fatalf("round number %d max score %d", view.Round.Number, view.MaxScore)
	}
}

func TestViewLogosFollowRoundKey(t *testing.T) {
	session := newTestSession(t)
	session.Players[0].Team1Logo = "fallback-home.png"
	session.Players[0].Team2Logo = "fallback-away.png"

	if got := session.View().Logos; got.Home != "fallback-home.png" || got.Away != "fallback-away.png" {
		t.Fatalf("expected fallback logos, got %+v", got)
	}

	session.Logos = TeamLogos{Home: "fetched-home.png", Away: "fetched-away.png"}
	session.LogosKey = "4:stale"
	if got := session.View().Logos; got.Home != "fallback-home.png" {
		t.Fatalf("logos from another round must be ignored, got %+v", got)
	}

	session.LogosKey = session.RoundKey()
	if got := session.View().Logos; got.Home != "fetched-home.png" {
		t.Fatalf("expected fetched logos, got %+v", got)
	}
}
