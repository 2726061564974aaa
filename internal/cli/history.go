package cli

import (
	"fmt"
	"io"
	"time"

	"stat-wizard/internal/quiz"

	"github.com/dustin/go-humanize"
)

// PrintHistory lists finished sessions, newest first, with times relative to
// now.
func PrintHistory(out io.Writer, sessions []quiz.SessionSummary, now time.Time) {
	if len(sessions) == 0 {
		fmt.Fprintln(out, "No finished sessions yet.")
		return
	}

	fmt.Fprintln(out, "Recent sessions:")
	for idx, session := range sessions {
		fmt.Fprintf(out, "%d. %s %d/%d %s\n",
			idx+1,
			displayNickname(session.Nickname),
			session.Score,
			session.MaxScore,
			humanize.RelTime(session.FinishedAt, now, "ago", "from now"),
		)
	}
}

func PrintLeaderboard(out io.Writer, entries []quiz.LeaderboardEntry, now time.Time) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "No leaderboard entries yet.")
		return
	}

	fmt.Fprintln(out, "Leaderboard:")
	for idx, entry := range entries {
		fmt.Fprintf(out, "%d. %s best=%d sessions=%s last played %s\n",
			idx+1,
			entry.Nickname,
			entry.BestScore,
			humanize.Comma(int64(entry.SessionCount)),
			humanize.RelTime(entry.LastPlayedAt, now, "ago", "from now"),
		)
	}
}

func displayNickname(nickname string) string {
	if nickname == "" {
		return "anonymous"
	}
	return nickname
}
