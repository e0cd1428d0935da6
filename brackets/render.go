package brackets

import (
	"fmt"
	"io"
	"strings"

	"github.com/Dosada05/bracket-console/models"
)

// WriteText prints a bracket as indented plain text for the CLI.
func WriteText(w io.Writer, b *models.Bracket) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Tournament %d (%d rounds", b.TournamentID, b.TotalRounds)
	if b.IsTeamTournament {
		sb.WriteString(", teams")
	}
	sb.WriteString(")\n")

	for _, seg := range b.Segments {
		fmt.Fprintf(&sb, "\n%s\n", seg.Label)
		for _, round := range seg.Rounds {
			if round.IsWinnerRound() {
				fmt.Fprintf(&sb, "  %s: %s\n", round.Title, round.Winner.Name)
				continue
			}
			fmt.Fprintf(&sb, "  %s\n", round.Title)
			for _, m := range round.Matches {
				sb.WriteString("    ")
				sb.WriteString(matchLine(m))
				sb.WriteByte('\n')
			}
		}
	}

	if len(b.Diagnostics) > 0 {
		fmt.Fprintf(&sb, "\n%d data anomalies:\n", len(b.Diagnostics))
		for _, d := range b.Diagnostics {
			fmt.Fprintf(&sb, "  - %s\n", d)
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func matchLine(m models.MatchNode) string {
	a, b := m.Participants[0], m.Participants[1]
	line := fmt.Sprintf("[%s] %s vs %s", m.ID, a.Name, b.Name)
	if m.Status == models.StatusScoreDone {
		line += fmt.Sprintf("  %d:%d", a.Score, b.Score)
		if winner, ok := m.Winner(); ok {
			line += "  winner " + winner.Name
		}
	}
	if m.Synthetic {
		line += "  (placeholder)"
	}
	if m.Advanceable {
		line += "  (can advance)"
	}
	return line
}
