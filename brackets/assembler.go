package brackets

import (
	"fmt"
	"time"

	"github.com/Dosada05/bracket-console/models"
)

// SegmentLabel returns the human readable name of a segment used in round titles.
func SegmentLabel(segment models.BracketSegment) string {
	switch segment {
	case models.SegmentWinners:
		return "Winners Bracket"
	case models.SegmentLosers:
		return "Losers Bracket"
	case models.SegmentGrandFinals:
		return "Grand Finals"
	}
	return string(segment)
}

// AssembleSegment turns normalized rounds into display rounds and appends the
// terminal winner entry. A segment with T rounds always yields T+1 entries.
func AssembleSegment(label string, seg NormalizedSegment) []models.Round {
	rounds := make([]models.Round, 0, len(seg.Rounds)+1)
	for i, matches := range seg.Rounds {
		nodes := make([]models.MatchNode, len(matches))
		for j, m := range matches {
			synthetic := seg.Synthetic[m.ID]
			nodes[j] = models.MatchNode{
				MatchRecord: m,
				Synthetic:   synthetic,
				Advanceable: !synthetic && m.AdvanceEligible(),
			}
		}
		rounds = append(rounds, models.Round{
			Title:   fmt.Sprintf("%s Round %d", label, i+1),
			Matches: nodes,
		})
	}

	winner := models.TBD()
	if n := len(seg.Rounds); n > 0 {
		if p, ok := finalRoundWinner(seg.Rounds[n-1]); ok {
			winner = p
		}
	}
	rounds = append(rounds, models.Round{
		Title:   fmt.Sprintf("%s Winner", label),
		Matches: []models.MatchNode{},
		Winner:  &winner,
	})
	return rounds
}

func finalRoundWinner(final []models.MatchRecord) (models.Participant, bool) {
	for _, m := range final {
		if p, ok := m.Winner(); ok {
			return p, true
		}
	}
	return models.Participant{}, false
}

// Build partitions, normalizes and assembles the whole bracket of a
// tournament. It is a pure function of its input apart from BuiltAt.
func Build(tournamentID int, data models.BracketData, overrides LayoutOverrides) (*models.Bracket, error) {
	layout, err := NewLayout(data.TotalRounds, overrides)
	if err != nil {
		return nil, err
	}
	parts, diags := PartitionBySegment(data.Matches)

	b := &models.Bracket{
		TournamentID:     tournamentID,
		IsTeamTournament: data.IsTeamTournament,
		TotalRounds:      data.TotalRounds,
		Segments:         make([]models.SegmentView, 0, len(models.Segments)),
		Diagnostics:      diags,
		BuiltAt:          time.Now().UTC(),
	}

	for _, segment := range models.Segments {
		sizes := layout.For(segment)
		if sizes.Rounds() == 0 {
			for _, m := range parts[segment] {
				b.Diagnostics = append(b.Diagnostics, models.Diagnostic{
					Kind:    models.DiagRoundOutOfRange,
					MatchID: m.ID,
					Segment: segment,
					Round:   m.Round,
					Message: "segment has no rounds in this layout, dropped",
				})
			}
			continue
		}
		seg := NormalizeSegment(segment, parts[segment], sizes)
		b.Diagnostics = append(b.Diagnostics, seg.Diagnostics...)

		label := SegmentLabel(segment)
		b.Segments = append(b.Segments, models.SegmentView{
			Segment: segment,
			Label:   label,
			Rounds:  AssembleSegment(label, seg),
		})
	}
	return b, nil
}
