package brackets

import (
	"fmt"
	"sort"

	"github.com/Dosada05/bracket-console/models"
)

// syntheticIDPrefix marks placeholder matches. The backend client rejects
// records whose id carries it.
const syntheticIDPrefix = "tbd:"

// NormalizedSegment is one segment grouped into rounds, padded to the
// expected shape. Rounds[0] is round 1.
type NormalizedSegment struct {
	Segment     models.BracketSegment
	Rounds      [][]models.MatchRecord
	Synthetic   map[models.MatchID]bool
	Diagnostics []models.Diagnostic
}

// IsSyntheticID reports whether id was produced by the normalizer.
func IsSyntheticID(id models.MatchID) bool {
	return len(id) >= len(syntheticIDPrefix) && string(id[:len(syntheticIDPrefix)]) == syntheticIDPrefix
}

// PartitionBySegment splits a flat match list by bracket segment. Records
// with a missing or unknown segment, or repeating an id already seen, are
// dropped and reported.
func PartitionBySegment(matches []models.MatchRecord) (map[models.BracketSegment][]models.MatchRecord, []models.Diagnostic) {
	parts := make(map[models.BracketSegment][]models.MatchRecord, len(models.Segments))
	var diags []models.Diagnostic
	seen := make(map[models.MatchID]bool, len(matches))

	for _, m := range matches {
		switch {
		case m.Segment == "":
			diags = append(diags, models.Diagnostic{
				Kind:    models.DiagMissingSegment,
				MatchID: m.ID,
				Round:   m.Round,
				Message: "match has no bracket segment, dropped",
			})
			continue
		case !m.Segment.Valid():
			diags = append(diags, models.Diagnostic{
				Kind:    models.DiagUnknownSegment,
				MatchID: m.ID,
				Segment: m.Segment,
				Round:   m.Round,
				Message: fmt.Sprintf("unknown bracket segment %q, dropped", m.Segment),
			})
			continue
		}
		if m.ID != "" {
			if seen[m.ID] {
				diags = append(diags, models.Diagnostic{
					Kind:    models.DiagDuplicateMatchID,
					MatchID: m.ID,
					Segment: m.Segment,
					Round:   m.Round,
					Message: "match id already seen, later record dropped",
				})
				continue
			}
			seen[m.ID] = true
		}
		parts[m.Segment] = append(parts[m.Segment], m)
	}
	return parts, diags
}

// NormalizeSegment groups the matches of one segment by round and pads every
// round r in [1, sizes.Rounds()] up to sizes.Expected(r) with TBD placeholder
// matches. Rounds holding more real matches than expected are kept whole.
// The input slice is not modified.
func NormalizeSegment(segment models.BracketSegment, matches []models.MatchRecord, sizes RoundSizes) NormalizedSegment {
	total := sizes.Rounds()
	out := NormalizedSegment{
		Segment:   segment,
		Rounds:    make([][]models.MatchRecord, total),
		Synthetic: make(map[models.MatchID]bool),
	}

	realIDs := make(map[models.MatchID]bool, len(matches))
	for _, m := range matches {
		realIDs[m.ID] = true
	}

	for _, m := range matches {
		switch {
		case m.Round <= 0:
			out.Diagnostics = append(out.Diagnostics, models.Diagnostic{
				Kind:    models.DiagMissingRound,
				MatchID: m.ID,
				Segment: segment,
				Message: "match has no round, dropped",
			})
			continue
		case m.Round > total:
			out.Diagnostics = append(out.Diagnostics, models.Diagnostic{
				Kind:    models.DiagRoundOutOfRange,
				MatchID: m.ID,
				Segment: segment,
				Round:   m.Round,
				Message: fmt.Sprintf("round %d is outside the %d-round layout, dropped", m.Round, total),
			})
			continue
		}
		out.Rounds[m.Round-1] = append(out.Rounds[m.Round-1], m)
	}

	for i := range out.Rounds {
		r := i + 1
		round := out.Rounds[i]
		sortByPosition(round)

		expected := sizes.Expected(r)
		if len(round) > expected {
			out.Diagnostics = append(out.Diagnostics, models.Diagnostic{
				Kind:    models.DiagRoundOverflow,
				Segment: segment,
				Round:   r,
				Message: fmt.Sprintf("round has %d matches, expected %d; extra matches kept", len(round), expected),
			})
		}
		for k := 1; len(round) < expected; k++ {
			id := placeholderID(segment, r, k, realIDs)
			round = append(round, placeholderMatch(id, segment, r))
			out.Synthetic[id] = true
		}
		if round == nil {
			round = []models.MatchRecord{}
		}
		out.Rounds[i] = round
	}
	return out
}

// sortByPosition orders a round ascending by position. Matches without a
// position keep their input order and come after positioned ones.
func sortByPosition(round []models.MatchRecord) {
	sort.SliceStable(round, func(i, j int) bool {
		pi, pj := round[i].Position, round[j].Position
		switch {
		case pi == nil:
			return false
		case pj == nil:
			return true
		default:
			return *pi < *pj
		}
	})
}

func placeholderID(segment models.BracketSegment, round, k int, taken map[models.MatchID]bool) models.MatchID {
	id := models.MatchID(fmt.Sprintf("%s%s:r%d:p%d", syntheticIDPrefix, segment, round, k))
	for taken[id] {
		id += "~"
	}
	return id
}

func placeholderMatch(id models.MatchID, segment models.BracketSegment, round int) models.MatchRecord {
	return models.MatchRecord{
		ID:           id,
		Segment:      segment,
		Round:        round,
		Status:       models.StatusScheduled,
		Participants: [2]models.Participant{models.TBD(), models.TBD()},
	}
}
