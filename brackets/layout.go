package brackets

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Dosada05/bracket-console/models"
)

// MaxTotalRounds bounds the winners bracket depth: 16 rounds is a field of
// 65536 entrants. Deeper values are treated as malformed data.
const MaxTotalRounds = 16

// MaxRoundMatches is the largest round any segment can have.
const MaxRoundMatches = 1 << (MaxTotalRounds - 1)

var ErrLayoutTooLarge = errors.New("bracket layout too large")

// RoundSizes holds the expected number of matches per round; index 0 is round 1.
type RoundSizes []int

// Rounds returns the number of playable rounds.
func (s RoundSizes) Rounds() int {
	return len(s)
}

// Expected returns how many matches round r (1-based) should have.
func (s RoundSizes) Expected(r int) int {
	if r < 1 || r > len(s) {
		return 0
	}
	return s[r-1]
}

// ParseRoundSizes parses a comma separated table such as "2,1".
func ParseRoundSizes(raw string) (RoundSizes, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	sizes := make(RoundSizes, 0, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("round %d: invalid match count %q: %w", i+1, p, err)
		}
		if n < 1 {
			return nil, fmt.Errorf("round %d: match count must be positive, got %d", i+1, n)
		}
		if n > MaxRoundMatches {
			return nil, fmt.Errorf("round %d: %w: %d matches, at most %d", i+1, ErrLayoutTooLarge, n, MaxRoundMatches)
		}
		sizes = append(sizes, n)
	}
	if len(sizes) > 2*MaxTotalRounds {
		return nil, fmt.Errorf("%w: %d rounds, at most %d", ErrLayoutTooLarge, len(sizes), 2*MaxTotalRounds)
	}
	return sizes, nil
}

// WinnersRoundSizes returns the winners bracket shape for totalRounds rounds:
// round r has 2^(totalRounds-r) matches. Depths outside
// [1, MaxTotalRounds] have no shape.
func WinnersRoundSizes(totalRounds int) RoundSizes {
	if totalRounds < 1 || totalRounds > MaxTotalRounds {
		return nil
	}
	sizes := make(RoundSizes, totalRounds)
	for r := 1; r <= totalRounds; r++ {
		sizes[r-1] = 1 << uint(totalRounds-r)
	}
	return sizes
}

// LosersRoundSizes returns the standard double-elimination losers bracket
// for a field of 2^winnersRounds entrants. The losers bracket has
// 2*(winnersRounds-1) rounds, played in pairs of equal size: a "minor" round
// among losers-bracket survivors followed by a "major" round where the
// winners-bracket drop-downs enter. Pair k has 2^(winnersRounds-1-k) matches.
func LosersRoundSizes(winnersRounds int) RoundSizes {
	if winnersRounds < 2 || winnersRounds > MaxTotalRounds {
		return nil
	}
	n := 2 * (winnersRounds - 1)
	sizes := make(RoundSizes, n)
	for j := 1; j <= n; j++ {
		k := (j + 1) / 2
		sizes[j-1] = 1 << uint(winnersRounds-1-k)
	}
	return sizes
}

// GrandFinalsRoundSizes is a single deciding match.
func GrandFinalsRoundSizes() RoundSizes {
	return RoundSizes{1}
}

// LayoutOverrides replaces the computed shape of a segment. A nil entry keeps
// the formula.
type LayoutOverrides struct {
	Losers      RoundSizes
	GrandFinals RoundSizes
}

// Layout is the expected bracket shape for all segments of one tournament.
type Layout struct {
	Winners     RoundSizes
	Losers      RoundSizes
	GrandFinals RoundSizes
}

// NewLayout computes the shape for totalRounds winners rounds. It fails for
// depths outside [1, MaxTotalRounds].
func NewLayout(totalRounds int, overrides LayoutOverrides) (Layout, error) {
	if totalRounds < 1 || totalRounds > MaxTotalRounds {
		return Layout{}, fmt.Errorf("%w: total_rounds %d outside [1, %d]", ErrLayoutTooLarge, totalRounds, MaxTotalRounds)
	}
	l := Layout{
		Winners:     WinnersRoundSizes(totalRounds),
		Losers:      LosersRoundSizes(totalRounds),
		GrandFinals: GrandFinalsRoundSizes(),
	}
	if overrides.Losers != nil {
		l.Losers = overrides.Losers
	}
	if overrides.GrandFinals != nil {
		l.GrandFinals = overrides.GrandFinals
	}
	return l, nil
}

func (l Layout) For(segment models.BracketSegment) RoundSizes {
	switch segment {
	case models.SegmentWinners:
		return l.Winners
	case models.SegmentLosers:
		return l.Losers
	case models.SegmentGrandFinals:
		return l.GrandFinals
	}
	return nil
}
