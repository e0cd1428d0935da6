package brackets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/bracket-console/models"
)

func scored(id string, seg models.BracketSegment, round int, winnerSlot int) models.MatchRecord {
	m := match(id, seg, round, intPtr(1))
	m.Status = models.StatusScoreDone
	m.Participants[0].Score = 2
	m.Participants[1].Score = 1
	if winnerSlot == 1 {
		m.Participants[0].Score, m.Participants[1].Score = 1, 2
	}
	m.Participants[winnerSlot].IsWinner = true
	return m
}

func roundTitles(rounds []models.Round) []string {
	titles := make([]string, len(rounds))
	for i, r := range rounds {
		titles[i] = r.Title
	}
	return titles
}

func TestAssembleSegment_EmptyWinnersBracket(t *testing.T) {
	seg := NormalizeSegment(models.SegmentWinners, nil, WinnersRoundSizes(3))

	rounds := AssembleSegment("Winners Bracket", seg)

	require.Len(t, rounds, 4)
	assert.Equal(t, []string{
		"Winners Bracket Round 1",
		"Winners Bracket Round 2",
		"Winners Bracket Round 3",
		"Winners Bracket Winner",
	}, roundTitles(rounds))
	assert.Len(t, rounds[0].Matches, 4)
	assert.Len(t, rounds[1].Matches, 2)
	assert.Len(t, rounds[2].Matches, 1)

	last := rounds[3]
	assert.True(t, last.IsWinnerRound())
	assert.Empty(t, last.Matches)
	require.NotNil(t, last.Winner)
	assert.True(t, last.Winner.IsTBD())
}

func TestAssembleSegment_WinnerFromFinalRound(t *testing.T) {
	final := scored("final", models.SegmentGrandFinals, 1, 1)
	seg := NormalizeSegment(models.SegmentGrandFinals, []models.MatchRecord{final}, GrandFinalsRoundSizes())

	rounds := AssembleSegment("Grand Finals", seg)

	require.Len(t, rounds, 2)
	require.NotNil(t, rounds[1].Winner)
	assert.Equal(t, final.Participants[1].Name, rounds[1].Winner.Name)
	assert.Equal(t, "Grand Finals Winner", rounds[1].Title)
}

func TestAssembleSegment_WinnerIgnoresEarlierRounds(t *testing.T) {
	input := []models.MatchRecord{
		scored("r1", models.SegmentWinners, 1, 0),
		match("r2", models.SegmentWinners, 2, intPtr(1)),
	}
	seg := NormalizeSegment(models.SegmentWinners, input, WinnersRoundSizes(2))

	rounds := AssembleSegment("Winners Bracket", seg)

	require.NotNil(t, rounds[2].Winner)
	assert.True(t, rounds[2].Winner.IsTBD())
}

func TestAssembleSegment_Advanceable(t *testing.T) {
	walkover := match("w", models.SegmentWinners, 1, intPtr(1))
	walkover.Participants[1] = models.TBD()
	full := match("f", models.SegmentWinners, 1, intPtr(2))
	seg := NormalizeSegment(models.SegmentWinners, []models.MatchRecord{walkover, full}, WinnersRoundSizes(2))

	rounds := AssembleSegment("Winners Bracket", seg)

	nodes := rounds[0].Matches
	require.Len(t, nodes, 2)
	assert.True(t, nodes[0].Advanceable)
	assert.False(t, nodes[0].Synthetic)
	assert.False(t, nodes[1].Advanceable)

	placeholder := rounds[1].Matches[0]
	assert.True(t, placeholder.Synthetic)
	assert.False(t, placeholder.Advanceable)
}

func TestBuild_SegmentsInOrder(t *testing.T) {
	data := models.BracketData{
		TotalRounds: 3,
		Matches: []models.MatchRecord{
			match("g", models.SegmentGrandFinals, 1, nil),
			match("l", models.SegmentLosers, 1, nil),
			match("w", models.SegmentWinners, 1, nil),
		},
	}

	b := mustBuild(t, 7, data, LayoutOverrides{})

	require.Len(t, b.Segments, 3)
	assert.Equal(t, 7, b.TournamentID)
	assert.Equal(t, models.SegmentWinners, b.Segments[0].Segment)
	assert.Equal(t, models.SegmentLosers, b.Segments[1].Segment)
	assert.Equal(t, models.SegmentGrandFinals, b.Segments[2].Segment)

	assert.Len(t, b.Segments[0].Rounds, 4)
	assert.Len(t, b.Segments[1].Rounds, 5)
	assert.Len(t, b.Segments[2].Rounds, 2)
	assert.Equal(t, "Losers Bracket Round 1", b.Segments[1].Rounds[0].Title)
	assert.Empty(t, b.Diagnostics)
}

func TestBuild_SingleRoundOmitsLosers(t *testing.T) {
	data := models.BracketData{
		TotalRounds: 1,
		Matches: []models.MatchRecord{
			match("w", models.SegmentWinners, 1, nil),
			match("l", models.SegmentLosers, 1, nil),
		},
	}

	b := mustBuild(t, 1, data, LayoutOverrides{})

	_, ok := b.Segment(models.SegmentLosers)
	assert.False(t, ok)
	require.Len(t, b.Diagnostics, 1)
	assert.Equal(t, models.DiagRoundOutOfRange, b.Diagnostics[0].Kind)
	assert.Equal(t, models.MatchID("l"), b.Diagnostics[0].MatchID)
}

func TestBuild_LosersOverride(t *testing.T) {
	b := mustBuild(t, 1, models.BracketData{TotalRounds: 3}, LayoutOverrides{Losers: RoundSizes{2, 1}})

	losers, ok := b.Segment(models.SegmentLosers)
	require.True(t, ok)
	require.Len(t, losers.Rounds, 3)
	assert.Len(t, losers.Rounds[0].Matches, 2)
	assert.Len(t, losers.Rounds[1].Matches, 1)
}

func TestBuild_IsIdempotent(t *testing.T) {
	data := models.BracketData{
		TotalRounds: 2,
		Matches: []models.MatchRecord{
			scored("a", models.SegmentWinners, 1, 0),
			match("b", models.SegmentWinners, 1, nil),
			match("c", "", 1, nil),
		},
	}

	first := mustBuild(t, 3, data, LayoutOverrides{})
	second := mustBuild(t, 3, data, LayoutOverrides{})
	second.BuiltAt = first.BuiltAt

	assert.Equal(t, first, second)
}

func TestBuild_FindMatch(t *testing.T) {
	data := models.BracketData{
		TotalRounds: 2,
		Matches:     []models.MatchRecord{match("42", models.SegmentLosers, 2, nil)},
	}

	b := mustBuild(t, 3, data, LayoutOverrides{})

	node, ok := b.FindMatch("42")
	require.True(t, ok)
	assert.Equal(t, models.SegmentLosers, node.Segment)

	_, ok = b.FindMatch("tbd:winners:r1:p1")
	assert.True(t, ok)

	_, ok = b.FindMatch("missing")
	assert.False(t, ok)
}

func mustBuild(t *testing.T, tournamentID int, data models.BracketData, overrides LayoutOverrides) *models.Bracket {
	t.Helper()
	b, err := Build(tournamentID, data, overrides)
	require.NoError(t, err)
	return b
}

func TestBuild_RejectsAbsurdDepth(t *testing.T) {
	for _, rounds := range []int{0, MaxTotalRounds + 1, 40, 63, 65} {
		b, err := Build(1, models.BracketData{TotalRounds: rounds}, LayoutOverrides{})
		assert.Nil(t, b)
		assert.ErrorIs(t, err, ErrLayoutTooLarge, "total_rounds=%d", rounds)
	}

	b, err := Build(1, models.BracketData{TotalRounds: MaxTotalRounds}, LayoutOverrides{})
	require.NoError(t, err)
	winners, ok := b.Segment(models.SegmentWinners)
	require.True(t, ok)
	assert.Len(t, winners.Rounds[0].Matches, MaxRoundMatches)
}
