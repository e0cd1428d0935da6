package brackets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/bracket-console/models"
)

func intPtr(v int) *int { return &v }

func named(name string) models.Participant {
	id := "p-" + name
	return models.Participant{ID: &id, Name: name}
}

func match(id string, seg models.BracketSegment, round int, pos *int) models.MatchRecord {
	return models.MatchRecord{
		ID:           models.MatchID(id),
		Segment:      seg,
		Round:        round,
		Position:     pos,
		Status:       models.StatusScheduled,
		Participants: [2]models.Participant{named(id + "a"), named(id + "b")},
	}
}

func roundIDs(round []models.MatchRecord) []models.MatchID {
	ids := make([]models.MatchID, len(round))
	for i, m := range round {
		ids[i] = m.ID
	}
	return ids
}

func TestNormalizeSegment_EmptyInputIsFullyPadded(t *testing.T) {
	seg := NormalizeSegment(models.SegmentWinners, nil, WinnersRoundSizes(3))

	require.Len(t, seg.Rounds, 3)
	assert.Len(t, seg.Rounds[0], 4)
	assert.Len(t, seg.Rounds[1], 2)
	assert.Len(t, seg.Rounds[2], 1)
	assert.Len(t, seg.Synthetic, 7)
	assert.Empty(t, seg.Diagnostics)

	for _, round := range seg.Rounds {
		for _, m := range round {
			assert.True(t, IsSyntheticID(m.ID))
			assert.Equal(t, models.StatusScheduled, m.Status)
			assert.True(t, m.Participants[0].IsTBD())
			assert.True(t, m.Participants[1].IsTBD())
		}
	}
	assert.Equal(t, models.MatchID("tbd:winners:r1:p1"), seg.Rounds[0][0].ID)
	assert.Equal(t, models.MatchID("tbd:winners:r1:p4"), seg.Rounds[0][3].ID)
}

func TestNormalizeSegment_SortsByPositionAndPads(t *testing.T) {
	input := []models.MatchRecord{
		match("m3", models.SegmentWinners, 1, intPtr(3)),
		match("m1", models.SegmentWinners, 1, intPtr(1)),
		match("m9", models.SegmentWinners, 2, nil),
	}

	seg := NormalizeSegment(models.SegmentWinners, input, WinnersRoundSizes(3))

	assert.Equal(t, []models.MatchID{"m1", "m3", "tbd:winners:r1:p1", "tbd:winners:r1:p2"}, roundIDs(seg.Rounds[0]))
	assert.Equal(t, []models.MatchID{"m9", "tbd:winners:r2:p1"}, roundIDs(seg.Rounds[1]))
	assert.Len(t, seg.Rounds[2], 1)
	assert.False(t, seg.Synthetic["m1"])
	assert.True(t, seg.Synthetic["tbd:winners:r2:p1"])
}

func TestNormalizeSegment_UnpositionedAfterPositionedInInputOrder(t *testing.T) {
	input := []models.MatchRecord{
		match("b", models.SegmentWinners, 1, nil),
		match("a", models.SegmentWinners, 1, nil),
		match("c", models.SegmentWinners, 1, intPtr(2)),
		match("d", models.SegmentWinners, 1, intPtr(1)),
	}

	seg := NormalizeSegment(models.SegmentWinners, input, WinnersRoundSizes(3))

	assert.Equal(t, []models.MatchID{"d", "c", "b", "a"}, roundIDs(seg.Rounds[0]))
}

func TestNormalizeSegment_DoesNotMutateInput(t *testing.T) {
	input := []models.MatchRecord{
		match("m2", models.SegmentWinners, 1, intPtr(2)),
		match("m1", models.SegmentWinners, 1, intPtr(1)),
	}
	before := append([]models.MatchRecord(nil), input...)

	NormalizeSegment(models.SegmentWinners, input, WinnersRoundSizes(2))

	assert.Equal(t, before, input)
}

func TestNormalizeSegment_DropsRoundsOutsideLayout(t *testing.T) {
	input := []models.MatchRecord{
		match("zero", models.SegmentLosers, 0, nil),
		match("far", models.SegmentLosers, 9, nil),
		match("ok", models.SegmentLosers, 1, nil),
	}

	seg := NormalizeSegment(models.SegmentLosers, input, RoundSizes{2, 1})

	require.Len(t, seg.Diagnostics, 2)
	assert.Equal(t, models.DiagMissingRound, seg.Diagnostics[0].Kind)
	assert.Equal(t, models.MatchID("zero"), seg.Diagnostics[0].MatchID)
	assert.Equal(t, models.DiagRoundOutOfRange, seg.Diagnostics[1].Kind)
	assert.Equal(t, 9, seg.Diagnostics[1].Round)
	assert.Equal(t, []models.MatchID{"ok", "tbd:losers:r1:p1"}, roundIDs(seg.Rounds[0]))
}

func TestNormalizeSegment_OverflowIsKeptAndReported(t *testing.T) {
	input := []models.MatchRecord{
		match("gf1", models.SegmentGrandFinals, 1, intPtr(1)),
		match("gf2", models.SegmentGrandFinals, 1, intPtr(2)),
	}

	seg := NormalizeSegment(models.SegmentGrandFinals, input, GrandFinalsRoundSizes())

	assert.Equal(t, []models.MatchID{"gf1", "gf2"}, roundIDs(seg.Rounds[0]))
	require.Len(t, seg.Diagnostics, 1)
	assert.Equal(t, models.DiagRoundOverflow, seg.Diagnostics[0].Kind)
	assert.Empty(t, seg.Synthetic)
}

func TestNormalizeSegment_PlaceholderIDAvoidsCollision(t *testing.T) {
	input := []models.MatchRecord{match("tbd:winners:r1:p1", models.SegmentWinners, 1, intPtr(1))}

	seg := NormalizeSegment(models.SegmentWinners, input, WinnersRoundSizes(2))

	assert.Equal(t, []models.MatchID{"tbd:winners:r1:p1", "tbd:winners:r1:p1~"}, roundIDs(seg.Rounds[0]))
	assert.True(t, seg.Synthetic["tbd:winners:r1:p1~"])
	assert.False(t, seg.Synthetic["tbd:winners:r1:p1"])
}

func TestNormalizeSegment_IsDeterministic(t *testing.T) {
	input := []models.MatchRecord{
		match("x", models.SegmentWinners, 2, nil),
		match("y", models.SegmentWinners, 1, intPtr(2)),
		match("z", models.SegmentWinners, 1, nil),
	}

	first := NormalizeSegment(models.SegmentWinners, input, WinnersRoundSizes(3))
	second := NormalizeSegment(models.SegmentWinners, input, WinnersRoundSizes(3))

	assert.Equal(t, first, second)
}

func TestPartitionBySegment(t *testing.T) {
	unknown := match("u", "swiss", 1, nil)
	missing := match("n", "", 1, nil)
	input := []models.MatchRecord{
		match("w1", models.SegmentWinners, 1, nil),
		match("l1", models.SegmentLosers, 1, nil),
		unknown,
		missing,
		match("w1", models.SegmentWinners, 2, nil),
		match("g1", models.SegmentGrandFinals, 1, nil),
	}

	parts, diags := PartitionBySegment(input)

	assert.Equal(t, []models.MatchID{"w1"}, roundIDs(parts[models.SegmentWinners]))
	assert.Equal(t, 1, parts[models.SegmentWinners][0].Round, "first record with a repeated id wins")
	assert.Equal(t, []models.MatchID{"l1"}, roundIDs(parts[models.SegmentLosers]))
	assert.Equal(t, []models.MatchID{"g1"}, roundIDs(parts[models.SegmentGrandFinals]))

	require.Len(t, diags, 3)
	assert.Equal(t, models.DiagUnknownSegment, diags[0].Kind)
	assert.Equal(t, models.DiagMissingSegment, diags[1].Kind)
	assert.Equal(t, models.DiagDuplicateMatchID, diags[2].Kind)
}

func TestIsSyntheticID(t *testing.T) {
	assert.True(t, IsSyntheticID("tbd:losers:r2:p1"))
	assert.False(t, IsSyntheticID("42"))
	assert.False(t, IsSyntheticID("tb"))
}
