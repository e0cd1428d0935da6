package models

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchID_UnmarshalJSON(t *testing.T) {
	var rec struct {
		A MatchID `json:"a"`
		B MatchID `json:"b"`
		C MatchID `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 57, "b": "m-12", "c": null}`), &rec))

	assert.Equal(t, MatchID("57"), rec.A)
	assert.Equal(t, MatchID("m-12"), rec.B)
	assert.Equal(t, MatchID(""), rec.C)

	var bad MatchID
	assert.Error(t, json.Unmarshal([]byte(`true`), &bad))
}

func TestMatchID_Int(t *testing.T) {
	n, ok := MatchID("42").Int()
	assert.True(t, ok)
	assert.EqualValues(t, 42, n)

	_, ok = MatchID("tbd:winners:r1:p1").Int()
	assert.False(t, ok)
}

func TestMatchRecord_AdvanceEligible(t *testing.T) {
	id := "7"
	known := Participant{ID: &id, Name: "Alpha"}

	tests := []struct {
		name string
		rec  MatchRecord
		want bool
	}{
		{"one known slot", MatchRecord{Status: StatusScheduled, Participants: [2]Participant{known, TBD()}}, true},
		{"known slot second", MatchRecord{Status: StatusScheduled, Participants: [2]Participant{TBD(), known}}, true},
		{"both known", MatchRecord{Status: StatusScheduled, Participants: [2]Participant{known, known}}, false},
		{"both tbd", MatchRecord{Status: StatusScheduled, Participants: [2]Participant{TBD(), TBD()}}, false},
		{"already scored", MatchRecord{Status: StatusScoreDone, Participants: [2]Participant{known, TBD()}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rec.AdvanceEligible())
		})
	}
}

func TestMatchRecord_Winner(t *testing.T) {
	rec := MatchRecord{
		Status:       StatusScoreDone,
		Participants: [2]Participant{{Name: "Alpha", Score: 1}, {Name: "Beta", Score: 2, IsWinner: true}},
	}
	w, ok := rec.Winner()
	require.True(t, ok)
	assert.Equal(t, "Beta", w.Name)

	rec.Status = StatusScheduled
	_, ok = rec.Winner()
	assert.False(t, ok)
}
