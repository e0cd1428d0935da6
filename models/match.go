package models

import (
	"bytes"
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"
)

// TBDName is the sentinel participant name for a slot that is not decided yet.
const TBDName = "TBD"

type MatchStatus string

const (
	StatusScheduled MatchStatus = "SCHEDULED"
	StatusScoreDone MatchStatus = "SCORE_DONE"
)

type BracketSegment string

const (
	SegmentWinners     BracketSegment = "winners"
	SegmentLosers      BracketSegment = "losers"
	SegmentGrandFinals BracketSegment = "grand_finals"
)

// Segments lists the bracket segments in display order.
var Segments = []BracketSegment{SegmentWinners, SegmentLosers, SegmentGrandFinals}

func (s BracketSegment) Valid() bool {
	switch s {
	case SegmentWinners, SegmentLosers, SegmentGrandFinals:
		return true
	}
	return false
}

// MatchID is an opaque match identifier issued by the backend. The backend
// sends either numbers or strings, both are kept as their decimal/string form.
type MatchID string

func (id *MatchID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = MatchID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("match id must be a string or a number: %w", err)
	}
	*id = MatchID(n.String())
	return nil
}

func (id MatchID) String() string {
	return string(id)
}

// Int returns the numeric form of the id for backends that expect integers.
func (id MatchID) Int() (int64, bool) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	return n, err == nil
}

type Participant struct {
	ID       *string `json:"id"`
	Name     string  `json:"name"`
	Score    int     `json:"score"`
	IsWinner bool    `json:"is_winner"`
}

// TBD returns an undetermined participant slot.
func TBD() Participant {
	return Participant{Name: TBDName}
}

func (p Participant) IsTBD() bool {
	return p.Name == TBDName
}

// MatchRecord is one scheduled or completed match as reported by the backend.
type MatchRecord struct {
	ID           MatchID        `json:"id"`
	Segment      BracketSegment `json:"bracket_segment"`
	Round        int            `json:"round"`
	Position     *int           `json:"position,omitempty"`
	Status       MatchStatus    `json:"status"`
	Participants [2]Participant `json:"participants"`
}

// KnownParticipants returns how many slots hold a real (non-TBD) participant.
func (m MatchRecord) KnownParticipants() int {
	n := 0
	for _, p := range m.Participants {
		if !p.IsTBD() {
			n++
		}
	}
	return n
}

// AdvanceEligible reports whether the one-click advance control applies:
// exactly one real participant and the match is still scheduled.
func (m MatchRecord) AdvanceEligible() bool {
	return m.Status == StatusScheduled && m.KnownParticipants() == 1
}

// Winner returns the winning participant of a scored match.
func (m MatchRecord) Winner() (Participant, bool) {
	if m.Status != StatusScoreDone {
		return Participant{}, false
	}
	for _, p := range m.Participants {
		if p.IsWinner {
			return p, true
		}
	}
	return Participant{}, false
}

// BracketData is the validated payload of the fetch-matches-bracket call.
type BracketData struct {
	IsTeamTournament bool          `json:"is_team_tournament"`
	TotalRounds      int           `json:"total_rounds"`
	Matches          []MatchRecord `json:"matches"`
}
