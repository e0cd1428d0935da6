package models

import "time"

// MatchNode is a match ready for display.
type MatchNode struct {
	MatchRecord
	Synthetic   bool `json:"synthetic"`   // placeholder created for rendering, never persisted
	Advanceable bool `json:"advanceable"` // the advance control is rendered for this match
}

// Round is one column of a rendered bracket. The terminal column of a segment
// has no matches and holds the segment winner instead.
type Round struct {
	Title   string       `json:"title"`
	Matches []MatchNode  `json:"matches"`
	Winner  *Participant `json:"winner,omitempty"`
}

func (r Round) IsWinnerRound() bool {
	return r.Winner != nil
}

type SegmentView struct {
	Segment BracketSegment `json:"segment"`
	Label   string         `json:"label"`
	Rounds  []Round        `json:"rounds"`
}

// Bracket is the render-ready double-elimination bracket of one tournament.
// A Bracket is rebuilt from scratch on every refresh and never mutated afterwards.
type Bracket struct {
	TournamentID     int           `json:"tournament_id"`
	IsTeamTournament bool          `json:"is_team_tournament"`
	TotalRounds      int           `json:"total_rounds"`
	Segments         []SegmentView `json:"segments"`
	Diagnostics      []Diagnostic  `json:"diagnostics,omitempty"`
	BuiltAt          time.Time     `json:"built_at"`
}

// Segment returns the view of the given segment, if the bracket has one.
func (b *Bracket) Segment(segment BracketSegment) (*SegmentView, bool) {
	for i := range b.Segments {
		if b.Segments[i].Segment == segment {
			return &b.Segments[i], true
		}
	}
	return nil, false
}

// FindMatch looks a real or synthetic match up by id across all segments.
func (b *Bracket) FindMatch(id MatchID) (*MatchNode, bool) {
	for si := range b.Segments {
		for ri := range b.Segments[si].Rounds {
			matches := b.Segments[si].Rounds[ri].Matches
			for mi := range matches {
				if matches[mi].ID == id {
					return &matches[mi], true
				}
			}
		}
	}
	return nil, false
}
