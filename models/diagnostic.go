package models

import "fmt"

type DiagnosticKind string

const (
	DiagMissingSegment   DiagnosticKind = "missing_segment"
	DiagUnknownSegment   DiagnosticKind = "unknown_segment"
	DiagMissingRound     DiagnosticKind = "missing_round"
	DiagRoundOutOfRange  DiagnosticKind = "round_out_of_range"
	DiagRoundOverflow    DiagnosticKind = "round_overflow"
	DiagMalformedRecord  DiagnosticKind = "malformed_record"
	DiagDuplicateMatchID DiagnosticKind = "duplicate_match_id"
)

// Diagnostic is a non-fatal data anomaly found while building a bracket.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	MatchID MatchID        `json:"match_id,omitempty"`
	Segment BracketSegment `json:"segment,omitempty"`
	Round   int            `json:"round,omitempty"`
	Message string         `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s (match=%q segment=%q round=%d)", d.Kind, d.Message, d.MatchID, d.Segment, d.Round)
}
