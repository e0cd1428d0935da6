package backend

import (
	"fmt"
	"strings"

	"github.com/Dosada05/bracket-console/brackets"
	"github.com/Dosada05/bracket-console/models"
)

type envelope struct {
	Success *bool  `json:"success"`
	Message string `json:"message,omitempty"`
}

type fetchBracketRequest struct {
	TournamentID int `json:"tournament_id"`
}

type fetchBracketResponse struct {
	envelope
	Data *wireBracketData `json:"data"`
}

type wireBracketData struct {
	IsTeamTournament bool         `json:"is_team_tournament"`
	TotalRounds      *int         `json:"total_rounds"`
	Matches          *[]wireMatch `json:"matches"`
}

type wireMatch struct {
	ID          models.MatchID `json:"id"`
	BracketType *string        `json:"bracket_type"`
	Round       *int           `json:"round"`
	Position    *int           `json:"position"`
	Status      *string        `json:"status"`
	Teams       []wireTeam     `json:"teams"`
}

type wireTeam struct {
	ID     *models.MatchID `json:"id"`
	Name   *string         `json:"name"`
	Score  *int            `json:"score"`
	Winner *bool           `json:"winner"`
}

type updateMatchScoreRequest struct {
	MatchID models.MatchID `json:"match_id"`
	Score1  int            `json:"score1"`
	Score2  int            `json:"score2"`
}

type updateMatchScoreResponse struct {
	envelope
	AutoProgressed *bool `json:"auto_progressed,omitempty"`
}

// validate checks the envelope strictly and converts every match record.
// Records that cannot be converted without guessing are rejected with a
// diagnostic; the rest of the bracket is still returned.
func (r fetchBracketResponse) validate() (*models.BracketData, []models.Diagnostic, error) {
	if r.Success == nil {
		return nil, nil, fmt.Errorf("%w: %s response has no success flag", ErrMalformedPayload, fetchBracketPath)
	}
	if !*r.Success {
		return nil, nil, &RequestError{Path: fetchBracketPath, Message: r.Message}
	}
	if r.Data == nil {
		return nil, nil, fmt.Errorf("%w: %s response has no data", ErrMalformedPayload, fetchBracketPath)
	}
	if r.Data.TotalRounds == nil || *r.Data.TotalRounds < 1 {
		return nil, nil, fmt.Errorf("%w: total_rounds must be a positive integer", ErrMalformedPayload)
	}
	if *r.Data.TotalRounds > brackets.MaxTotalRounds {
		return nil, nil, fmt.Errorf("%w: total_rounds %d exceeds %d", ErrMalformedPayload, *r.Data.TotalRounds, brackets.MaxTotalRounds)
	}
	if r.Data.Matches == nil {
		return nil, nil, fmt.Errorf("%w: %s response has no matches list", ErrMalformedPayload, fetchBracketPath)
	}

	data := &models.BracketData{
		IsTeamTournament: r.Data.IsTeamTournament,
		TotalRounds:      *r.Data.TotalRounds,
		Matches:          make([]models.MatchRecord, 0, len(*r.Data.Matches)),
	}
	var diags []models.Diagnostic
	for i, wm := range *r.Data.Matches {
		m, err := wm.toRecord()
		if err != nil {
			diags = append(diags, models.Diagnostic{
				Kind:    models.DiagMalformedRecord,
				MatchID: wm.ID,
				Message: fmt.Sprintf("record %d rejected: %v", i, err),
			})
			continue
		}
		data.Matches = append(data.Matches, m)
	}
	return data, diags, nil
}

func (wm wireMatch) toRecord() (models.MatchRecord, error) {
	m := models.MatchRecord{ID: wm.ID, Position: wm.Position}

	if wm.ID == "" {
		return m, fmt.Errorf("missing id")
	}
	if brackets.IsSyntheticID(wm.ID) {
		// Reserved for placeholders; such a match could never be scored.
		return m, fmt.Errorf("id %q uses the reserved placeholder prefix", wm.ID)
	}
	if wm.Status == nil || strings.TrimSpace(*wm.Status) == "" {
		return m, fmt.Errorf("missing status")
	}
	m.Status = models.MatchStatus(strings.TrimSpace(*wm.Status))

	// Missing segment and round stay zero; the normalizer drops and reports them.
	if wm.BracketType != nil {
		m.Segment = models.BracketSegment(strings.TrimSpace(*wm.BracketType))
	}
	if wm.Round != nil {
		m.Round = *wm.Round
	}

	if len(wm.Teams) != 2 {
		return m, fmt.Errorf("expected 2 teams, got %d", len(wm.Teams))
	}
	winners := 0
	for i, t := range wm.Teams {
		p, err := t.toParticipant()
		if err != nil {
			return m, fmt.Errorf("team %d: %w", i+1, err)
		}
		if p.IsWinner {
			winners++
		}
		m.Participants[i] = p
	}
	if winners > 0 && m.Status != models.StatusScoreDone {
		return m, fmt.Errorf("winner flag set on a match with status %s", m.Status)
	}
	if winners > 1 {
		return m, fmt.Errorf("both teams flagged as winner")
	}
	return m, nil
}

func (t wireTeam) toParticipant() (models.Participant, error) {
	var p models.Participant

	name := ""
	if t.Name != nil {
		name = strings.TrimSpace(*t.Name)
	}
	switch {
	case name == "" && t.ID == nil:
		// An empty slot is the undetermined participant.
		name = models.TBDName
	case name == "":
		return p, fmt.Errorf("participant %s has no name", *t.ID)
	}
	p.Name = name

	if t.ID != nil && *t.ID != "" {
		id := t.ID.String()
		p.ID = &id
	}
	if t.Score != nil {
		if *t.Score < 0 {
			return p, fmt.Errorf("negative score %d", *t.Score)
		}
		p.Score = *t.Score
	}
	if t.Winner != nil {
		p.IsWinner = *t.Winner
	}
	return p, nil
}
