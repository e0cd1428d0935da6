package handlers

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"github.com/Dosada05/bracket-console/middleware"
	"github.com/Dosada05/bracket-console/models"
	"github.com/Dosada05/bracket-console/services"
)

type MatchHandler struct {
	scoreService   services.ScoreService
	advanceService services.AdvanceService
}

func NewMatchHandler(scoreService services.ScoreService, advanceService services.AdvanceService) *MatchHandler {
	return &MatchHandler{
		scoreService:   scoreService,
		advanceService: advanceService,
	}
}

// scoreInput keeps the raw text of a score field. Forms send strings, API
// clients send numbers; both are validated by the score service.
type scoreInput string

func (s *scoreInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*s = ""
	case len(data) > 0 && data[0] == '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = scoreInput(str)
	default:
		*s = scoreInput(data)
	}
	return nil
}

type submitScoreRequest struct {
	Score1 scoreInput `json:"score1"`
	Score2 scoreInput `json:"score2"`
}

func (h *MatchHandler) SubmitScore(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	matchID, err := matchIDFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input submitScoreRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.scoreService.SubmitScore(r.Context(), tournamentID, matchID, string(input.Score1), string(input.Score2))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"result": result}
	if result.RefreshError != nil {
		// Счёт принят, но сетку перестроить не удалось.
		response["bracket_error"] = services.ErrBracketUnavailable.Error()
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Advance handles one activation of the advance control: the first call
// arms it, the second performs the walkover.
func (h *MatchHandler) Advance(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	matchID, err := matchIDFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	outcome, err := h.advanceService.Activate(r.Context(), middleware.SessionFromContext(r.Context()), tournamentID, matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"advance": outcome}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// LeaveAdvance disarms the control when the pointer leaves it.
func (h *MatchHandler) LeaveAdvance(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	matchID, err := matchIDFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	wasArmed := h.advanceService.Leave(middleware.SessionFromContext(r.Context()), tournamentID, matchID)
	if err := writeJSON(w, http.StatusOK, jsonResponse{"disarmed": wasArmed}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func matchIDFromURL(r *http.Request) (models.MatchID, error) {
	raw := chi.URLParam(r, "matchID")
	if raw == "" {
		return "", errors.New("missing matchID in URL path")
	}
	return models.MatchID(raw), nil
}
