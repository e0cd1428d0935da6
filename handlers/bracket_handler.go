package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/bracket-console/services"
	"github.com/Dosada05/bracket-console/utils"
)

type BracketHandler struct {
	bracketService services.BracketService
}

func NewBracketHandler(bracketService services.BracketService) *BracketHandler {
	return &BracketHandler{bracketService: bracketService}
}

// GetBracket всегда строит сетку из свежих данных бэкенда.
func (h *BracketHandler) GetBracket(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	// Concurrent viewers of one tournament share the newest refresh.
	bracket, err := h.bracketService.Current(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": bracket}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListBrackets loads several brackets at once: GET /brackets?ids=1,2,3.
func (h *BracketHandler) ListBrackets(w http.ResponseWriter, r *http.Request) {
	ids, ok := utils.ParseIDList(r.URL.Query().Get("ids"))
	if !ok {
		badRequestResponse(w, r, errors.New("ids query parameter must be a comma-separated list of positive tournament ids"))
		return
	}

	result, err := h.bracketService.LoadMany(r.Context(), ids)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"brackets": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BracketHandler) Publish(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	upload, err := h.bracketService.Publish(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"published": upload}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BracketHandler) Unpublish(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.bracketService.Unpublish(r.Context(), tournamentID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
