package handlers

import (
	"net/http"

	"github.com/Dosada05/tabletennis/services"
)

type BracketHandler struct {
	bracketService services.BracketService
}

func NewBracketHandler(bs services.BracketService) *BracketHandler {
	return &BracketHandler{bracketService: bs}
}

func (h *BracketHandler) GenerateElimination(w http.ResponseWriter, r *http.Request) {
	var input services.GenerateEliminationInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.bracketService.GenerateElimination(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, "matches", matches)
}

func (h *BracketHandler) GenerateEliminationFromEnrollments(w http.ResponseWriter, r *http.Request) {
	var input services.EnrollmentBracketInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.bracketService.GenerateEliminationFromEnrollments(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, "matches", matches)
}

func (h *BracketHandler) GenerateNextRound(w http.ResponseWriter, r *http.Request) {
	var input services.NextRoundInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.bracketService.GenerateNextRound(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, "matches", matches)
}
