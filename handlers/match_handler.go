package handlers

import (
	"net/http"

	"github.com/Dosada05/tabletennis/models"
	"github.com/Dosada05/tabletennis/repositories"
	"github.com/Dosada05/tabletennis/services"
)

type MatchHandler struct {
	matchService   services.MatchService
	setService     services.SetResultService
	outcomeService services.OutcomeService
}

func NewMatchHandler(ms services.MatchService, ss services.SetResultService, oc services.OutcomeService) *MatchHandler {
	return &MatchHandler{matchService: ms, setService: ss, outcomeService: oc}
}

func (h *MatchHandler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	var input services.CreateMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.CreateMatch(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, "match", match)
}

func (h *MatchHandler) GetMatchByID(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.GetMatchByID(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, "match", match)
}

// ListMatches filters by tournament_id, category_id, group_id, type and round.
func (h *MatchHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	opts, err := readListOptions(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	filter := repositories.MatchFilter{Limit: opts.Limit, Offset: opts.Offset}
	for name, dst := range map[string]**int{
		"tournament_id": &filter.TournamentID,
		"category_id":   &filter.CategoryID,
		"group_id":      &filter.GroupID,
	} {
		if *dst, err = readIntQuery(r, name); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	query := r.URL.Query()
	if raw := query.Get("type"); raw != "" {
		matchType := models.MatchType(raw)
		filter.Type = &matchType
	}
	if raw := query.Get("round"); raw != "" {
		filter.Round = &raw
	}

	matches, err := h.matchService.ListMatches(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, "matches", matches)
}

func (h *MatchHandler) UpdateMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.UpdateMatch(r.Context(), matchID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, "match", match)
}

func (h *MatchHandler) ScheduleMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.ScheduleMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.ScheduleMatch(r.Context(), matchID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, "match", match)
}

func (h *MatchHandler) DeleteMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.matchService.DeleteMatch(r.Context(), matchID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MatchHandler) GetMatchOutcome(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	outcome, err := h.outcomeService.GetMatchOutcome(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, "outcome", outcome)
}

func (h *MatchHandler) AdvanceWinner(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.AdvanceWinnerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	next, err := h.outcomeService.AdvanceWinner(r.Context(), matchID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, "match", next)
}

func (h *MatchHandler) CompleteMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	outcome, err := h.outcomeService.CompleteMatch(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, "outcome", outcome)
}

func (h *MatchHandler) CreateSetResult(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.CreateSetResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	set, err := h.setService.CreateSetResult(r.Context(), matchID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, "set", set)
}

func (h *MatchHandler) ListSetResults(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	sets, err := h.setService.ListSetResults(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, "sets", sets)
}

func (h *MatchHandler) UpdateSetResult(w http.ResponseWriter, r *http.Request) {
	setID, err := getIDFromURL(r, "setID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateSetResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	set, err := h.setService.UpdateSetResult(r.Context(), setID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, "set", set)
}

func (h *MatchHandler) DeleteSetResult(w http.ResponseWriter, r *http.Request) {
	setID, err := getIDFromURL(r, "setID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.setService.DeleteSetResult(r.Context(), setID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
