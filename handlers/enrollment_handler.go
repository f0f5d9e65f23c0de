package handlers

import (
	"net/http"

	"github.com/Dosada05/tabletennis/repositories"
	"github.com/Dosada05/tabletennis/services"
)

type EnrollmentHandler struct {
	enrollmentService services.EnrollmentService
}

func NewEnrollmentHandler(es services.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollmentService: es}
}

func readEnrollmentFilter(r *http.Request) (repositories.EnrollmentFilter, error) {
	var filter repositories.EnrollmentFilter
	opts, err := readListOptions(r)
	if err != nil {
		return filter, err
	}
	filter.Limit, filter.Offset = opts.Limit, opts.Offset
	if filter.TournamentID, err = readIntQuery(r, "tournament_id"); err != nil {
		return filter, err
	}
	if filter.CategoryID, err = readIntQuery(r, "category_id"); err != nil {
		return filter, err
	}
	return filter, nil
}

func (h *EnrollmentHandler) EnrollPlayer(w http.ResponseWriter, r *http.Request) {
	var input services.EnrollPlayerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	enrollment, err := h.enrollmentService.EnrollPlayer(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, "enrollment", enrollment)
}

// WithdrawPlayer takes the enrollment key as a JSON body.
func (h *EnrollmentHandler) WithdrawPlayer(w http.ResponseWriter, r *http.Request) {
	var input services.EnrollPlayerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.enrollmentService.WithdrawPlayer(r.Context(), input); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EnrollmentHandler) ListEnrollments(w http.ResponseWriter, r *http.Request) {
	filter, err := readEnrollmentFilter(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	enrollments, err := h.enrollmentService.ListEnrollments(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, "enrollments", enrollments)
}

func (h *EnrollmentHandler) EnrollTeam(w http.ResponseWriter, r *http.Request) {
	var input services.EnrollTeamInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	enrollment, err := h.enrollmentService.EnrollTeam(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, "enrollment", enrollment)
}

func (h *EnrollmentHandler) WithdrawTeam(w http.ResponseWriter, r *http.Request) {
	var input services.EnrollTeamInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.enrollmentService.WithdrawTeam(r.Context(), input); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EnrollmentHandler) ListTeamEnrollments(w http.ResponseWriter, r *http.Request) {
	filter, err := readEnrollmentFilter(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	enrollments, err := h.enrollmentService.ListTeamEnrollments(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, "enrollments", enrollments)
}
