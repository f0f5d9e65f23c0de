package handlers

import (
	"net/http"

	"github.com/Dosada05/tabletennis/services"
)

type AssociationHandler struct {
	associationService services.AssociationService
}

func NewAssociationHandler(as services.AssociationService) *AssociationHandler {
	return &AssociationHandler{associationService: as}
}

func (h *AssociationHandler) CreateAssociation(w http.ResponseWriter, r *http.Request) {
	var input services.CreateAssociationInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	association, err := h.associationService.CreateAssociation(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, "association", association)
}

func (h *AssociationHandler) GetAssociationByID(w http.ResponseWriter, r *http.Request) {
	associationID, err := getIDFromURL(r, "associationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	association, err := h.associationService.GetAssociationByID(r.Context(), associationID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, "association", association)
}

func (h *AssociationHandler) ListAssociations(w http.ResponseWriter, r *http.Request) {
	opts, err := readListOptions(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	associations, err := h.associationService.ListAssociations(r.Context(), opts)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, "associations", associations)
}

func (h *AssociationHandler) UpdateAssociation(w http.ResponseWriter, r *http.Request) {
	associationID, err := getIDFromURL(r, "associationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateAssociationInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	association, err := h.associationService.UpdateAssociation(r.Context(), associationID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, "association", association)
}

func (h *AssociationHandler) DeleteAssociation(w http.ResponseWriter, r *http.Request) {
	associationID, err := getIDFromURL(r, "associationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.associationService.DeleteAssociation(r.Context(), associationID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
