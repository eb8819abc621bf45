package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/AgentChief/accredis/services"
	"github.com/AgentChief/accredis/utils"
)

func (h *Handler) CreateClinic(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	var req services.ClinicInput
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	clinic, err := h.Clinics.CreateClinic(r.Context(), user, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, clinic)
}

func (h *Handler) GetClinic(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	clinic, err := h.Clinics.GetClinic(r.Context(), user, mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, clinic)
}

func (h *Handler) ListClinics(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	clinics, err := h.Clinics.ListClinicsForUser(r.Context(), user)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, clinics)
}
