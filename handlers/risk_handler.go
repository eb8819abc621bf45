package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/AgentChief/accredis/services"
	"github.com/AgentChief/accredis/utils"
)

func (h *Handler) CreateRisk(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	var req services.RiskInput
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	risk, err := h.Risks.CreateRisk(r.Context(), user, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, risk)
}

// ListRisks returns risks sorted by score, highest first.
func (h *Handler) ListRisks(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	risks, err := h.Risks.ListRisks(r.Context(), user, r.URL.Query().Get("clinic_id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, risks)
}

func (h *Handler) GetRisk(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	risk, err := h.Risks.GetRisk(r.Context(), user, mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, risk)
}
