package handlers

import (
	"net/http"

	"github.com/AgentChief/accredis/services"
	"github.com/AgentChief/accredis/utils"
)

// Register handles POST /api/auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterInput
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	res, err := h.Auth.Register(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, res)
}

// Login handles POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var creds services.LoginInput
	if err := utils.ParseJSON(r, &creds); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	res, err := h.Auth.Login(r.Context(), creds)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, res)
}

// Me handles GET /api/auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, user)
}
