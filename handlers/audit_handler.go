package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/AgentChief/accredis/utils"
)

// AuditDocument runs an AI compliance audit. The request blocks for the model round trip.
func (h *Handler) AuditDocument(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	res, err := h.Documents.Audit(r.Context(), user, mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, res)
}

func (h *Handler) ListDocumentAudits(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	records, err := h.Documents.ListAudits(r.Context(), user, mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, records)
}
