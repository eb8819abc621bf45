package handlers

import (
	"net/http"

	"github.com/AgentChief/accredis/middleware"
	"github.com/AgentChief/accredis/utils"
)

// LiveUpdates upgrades to a websocket carrying the caller's clinic events.
// Browsers cannot set headers on websocket requests, so ?token= is accepted too.
func (h *Handler) LiveUpdates(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token, _ = middleware.BearerToken(r)
	}
	if token == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Missing token")
		return
	}
	user, err := h.Auth.Authenticate(r.Context(), token)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if user.ClinicID == nil {
		utils.RespondWithError(w, http.StatusForbidden, "User has no clinic")
		return
	}

	if err := h.Feed.Serve(w, r, user.ClinicHex(), user.ID.Hex()); err != nil {
		// The upgrader has already written the HTTP error.
		h.Log.Debug().Err(err).Str("user_id", user.ID.Hex()).Msg("websocket upgrade failed")
	}
}
