package handlers

import (
	"net/http"

	"github.com/AgentChief/accredis/utils"
)

type settingsRequest struct {
	OpenAIAPIKey *string `json:"openai_api_key"`
	AIModel      *string `json:"ai_model" validate:"omitempty,max=100"`
}

// GetSettings never reveals the stored key, only whether one is set.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	snap := h.Settings.Snapshot()
	masked := ""
	if snap.Configured() {
		masked = "***"
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"openai_api_key":     masked,
		"ai_model":           snap.Model,
		"notification_email": true,
		"auto_backup":        true,
		"audit_frequency":    "monthly",
	})
}

// SaveSettings updates the in-memory AI settings. Changes apply to later AI
// calls only. Settings are shared by every clinic, so only owners and
// managers may write them.
func (h *Handler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	if !user.CanManageSettings() {
		h.fail(w, r, utils.Forbidden("Only clinic owners and managers can change settings"))
		return
	}

	var req settingsRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	var changed []string
	if req.OpenAIAPIKey != nil && *req.OpenAIAPIKey != "" {
		h.Settings.SetAPIKey(*req.OpenAIAPIKey)
		changed = append(changed, "openai_api_key")
	}
	if req.AIModel != nil && *req.AIModel != "" {
		h.Settings.SetModel(*req.AIModel)
		changed = append(changed, "ai_model")
	}

	h.Log.Info().
		Strs("fields", changed).
		Str("user_id", user.ID.Hex()).
		Msg("settings updated")

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Settings saved successfully"})
}
