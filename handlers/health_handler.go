package handlers

import (
	"net/http"
	"time"

	"github.com/AgentChief/accredis/utils"
)

// HealthCheckResponse represents health check status
type HealthCheckResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Database  string    `json:"database,omitempty"`
	Version   string    `json:"version"`
	Uptime    string    `json:"uptime,omitempty"`
}

// Version is reported by the health endpoint.
var Version = "1.0.0"

var startTime = time.Now()

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthCheckResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   Version,
		Uptime:    time.Since(startTime).Truncate(time.Second).String(),
	}

	code := http.StatusOK
	if h.DB != nil {
		if err := h.DB.Ping(r.Context()); err != nil {
			h.Log.Warn().Err(err).Msg("health check: database unreachable")
			response.Status = "unhealthy"
			response.Database = "disconnected"
			code = http.StatusServiceUnavailable
		} else {
			response.Database = "connected"
		}
	}

	utils.RespondWithJSON(w, code, response)
}
