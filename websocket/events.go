package websocket

import "time"

const (
	EventWelcome               = "WELCOME"
	EventDocumentCreated       = "DOCUMENT_CREATED"
	EventDocumentStatusChanged = "DOCUMENT_STATUS_CHANGED"
	EventDocumentAudited       = "DOCUMENT_AUDITED"
	EventRiskCreated           = "RISK_CREATED"
)

// Event is a real-time notification delivered to a clinic's connected clients.
type Event struct {
	Type       string      `json:"type"`
	ClinicID   string      `json:"clinic_id"`
	DocumentID string      `json:"document_id,omitempty"`
	RiskID     string      `json:"risk_id,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
	UserID     string      `json:"user_id,omitempty"`
}
