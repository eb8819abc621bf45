// Package handlers adapts HTTP requests onto the service layer.
package handlers

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/AgentChief/accredis/config"
	"github.com/AgentChief/accredis/middleware"
	"github.com/AgentChief/accredis/models"
	"github.com/AgentChief/accredis/services"
	"github.com/AgentChief/accredis/utils"
)

type AuthService interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.AuthResult, error)
	Login(ctx context.Context, in services.LoginInput) (*services.AuthResult, error)
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

type ClinicService interface {
	CreateClinic(ctx context.Context, user *models.User, in services.ClinicInput) (*models.Clinic, error)
	GetClinic(ctx context.Context, user *models.User, id string) (*models.Clinic, error)
	ListClinicsForUser(ctx context.Context, user *models.User) ([]models.Clinic, error)
}

type DocumentService interface {
	CreateFromGeneration(ctx context.Context, user *models.User, in services.GenerateInput) (*models.Document, error)
	CreateFromUpload(ctx context.Context, user *models.User, in services.UploadInput) (*models.Document, error)
	Get(ctx context.Context, user *models.User, id string) (*models.Document, error)
	List(ctx context.Context, user *models.User, in services.ListDocumentsInput) ([]models.Document, error)
	SetStatus(ctx context.Context, user *models.User, id, status string) (*models.Document, error)
	Audit(ctx context.Context, user *models.User, id string) (*services.AuditResult, error)
	ListAudits(ctx context.Context, user *models.User, id string) ([]models.AuditRecord, error)
}

type RiskService interface {
	CreateRisk(ctx context.Context, user *models.User, in services.RiskInput) (*models.Risk, error)
	ListRisks(ctx context.Context, user *models.User, clinicID string) ([]models.Risk, error)
	GetRisk(ctx context.Context, user *models.User, id string) (*models.Risk, error)
}

// Pinger reports database reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// LiveFeed upgrades a request into a clinic event stream.
type LiveFeed interface {
	Serve(w http.ResponseWriter, r *http.Request, clinicID, userID string) error
}

// Handler holds the dependencies shared by every endpoint.
type Handler struct {
	Auth      AuthService
	Clinics   ClinicService
	Documents DocumentService
	Risks     RiskService
	Settings  *config.AISettings
	DB        Pinger
	Feed      LiveFeed
	Log       zerolog.Logger
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	logger := h.Log.With().Str("request_id", middleware.RequestIDFrom(r.Context())).Logger()
	utils.RespondWithAppError(w, logger, err)
}

// currentUser returns the authenticated user or writes a 401.
func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user := middleware.UserFrom(r.Context())
	if user == nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Not authenticated")
		return nil, false
	}
	return user, true
}
