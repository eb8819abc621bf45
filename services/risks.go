package services

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AgentChief/accredis/models"
	"github.com/AgentChief/accredis/utils"
	"github.com/AgentChief/accredis/websocket"
)

const (
	minRating = 1
	maxRating = 5
)

type RiskInput struct {
	Title          string `json:"title" validate:"required"`
	Description    string `json:"description" validate:"required"`
	Category       string `json:"category" validate:"required,risk_category"`
	Severity       int    `json:"severity" validate:"required,gte=1,lte=5"`
	Likelihood     int    `json:"likelihood" validate:"required,gte=1,lte=5"`
	MitigationPlan string `json:"mitigation_plan"`
	ClinicID       string `json:"clinic_id" validate:"required"`
}

// Score is severity × likelihood. Both ratings must lie in [1, 5].
func Score(severity, likelihood int) (int, error) {
	if severity < minRating || severity > maxRating {
		return 0, utils.InvalidArgument("severity must be between 1 and 5")
	}
	if likelihood < minRating || likelihood > maxRating {
		return 0, utils.InvalidArgument("likelihood must be between 1 and 5")
	}
	return severity * likelihood, nil
}

type RiskRegister struct {
	risks   RiskStore
	tenants *TenantRegistry
	events  Publisher
	now     Clock
	log     zerolog.Logger
}

func NewRiskRegister(risks RiskStore, tenants *TenantRegistry, events Publisher, logger zerolog.Logger) *RiskRegister {
	if events == nil {
		events = nopPublisher{}
	}
	return &RiskRegister{
		risks:   risks,
		tenants: tenants,
		events:  events,
		now:     systemClock,
		log:     logger.With().Str("component", "risks").Logger(),
	}
}

func (r *RiskRegister) CreateRisk(ctx context.Context, user *models.User, in RiskInput) (*models.Risk, error) {
	// Range errors read better from Score than from the validator.
	score, err := Score(in.Severity, in.Likelihood)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	clinic, err := r.tenants.RequireClinic(ctx, user, in.ClinicID)
	if err != nil {
		return nil, err
	}

	now := r.now().UTC()
	owner := user.ID
	risk := &models.Risk{
		ClinicID:       clinic.ID,
		Title:          strings.TrimSpace(in.Title),
		Description:    in.Description,
		Category:       in.Category,
		Severity:       in.Severity,
		Likelihood:     in.Likelihood,
		RiskScore:      score,
		MitigationPlan: in.MitigationPlan,
		Status:         models.RiskStatusOpen,
		OwnerID:        &owner,
		LinkedDocs:     []primitive.ObjectID{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := r.risks.Create(ctx, risk); err != nil {
		return nil, utils.Internal("failed to create risk", err)
	}

	r.log.Info().Str("risk_id", risk.ID.Hex()).Int("risk_score", score).Msg("risk created")
	r.events.Publish(websocket.Event{
		Type:      websocket.EventRiskCreated,
		ClinicID:  clinic.ID.Hex(),
		RiskID:    risk.ID.Hex(),
		Data:      map[string]interface{}{"title": risk.Title, "risk_score": score},
		Timestamp: now,
		UserID:    user.ID.Hex(),
	})
	return risk, nil
}

// ListRisks returns the clinic's risks, highest score first. Equal scores keep storage order.
func (r *RiskRegister) ListRisks(ctx context.Context, user *models.User, clinicID string) ([]models.Risk, error) {
	scope, empty, err := r.tenants.ResolveScope(ctx, user, clinicID)
	if err != nil {
		return nil, err
	}
	if empty {
		return []models.Risk{}, nil
	}
	risks, err := r.risks.ListByClinic(ctx, scope)
	if err != nil {
		return nil, utils.Internal("failed to list risks", err)
	}
	if risks == nil {
		return []models.Risk{}, nil
	}
	sort.SliceStable(risks, func(i, j int) bool { return risks[i].RiskScore > risks[j].RiskScore })
	return risks, nil
}

func (r *RiskRegister) GetRisk(ctx context.Context, user *models.User, id string) (*models.Risk, error) {
	riskID, ok := parseID(id)
	if !ok {
		return nil, utils.NotFound("Risk not found")
	}
	risk, err := r.risks.FindByID(ctx, riskID)
	if err != nil {
		if isNotFound(err) {
			return nil, utils.NotFound("Risk not found")
		}
		return nil, utils.Internal("failed to load risk", err)
	}
	allowed, err := r.tenants.CanAccess(ctx, user, risk.ClinicID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, utils.NotFound("Risk not found")
	}
	return risk, nil
}
