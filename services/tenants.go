package services

import (
	"context"
	"strings"

	"github.com/gosimple/slug"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AgentChief/accredis/config"
	"github.com/AgentChief/accredis/models"
	"github.com/AgentChief/accredis/utils"
)

type ClinicInput struct {
	Name    string `json:"name" validate:"required"`
	ABN     string `json:"abn"`
	Address string `json:"address" validate:"required"`
	State   string `json:"state" validate:"required,state"`
	Phone   string `json:"phone"`
	Email   string `json:"email" validate:"omitempty,email"`
}

// TenantRegistry owns clinics and decides which clinics a user may touch.
type TenantRegistry struct {
	clinics   ClinicStore
	users     UserStore
	isolation string
	now       Clock
	log       zerolog.Logger
}

func NewTenantRegistry(clinics ClinicStore, users UserStore, isolation string, logger zerolog.Logger) *TenantRegistry {
	if isolation != config.TenantIsolationOpen {
		isolation = config.TenantIsolationStrict
	}
	return &TenantRegistry{
		clinics:   clinics,
		users:     users,
		isolation: isolation,
		now:       systemClock,
		log:       logger.With().Str("component", "tenants").Logger(),
	}
}

// Strict reports whether cross-clinic access is denied.
func (t *TenantRegistry) Strict() bool { return t.isolation == config.TenantIsolationStrict }

// CreateClinic stores the clinic owned by user and assigns the user to it.
// The two writes are independent; a failed assignment leaves the clinic in place.
func (t *TenantRegistry) CreateClinic(ctx context.Context, user *models.User, in ClinicInput) (*models.Clinic, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}

	clinic := &models.Clinic{
		Name:      strings.TrimSpace(in.Name),
		Slug:      slug.Make(in.Name),
		ABN:       strings.TrimSpace(in.ABN),
		Address:   strings.TrimSpace(in.Address),
		State:     in.State,
		Phone:     strings.TrimSpace(in.Phone),
		Email:     strings.TrimSpace(in.Email),
		OwnerID:   user.ID,
		CreatedAt: t.now().UTC(),
	}
	if err := t.clinics.Create(ctx, clinic); err != nil {
		return nil, utils.Internal("failed to create clinic", err)
	}

	if err := t.users.SetClinic(ctx, user.ID, clinic.ID); err != nil {
		t.log.Error().Err(err).
			Str("user_id", user.ID.Hex()).
			Str("clinic_id", clinic.ID.Hex()).
			Msg("clinic created but owner assignment failed")
		return nil, utils.Internal("failed to assign clinic", err)
	}
	id := clinic.ID
	user.ClinicID = &id

	t.log.Info().Str("clinic_id", clinic.ID.Hex()).Str("slug", clinic.Slug).Msg("clinic created")
	return clinic, nil
}

func (t *TenantRegistry) GetClinic(ctx context.Context, user *models.User, id string) (*models.Clinic, error) {
	clinicID, ok := parseID(id)
	if !ok {
		return nil, utils.NotFound("Clinic not found")
	}
	clinic, err := t.clinics.FindByID(ctx, clinicID)
	if err != nil {
		if isNotFound(err) {
			return nil, utils.NotFound("Clinic not found")
		}
		return nil, utils.Internal("failed to load clinic", err)
	}
	if !t.allowed(user, clinic) {
		return nil, utils.NotFound("Clinic not found")
	}
	return clinic, nil
}

func (t *TenantRegistry) ListClinicsForUser(ctx context.Context, user *models.User) ([]models.Clinic, error) {
	clinics, err := t.clinics.ListForUser(ctx, user.ID, user.ClinicID)
	if err != nil {
		return nil, utils.Internal("failed to list clinics", err)
	}
	if clinics == nil {
		clinics = []models.Clinic{}
	}
	return clinics, nil
}

// CanAccess reports whether user may read or write data belonging to clinicID.
func (t *TenantRegistry) CanAccess(ctx context.Context, user *models.User, clinicID primitive.ObjectID) (bool, error) {
	if !t.Strict() {
		return true, nil
	}
	if user.ClinicID != nil && *user.ClinicID == clinicID {
		return true, nil
	}
	clinic, err := t.clinics.FindByID(ctx, clinicID)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, utils.Internal("failed to load clinic", err)
	}
	return clinic.OwnerID == user.ID, nil
}

func (t *TenantRegistry) allowed(user *models.User, clinic *models.Clinic) bool {
	if !t.Strict() {
		return true
	}
	return clinic.OwnerID == user.ID || (user.ClinicID != nil && *user.ClinicID == clinic.ID)
}

// RequireClinic resolves a clinic a write is scoped to. Missing clinics are
// NotFound, inaccessible ones Forbidden.
func (t *TenantRegistry) RequireClinic(ctx context.Context, user *models.User, id string) (*models.Clinic, error) {
	clinicID, ok := parseID(id)
	if !ok {
		return nil, utils.InvalidArgument("clinic_id is invalid")
	}
	clinic, err := t.clinics.FindByID(ctx, clinicID)
	if err != nil {
		if isNotFound(err) {
			return nil, utils.NotFound("Clinic not found")
		}
		return nil, utils.Internal("failed to load clinic", err)
	}
	if !t.allowed(user, clinic) {
		return nil, utils.Forbidden("Access to clinic denied")
	}
	return clinic, nil
}

// ResolveScope picks the clinic a listing is limited to: the requested one,
// else the user's own. A nil result with a nil error means "no clinic filter"
// and is only returned in open mode; strict mode with no clinic yields empty=true.
func (t *TenantRegistry) ResolveScope(ctx context.Context, user *models.User, requested string) (scope *primitive.ObjectID, empty bool, err error) {
	if requested != "" {
		id, ok := parseID(requested)
		if !ok {
			return nil, false, utils.InvalidArgument("clinic_id is invalid")
		}
		allowed, err := t.CanAccess(ctx, user, id)
		if err != nil {
			return nil, false, err
		}
		if !allowed {
			return nil, false, utils.Forbidden("Access to clinic denied")
		}
		return &id, false, nil
	}
	if user.ClinicID != nil {
		id := *user.ClinicID
		return &id, false, nil
	}
	if t.Strict() {
		return nil, true, nil
	}
	return nil, false, nil
}
