package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/AgentChief/accredis/database"
	"github.com/AgentChief/accredis/models"
	"github.com/AgentChief/accredis/utils"
)

type RegisterInput struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Role      string `json:"role" validate:"omitempty,role"`
	ClinicID  string `json:"clinic_id" validate:"omitempty,mongodb"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is returned by register and login.
type AuthResult struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        *models.User `json:"user"`
}

// CredentialStore registers users, checks passwords and issues/validates session tokens.
type CredentialStore struct {
	users   UserStore
	clinics ClinicStore
	tokens  *utils.TokenIssuer
	now     Clock
	log     zerolog.Logger
}

func NewCredentialStore(users UserStore, clinics ClinicStore, tokens *utils.TokenIssuer, logger zerolog.Logger) *CredentialStore {
	return &CredentialStore{
		users:   users,
		clinics: clinics,
		tokens:  tokens,
		now:     systemClock,
		log:     logger.With().Str("component", "credentials").Logger(),
	}
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *CredentialStore) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Email = normaliseEmail(in.Email)
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	if in.Role == "" {
		in.Role = models.RoleStaff
	}

	_, err := s.users.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, utils.Conflict("Email already registered")
	case !isNotFound(err):
		return nil, utils.Internal("registration failed", err)
	}

	user := &models.User{
		Email:     in.Email,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Role:      in.Role,
		IsActive:  true,
		CreatedAt: s.now().UTC(),
	}

	// A clinic id given at registration acts as an invitation into that clinic.
	if in.ClinicID != "" {
		clinicID, ok := parseID(in.ClinicID)
		if !ok {
			return nil, utils.InvalidArgument("clinic_id is invalid")
		}
		if _, err := s.clinics.FindByID(ctx, clinicID); err != nil {
			if isNotFound(err) {
				return nil, utils.NotFound("Clinic not found")
			}
			return nil, utils.Internal("registration failed", err)
		}
		user.ClinicID = &clinicID
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, utils.Internal("failed to process password", err)
	}
	user.PasswordHash = hash

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, utils.Conflict("Email already registered")
		}
		return nil, utils.Internal("registration failed", err)
	}

	s.log.Info().Str("user_id", user.ID.Hex()).Str("role", user.Role).Msg("user registered")
	return s.issue(user)
}

func (s *CredentialStore) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Email = normaliseEmail(in.Email)
	if err := utils.ValidateStruct(in); err != nil {
		return nil, utils.Unauthorized("Invalid credentials")
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if isNotFound(err) {
			utils.BurnPasswordCheck(in.Password)
			return nil, utils.Unauthorized("Invalid credentials")
		}
		return nil, utils.Internal("authentication service unavailable", err)
	}

	if !utils.CheckPasswordHash(in.Password, user.PasswordHash) {
		return nil, utils.Unauthorized("Invalid credentials")
	}
	if !user.IsActive {
		return nil, utils.Unauthorized("Account deactivated")
	}
	return s.issue(user)
}

// Authenticate validates a bearer token and loads its subject.
func (s *CredentialStore) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.ValidateJWT(token)
	if err != nil {
		return nil, utils.Unauthorized("Invalid or expired token")
	}
	userID, ok := parseID(claims.UserID)
	if !ok {
		return nil, utils.Unauthorized("Invalid token")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, utils.Unauthorized("User not found")
		}
		return nil, utils.Internal("authentication service unavailable", err)
	}
	user.PasswordHash = ""
	return user, nil
}

// SetActive enables or disables login for the account with the given email.
func (s *CredentialStore) SetActive(ctx context.Context, email string, active bool) error {
	email = normaliseEmail(email)
	if email == "" {
		return utils.InvalidArgument("email is required")
	}
	if err := s.users.SetActive(ctx, email, active); err != nil {
		if isNotFound(err) {
			return utils.NotFound("User not found")
		}
		return utils.Internal("failed to update user", err)
	}
	s.log.Info().Str("email", email).Bool("active", active).Msg("account status changed")
	return nil
}

func (s *CredentialStore) issue(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.GenerateJWT(user.ID.Hex(), user.ClinicHex())
	if err != nil {
		return nil, utils.Internal("failed to generate authentication token", err)
	}
	public := *user
	public.PasswordHash = ""
	return &AuthResult{AccessToken: token, TokenType: "bearer", User: &public}, nil
}

// TokenTTL exposes the configured session lifetime.
func (s *CredentialStore) TokenTTL() time.Duration { return s.tokens.TTL() }
