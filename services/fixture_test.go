package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AgentChief/accredis/models"
	"github.com/AgentChief/accredis/utils"
)

var baseTime = time.Date(2025, 3, 1, 10, 0, 0, 123456789, time.UTC)

type fixture struct {
	users   *memUsers
	clinics *memClinics
	docs    *memDocs
	risks   *memRisks
	audits  *memAudits
	ai      *fakeAssistant
	events  *recordingPublisher

	creds    *CredentialStore
	tenants  *TenantRegistry
	engine   *DocumentEngine
	register *RiskRegister

	now time.Time
}

func newFixture(t *testing.T, isolation string) *fixture {
	t.Helper()
	f := &fixture{
		users:   newMemUsers(),
		clinics: &memClinics{},
		docs:    &memDocs{},
		risks:   &memRisks{},
		audits:  &memAudits{},
		ai:      &fakeAssistant{},
		events:  &recordingPublisher{},
		now:     baseTime,
	}
	clock := func() time.Time { return f.now }
	log := zerolog.Nop()

	tokens := utils.NewTokenIssuer([]byte("test-secret"), 0).WithClock(clock)
	f.creds = NewCredentialStore(f.users, f.clinics, tokens, log)
	f.creds.now = clock
	f.tenants = NewTenantRegistry(f.clinics, f.users, isolation, log)
	f.tenants.now = clock
	f.engine = NewDocumentEngine(f.docs, f.audits, f.tenants, f.ai, f.events, log)
	f.engine.now = clock
	f.register = NewRiskRegister(f.risks, f.tenants, f.events, log)
	f.register.now = clock
	return f
}

func (f *fixture) advance(d time.Duration) { f.now = f.now.Add(d) }

// addUser stores a user directly, bypassing registration.
func (f *fixture) addUser(t *testing.T, email string) *models.User {
	t.Helper()
	u := &models.User{Email: email, FirstName: "Test", LastName: "User", Role: models.RoleStaff, IsActive: true}
	if err := f.users.Create(context.Background(), u); err != nil {
		t.Fatalf("add user: %v", err)
	}
	return u
}

// addClinic stores a clinic owned by owner and affiliates the owner with it.
func (f *fixture) addClinic(t *testing.T, owner *models.User) primitive.ObjectID {
	t.Helper()
	c := &models.Clinic{Name: "Clinic " + owner.Email, State: "NSW", OwnerID: owner.ID}
	if err := f.clinics.Create(context.Background(), c); err != nil {
		t.Fatalf("add clinic: %v", err)
	}
	id := c.ID
	owner.ClinicID = &id
	_ = f.users.SetClinic(context.Background(), owner.ID, id)
	return id
}
