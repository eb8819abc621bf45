// Package services holds the business rules: credentials, tenancy, the
// document lifecycle and the risk register. Persistence and the AI model are
// reached through the interfaces declared here.
package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AgentChief/accredis/ai"
	"github.com/AgentChief/accredis/database"
	"github.com/AgentChief/accredis/models"
	"github.com/AgentChief/accredis/websocket"
)

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	SetClinic(ctx context.Context, userID, clinicID primitive.ObjectID) error
	SetActive(ctx context.Context, email string, active bool) error
}

type ClinicStore interface {
	Create(ctx context.Context, c *models.Clinic) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Clinic, error)
	ListForUser(ctx context.Context, ownerID primitive.ObjectID, affiliated *primitive.ObjectID) ([]models.Clinic, error)
}

type DocumentStore interface {
	Create(ctx context.Context, d *models.Document) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Document, error)
	List(ctx context.Context, f models.DocumentFilter) ([]models.Document, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, change models.StatusChange) error
}

type RiskStore interface {
	Create(ctx context.Context, r *models.Risk) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Risk, error)
	ListByClinic(ctx context.Context, clinicID *primitive.ObjectID) ([]models.Risk, error)
}

type AuditStore interface {
	Insert(ctx context.Context, rec *models.AuditRecord) error
	ListByDocument(ctx context.Context, documentID primitive.ObjectID) ([]models.AuditRecord, error)
}

// Assistant is the AI delegate used for generation and auditing.
type Assistant interface {
	Generate(ctx context.Context, prompt, jurisdiction, category string) (string, error)
	Audit(ctx context.Context, content, jurisdiction string) (*ai.AuditReport, error)
}

// Publisher receives clinic events for live delivery.
type Publisher interface {
	Publish(ev websocket.Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(websocket.Event) {}

// Clock returns the current time. Tests substitute a fixed clock.
type Clock func() time.Time

func systemClock() time.Time { return time.Now() }

func isNotFound(err error) bool { return errors.Is(err, database.ErrNotFound) }

// parseID converts a hex id. Malformed ids are reported as ok=false.
func parseID(hex string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil || id.IsZero() {
		return primitive.NilObjectID, false
	}
	return id, true
}
