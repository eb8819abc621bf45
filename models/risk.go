package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RiskStatusOpen       = "open"
	RiskStatusMonitoring = "monitoring"
	RiskStatusClosed     = "closed"
)

var RiskCategories = []string{"clinical", "WHS", "privacy", "business"}

type Risk struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	ClinicID       primitive.ObjectID   `bson:"clinic_id" json:"clinic_id"`
	Title          string               `bson:"title" json:"title"`
	Description    string               `bson:"description" json:"description"`
	Category       string               `bson:"category" json:"category"`
	Severity       int                  `bson:"severity" json:"severity"`
	Likelihood     int                  `bson:"likelihood" json:"likelihood"`
	RiskScore      int                  `bson:"risk_score" json:"risk_score"` // severity * likelihood, set once at creation
	MitigationPlan string               `bson:"mitigation_plan,omitempty" json:"mitigation_plan,omitempty"`
	Status         string               `bson:"status" json:"status"`
	OwnerID        *primitive.ObjectID  `bson:"owner_id,omitempty" json:"owner_id,omitempty"`
	LinkedDocs     []primitive.ObjectID `bson:"linked_docs" json:"linked_docs"`
	CreatedAt      time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time            `bson:"updated_at" json:"updated_at"`
}
