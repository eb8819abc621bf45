// models/document.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusDraft     = "draft"
	StatusReview    = "review"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// DocumentStatuses lists every lifecycle state. Any state may move to any other.
var DocumentStatuses = []string{StatusDraft, StatusReview, StatusPublished, StatusArchived}

var DocumentCategories = []string{"policy", "procedure", "checklist", "risk_assessment"}

// Jurisdictions covers the national scope plus each state and territory.
var Jurisdictions = append([]string{"national"}, AustralianStates...)

func IsDocumentStatus(s string) bool {
	for _, v := range DocumentStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type Document struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClinicID           primitive.ObjectID `bson:"clinic_id" json:"clinic_id"`
	Title              string             `bson:"title" json:"title"`
	Category           string             `bson:"category" json:"category"`
	Content            string             `bson:"content" json:"content"`
	Jurisdiction       string             `bson:"jurisdiction" json:"jurisdiction"`
	Tags               []string           `bson:"tags" json:"tags"`
	Status             string             `bson:"status" json:"status"`
	Version            int                `bson:"version" json:"version"`
	CreatedBy          primitive.ObjectID `bson:"created_by" json:"created_by"`
	CreatedAt          time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time          `bson:"updated_at" json:"updated_at"`
	SignatureHash      *string            `bson:"signature_hash" json:"signature_hash"`
	SignedBy           *string            `bson:"signed_by" json:"signed_by"`
	SignedAt           *time.Time         `bson:"signed_at" json:"signed_at"`
	PreviousSignatures []SignatureRecord  `bson:"previous_signatures,omitempty" json:"previous_signatures,omitempty"`
}

// SignatureRecord keeps a signature that was active while the document was published.
type SignatureRecord struct {
	Hash         string    `bson:"hash" json:"hash"`
	SignedBy     string    `bson:"signed_by" json:"signed_by"`
	SignedAt     time.Time `bson:"signed_at" json:"signed_at"`
	SupersededAt time.Time `bson:"superseded_at" json:"superseded_at"`
}

// IsSigned reports whether all active signature fields are set.
func (d *Document) IsSigned() bool {
	return d.SignatureHash != nil && d.SignedBy != nil && d.SignedAt != nil
}
