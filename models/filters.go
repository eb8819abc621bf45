package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultListLimit caps every list query.
const DefaultListLimit = 100

// DocumentFilter narrows a document listing. Nil/empty fields do not filter.
type DocumentFilter struct {
	ClinicID *primitive.ObjectID
	Status   string
	Category string
	Limit    int64
}

// StatusChange is the update written by a lifecycle transition. The store
// retires whatever signature is stored at write time into previous_signatures
// (superseded at UpdatedAt), then sets the active fields from Sign, or clears
// them when Sign is nil.
type StatusChange struct {
	Status    string
	UpdatedAt time.Time
	Sign      *SignatureRecord
}
