// models/clinic.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Australian states and territories a clinic can be registered in.
var AustralianStates = []string{"NSW", "VIC", "QLD", "SA", "WA", "TAS", "NT", "ACT"}

type Clinic struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Slug      string             `bson:"slug" json:"slug"`
	ABN       string             `bson:"abn,omitempty" json:"abn,omitempty"`
	Address   string             `bson:"address" json:"address"`
	State     string             `bson:"state" json:"state"`
	Phone     string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Email     string             `bson:"email,omitempty" json:"email,omitempty"`
	OwnerID   primitive.ObjectID `bson:"owner_id" json:"owner_id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
