// models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleStaff      = "staff"
	RoleManager    = "manager"
	RoleOwner      = "owner"
	RoleConsultant = "consultant"
)

var ValidRoles = []string{RoleStaff, RoleManager, RoleOwner, RoleConsultant}

type User struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Email        string              `bson:"email" json:"email"`
	FirstName    string              `bson:"first_name" json:"first_name"`
	LastName     string              `bson:"last_name" json:"last_name"`
	Role         string              `bson:"role" json:"role"`
	ClinicID     *primitive.ObjectID `bson:"clinic_id,omitempty" json:"clinic_id,omitempty"`
	PasswordHash string              `bson:"password_hash" json:"-"`
	IsActive     bool                `bson:"is_active" json:"is_active"`
	CreatedAt    time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time           `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// ClinicHex returns the affiliated clinic id or "".
func (u *User) ClinicHex() string {
	if u.ClinicID == nil || u.ClinicID.IsZero() {
		return ""
	}
	return u.ClinicID.Hex()
}

// CanManageSettings reports whether the user may change process-wide settings.
func (u *User) CanManageSettings() bool {
	return u != nil && (u.Role == RoleOwner || u.Role == RoleManager)
}
