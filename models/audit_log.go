// models/audit_log.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuditRecord is the stored outcome of one compliance audit run. Records are never updated.
type AuditRecord struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DocumentID       primitive.ObjectID `bson:"document_id" json:"document_id"`
	ClinicID         primitive.ObjectID `bson:"clinic_id" json:"clinic_id"`
	Score            float64            `bson:"score" json:"score"`
	ComplianceIssues []ComplianceIssue  `bson:"compliance_issues" json:"compliance_issues"`
	Recommendations  []string           `bson:"recommendations" json:"recommendations"`
	RACGPCoverage    map[string]bool    `bson:"racgp_coverage" json:"racgp_coverage"`
	Summary          string             `bson:"summary,omitempty" json:"summary,omitempty"`
	Model            string             `bson:"model,omitempty" json:"model,omitempty"`
	AuditedBy        primitive.ObjectID `bson:"audited_by" json:"audited_by"`
	AuditedAt        time.Time          `bson:"audited_at" json:"audited_at"`
}

type ComplianceIssue struct {
	Standard    string `bson:"standard,omitempty" json:"standard,omitempty"`
	Severity    string `bson:"severity,omitempty" json:"severity,omitempty"`
	Description string `bson:"description" json:"description"`
}
