package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AgentChief/accredis/ai"
	"github.com/AgentChief/accredis/extract"
	"github.com/AgentChief/accredis/metrics"
	"github.com/AgentChief/accredis/models"
	"github.com/AgentChief/accredis/utils"
	"github.com/AgentChief/accredis/websocket"
)

type GenerateInput struct {
	Prompt       string `json:"prompt" validate:"required"`
	Category     string `json:"category" validate:"doc_category"`
	Jurisdiction string `json:"jurisdiction" validate:"jurisdiction"`
	ClinicID     string `json:"clinic_id" validate:"required"`
}

type UploadInput struct {
	Filename     string `json:"filename" validate:"required"`
	ContentType  string `json:"content_type"`
	Data         []byte `json:"-"`
	Category     string `json:"category" validate:"doc_category"`
	Jurisdiction string `json:"jurisdiction" validate:"jurisdiction"`
	ClinicID     string `json:"clinic_id" validate:"required"`
}

type ListDocumentsInput struct {
	ClinicID string
	Status   string
	Category string
}

// AuditResult is returned from an audit run; it is the stored record.
type AuditResult = models.AuditRecord

// DocumentEngine runs the document lifecycle: creation, status transitions
// with publish-time signing, and AI audits.
type DocumentEngine struct {
	docs    DocumentStore
	audits  AuditStore
	tenants *TenantRegistry
	ai      Assistant
	events  Publisher
	now     Clock
	log     zerolog.Logger
}

func NewDocumentEngine(docs DocumentStore, audits AuditStore, tenants *TenantRegistry, assistant Assistant, events Publisher, logger zerolog.Logger) *DocumentEngine {
	if events == nil {
		events = nopPublisher{}
	}
	return &DocumentEngine{
		docs:    docs,
		audits:  audits,
		tenants: tenants,
		ai:      assistant,
		events:  events,
		now:     systemClock,
		log:     logger.With().Str("component", "documents").Logger(),
	}
}

func defaultString(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func (e *DocumentEngine) CreateFromGeneration(ctx context.Context, user *models.User, in GenerateInput) (*models.Document, error) {
	in.Category = defaultString(in.Category, "policy")
	in.Jurisdiction = defaultString(in.Jurisdiction, "national")
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	clinic, err := e.tenants.RequireClinic(ctx, user, in.ClinicID)
	if err != nil {
		return nil, err
	}

	content, err := e.ai.Generate(ctx, in.Prompt, in.Jurisdiction, in.Category)
	if err != nil {
		return nil, err
	}

	doc := e.newDraft(user, clinic.ID, ai.ExtractTitle(content), content, in.Category, in.Jurisdiction, []string{})
	if err := e.docs.Create(ctx, doc); err != nil {
		return nil, utils.Internal("failed to save document", err)
	}
	e.log.Info().Str("document_id", doc.ID.Hex()).Str("clinic_id", clinic.ID.Hex()).Msg("document generated")
	e.publish(websocket.EventDocumentCreated, doc, user, map[string]string{"title": doc.Title, "source": "generated"})
	return doc, nil
}

func (e *DocumentEngine) CreateFromUpload(ctx context.Context, user *models.User, in UploadInput) (*models.Document, error) {
	in.Category = defaultString(in.Category, "policy")
	in.Jurisdiction = defaultString(in.Jurisdiction, "national")
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	clinic, err := e.tenants.RequireClinic(ctx, user, in.ClinicID)
	if err != nil {
		return nil, err
	}

	text, err := extract.Text(in.Data, in.ContentType)
	if err != nil {
		return nil, err
	}

	doc := e.newDraft(user, clinic.ID, in.Filename, text, in.Category, in.Jurisdiction, []string{"uploaded"})
	if err := e.docs.Create(ctx, doc); err != nil {
		return nil, utils.Internal("failed to save document", err)
	}
	e.log.Info().
		Str("document_id", doc.ID.Hex()).
		Str("content_type", in.ContentType).
		Int("bytes", len(in.Data)).
		Msg("document uploaded")
	e.publish(websocket.EventDocumentCreated, doc, user, map[string]string{"title": doc.Title, "source": "upload"})
	return doc, nil
}

func (e *DocumentEngine) newDraft(user *models.User, clinicID primitive.ObjectID, title, content, category, jurisdiction string, tags []string) *models.Document {
	now := e.now().UTC()
	return &models.Document{
		ClinicID:     clinicID,
		Title:        title,
		Category:     category,
		Content:      content,
		Jurisdiction: jurisdiction,
		Tags:         tags,
		Status:       models.StatusDraft,
		Version:      1,
		CreatedBy:    user.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Get loads a document the user may see. Inaccessible documents are reported as missing.
func (e *DocumentEngine) Get(ctx context.Context, user *models.User, id string) (*models.Document, error) {
	docID, ok := parseID(id)
	if !ok {
		return nil, utils.NotFound("Document not found")
	}
	doc, err := e.docs.FindByID(ctx, docID)
	if err != nil {
		if isNotFound(err) {
			return nil, utils.NotFound("Document not found")
		}
		return nil, utils.Internal("failed to load document", err)
	}
	allowed, err := e.tenants.CanAccess(ctx, user, doc.ClinicID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, utils.NotFound("Document not found")
	}
	return doc, nil
}

func (e *DocumentEngine) List(ctx context.Context, user *models.User, in ListDocumentsInput) ([]models.Document, error) {
	if in.Status != "" && !models.IsDocumentStatus(in.Status) {
		return nil, utils.InvalidArgument("Invalid status")
	}
	scope, empty, err := e.tenants.ResolveScope(ctx, user, in.ClinicID)
	if err != nil {
		return nil, err
	}
	if empty {
		return []models.Document{}, nil
	}
	docs, err := e.docs.List(ctx, models.DocumentFilter{
		ClinicID: scope,
		Status:   in.Status,
		Category: in.Category,
		Limit:    models.DefaultListLimit,
	})
	if err != nil {
		return nil, utils.Internal("failed to list documents", err)
	}
	if docs == nil {
		docs = []models.Document{}
	}
	return docs, nil
}

// SetStatus moves a document to status. Publishing signs the content with the
// acting user and the transition instant; leaving published retires the
// active signature into the document's signature history.
func (e *DocumentEngine) SetStatus(ctx context.Context, user *models.User, id, status string) (*models.Document, error) {
	if !models.IsDocumentStatus(status) {
		return nil, utils.InvalidArgument("Invalid status")
	}
	doc, err := e.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}

	// Mongo stores milliseconds; sign with the instant that will be read back.
	now := e.now().UTC().Truncate(time.Millisecond)
	change := models.StatusChange{Status: status, UpdatedAt: now}
	if status == models.StatusPublished {
		signer := user.ID.Hex()
		hash := SignatureDigest(doc.Content, signer, now)
		change.Sign = &models.SignatureRecord{Hash: hash, SignedBy: signer, SignedAt: now}
	}

	if err := e.docs.UpdateStatus(ctx, doc.ID, change); err != nil {
		if isNotFound(err) {
			return nil, utils.NotFound("Document not found")
		}
		return nil, utils.Internal("failed to update document status", err)
	}
	from := doc.Status
	stored, err := e.docs.FindByID(ctx, doc.ID)
	if err != nil {
		if isNotFound(err) {
			return nil, utils.NotFound("Document not found")
		}
		return nil, utils.Internal("failed to load document", err)
	}
	doc = stored

	metrics.ObserveTransition(status)
	e.log.Info().
		Str("document_id", doc.ID.Hex()).
		Str("from", from).
		Str("to", status).
		Bool("signed", change.Sign != nil).
		Msg("document status changed")
	e.publish(websocket.EventDocumentStatusChanged, doc, user, map[string]string{"from": from, "status": status})
	return doc, nil
}

// Audit runs an AI compliance audit over the document and stores the outcome.
func (e *DocumentEngine) Audit(ctx context.Context, user *models.User, id string) (*AuditResult, error) {
	doc, err := e.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}
	report, err := e.ai.Audit(ctx, doc.Content, doc.Jurisdiction)
	if err != nil {
		return nil, err
	}

	rec := &models.AuditRecord{
		DocumentID:       doc.ID,
		ClinicID:         doc.ClinicID,
		Score:            report.Score,
		ComplianceIssues: report.ComplianceIssues,
		Recommendations:  report.Recommendations,
		RACGPCoverage:    report.RACGPCoverage,
		Summary:          report.Summary,
		Model:            report.Model,
		AuditedBy:        user.ID,
		AuditedAt:        e.now().UTC(),
	}
	if rec.ComplianceIssues == nil {
		rec.ComplianceIssues = []models.ComplianceIssue{}
	}
	if rec.Recommendations == nil {
		rec.Recommendations = []string{}
	}
	if rec.RACGPCoverage == nil {
		rec.RACGPCoverage = map[string]bool{}
	}
	if err := e.audits.Insert(ctx, rec); err != nil {
		return nil, utils.Internal("failed to store audit", err)
	}

	e.log.Info().Str("document_id", doc.ID.Hex()).Float64("score", rec.Score).Msg("document audited")
	e.publish(websocket.EventDocumentAudited, doc, user, map[string]interface{}{"score": rec.Score, "audit_id": rec.ID.Hex()})
	return rec, nil
}

// ListAudits returns the audit history of a document, newest first.
func (e *DocumentEngine) ListAudits(ctx context.Context, user *models.User, id string) ([]models.AuditRecord, error) {
	doc, err := e.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}
	records, err := e.audits.ListByDocument(ctx, doc.ID)
	if err != nil {
		return nil, utils.Internal("failed to list audits", err)
	}
	if records == nil {
		records = []models.AuditRecord{}
	}
	return records, nil
}

func (e *DocumentEngine) publish(kind string, doc *models.Document, user *models.User, data interface{}) {
	e.events.Publish(websocket.Event{
		Type:       kind,
		ClinicID:   doc.ClinicID.Hex(),
		DocumentID: doc.ID.Hex(),
		Data:       data,
		Timestamp:  e.now().UTC(),
		UserID:     user.ID.Hex(),
	})
}
