package services

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AgentChief/accredis/ai"
	"github.com/AgentChief/accredis/database"
	"github.com/AgentChief/accredis/models"
	"github.com/AgentChief/accredis/websocket"
)

// Compile-time checks that the Mongo repositories satisfy the store contracts.
var (
	_ UserStore     = (*database.UserRepository)(nil)
	_ ClinicStore   = (*database.ClinicRepository)(nil)
	_ DocumentStore = (*database.DocumentRepository)(nil)
	_ RiskStore     = (*database.RiskRepository)(nil)
	_ AuditStore    = (*database.AuditRepository)(nil)
	_ Assistant     = (*ai.Gateway)(nil)
	_ Publisher     = (*websocket.Hub)(nil)
)

type memUsers struct {
	mu    sync.Mutex
	byID  map[primitive.ObjectID]*models.User
	err   error
	calls int
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[primitive.ObjectID]*models.User{}}
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return m.err
	}
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return database.ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *memUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) SetClinic(_ context.Context, userID, clinicID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[userID]
	if !ok {
		return database.ErrNotFound
	}
	id := clinicID
	u.ClinicID = &id
	return nil
}

func (m *memUsers) SetActive(_ context.Context, email string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			u.IsActive = active
			return nil
		}
	}
	return database.ErrNotFound
}

type memClinics struct {
	mu   sync.Mutex
	rows []*models.Clinic
}

func (m *memClinics) Create(_ context.Context, c *models.Clinic) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	cp := *c
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *memClinics) FindByID(_ context.Context, id primitive.ObjectID) (*models.Clinic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.rows {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *memClinics) ListForUser(_ context.Context, ownerID primitive.ObjectID, affiliated *primitive.ObjectID) ([]models.Clinic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Clinic
	for _, c := range m.rows {
		if c.OwnerID == ownerID || (affiliated != nil && c.ID == *affiliated) {
			out = append(out, *c)
		}
	}
	return out, nil
}

type memDocs struct {
	mu   sync.Mutex
	rows []*models.Document
}

func (m *memDocs) Create(_ context.Context, d *models.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	cp := *d
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *memDocs) FindByID(_ context.Context, id primitive.ObjectID) (*models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.rows {
		if d.ID == id {
			cp := *d
			cp.PreviousSignatures = append([]models.SignatureRecord(nil), d.PreviousSignatures...)
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *memDocs) List(_ context.Context, f models.DocumentFilter) ([]models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Document
	for i := len(m.rows) - 1; i >= 0; i-- {
		d := m.rows[i]
		if f.ClinicID != nil && d.ClinicID != *f.ClinicID {
			continue
		}
		if f.Status != "" && d.Status != f.Status {
			continue
		}
		if f.Category != "" && d.Category != f.Category {
			continue
		}
		out = append(out, *d)
	}
	return out, nil
}

// UpdateStatus mirrors the field updates of the Mongo repository.
func (m *memDocs) UpdateStatus(_ context.Context, id primitive.ObjectID, change models.StatusChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.rows {
		if d.ID != id {
			continue
		}
		d.Status = change.Status
		d.UpdatedAt = change.UpdatedAt
		if d.IsSigned() {
			d.PreviousSignatures = append(d.PreviousSignatures, models.SignatureRecord{
				Hash:         *d.SignatureHash,
				SignedBy:     *d.SignedBy,
				SignedAt:     *d.SignedAt,
				SupersededAt: change.UpdatedAt,
			})
		}
		d.SignatureHash, d.SignedBy, d.SignedAt = nil, nil, nil
		if change.Sign != nil {
			hash, by, at := change.Sign.Hash, change.Sign.SignedBy, change.Sign.SignedAt
			d.SignatureHash, d.SignedBy, d.SignedAt = &hash, &by, &at
		}
		return nil
	}
	return database.ErrNotFound
}

type memRisks struct {
	mu   sync.Mutex
	rows []*models.Risk
}

func (m *memRisks) Create(_ context.Context, r *models.Risk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	cp := *r
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *memRisks) FindByID(_ context.Context, id primitive.ObjectID) (*models.Risk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

// ListByClinic returns storage order; the register sorts.
func (m *memRisks) ListByClinic(_ context.Context, clinicID *primitive.ObjectID) ([]models.Risk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Risk
	for _, r := range m.rows {
		if clinicID == nil || r.ClinicID == *clinicID {
			out = append(out, *r)
		}
	}
	return out, nil
}

type memAudits struct {
	mu   sync.Mutex
	rows []*models.AuditRecord
}

func (m *memAudits) Insert(_ context.Context, rec *models.AuditRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	cp := *rec
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *memAudits) ListByDocument(_ context.Context, documentID primitive.ObjectID) ([]models.AuditRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.AuditRecord
	for i := len(m.rows) - 1; i >= 0; i-- {
		if m.rows[i].DocumentID == documentID {
			out = append(out, *m.rows[i])
		}
	}
	return out, nil
}

type fakeAssistant struct {
	generated  string
	report     *ai.AuditReport
	err        error
	lastPrompt string
}

func (f *fakeAssistant) Generate(_ context.Context, prompt, _, _ string) (string, error) {
	f.lastPrompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.generated, nil
}

func (f *fakeAssistant) Audit(_ context.Context, _, _ string) (*ai.AuditReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []websocket.Event
}

func (p *recordingPublisher) Publish(ev websocket.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}
