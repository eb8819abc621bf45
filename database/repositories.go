package database

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AgentChief/accredis/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
)

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	default:
		return err
	}
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, opts *options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func limitOrDefault(limit int64) int64 {
	if limit <= 0 || limit > models.DefaultListLimit {
		return models.DefaultListLimit
	}
	return limit
}

// ---------------------------------------------------------------- users

type UserRepository struct{ coll *mongo.Collection }

func NewUserRepository(coll *mongo.Collection) *UserRepository { return &UserRepository{coll: coll} }

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, u)
	return translate(err)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	var u models.User
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	var u models.User
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *UserRepository) SetClinic(ctx context.Context, userID, clinicID primitive.ObjectID) error {
	return r.update(ctx, bson.M{"_id": userID}, bson.M{"clinic_id": clinicID})
}

func (r *UserRepository) SetActive(ctx context.Context, email string, active bool) error {
	return r.update(ctx, bson.M{"email": email}, bson.M{"is_active": active})
}

func (r *UserRepository) update(ctx context.Context, filter bson.M, set bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	set["updated_at"] = time.Now().UTC()
	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ---------------------------------------------------------------- clinics

type ClinicRepository struct{ coll *mongo.Collection }

func NewClinicRepository(coll *mongo.Collection) *ClinicRepository {
	return &ClinicRepository{coll: coll}
}

func (r *ClinicRepository) Create(ctx context.Context, c *models.Clinic) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, c)
	return translate(err)
}

func (r *ClinicRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Clinic, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	var c models.Clinic
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// ListForUser returns clinics owned by ownerID or whose id equals affiliated.
func (r *ClinicRepository) ListForUser(ctx context.Context, ownerID primitive.ObjectID, affiliated *primitive.ObjectID) ([]models.Clinic, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	or := bson.A{bson.M{"owner_id": ownerID}}
	if affiliated != nil && !affiliated.IsZero() {
		or = append(or, bson.M{"_id": *affiliated})
	}
	opts := options.Find().SetLimit(models.DefaultListLimit)
	return findAll[models.Clinic](ctx, r.coll, bson.M{"$or": or}, opts)
}

// ---------------------------------------------------------------- documents

type DocumentRepository struct{ coll *mongo.Collection }

func NewDocumentRepository(coll *mongo.Collection) *DocumentRepository {
	return &DocumentRepository{coll: coll}
}

func (r *DocumentRepository) Create(ctx context.Context, d *models.Document) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, d)
	return translate(err)
}

func (r *DocumentRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	var d models.Document
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (r *DocumentRepository) List(ctx context.Context, f models.DocumentFilter) ([]models.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{}
	if f.ClinicID != nil {
		filter["clinic_id"] = *f.ClinicID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limitOrDefault(f.Limit))
	return findAll[models.Document](ctx, r.coll, filter, opts)
}

// UpdateStatus applies a lifecycle transition as a single-document pipeline
// update. The signature being retired is the one stored when the update runs,
// so a caller holding a stale read cannot leave signature fields behind.
func (r *DocumentRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, change models.StatusChange) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, statusPipeline(change))
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func statusPipeline(change models.StatusChange) mongo.Pipeline {
	history := bson.M{"$ifNull": bson.A{"$previous_signatures", bson.A{}}}
	retired := bson.M{
		"hash":          "$signature_hash",
		"signed_by":     "$signed_by",
		"signed_at":     "$signed_at",
		"superseded_at": bson.M{"$literal": change.UpdatedAt},
	}
	retire := bson.D{{Key: "$set", Value: bson.M{
		"previous_signatures": bson.M{"$cond": bson.A{
			bson.M{"$gt": bson.A{"$signature_hash", nil}},
			bson.M{"$concatArrays": bson.A{history, bson.A{retired}}},
			history,
		}},
	}}}

	var hash, by, at interface{}
	if change.Sign != nil {
		hash = bson.M{"$literal": change.Sign.Hash}
		by = bson.M{"$literal": change.Sign.SignedBy}
		at = bson.M{"$literal": change.Sign.SignedAt}
	}
	apply := bson.D{{Key: "$set", Value: bson.M{
		"status":         bson.M{"$literal": change.Status},
		"updated_at":     bson.M{"$literal": change.UpdatedAt},
		"signature_hash": hash,
		"signed_by":      by,
		"signed_at":      at,
	}}}
	return mongo.Pipeline{retire, apply}
}

// ---------------------------------------------------------------- risks

type RiskRepository struct{ coll *mongo.Collection }

func NewRiskRepository(coll *mongo.Collection) *RiskRepository { return &RiskRepository{coll: coll} }

func (r *RiskRepository) Create(ctx context.Context, risk *models.Risk) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	if risk.ID.IsZero() {
		risk.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, risk)
	return translate(err)
}

func (r *RiskRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Risk, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	var risk models.Risk
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&risk); err != nil {
		return nil, translate(err)
	}
	return &risk, nil
}

// ListByClinic returns risks ordered by risk_score descending. A nil clinic lists across clinics.
func (r *RiskRepository) ListByClinic(ctx context.Context, clinicID *primitive.ObjectID) ([]models.Risk, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{}
	if clinicID != nil {
		filter["clinic_id"] = *clinicID
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "risk_score", Value: -1}}).
		SetLimit(models.DefaultListLimit)
	return findAll[models.Risk](ctx, r.coll, filter, opts)
}

// ---------------------------------------------------------------- audits

type AuditRepository struct{ coll *mongo.Collection }

func NewAuditRepository(coll *mongo.Collection) *AuditRepository { return &AuditRepository{coll: coll} }

func (r *AuditRepository) Insert(ctx context.Context, rec *models.AuditRecord) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, rec)
	return translate(err)
}

func (r *AuditRepository) ListByDocument(ctx context.Context, documentID primitive.ObjectID) ([]models.AuditRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	opts := options.Find().
		SetSort(bson.D{{Key: "audited_at", Value: -1}}).
		SetLimit(models.DefaultListLimit)
	return findAll[models.AuditRecord](ctx, r.coll, bson.M{"document_id": documentID}, opts)
}
