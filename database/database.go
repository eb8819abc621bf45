// database/database.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names.
const (
	UsersCollection     = "users"
	ClinicsCollection   = "clinics"
	DocumentsCollection = "documents"
	RisksCollection     = "risks"
	AuditsCollection    = "audits"
)

// queryTimeout bounds every single store round trip.
const queryTimeout = 10 * time.Second

// Store owns the Mongo client and the application database handle.
type Store struct {
	Client *mongo.Client
	DB     *mongo.Database
	log    zerolog.Logger
}

func Connect(ctx context.Context, uri, dbName string, logger zerolog.Logger) (*Store, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo uri is required")
	}

	clientOptions := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(20 * time.Second).
		SetServerSelectionTimeout(15 * time.Second).
		SetSocketTimeout(20 * time.Second).
		SetMaxPoolSize(50)

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to create MongoDB client: %w", err)
	}

	pingCtx, cancelPing := context.WithTimeout(ctx, 10*time.Second)
	defer cancelPing()

	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.Info().Str("db", dbName).Msg("connected to MongoDB")
	return &Store{Client: client, DB: client.Database(dbName), log: logger}, nil
}

// Ping checks that the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.Client == nil {
		return fmt.Errorf("no database client")
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.Client.Ping(ctx, readpref.Primary())
}

func (s *Store) Disconnect() {
	if s == nil || s.Client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Client.Disconnect(ctx); err != nil {
		s.log.Warn().Err(err).Msg("MongoDB disconnect warning")
	}
}

func (s *Store) Users() *UserRepository         { return NewUserRepository(s.DB.Collection(UsersCollection)) }
func (s *Store) Clinics() *ClinicRepository     { return NewClinicRepository(s.DB.Collection(ClinicsCollection)) }
func (s *Store) Documents() *DocumentRepository { return NewDocumentRepository(s.DB.Collection(DocumentsCollection)) }
func (s *Store) Risks() *RiskRepository         { return NewRiskRepository(s.DB.Collection(RisksCollection)) }
func (s *Store) Audits() *AuditRepository       { return NewAuditRepository(s.DB.Collection(AuditsCollection)) }
