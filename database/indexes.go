package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// indexSpecs lists the indexes each collection needs for its queries.
var indexSpecs = map[string][]mongo.IndexModel{
	UsersCollection: {
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("email_unique")},
	},
	ClinicsCollection: {
		{Keys: bson.D{{Key: "owner_id", Value: 1}}, Options: options.Index().SetName("owner")},
	},
	DocumentsCollection: {
		{Keys: bson.D{{Key: "clinic_id", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("clinic_created")},
	},
	RisksCollection: {
		{Keys: bson.D{{Key: "clinic_id", Value: 1}, {Key: "risk_score", Value: -1}}, Options: options.Index().SetName("clinic_score")},
	},
	AuditsCollection: {
		{Keys: bson.D{{Key: "document_id", Value: 1}, {Key: "audited_at", Value: -1}}, Options: options.Index().SetName("document_audited")},
	},
}

// EnsureIndexes creates any missing indexes. Indexes that already exist with the same keys and options are left alone.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	for name, models := range indexSpecs {
		ctx, cancel := context.WithTimeout(ctx, queryTimeout)
		_, err := s.DB.Collection(name).Indexes().CreateMany(ctx, models)
		cancel()
		if err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
		s.log.Debug().Str("collection", name).Int("count", len(models)).Msg("indexes ensured")
	}
	return nil
}
