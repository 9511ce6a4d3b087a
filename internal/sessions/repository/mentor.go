package repository

import (
	"context"
	"fmt"

	sessionerrors "mentorbook/internal/sessions/errors"
	"mentorbook/pkg/config"
	mongodb "mentorbook/pkg/db/mongo"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const RoleMentor = "mentor"

// MentorDirectory answers whether a user ID belongs to a mentor. The Users
// collection is owned by the identity service; this side only reads it.
type MentorDirectory interface {
	EnsureMentor(ctx context.Context, id string) error
}

type mongoMentorDirectory struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoMentorDirectory(cfg *config.Config) MentorDirectory {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoMentorDirectory{
		cfg:        cfg,
		collection: db.Collection(mongodb.UsersCollection),
	}
}

func (d *mongoMentorDirectory) EnsureMentor(ctx context.Context, id string) error {
	ctx, cancel := mongodb.WithTimeout(ctx, d.cfg.ReadTimeout)
	defer cancel()

	objectID, err := mongodb.ObjectIDFromHex(id)
	if err != nil {
		return sessionerrors.ErrMentorNotFound
	}

	count, err := d.collection.CountDocuments(ctx,
		bson.M{"_id": objectID, "role": RoleMentor},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return fmt.Errorf("failed to look up mentor: %w", err)
	}
	if count == 0 {
		return sessionerrors.ErrMentorNotFound
	}
	return nil
}
