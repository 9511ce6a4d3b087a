package repository

import (
	"context"
	"errors"
	"fmt"

	availabilityerrors "mentorbook/internal/availability/errors"
	"mentorbook/pkg/config"
	mongodb "mentorbook/pkg/db/mongo"
	"mentorbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AvailabilityRepository interface {
	Create(ctx context.Context, availability *model.Availability) error
	FindByID(ctx context.Context, id string) (*model.Availability, error)
	FindByMentor(ctx context.Context, mentorID string, limit int, offset int64) ([]*model.Availability, error)
	CountByMentor(ctx context.Context, mentorID string) (int64, error)
}

type mongoAvailabilityRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoAvailabilityRepository(cfg *config.Config) AvailabilityRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAvailabilityRepository{
		cfg:        cfg,
		collection: db.Collection(mongodb.AvailabilitiesCollection),
	}
}

func (r *mongoAvailabilityRepository) Create(ctx context.Context, availability *model.Availability) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	availability.CreatedAt = mongodb.Now()

	result, err := r.collection.InsertOne(ctx, availability)
	if err != nil {
		return fmt.Errorf("failed to create availability: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		availability.ID = oid.Hex()
	}
	return nil
}

func (r *mongoAvailabilityRepository) FindByID(ctx context.Context, id string) (*model.Availability, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := mongodb.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", availabilityerrors.ErrInvalidID, id)
	}

	var availability model.Availability
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&availability)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, availabilityerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find availability: %w", err)
	}

	return &availability, nil
}

func (r *mongoAvailabilityRepository) FindByMentor(ctx context.Context, mentorID string, limit int, offset int64) ([]*model.Availability, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "start_time", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{"mentor_id": mentorID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find availabilities: %w", err)
	}
	defer cursor.Close(ctx)

	availabilities := []*model.Availability{}
	if err = cursor.All(ctx, &availabilities); err != nil {
		return nil, fmt.Errorf("failed to decode availabilities: %w", err)
	}

	return availabilities, nil
}

func (r *mongoAvailabilityRepository) CountByMentor(ctx context.Context, mentorID string) (int64, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"mentor_id": mentorID})
	if err != nil {
		return 0, fmt.Errorf("failed to count availabilities: %w", err)
	}
	return count, nil
}
