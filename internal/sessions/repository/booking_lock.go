package repository

import (
	"context"
	"fmt"
	"time"

	sessionerrors "mentorbook/internal/sessions/errors"
	"mentorbook/pkg/config"
	mongodb "mentorbook/pkg/db/mongo"
	"mentorbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// BookingLockRepository stores short-lived slot reservations. Uniqueness of
// the slot key is enforced by the collection's _id index, and abandoned rows
// are reclaimed by the TTL index on expires_at.
type BookingLockRepository interface {
	// Create inserts the lock. Returns ErrLockExists if the slot key is taken.
	Create(ctx context.Context, lock *model.BookingLock) error
	// DeleteIfExpired removes the lock for key only when it expired at or before now.
	DeleteIfExpired(ctx context.Context, key string, now time.Time) (bool, error)
	// Release removes the lock for key only when it is still held by owner.
	Release(ctx context.Context, key, owner string) error
	// DeleteExpired removes every lock that expired at or before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type mongoBookingLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewBookingLockRepository(cfg *config.Config) BookingLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingLockRepository{
		cfg:        cfg,
		collection: db.Collection(mongodb.BookingLocksCollection),
	}
}

func (r *mongoBookingLockRepository) Create(ctx context.Context, lock *model.BookingLock) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if lock.CreatedAt.IsZero() {
		lock.CreatedAt = mongodb.Now()
	}

	if _, err := r.collection.InsertOne(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return sessionerrors.ErrLockExists
		}
		return fmt.Errorf("failed to create booking lock: %w", err)
	}
	return nil
}

func (r *mongoBookingLockRepository) DeleteIfExpired(ctx context.Context, key string, now time.Time) (bool, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{
		"_id":        key,
		"expires_at": bson.M{"$lte": now.UTC()},
	})
	if err != nil {
		return false, fmt.Errorf("failed to reclaim expired booking lock: %w", err)
	}
	return result.DeletedCount > 0, nil
}

func (r *mongoBookingLockRepository) Release(ctx context.Context, key, owner string) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": key, "owner": owner}); err != nil {
		return fmt.Errorf("failed to release booking lock: %w", err)
	}
	return nil
}

func (r *mongoBookingLockRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": now.UTC()}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired booking locks: %w", err)
	}
	return result.DeletedCount, nil
}
