package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	sessionerrors "mentorbook/internal/sessions/errors"
	"mentorbook/pkg/config"
	mongodb "mentorbook/pkg/db/mongo"
	"mentorbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error
	FindByID(ctx context.Context, id string) (*model.Session, error)
	Find(ctx context.Context, filter model.SessionFilter, limit int, offset int64) ([]*model.Session, error)
	Count(ctx context.Context, filter model.SessionFilter) (int64, error)
	// CountActiveAt counts capacity-occupying sessions in the exact slot
	// (start and duration), the same identity the booking lock is keyed on.
	CountActiveAt(ctx context.Context, mentorID string, scheduledAt time.Time, durationMinutes int) (int64, error)
	// CountActiveOverlapping counts capacity-occupying sessions whose window intersects [start, end).
	CountActiveOverlapping(ctx context.Context, mentorID string, start, end time.Time) (int64, error)
	// TransitionStatus applies t only if the session's current status is one of from.
	TransitionStatus(ctx context.Context, id string, from []string, t model.StatusTransition) (*model.Session, error)
}

type mongoSessionRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoSessionRepository(cfg *config.Config) SessionRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSessionRepository{
		cfg:        cfg,
		collection: db.Collection(mongodb.SessionsCollection),
	}
}

func (r *mongoSessionRepository) Create(ctx context.Context, session *model.Session) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := mongodb.Now()
	session.CreatedAt = now
	session.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, session)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		session.ID = oid.Hex()
	}
	return nil
}

func (r *mongoSessionRepository) FindByID(ctx context.Context, id string) (*model.Session, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := mongodb.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", sessionerrors.ErrInvalidID, id)
	}

	var session model.Session
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, sessionerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	return &session, nil
}

func (r *mongoSessionRepository) Find(ctx context.Context, filter model.SessionFilter, limit int, offset int64) ([]*model.Session, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "scheduled_at", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, buildFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find sessions: %w", err)
	}
	defer cursor.Close(ctx)

	sessions := []*model.Session{}
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, fmt.Errorf("failed to decode sessions: %w", err)
	}

	return sessions, nil
}

func (r *mongoSessionRepository) Count(ctx context.Context, filter model.SessionFilter) (int64, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}

func (r *mongoSessionRepository) CountActiveAt(ctx context.Context, mentorID string, scheduledAt time.Time, durationMinutes int) (int64, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"mentor_id":        mentorID,
		"scheduled_at":     scheduledAt.UTC(),
		"duration_minutes": durationMinutes,
		"status":           bson.M{"$in": model.ActiveSessionStatuses},
	}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count sessions at slot: %w", err)
	}
	return count, nil
}

func (r *mongoSessionRepository) CountActiveOverlapping(ctx context.Context, mentorID string, start, end time.Time) (int64, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"mentor_id":    mentorID,
		"scheduled_at": bson.M{"$lt": end.UTC()},
		"end_at":       bson.M{"$gt": start.UTC()},
		"status":       bson.M{"$in": model.ActiveSessionStatuses},
	}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count overlapping sessions: %w", err)
	}
	return count, nil
}

func (r *mongoSessionRepository) TransitionStatus(ctx context.Context, id string, from []string, t model.StatusTransition) (*model.Session, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := mongodb.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", sessionerrors.ErrInvalidID, id)
	}

	fields := bson.M{"status": t.To, "updated_at": mongodb.Now()}
	if t.CancelReason != "" {
		fields["cancel_reason"] = t.CancelReason
	}
	if t.CancelledBy != "" {
		fields["cancelled_by"] = t.CancelledBy
	}
	if t.CancelledAt != nil {
		fields["cancelled_at"] = t.CancelledAt.UTC()
	}

	filter := bson.M{"_id": objectID, "status": bson.M{"$in": from}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var session model.Session
	err = r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": fields}, opts).Decode(&session)
	if err == nil {
		return &session, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to update session status: %w", err)
	}

	// Nothing matched: either the session is gone or its status forbids the move.
	exists, countErr := r.collection.CountDocuments(ctx, bson.M{"_id": objectID})
	if countErr != nil {
		return nil, fmt.Errorf("failed to check session existence: %w", countErr)
	}
	if exists == 0 {
		return nil, sessionerrors.ErrNotFound
	}
	return nil, sessionerrors.ErrStatusConflict
}

func buildFilter(filter model.SessionFilter) bson.M {
	query := bson.M{}
	if filter.MentorID != "" {
		query["mentor_id"] = filter.MentorID
	}
	if filter.MenteeID != "" {
		query["mentee_id"] = filter.MenteeID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	return query
}
