//go:build integration

package repository_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"mentorbook/internal/availability/repository"
	migrations "mentorbook/internal/migrations/mongo"
	sessionerrors "mentorbook/internal/sessions/errors"
	sessionrepo "mentorbook/internal/sessions/repository"
	"mentorbook/internal/sessions/service"
	"mentorbook/internal/sessions/validator"
	"mentorbook/pkg/client"
	"mentorbook/pkg/config"
	mongodb "mentorbook/pkg/db/mongo"
	apperrors "mentorbook/pkg/errors"
	"mentorbook/pkg/logger"
	"mentorbook/pkg/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func setupConfig(t *testing.T) *config.Config {
	t.Helper()

	uri := os.Getenv(config.EnvMongoURI)
	if uri == "" {
		t.Skip("MONGO_URI not set; skipping Mongo integration tests")
	}

	log := logger.Discard()
	cfg := &config.Config{
		MongoDatabaseName:   "mentorbook_it_" + uuid.NewString()[:8],
		ReadTimeout:         5 * time.Second,
		WriteTimeout:        5 * time.Second,
		BookingLockTTL:      10 * time.Second,
		DefaultSlotCapacity: 1,
		Log:                 log,
		Client:              client.NewClient(),
	}
	cfg.Client.SetMongo(log, uri, 10*time.Second)

	ctx := context.Background()
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	require.NoError(t, migrations.RunMigration(ctx, db, log))

	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		cfg.Client.GracefulShutdown(log, 5*time.Second)
	})
	return cfg
}

func insertMentor(t *testing.T, cfg *config.Config) string {
	t.Helper()
	id := primitive.NewObjectID()
	_, err := cfg.Client.Mongo.Database(cfg.MongoDatabaseName).
		Collection(mongodb.UsersCollection).
		InsertOne(context.Background(), bson.M{"_id": id, "role": sessionrepo.RoleMentor})
	require.NoError(t, err)
	return id.Hex()
}

func TestBookingLockRepository(t *testing.T) {
	cfg := setupConfig(t)
	repo := sessionrepo.NewBookingLockRepository(cfg)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	lock := &model.BookingLock{
		Key:             model.BookingLockKey(primitive.NewObjectID().Hex(), now.Add(time.Hour), 60),
		Owner:           "owner-a",
		MentorID:        primitive.NewObjectID().Hex(),
		ScheduledAt:     now.Add(time.Hour),
		DurationMinutes: 60,
		ExpiresAt:       now.Add(10 * time.Second),
	}
	require.NoError(t, repo.Create(ctx, lock))

	duplicate := *lock
	duplicate.Owner = "owner-b"
	assert.ErrorIs(t, repo.Create(ctx, &duplicate), sessionerrors.ErrLockExists)

	reclaimed, err := repo.DeleteIfExpired(ctx, lock.Key, now)
	require.NoError(t, err)
	assert.False(t, reclaimed, "live lock must not be reclaimed")

	require.NoError(t, repo.Release(ctx, lock.Key, "owner-b"))
	assert.ErrorIs(t, repo.Create(ctx, &duplicate), sessionerrors.ErrLockExists, "release by non-owner must be a no-op")

	reclaimed, err = repo.DeleteIfExpired(ctx, lock.Key, now.Add(11*time.Second))
	require.NoError(t, err)
	assert.True(t, reclaimed)

	require.NoError(t, repo.Create(ctx, &duplicate))
	require.NoError(t, repo.Release(ctx, duplicate.Key, "owner-b"))

	deleted, err := repo.DeleteExpired(ctx, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestSessionRepository_TransitionStatus(t *testing.T) {
	cfg := setupConfig(t)
	repo := sessionrepo.NewMongoSessionRepository(cfg)
	ctx := context.Background()
	at := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second)

	session := &model.Session{
		MentorID:        primitive.NewObjectID().Hex(),
		MenteeID:        primitive.NewObjectID().Hex(),
		Subject:         "Integration",
		ScheduledAt:     at,
		DurationMinutes: 30,
		EndAt:           at.Add(30 * time.Minute),
		Status:          model.SessionStatusPending,
	}
	require.NoError(t, repo.Create(ctx, session))
	require.NotEmpty(t, session.ID)

	count, err := repo.CountActiveAt(ctx, session.MentorID, at, session.DurationMinutes)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = repo.CountActiveAt(ctx, session.MentorID, at, 60)
	require.NoError(t, err)
	assert.Zero(t, count, "a different duration is a different slot")

	cancelledAt := time.Now().UTC()
	updated, err := repo.TransitionStatus(ctx, session.ID, model.ActiveSessionStatuses, model.StatusTransition{
		To:           model.SessionStatusCancelled,
		CancelReason: "test",
		CancelledBy:  session.MenteeID,
		CancelledAt:  &cancelledAt,
	})
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusCancelled, updated.Status)

	_, err = repo.TransitionStatus(ctx, session.ID, model.ActiveSessionStatuses, model.StatusTransition{To: model.SessionStatusCancelled})
	assert.ErrorIs(t, err, sessionerrors.ErrStatusConflict)

	_, err = repo.TransitionStatus(ctx, primitive.NewObjectID().Hex(), model.ActiveSessionStatuses, model.StatusTransition{To: model.SessionStatusCancelled})
	assert.ErrorIs(t, err, sessionerrors.ErrNotFound)

	count, err = repo.CountActiveAt(ctx, session.MentorID, at, session.DurationMinutes)
	require.NoError(t, err)
	assert.Zero(t, count, "cancelled sessions must not occupy capacity")
}

func TestConcurrentBookingAgainstMongo(t *testing.T) {
	cfg := setupConfig(t)
	mentorID := insertMentor(t, cfg)

	svc := service.NewSessionService(
		sessionrepo.NewMongoSessionRepository(cfg),
		sessionrepo.NewBookingLockRepository(cfg),
		sessionrepo.NewMongoMentorDirectory(cfg),
		repository.NewMongoAvailabilityRepository(cfg),
		validator.NewSessionValidator(cfg.Log, 15, 240),
		nil,
		nil,
		cfg,
	)

	at := time.Now().UTC().Add(72 * time.Hour).Truncate(time.Hour)
	const attempts = 10

	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Book(context.Background(), &model.SessionBookingRequest{
				MentorID:        mentorID,
				MenteeID:        primitive.NewObjectID().Hex(),
				ScheduledAt:     at,
				DurationMinutes: 60,
				Subject:         "Concurrency",
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t,
			apperrors.HasCode(err, apperrors.CodeSlotFull) || apperrors.HasCode(err, apperrors.CodeSlotLocked),
			"unexpected error: %v", err)
	}
	assert.Equal(t, 1, succeeded)

	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	sessions, err := db.Collection(mongodb.SessionsCollection).CountDocuments(context.Background(), bson.M{"mentor_id": mentorID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), sessions)

	locks, err := db.Collection(mongodb.BookingLocksCollection).CountDocuments(context.Background(), bson.M{})
	require.NoError(t, err)
	assert.Zero(t, locks, "every acquired lock must be released")
}
