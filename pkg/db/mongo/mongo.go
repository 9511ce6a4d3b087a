package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	SessionsCollection       = "Sessions"
	BookingLocksCollection   = "Booking_locks"
	AvailabilitiesCollection = "Availabilities"
	UsersCollection          = "Users"
)

var ErrInvalidObjectID = errors.New("invalid object id")

// WithTimeout bounds ctx by timeout unless the caller's deadline is sooner.
// Session contexts are returned untouched since wrapping them breaks
// transaction semantics.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return context.WithDeadline(ctx, deadline)
	}
	return context.WithTimeout(ctx, timeout)
}

func ObjectIDFromHex(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidObjectID
	}
	return oid, nil
}

// Now returns the current UTC time truncated to Mongo's millisecond precision,
// so values read back compare equal to the ones written.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
