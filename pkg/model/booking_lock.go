package model

import (
	"fmt"
	"time"
)

// BookingLock reserves the right to attempt a booking for one exact slot.
// Its _id is the slot key, so the collection's primary-key uniqueness lets
// only one attempt per slot be in flight across every service instance.
type BookingLock struct {
	Key              string    `bson:"_id" json:"key"`
	Owner            string    `bson:"owner" json:"owner"`
	MentorID         string    `bson:"mentor_id" json:"mentorId"`
	CreatedBy        string    `bson:"created_by" json:"createdBy"`
	AvailabilityID   string    `bson:"availability_id,omitempty" json:"availabilityId,omitempty"`
	ScheduledAt      time.Time `bson:"scheduled_at" json:"scheduledAt"`
	DurationMinutes  int       `bson:"duration_minutes" json:"durationMinutes"`
	SessionCandidate *Session  `bson:"session_candidate,omitempty" json:"sessionCandidate,omitempty"`
	ExpiresAt        time.Time `bson:"expires_at" json:"expiresAt"`
	CreatedAt        time.Time `bson:"created_at" json:"createdAt"`
}

// BookingLockKey derives the slot key. scheduledAt is normalised to UTC so the
// same instant always produces the same key regardless of the caller's zone.
func BookingLockKey(mentorID string, scheduledAt time.Time, durationMinutes int) string {
	return fmt.Sprintf("%s|%s|%d", mentorID, scheduledAt.UTC().Format(time.RFC3339), durationMinutes)
}

func (l *BookingLock) Expired(now time.Time) bool {
	return !now.Before(l.ExpiresAt)
}
