package model

import "time"

const (
	SessionStatusPending   = "pending"
	SessionStatusConfirmed = "confirmed"
	SessionStatusCancelled = "cancelled"
	SessionStatusCompleted = "completed"
)

// ActiveSessionStatuses are the statuses that occupy slot capacity.
var ActiveSessionStatuses = []string{SessionStatusPending, SessionStatusConfirmed}

type Session struct {
	ID              string     `json:"id,omitempty" bson:"_id,omitempty"`
	MentorID        string     `json:"mentorId" bson:"mentor_id"`
	MenteeID        string     `json:"menteeId" bson:"mentee_id"`
	AvailabilityID  string     `json:"availabilityId,omitempty" bson:"availability_id,omitempty"`
	Subject         string     `json:"subject" bson:"subject"`
	ScheduledAt     time.Time  `json:"scheduledAt" bson:"scheduled_at"`
	DurationMinutes int        `json:"durationMinutes" bson:"duration_minutes"`
	EndAt           time.Time  `json:"endAt" bson:"end_at"`
	Status          string     `json:"status" bson:"status"`
	CancelReason    string     `json:"cancelReason,omitempty" bson:"cancel_reason,omitempty"`
	CancelledBy     string     `json:"cancelledBy,omitempty" bson:"cancelled_by,omitempty"`
	CancelledAt     *time.Time `json:"cancelledAt,omitempty" bson:"cancelled_at,omitempty"`
	CreatedAt       time.Time  `json:"createdAt" bson:"created_at"`
	UpdatedAt       time.Time  `json:"updatedAt" bson:"updated_at"`
}

func (s *Session) OccupiesCapacity() bool {
	return s.Status == SessionStatusPending || s.Status == SessionStatusConfirmed
}

func (s *Session) IsParticipant(userID string) bool {
	return userID != "" && (s.MentorID == userID || s.MenteeID == userID)
}

// SessionBookingRequest is the body of POST /sessions.
type SessionBookingRequest struct {
	MentorID        string    `json:"mentorId" validate:"required,mongodb"`
	ScheduledAt     time.Time `json:"scheduledAt" validate:"required"`
	DurationMinutes int       `json:"durationMinutes" validate:"required,min=1"`
	Subject         string    `json:"subject" validate:"required,min=2,max=200"`
	AvailabilityRef string    `json:"availabilityRef,omitempty" validate:"omitempty,mongodb"`
	MenteeID        string    `json:"-" validate:"required,mongodb"`
}

type SessionCancelRequest struct {
	Reason string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// StatusTransition describes the fields written when a session changes status.
type StatusTransition struct {
	To           string
	CancelReason string
	CancelledBy  string
	CancelledAt  *time.Time
}

type SessionFilter struct {
	MentorID string `validate:"omitempty,mongodb"`
	MenteeID string `validate:"omitempty,mongodb"`
	Status   string `validate:"session_status"`
}

// SessionResponse is the envelope returned for a newly booked session.
type SessionResponse struct {
	Success bool     `json:"success"`
	Session *Session `json:"session"`
}
