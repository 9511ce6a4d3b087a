package model

import "time"

const (
	DefaultAvailabilityCapacity = 1
	MaxAvailabilityCapacity     = 50
)

// Availability is a window in which a mentor accepts bookings. Capacity is the
// number of concurrent sessions allowed for any single slot inside the window.
type Availability struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	MentorID  string    `json:"mentorId" bson:"mentor_id" validate:"required,mongodb"`
	StartTime time.Time `json:"startTime" bson:"start_time" validate:"required"`
	EndTime   time.Time `json:"endTime" bson:"end_time" validate:"required,gtfield=StartTime"`
	Capacity  int       `json:"capacity" bson:"capacity" validate:"min=1,max=50"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}

// Contains reports whether [start, end) lies inside the availability window.
func (a *Availability) Contains(start, end time.Time) bool {
	return !start.Before(a.StartTime) && !end.After(a.EndTime)
}
