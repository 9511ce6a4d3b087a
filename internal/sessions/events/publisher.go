package events

import (
	"context"
	"sync"
	"time"

	"mentorbook/pkg/kafka"
	"mentorbook/pkg/logger"
	"mentorbook/pkg/middleware"
	"mentorbook/pkg/model"
)

const (
	TypeSessionBooked    = "session.booked"
	TypeSessionCancelled = "session.cancelled"
	TypeSessionConfirmed = "session.confirmed"

	schemaVersion = "1"
)

// Publisher emits session lifecycle events. Publishing is best effort: a
// failure never rolls back the state change that produced the event.
type Publisher interface {
	Publish(ctx context.Context, eventType string, session *model.Session)
	Close() error
}

// SessionEvent is the JSON payload written to the sessions topic.
type SessionEvent struct {
	Type       string         `json:"type"`
	OccurredAt time.Time      `json:"occurredAt"`
	Session    *model.Session `json:"session"`
}

type producer interface {
	Publish(ctx context.Context, msg kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	producer producer
	source   string
	timeout  time.Duration
	log      *logger.Logger
	wg       sync.WaitGroup
}

func NewKafkaPublisher(p *kafka.Producer, source string, timeout time.Duration, log *logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		producer: p,
		source:   source,
		timeout:  timeout,
		log:      log,
	}
}

// Publish sends the event on a background goroutine so request latency does
// not depend on broker availability.
func (p *KafkaPublisher) Publish(ctx context.Context, eventType string, session *model.Session) {
	snapshot := *session

	msg, err := kafka.NewMessage().
		WithKey(snapshot.MentorID).
		WithEventType(eventType).
		WithSource(p.source).
		WithSchemaVersion(schemaVersion).
		WithCorrelationID(middleware.RequestIDFromContext(ctx)).
		WithValue(SessionEvent{
			Type:       eventType,
			OccurredAt: time.Now().UTC(),
			Session:    &snapshot,
		}).
		Build()
	if err != nil {
		p.log.Error("Failed to build session event",
			"event_type", eventType,
			"session_id", snapshot.ID,
			"error", err,
		)
		return
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer cancel()

		if err := p.producer.Publish(pubCtx, msg); err != nil {
			p.log.Warn("Failed to publish session event",
				"event_type", eventType,
				"session_id", snapshot.ID,
				"error", err,
			)
		}
	}()
}

// Close waits for in-flight publishes and closes the producer.
func (p *KafkaPublisher) Close() error {
	p.wg.Wait()
	return p.producer.Close()
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, *model.Session) {}

func (NoopPublisher) Close() error { return nil }
