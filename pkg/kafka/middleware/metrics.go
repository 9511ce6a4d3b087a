package kafka_middleware

import (
	"context"
	"time"

	"mentorbook/pkg/kafka"

	"github.com/prometheus/client_golang/prometheus"
)

type ProducerMetrics struct {
	published *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewProducerMetrics registers the publish counters on reg.
func NewProducerMetrics(reg prometheus.Registerer) *ProducerMetrics {
	m := &ProducerMetrics{
		published: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kafka_messages_published_total",
				Help: "Kafka publish attempts by topic, event type and result",
			},
			[]string{"topic", "event_type", "result"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kafka_publish_duration_seconds",
				Help:    "Kafka publish latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"topic"},
		),
	}
	reg.MustRegister(m.published, m.duration)
	return m
}

func (m *ProducerMetrics) Middleware() kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()

		err := next(ctx, msg)

		result := "success"
		if err != nil {
			result = "failure"
		}
		m.published.WithLabelValues(msg.Topic, msg.GetEventType(), result).Inc()
		m.duration.WithLabelValues(msg.Topic).Observe(time.Since(start).Seconds())

		return err
	}
}
