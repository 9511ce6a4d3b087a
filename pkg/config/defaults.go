package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "mentorbook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort      = "8080"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultBookingLockTTL           = 10 * time.Second
	DefaultBookingLockSweepInterval = 5 * time.Second
	DefaultSlotCapacity             = 1
	DefaultSessionOverlapCheck      = false
	DefaultMinSessionDurationMin    = 15
	DefaultMaxSessionDurationMin    = 240

	DefaultEventsEnabled      = false
	DefaultSessionEventsTopic = "mentorbook.sessions"
)
