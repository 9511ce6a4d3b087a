package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort      = "PORT"
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"

	EnvJWTSecret = "JWT_SECRET"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout       = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL       = "IDEMPOTENCY_TTL"
	EnvIdempotencyRedisAddr = "IDEMPOTENCY_REDIS_ADDR"
	EnvMaxRequestSize       = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvBookingLockTTL           = "BOOKING_LOCK_TTL"
	EnvBookingLockSweepInterval = "BOOKING_LOCK_SWEEP_INTERVAL"
	EnvDefaultSlotCapacity      = "DEFAULT_SLOT_CAPACITY"
	EnvSessionOverlapCheck      = "SESSION_OVERLAP_CHECK"
	EnvMinSessionDurationMin    = "MIN_SESSION_DURATION_MIN"
	EnvMaxSessionDurationMin    = "MAX_SESSION_DURATION_MIN"

	EnvEventsEnabled      = "EVENTS_ENABLED"
	EnvSessionEventsTopic = "SESSION_EVENTS_TOPIC"
)
