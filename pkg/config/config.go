package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"mentorbook/pkg/client"
	"mentorbook/pkg/logger"
)

var (
	mongoURIRegex   = regexp.MustCompile(`^mongodb(\+srv)?://`)
	credentialRegex = regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	JWTSecret string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout       time.Duration
	IdempotencyTTL       time.Duration
	IdempotencyRedisAddr string
	MaxRequestSize       int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	BookingLockTTL           time.Duration
	BookingLockSweepInterval time.Duration
	DefaultSlotCapacity      int
	SessionOverlapCheck      bool
	MinSessionDurationMin    int
	MaxSessionDurationMin    int

	EventsEnabled      bool
	SessionEventsTopic string

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	dotEnvErr := loadDotEnv()

	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		JWTSecret: getEnvStr(EnvJWTSecret, ""),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout:       getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL:       getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		IdempotencyRedisAddr: getEnvStr(EnvIdempotencyRedisAddr, ""),
		MaxRequestSize:       getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		BookingLockTTL:           getEnvDuration(EnvBookingLockTTL, DefaultBookingLockTTL),
		BookingLockSweepInterval: getEnvDuration(EnvBookingLockSweepInterval, DefaultBookingLockSweepInterval),
		DefaultSlotCapacity:      getEnvNum(EnvDefaultSlotCapacity, DefaultSlotCapacity),
		SessionOverlapCheck:      getEnvBool(EnvSessionOverlapCheck, DefaultSessionOverlapCheck),
		MinSessionDurationMin:    getEnvNum(EnvMinSessionDurationMin, DefaultMinSessionDurationMin),
		MaxSessionDurationMin:    getEnvNum(EnvMaxSessionDurationMin, DefaultMaxSessionDurationMin),

		EventsEnabled:      getEnvBool(EnvEventsEnabled, DefaultEventsEnabled),
		SessionEventsTopic: getEnvStr(EnvSessionEventsTopic, DefaultSessionEventsTopic),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    getEnvStr(EnvLogFormat, DefaultLogFormat),
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if dotEnvErr != nil {
		cfg.Log.Warn("Failed to read env file", "error", dotEnvErr)
	}
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

// SetRedis connects the shared Redis client when an address is configured.
func (cfg *Config) SetRedis() {
	if cfg.IdempotencyRedisAddr == "" {
		return
	}
	cfg.Client.SetRedis(cfg.Log, cfg.IdempotencyRedisAddr, cfg.MongoConnTimeout)
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if !mongoURIRegex.MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}
	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}

	if cfg.JWTSecret == "" {
		errors = append(errors, "JWTSecret cannot be empty")
	} else if len(cfg.JWTSecret) < 16 {
		errors = append(errors, "JWTSecret must be at least 16 characters")
	}

	positiveDurations := []struct {
		name  string
		value time.Duration
	}{
		{"MongoConnTimeout", cfg.MongoConnTimeout},
		{"RateLimitWindow", cfg.RateLimitWindow},
		{"RequestTimeout", cfg.RequestTimeout},
		{"IdempotencyTTL", cfg.IdempotencyTTL},
		{"ReadTimeout", cfg.ReadTimeout},
		{"WriteTimeout", cfg.WriteTimeout},
		{"IdleTimeout", cfg.IdleTimeout},
		{"ShutdownTimeout", cfg.ShutdownTimeout},
		{"BookingLockTTL", cfg.BookingLockTTL},
		{"BookingLockSweepInterval", cfg.BookingLockSweepInterval},
	}
	for _, d := range positiveDurations {
		if d.value <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", d.name, d.value))
		}
	}
	if cfg.BookingLockTTL > time.Minute {
		errors = append(errors, fmt.Sprintf("BookingLockTTL must not exceed 1m, got: %s", cfg.BookingLockTTL))
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.DefaultSlotCapacity <= 0 {
		errors = append(errors, fmt.Sprintf("DefaultSlotCapacity must be positive, got: %d", cfg.DefaultSlotCapacity))
	}
	if cfg.MinSessionDurationMin <= 0 {
		errors = append(errors, fmt.Sprintf("MinSessionDurationMin must be positive, got: %d", cfg.MinSessionDurationMin))
	}
	if cfg.MaxSessionDurationMin < cfg.MinSessionDurationMin {
		errors = append(errors, fmt.Sprintf("MaxSessionDurationMin (%d) must be >= MinSessionDurationMin (%d)", cfg.MaxSessionDurationMin, cfg.MinSessionDurationMin))
	}
	if cfg.EventsEnabled && cfg.SessionEventsTopic == "" {
		errors = append(errors, "SessionEventsTopic cannot be empty when events are enabled")
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"jwt_secret_set", cfg.JWTSecret != "",
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"idempotency_backend", cfg.idempotencyBackend(),
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"booking_lock_ttl", cfg.BookingLockTTL,
		"booking_lock_sweep_interval", cfg.BookingLockSweepInterval,
		"default_slot_capacity", cfg.DefaultSlotCapacity,
		"session_overlap_check", cfg.SessionOverlapCheck,
		"min_session_duration_min", cfg.MinSessionDurationMin,
		"max_session_duration_min", cfg.MaxSessionDurationMin,
		"events_enabled", cfg.EventsEnabled,
		"session_events_topic", cfg.SessionEventsTopic,
	)
}

func (cfg *Config) idempotencyBackend() string {
	if cfg.IdempotencyRedisAddr != "" {
		return "redis"
	}
	return "memory"
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log, cfg.ShutdownTimeout)
}

func redactMongoURI(uri string) string {
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return fallback
}
