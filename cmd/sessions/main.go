package main

import (
	availabilityhandler "mentorbook/internal/availability/handler"
	availabilityrepo "mentorbook/internal/availability/repository"
	availabilityservice "mentorbook/internal/availability/service"
	availabilityvalidator "mentorbook/internal/availability/validator"
	"mentorbook/internal/health"
	"mentorbook/internal/sessions/events"
	"mentorbook/internal/sessions/handler"
	"mentorbook/internal/sessions/repository"
	"mentorbook/internal/sessions/service"
	"mentorbook/internal/sessions/validator"
	"mentorbook/pkg/app"
	"mentorbook/pkg/config"
	"mentorbook/pkg/kafka"
	kafka_config "mentorbook/pkg/kafka/config"
	kafka_middleware "mentorbook/pkg/kafka/middleware"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const ServiceName = "sessions"

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}

	cfg.LogConfiguration()
	cfg.SetMongo()
	cfg.SetRedis()
	defer cfg.GracefulShutdown()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	cfg.Log.Info("Starting Sessions service")
	serverApp := app.NewApplication(cfg, registry)

	publisher := initPublisher(cfg, registry)
	serverApp.AddCloser(publisher)

	sessionService, availabilityService, sweeper := initServices(cfg, publisher, registry)
	serverApp.AddWorker(sweeper)

	serverApp.SetApp(
		health.NewHandler(cfg.Client.Mongo, cfg.Log),
		handler.NewSessionHandler(sessionService, cfg.Log),
		availabilityhandler.NewAvailabilityHandler(availabilityService, cfg.Log),
	)
	serverApp.Run()
}

func initPublisher(cfg *config.Config, registry prometheus.Registerer) events.Publisher {
	if !cfg.EventsEnabled {
		cfg.Log.Info("Session events disabled")
		return events.NoopPublisher{}
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.Log, cfg.SessionEventsTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	producer.Use(kafka_middleware.NewProducerMetrics(registry).Middleware())

	cfg.Log.Info("Session events enabled", "topic", cfg.SessionEventsTopic)
	return events.NewKafkaPublisher(producer, ServiceName, kafkaCfg.PublishTimeout, cfg.Log)
}

func initServices(cfg *config.Config, publisher events.Publisher, registry prometheus.Registerer) (service.SessionService, availabilityservice.AvailabilityService, *service.LockSweeper) {
	metrics := service.NewMetrics(registry)

	sessionRepo := repository.NewMongoSessionRepository(cfg)
	lockRepo := repository.NewBookingLockRepository(cfg)
	mentors := repository.NewMongoMentorDirectory(cfg)
	availabilityRepo := availabilityrepo.NewMongoAvailabilityRepository(cfg)

	sessionService := service.NewSessionService(
		sessionRepo,
		lockRepo,
		mentors,
		availabilityRepo,
		validator.NewSessionValidator(cfg.Log, cfg.MinSessionDurationMin, cfg.MaxSessionDurationMin),
		publisher,
		metrics,
		cfg,
	)

	availabilityService := availabilityservice.NewAvailabilityService(
		availabilityRepo,
		availabilityvalidator.NewAvailabilityValidator(cfg.Log),
		cfg,
	)

	sweeper := service.NewLockSweeper(lockRepo, cfg.BookingLockSweepInterval, cfg.WriteTimeout, metrics, cfg.Log)

	cfg.Log.Info("Session services initialized", "database", cfg.MongoDatabaseName)
	return sessionService, availabilityService, sweeper
}
