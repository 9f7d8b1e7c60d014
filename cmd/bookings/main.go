package main

import (
	"pawcare/internal/bookings/events"
	"pawcare/internal/bookings/handler"
	"pawcare/internal/bookings/repository"
	"pawcare/internal/bookings/service"
	"pawcare/internal/bookings/validator"
	"pawcare/pkg/app"
	"pawcare/pkg/config"
	"pawcare/pkg/kafka"
	kafka_config "pawcare/pkg/kafka/config"
	kafka_middleware "pawcare/pkg/kafka/middleware"
	"pawcare/pkg/metrics"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Bookings service")
	serverApp := app.NewApplication(cfg)
	publisher := initPublisher(cfg, serverApp)
	bookingService := initServices(cfg, publisher, serverApp.Metrics())
	serverApp.SetApp(handler.NewBookingHandler(bookingService, cfg.Log), handler.PublicPaths...)
	serverApp.Run()
}

func initPublisher(cfg *config.Config, serverApp *app.Application) events.Publisher {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Booking events disabled")
		return events.NopPublisher{}
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.BookingEventsTopic, cfg.BookingEventsDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
		producer.Use(kafka_middleware.MetricsProducerMiddleware(serverApp.Metrics()))
	}

	publisher := events.NewKafkaPublisher(producer, cfg.Log, cfg.EventPublishTimeout, cfg.BookingLocation)
	serverApp.OnShutdown(func() {
		publisher.Wait()
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	})

	cfg.Log.Info("Booking events enabled", "topic", producer.Topic())
	return publisher
}

func initServices(cfg *config.Config, publisher events.Publisher, m *metrics.Metrics) service.BookingService {
	bookingValidator := validator.NewBookingValidator(cfg.Log, cfg.BookingLocation)
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	slotGuards := repository.NewSlotGuardRepository(cfg)
	bookingService := service.NewBookingService(
		bookingRepo,
		slotGuards,
		bookingValidator,
		publisher,
		m,
		cfg,
	)

	cfg.Log.Info("Booking service initialized",
		"database", cfg.MongoDatabaseName,
		"capacity_per_slot", cfg.MaxBookingsPerSlot,
		"time_zone", cfg.BookingTimeZone,
	)
	return bookingService
}
