package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017/?replicaSet=rs0"
	DefaultMongoDatabaseName = "pawcare"
	DefaultMongoConnTimeout  = 10 * time.Second
	DefaultMongoOpTimeout    = 5 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultMaxBookingsPerSlot = 3
	DefaultBookingTimeZone    = "UTC"

	DefaultKafkaEnabled          = false
	DefaultBookingEventsTopic    = "pawcare.bookings"
	DefaultBookingEventsDLQTopic = "pawcare.bookings.dlq"
	DefaultEventPublishTimeout   = 5 * time.Second

	DefaultMetricsEnabled = true
	DefaultMetricsPath    = "/metrics"

	DefaultPaginationLimit = 10
	MaxPaginationLimit     = 100
)
