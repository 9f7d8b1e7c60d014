package config

import (
	"fmt"
	"os"
	"pawcare/pkg/client"
	"pawcare/pkg/logger"
	"regexp"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration
	MongoOpTimeout    time.Duration

	Port     string
	LogLevel string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	MaxBookingsPerSlot int
	BookingTimeZone    string
	BookingLocation    *time.Location

	KafkaEnabled          bool
	BookingEventsTopic    string
	BookingEventsDLQTopic string
	EventPublishTimeout   time.Duration

	MetricsEnabled bool
	MetricsPath    string

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	dotEnvErr := loadDotEnv()

	log := logger.New(logger.Config{
		Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
		Format:    logger.JSON,
		AddSource: true,
		Service:   serviceName,
	})
	if dotEnvErr != nil {
		log.Warn("Ignoring .env file", "error", dotEnvErr)
	}

	file, err := loadFile(os.Getenv(EnvConfigFile))
	if err != nil {
		log.Fatal(err.Error())
	}

	cfg := build(file)
	cfg.Log = log
	cfg.Client = client.NewClient()

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

// build resolves every setting as env > file > default.
func build(file *FileConfig) *Config {
	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, orStr(file.Mongo.URI, DefaultMongoURI)),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, orStr(file.Mongo.Database, DefaultMongoDatabaseName)),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, orDuration(file.Mongo.ConnTimeout, DefaultMongoConnTimeout)),
		MongoOpTimeout:    getEnvDuration(EnvMongoOpTimeout, orDuration(file.Mongo.OpTimeout, DefaultMongoOpTimeout)),

		Port:     getEnvStr(EnvPort, orStr(file.Server.Port, DefaultPort)),
		LogLevel: getEnvStr(EnvLogLevel, orStr(file.Server.LogLevel, DefaultLogLevel)),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, orNum(file.RateLimit.Requests, DefaultRateLimitRequests)),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, orDuration(file.RateLimit.Window, DefaultRateLimitWindow)),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, orDuration(file.Server.RequestTimeout, DefaultRequestTimeout)),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, orDuration(file.Idempotency.TTL, DefaultIdempotencyTTL)),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, orNum(file.Server.MaxRequestSize, DefaultMaxRequestSize)),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, orDuration(file.Server.ReadTimeout, DefaultReadTimeout)),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, orDuration(file.Server.WriteTimeout, DefaultWriteTimeout)),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, orDuration(file.Server.IdleTimeout, DefaultIdleTimeout)),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, orDuration(file.Server.ShutdownTimeout, DefaultShutdownTimeout)),

		MaxBookingsPerSlot: getEnvNum(EnvMaxBookingsPerSlot, orNum(file.Booking.MaxPerSlot, DefaultMaxBookingsPerSlot)),
		BookingTimeZone:    getEnvStr(EnvBookingTimeZone, orStr(file.Booking.TimeZone, DefaultBookingTimeZone)),

		KafkaEnabled:          getEnvBool(EnvKafkaEnabled, orBool(file.Events.Enabled, DefaultKafkaEnabled)),
		BookingEventsTopic:    getEnvStr(EnvBookingEventsTopic, orStr(file.Events.Topic, DefaultBookingEventsTopic)),
		BookingEventsDLQTopic: getEnvStr(EnvBookingEventsDLQTopic, orStr(file.Events.DLQTopic, DefaultBookingEventsDLQTopic)),
		EventPublishTimeout:   getEnvDuration(EnvEventPublishTimeout, orDuration(file.Events.PublishTimeout, DefaultEventPublishTimeout)),

		MetricsEnabled: getEnvBool(EnvMetricsEnabled, orBool(file.Metrics.Enabled, DefaultMetricsEnabled)),
		MetricsPath:    getEnvStr(EnvMetricsPath, orStr(file.Metrics.Path, DefaultMetricsPath)),
	}

	if loc, err := time.LoadLocation(cfg.BookingTimeZone); err == nil {
		cfg.BookingLocation = loc
	}

	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if len(cfg.MongoURI) < 10 || !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}

	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}

	if cfg.MongoConnTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}
	if cfg.MongoOpTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("MongoOpTimeout must be positive, got: %s", cfg.MongoOpTimeout))
	}
	if cfg.RateLimitWindow <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.IdempotencyTTL <= 0 {
		errors = append(errors, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if cfg.MaxBookingsPerSlot <= 0 {
		errors = append(errors, fmt.Sprintf("MaxBookingsPerSlot must be positive, got: %d", cfg.MaxBookingsPerSlot))
	}
	if cfg.BookingLocation == nil {
		errors = append(errors, fmt.Sprintf("BookingTimeZone must be a valid IANA time zone, got: %s", cfg.BookingTimeZone))
	}

	if cfg.KafkaEnabled {
		if cfg.BookingEventsTopic == "" {
			errors = append(errors, "BookingEventsTopic cannot be empty when Kafka is enabled")
		}
		if cfg.EventPublishTimeout <= 0 {
			errors = append(errors, fmt.Sprintf("EventPublishTimeout must be positive, got: %s", cfg.EventPublishTimeout))
		}
	}

	if cfg.MetricsEnabled && !strings.HasPrefix(cfg.MetricsPath, "/") {
		errors = append(errors, fmt.Sprintf("MetricsPath must start with '/', got: %s", cfg.MetricsPath))
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
		"mongo_op_timeout", cfg.MongoOpTimeout,
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"max_bookings_per_slot", cfg.MaxBookingsPerSlot,
		"booking_time_zone", cfg.BookingTimeZone,
		"kafka_enabled", cfg.KafkaEnabled,
		"booking_events_topic", cfg.BookingEventsTopic,
		"metrics_enabled", cfg.MetricsEnabled,
		"metrics_path", cfg.MetricsPath,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
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

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
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

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown()
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = DefaultPaginationLimit
	} else if limit > MaxPaginationLimit {
		limit = MaxPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}

func NormalizePage(page int) int {
	return max(1, page)
}
