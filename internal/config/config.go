package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	// Application
	Version     string
	Environment string
	Port        int
	LogLevel    string

	// Postgres
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBMaxConns int
	DBMaxIdle  int

	// Redis (circuit-breaker state store)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// NATS (broadcast fan-out)
	NatsURL            string
	NatsConnectTimeout time.Duration
	NatsReconnectWait  time.Duration
	NatsMaxReconnects  int

	// Outbound event queue
	EventQueueSize int

	// External ML services
	FaceServiceURL string
	FireServiceURL string

	// Detection gateway
	GatewayTimeout        time.Duration
	GatewayMaxRetries     int
	GatewayRetryBaseDelay time.Duration
	HealthCheckTimeout    time.Duration
	CircuitThreshold      int
	CircuitTTL            time.Duration

	// Detection admission
	// Confidence values are normalized to 0.0-1.0 internally; the report API
	// accepts percentages and divides by 100 at the boundary.
	MinConfidence float64

	// Severity classification
	SeverityLowThreshold    float64
	SeverityMediumThreshold float64
	SeverityHighThreshold   float64

	// Face matching
	IdentifyThreshold  float64
	DuplicateThreshold float64
	EmbeddingRefresh   time.Duration

	// Graceful Shutdown
	ShutdownTimeout time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("No .env file found, using environment variables and defaults")
	} else {
		log.Info().Msg("Loaded configuration from .env file")
	}

	return &Config{
		// Application
		Version:     getEnv("VERSION", "1.0.0"),
		Environment: getEnv("ENVIRONMENT", "development"),
		Port:        getEnvInt("PORT", 8500),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// Postgres
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnvInt("DB_PORT", 5432),
		DBUser:     getEnv("DB_USER", "firewatch"),
		DBPassword: getEnv("DB_PASSWORD", "firewatch"),
		DBName:     getEnv("DB_NAME", "firewatch"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		DBMaxConns: getEnvInt("DB_MAX_CONNS", 20),
		DBMaxIdle:  getEnvInt("DB_MAX_IDLE", 5),

		// Redis
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		// NATS
		NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
		NatsConnectTimeout: getEnvDuration("NATS_CONNECT_TIMEOUT", 10*time.Second),
		NatsReconnectWait:  getEnvDuration("NATS_RECONNECT_WAIT", 2*time.Second),
		NatsMaxReconnects:  getEnvInt("NATS_MAX_RECONNECTS", -1), // -1 = unlimited

		// Outbound event queue
		EventQueueSize: getEnvInt("EVENT_QUEUE_SIZE", 256),

		// External ML services
		FaceServiceURL: getEnv("FACE_SERVICE_URL", "http://localhost:8001"),
		FireServiceURL: getEnv("FIRE_SERVICE_URL", "http://localhost:8002"),

		// Detection gateway
		GatewayTimeout:        getEnvDuration("GATEWAY_TIMEOUT", 10*time.Second),
		GatewayMaxRetries:     getEnvInt("GATEWAY_MAX_RETRIES", 3),
		GatewayRetryBaseDelay: getEnvDuration("GATEWAY_RETRY_BASE_DELAY", 100*time.Millisecond),
		HealthCheckTimeout:    getEnvDuration("HEALTH_CHECK_TIMEOUT", 5*time.Second),
		CircuitThreshold:      getEnvInt("CIRCUIT_THRESHOLD", 5),
		CircuitTTL:            getEnvDuration("CIRCUIT_TTL", 60*time.Second),

		// Detection admission
		MinConfidence: getEnvFloat("MIN_CONFIDENCE", 0.60),

		// Severity classification
		SeverityLowThreshold:    getEnvFloat("SEVERITY_LOW_THRESHOLD", 0.5),
		SeverityMediumThreshold: getEnvFloat("SEVERITY_MEDIUM_THRESHOLD", 0.7),
		SeverityHighThreshold:   getEnvFloat("SEVERITY_HIGH_THRESHOLD", 0.9),

		// Face matching
		IdentifyThreshold:  getEnvFloat("IDENTIFY_THRESHOLD", 0.70),
		DuplicateThreshold: getEnvFloat("DUPLICATE_THRESHOLD", 0.60),
		EmbeddingRefresh:   getEnvDuration("EMBEDDING_REFRESH", 5*time.Minute),

		// Graceful Shutdown
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}

// DatabaseDSN builds the postgres connection string
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
