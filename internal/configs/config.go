package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type DatabaseConfig struct {
	URL         string
	MaxConns    int
	AutoMigrate bool
}

type RESTconfig struct {
	PORT           string
	AllowedOrigins []string
}

type RabbitMQConfig struct {
	Enabled bool
	URL     string
	// RetryTTL is how long a failed push waits before the next attempt.
	RetryTTL   time.Duration
	MaxRetries int
	Prefetch   int
}

type FluentBitConfig struct {
	Enabled bool
	Host    string
	Port    int
	Level   string
}

type StdoutLogConfig struct {
	Level string
	JSON  bool
}

type PushConfig struct {
	// Provider is "fcm" for Firebase Cloud Messaging or "log" to only log deliveries.
	Provider              string
	CredentialsFile       string
	ProjectID             string
	MaxParallelDeliveries int
}

type SchedulerConfig struct {
	Enabled         bool
	BoostExpiryCron string
	EngagementCron  string
}

type CatalogConfig struct {
	PlansFile string
}

type InternalConfig struct {
	ServiceToken string
}

type AppConfig struct {
	AppName      string
	Database     DatabaseConfig
	Rest         RESTconfig
	RabbitMQ     RabbitMQConfig
	FluentBit    FluentBitConfig
	StdoutLogger StdoutLogConfig
	Push         PushConfig
	Scheduler    SchedulerConfig
	Catalog      CatalogConfig
	Internal     InternalConfig
}

// LoadConfig reads the environment, optionally seeded from a .env file.
// A missing .env file is not an error; DATABASE_URL is the only required variable.
func LoadConfig(envPath ...string) (*AppConfig, error) {
	var err error
	if len(envPath) > 0 {
		err = godotenv.Load(envPath...)
	} else {
		err = godotenv.Load()
	}
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("could not load .env file (path: %v): %w", envPath, err)
		}
		log.Printf("Info: no .env file found (path: %v), using process environment", envPath)
	}

	cfg := &AppConfig{}
	cfg.AppName = getEnvAsString("APP_NAME", "findar-service")

	cfg.Database.URL = os.Getenv("DATABASE_URL")
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	cfg.Database.MaxConns = getEnvAsInt("DATABASE_MAX_CONNS", 10)
	cfg.Database.AutoMigrate = getEnvAsBool("DATABASE_AUTO_MIGRATE", true)

	cfg.Rest.PORT = getEnvAsString("PORT", "8080")
	cfg.Rest.AllowedOrigins = getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"})

	cfg.RabbitMQ.Enabled = getEnvAsBool("RABBITMQ_ENABLED", false)
	if cfg.RabbitMQ.Enabled {
		cfg.RabbitMQ.URL = os.Getenv("RABBITMQ_URL")
		if cfg.RabbitMQ.URL == "" {
			return nil, fmt.Errorf("RABBITMQ_URL environment variable is required when RABBITMQ_ENABLED is true")
		}
	}
	cfg.RabbitMQ.RetryTTL = getEnvAsDuration("RABBITMQ_RETRY_TTL", 30*time.Second)
	cfg.RabbitMQ.MaxRetries = getEnvAsInt("RABBITMQ_MAX_RETRIES", 3)
	cfg.RabbitMQ.Prefetch = getEnvAsInt("RABBITMQ_PREFETCH", 16)

	cfg.FluentBit.Enabled = getEnvAsBool("FLUENTBIT_ENABLED", false)
	if cfg.FluentBit.Enabled {
		cfg.FluentBit.Host = os.Getenv("FLUENTBIT_HOST")
		if cfg.FluentBit.Host == "" {
			log.Println("WARNING: FLUENTBIT_ENABLED is true, but FLUENTBIT_HOST is not set. Disabling Fluent Bit.")
			cfg.FluentBit.Enabled = false
		}
		cfg.FluentBit.Port = getEnvAsInt("FLUENTBIT_PORT", 24224)
		cfg.FluentBit.Level = getEnvAsString("FLUENTBIT_LOG_LEVEL", "info")
	}

	cfg.StdoutLogger.Level = getEnvAsString("STDOUT_LOG_LEVEL", "debug")
	cfg.StdoutLogger.JSON = getEnvAsBool("STDOUT_LOG_JSON", false)

	cfg.Push.Provider = strings.ToLower(getEnvAsString("PUSH_PROVIDER", "log"))
	switch cfg.Push.Provider {
	case "fcm":
		cfg.Push.CredentialsFile = os.Getenv("FIREBASE_CREDENTIALS_FILE")
		cfg.Push.ProjectID = os.Getenv("FIREBASE_PROJECT_ID")
		if cfg.Push.CredentialsFile == "" && cfg.Push.ProjectID == "" {
			return nil, fmt.Errorf("FIREBASE_CREDENTIALS_FILE or FIREBASE_PROJECT_ID is required when PUSH_PROVIDER is fcm")
		}
	case "log":
	default:
		return nil, fmt.Errorf("PUSH_PROVIDER must be fcm or log, got %q", cfg.Push.Provider)
	}
	cfg.Push.MaxParallelDeliveries = getEnvAsInt("PUSH_MAX_PARALLEL", 8)

	cfg.Scheduler.Enabled = getEnvAsBool("SCHEDULER_ENABLED", true)
	cfg.Scheduler.BoostExpiryCron = getEnvAsString("BOOST_EXPIRY_CRON", "@hourly")
	cfg.Scheduler.EngagementCron = getEnvAsString("ENGAGEMENT_CRON", "@daily")

	cfg.Catalog.PlansFile = getEnvAsString("BOOSTING_PLANS_FILE", "configs/boosting_plans.yaml")

	cfg.Internal.ServiceToken = os.Getenv("INTERNAL_SERVICE_TOKEN")
	if cfg.Internal.ServiceToken == "" {
		log.Println("WARNING: INTERNAL_SERVICE_TOKEN is not set, internal endpoints will reject every request.")
	}

	return cfg, nil
}

func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt logs and falls back to the default when the value is not an integer.
func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.Atoi(strings.TrimSpace(valueStr))
	if err != nil {
		log.Printf("Warning: %s=%q is not an int: %v. Using default %d", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.ParseBool(strings.TrimSpace(valueStr))
	if err != nil {
		log.Printf("Warning: %s=%q is not a bool: %v. Using default %t", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := time.ParseDuration(strings.TrimSpace(valueStr))
	if err != nil || value <= 0 {
		log.Printf("Warning: %s=%q is not a positive duration. Using default %s", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

// getEnvAsList splits a comma-separated value, dropping empty items.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(valueStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
