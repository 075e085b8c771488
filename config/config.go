package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/yeremiapane/cafe-tables/utils"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverMemory   = "memory"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Port               string
	GinMode            string
	StoreDriver        string
	DatabaseDSN        string
	JWTSecret          string
	LogLevel           string
	ProgressInterval   time.Duration
	NotifyProvider     string
	NotifyWebhookURL   string
	NotifyWebhookToken string
	Location           *time.Location
	RateLimitPerSecond int
	RateLimitBurst     int
	CORSOrigin         string
	OTLPEndpoint       string
	OTLPInsecure       bool
}

// Load reads .env (when present) and the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Debugf(".env file not loaded: %v", err)
	}

	loc := time.Local
	if name := os.Getenv("TIMEZONE"); name != "" {
		if parsed, err := time.LoadLocation(name); err == nil {
			loc = parsed
		} else {
			utils.ErrorLogger.Errorf("Unknown TIMEZONE %q, using local time", name)
		}
	}

	return Config{
		Port:               readString("PORT", "8080"),
		GinMode:            os.Getenv("GIN_MODE"),
		StoreDriver:        readString("STORE_DRIVER", DriverSQLite),
		DatabaseDSN:        readString("DB_DSN", "cafe_tables.db"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		LogLevel:           readString("LOG_LEVEL", "info"),
		ProgressInterval:   readDuration("PROGRESS_INTERVAL", 15*time.Second),
		NotifyProvider:     readString("NOTIFY_PROVIDER", "log"),
		NotifyWebhookURL:   os.Getenv("NOTIFY_WEBHOOK_URL"),
		NotifyWebhookToken: os.Getenv("NOTIFY_WEBHOOK_TOKEN"),
		Location:           loc,
		RateLimitPerSecond: readInt("RATE_LIMIT_PER_SECOND", 50),
		RateLimitBurst:     readInt("RATE_LIMIT_BURST", 100),
		CORSOrigin:         readString("CORS_ORIGIN", "http://127.0.0.1:5500"),
		OTLPEndpoint:       os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTLPInsecure:       os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true",
	}
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverMemory, DriverMySQL, DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.StoreDriver != DriverMemory && c.DatabaseDSN == "" {
		return fmt.Errorf("DB_DSN is required for driver %s", c.StoreDriver)
	}
	if c.ProgressInterval <= 0 {
		return fmt.Errorf("PROGRESS_INTERVAL must be positive")
	}
	if c.RateLimitPerSecond <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit settings must be positive")
	}
	if c.NotifyProvider == "webhook" && c.NotifyWebhookURL == "" {
		return fmt.Errorf("NOTIFY_WEBHOOK_URL is required for the webhook provider")
	}
	return nil
}

// InitDB opens the database for the configured SQL driver.
func InitDB(cfg Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.StoreDriver {
	case DriverMySQL:
		dialector = mysql.Open(cfg.DatabaseDSN)
	case DriverPostgres:
		dialector = postgres.Open(cfg.DatabaseDSN)
	case DriverSQLite:
		dialector = sqlite.Open(cfg.DatabaseDSN)
	default:
		return nil, fmt.Errorf("driver %q has no database", cfg.StoreDriver)
	}

	gormLogger := logger.Default.LogMode(logger.Warn)
	if cfg.GinMode == "release" {
		gormLogger = logger.Default.LogMode(logger.Error)
	}
	return gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
}

func readString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func readInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func readDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return value
}
