package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string `validate:"required"`
	PostgresPort     string `validate:"required"`
	PostgresUser     string `validate:"required"`
	PostgresPassword string
	PostgresDB       string `validate:"required"`
	PostgresSSLMode  string `validate:"required"`

	// Catalog API
	APIBaseURL     string `validate:"required,url"`
	CategoryID     int64  `validate:"gt=0"`
	PerPage        int    `validate:"gt=0,lte=100"`
	SortOrder      string `validate:"required"`
	MaxConcurrency int    `validate:"gt=0"`
	RateLimitMs    int    `validate:"gte=0"`
	MaxRetries     int    `validate:"gte=1"`
	RequestTimeout int    `validate:"gt=0"` // seconds
	PageCap        int    `validate:"gte=0"` // 0 = fetch every page

	CSVOutputPath   string `validate:"required"`
	ReportDir       string `validate:"required"`
	CategoryMapPath string `validate:"required"`

	LogLevel  string
	LogFormat string
	LogFile   string
}

var validate = validator.New()

// Load reads environment variables into a validated Config. An empty
// envPath falls back to ./.env; a named file that cannot be read is an
// error.
func Load(envPath string) (*Config, error) {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("config: load env file %q: %w", envPath, err)
		}
	} else if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	cfg := &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "catalog"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "catalog123"),
		PostgresDB:       getEnv("POSTGRES_DB", "catalog_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		APIBaseURL:     getEnv("API_BASE_URL", "https://mp-catalog.umico.az"),
		CategoryID:     int64(getEnvInt("CATEGORY_ID", 3003)),
		PerPage:        getEnvInt("PER_PAGE", 24),
		SortOrder:      getEnv("SORT_ORDER", "global_popular_score"),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 20),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 0),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		RequestTimeout: getEnvInt("REQUEST_TIMEOUT_SEC", 30),
		PageCap:        getEnvInt("PAGE_CAP", 0),

		CSVOutputPath:   getEnv("CSV_OUTPUT_PATH", "./data/clothes.csv"),
		ReportDir:       getEnv("REPORT_DIR", "./report"),
		CategoryMapPath: getEnv("CATEGORY_MAP_PATH", "./config/categories.yaml"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
		LogFile:   getEnv("LOG_FILE", ""),
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: invalid settings: %w", err)
	}
	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}
