package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr               string
	DatabaseURL        string
	JWTSecret          string
	FrontendDir        string
	Environment        string
	SeedCompanyName    string
	SeedDepartmentName string
	SeedAdminEmail     string
	SeedAdminPassword  string
	RunMigrations      bool
	RunSeed            bool
	MaxBodyBytes       int64
	RateLimitPerMinute int
	MetricsEnabled     bool
	EventBufferSize    int
}

func Load() Config {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	return Config{
		Addr:               getEnv("APP_ADDR", ":8080"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		FrontendDir:        getEnv("FRONTEND_DIR", "frontend/dist"),
		Environment:        getEnv("APP_ENV", "development"),
		SeedCompanyName:    getEnv("SEED_COMPANY_NAME", "EMS Space Demo Co"),
		SeedDepartmentName: getEnv("SEED_DEPARTMENT_NAME", "General"),
		SeedAdminEmail:     getEnv("SEED_ADMIN_EMAIL", ""),
		SeedAdminPassword:  getEnv("SEED_ADMIN_PASSWORD", ""),
		RunMigrations:      getEnvBool("RUN_MIGRATIONS", true),
		RunSeed:            getEnvBool("RUN_SEED", true),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		MetricsEnabled:     getEnvBool("METRICS_ENABLED", true),
		EventBufferSize:    getEnvInt("EVENT_BUFFER_SIZE", 64),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Environment == "production" {
		if strings.TrimSpace(c.JWTSecret) == "" {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if c.RunSeed && strings.TrimSpace(c.SeedAdminPassword) == "" {
			return fmt.Errorf("SEED_ADMIN_PASSWORD must be changed or RUN_SEED disabled in production")
		}
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.EventBufferSize <= 0 {
		return fmt.Errorf("EVENT_BUFFER_SIZE must be positive")
	}
	return nil
}
