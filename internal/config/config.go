package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	App struct {
		Port        string
		Debug       bool
		FrontendURL string
	}
	DB struct {
		Host     string
		Port     string
		User     string
		Password string
		DBName   string
		SSLMode  string
	}
	Redis struct {
		Enabled  bool
		Host     string
		Port     string
		Password string
		DB       int
	}
	Auth struct {
		JWTSecret     string
		TokenTTL      time.Duration
		AdminPassword string
	}
	RateLimit struct {
		LoginPerHour  int
		IngestPerHour int
		Burst         int
	}
	Retention struct {
		Enabled        bool
		Interval       time.Duration
		LogMaxAge      time.Duration
		SnapshotMaxAge time.Duration
	}
	Report struct {
		OutputDir string
	}
}

func Load() *Config {
	cfg := &Config{}

	// App
	cfg.App.Port = getEnv("PORT", "8080")
	cfg.App.Debug = getEnvAsBool("DEBUG", false)
	cfg.App.FrontendURL = getEnv("FRONTEND_URL", "http://localhost:3000")

	// DB
	cfg.DB.Host = getEnv("DB_HOST", "localhost")
	cfg.DB.Port = getEnv("DB_PORT", "5432")
	cfg.DB.User = getEnv("DB_USER", "postgres")
	cfg.DB.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.DB.DBName = getEnv("DB_NAME", "netops")
	cfg.DB.SSLMode = getEnv("DB_SSLMODE", "disable")

	// Redis
	cfg.Redis.Enabled = getEnvAsBool("REDIS_ENABLED", true)
	cfg.Redis.Host = getEnv("REDIS_HOST", "localhost")
	cfg.Redis.Port = getEnv("REDIS_PORT", "6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", 0)

	// Auth
	cfg.Auth.JWTSecret = getEnv("NETOPS_JWT_SECRET", "dev-jwt-secret-change-me")
	cfg.Auth.TokenTTL = getEnvAsDuration("TOKEN_TTL", 24*time.Hour)
	cfg.Auth.AdminPassword = getEnv("ADMIN_PASSWORD", "")

	// Rate limits (per hour, matching the station upload cadence)
	cfg.RateLimit.LoginPerHour = getEnvAsInt("LOGIN_RATE_PER_HOUR", 20)
	cfg.RateLimit.IngestPerHour = getEnvAsInt("INGEST_RATE_PER_HOUR", 600)
	cfg.RateLimit.Burst = getEnvAsInt("RATE_LIMIT_BURST", 10)

	// Retention
	cfg.Retention.Enabled = getEnvAsBool("RETENTION_ENABLED", true)
	cfg.Retention.Interval = getEnvAsDuration("RETENTION_INTERVAL", time.Hour)
	cfg.Retention.LogMaxAge = getEnvAsDuration("RETENTION_LOG_MAX_AGE", 30*24*time.Hour)
	cfg.Retention.SnapshotMaxAge = getEnvAsDuration("RETENTION_SNAPSHOT_MAX_AGE", 90*24*time.Hour)

	// Reports
	cfg.Report.OutputDir = getEnv("REPORT_OUTPUT_DIR", "./data/reports")

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if dur, err := time.ParseDuration(value); err == nil {
			return dur
		}
	}
	return defaultValue
}
