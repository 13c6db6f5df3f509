package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	AppPort string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBTimezone string

	UploadDir string

	// Bearer-token auth. Auth is disabled when AuthJWKSURL is empty
	// (local development, same as running behind no gateway).
	AuthJWKSURL    string
	AuthIssuer     string
	AuthAudience   string
	AuthMaintScope string // scope required for the /api/maintenance group

	// Scheduling thresholds for the interval evaluator.
	DueSoonDays         int
	DueSoonHours        float64
	GenerateWindowHours int
}

var C AppConfig

func Load() {
	_ = godotenv.Load() // missing .env is fine

	C = AppConfig{
		AppPort:    getEnv("APP_PORT", "8080"),
		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "111111"),
		DBName:     getEnv("DB_NAME", "shopmaint"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		DBTimezone: getEnv("DB_TIMEZONE", "UTC"),

		UploadDir: getEnv("UPLOAD_DIR", "./uploads"),

		AuthJWKSURL:    getEnv("AUTH_JWKS_URL", ""),
		AuthIssuer:     getEnv("AUTH_ISSUER", ""),
		AuthAudience:   getEnv("AUTH_AUDIENCE", ""),
		AuthMaintScope: getEnv("AUTH_MAINT_SCOPE", "maintenance.write"),

		DueSoonDays:         getEnvInt("DUE_SOON_DAYS", 7),
		DueSoonHours:        getEnvFloat("DUE_SOON_HOURS", 50),
		GenerateWindowHours: getEnvInt("GENERATE_WINDOW_HOURS", 24),
	}
}

func GetDSN() string {
	// lib/pq style DSN
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		C.DBHost, C.DBPort, C.DBUser, C.DBPassword, C.DBName, C.DBSSLMode, C.DBTimezone,
	)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
