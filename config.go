package main

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// config is read once from the environment at startup.
type config struct {
	Port            string
	DSN             string
	AutoMigrate     bool
	MappingBoltPath string
	MappingSeedPath string
	JWTSecret       string
	OCRLang         string
	OCRTimeout      time.Duration
	UploadBase      string
	LogLevel        string
}

// loadDotEnv loads ./.env into the environment without overwriting variables
// that are already set. A missing file is not an error.
func loadDotEnv() {
	if _, err := os.Stat(".env"); err != nil {
		return
	}
	_ = godotenv.Load(".env")
}

func loadConfig() config {
	cfg := config{
		Port:            envOr("PORT", "8081"),
		DSN:             os.Getenv("DB_DSN"),
		AutoMigrate:     envBool("DB_AUTO_MIGRATE", true),
		MappingBoltPath: os.Getenv("MAPPING_BOLT_PATH"),
		MappingSeedPath: os.Getenv("MAPPING_SEED_PATH"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		OCRLang:         envOr("OCR_LANG", "ind+eng"),
		OCRTimeout:      60 * time.Second,
		UploadBase:      envOr("UPLOAD_BASE", "uploads"),
		LogLevel:        envOr("LOG_LEVEL", "info"),
	}
	if v := os.Getenv("OCR_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.OCRTimeout = d
		}
	}
	return cfg
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// envBool treats false/0/no (any case) as false and anything else set as true.
func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	switch strings.ToLower(v) {
	case "false", "0", "no":
		return false
	}
	return true
}
