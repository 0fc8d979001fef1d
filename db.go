package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"buktitf/models"
)

// initDB opens Postgres when DB_DSN is set. Without a DSN the service runs
// without the upload log and keeps learned mappings in bbolt or memory.
func initDB(cfg config, log zerolog.Logger) (*gorm.DB, error) {
	if cfg.DSN == "" {
		log.Info().Msg("DB_DSN not set, running without postgres")
		return nil, nil
	}
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect postgres database: %w", err)
	}
	// Controlled by DB_AUTO_MIGRATE (default true). Permission errors are
	// logged and ignored so a read-only role can still serve requests.
	if cfg.AutoMigrate {
		migrate(db, log)
	}
	return db, nil
}

// migrate runs AutoMigrate per model so a failure on one doesn't block the others.
func migrate(db *gorm.DB, log zerolog.Logger) {
	tables := []struct {
		name  string
		model any
	}{
		{"account_mappings", &models.AccountMapping{}},
		{"receipt_uploads", &models.ReceiptUpload{}},
	}
	for _, t := range tables {
		if err := db.AutoMigrate(t.model); err != nil {
			log.Warn().Err(err).Str("table", t.name).Msg("migration warning")
		}
	}
}

// ensureUploadBase creates the directory uploaded receipts are staged in.
func ensureUploadBase(base string, log zerolog.Logger) {
	if err := os.MkdirAll(base, 0755); err != nil {
		log.Error().Err(err).Str("dir", base).Msg("failed to create upload base dir")
	}
}
