package main

import (
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"buktitf/pkg/accountmap"
	"buktitf/pkg/logger"
	"buktitf/pkg/ocr"
	"buktitf/pkg/receipt"
)

func main() {
	loadDotEnv()
	cfg := loadConfig()
	log := logger.New()
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		log = log.Level(lvl)
	}

	// Lightweight subcommands:
	//   buktitf migrate         run AutoMigrate and exit
	//   buktitf token <subject> print a signed bearer token for mapping writes
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "migrate":
			if _, err := initDB(cfg, log); err != nil {
				log.Fatal().Err(err).Msg("migration failed")
			}
			fmt.Println("migration completed")
			return
		case "token":
			subject := "operator"
			if len(os.Args) > 2 {
				subject = os.Args[2]
			}
			tok, err := issueToken([]byte(cfg.JWTSecret), subject, 30*24*time.Hour)
			if err != nil {
				log.Fatal().Err(err).Msg("cannot issue token")
			}
			fmt.Println(tok)
			return
		}
	}

	db, err := initDB(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("database")
	}
	store, closeStore, err := newMappingStore(cfg, db, log)
	if err != nil {
		log.Fatal().Err(err).Msg("account mapping store")
	}
	defer closeStore()
	ensureUploadBase(cfg.UploadBase, log)

	s := &server{
		cfg:        cfg,
		log:        log,
		db:         db,
		store:      store,
		extractor:  receipt.NewExtractor(store, receipt.WithLogger(log), receipt.WithOCRTimeout(cfg.OCRTimeout)),
		recognizer: ocr.NewTesseract(cfg.OCRLang, log),
		classifier: ocr.NewClassifier(),
	}

	r := gin.Default()
	s.setupRoutes(r)

	log.Info().Str("port", cfg.Port).Msg("listening")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

// newMappingStore picks the mapping persistence: Postgres when a database is
// configured, otherwise a bbolt file when MAPPING_BOLT_PATH is set, otherwise
// memory only.
func newMappingStore(cfg config, db *gorm.DB, log zerolog.Logger) (*accountmap.Store, func(), error) {
	var src accountmap.Source
	if cfg.MappingSeedPath != "" {
		src = accountmap.FileSource(cfg.MappingSeedPath)
	}
	opts := []accountmap.Option{accountmap.WithLogger(log)}
	closeFn := func() {}

	switch {
	case db != nil:
		opts = append(opts, accountmap.WithRepository(accountmap.NewGormRepository(db)))
	case cfg.MappingBoltPath != "":
		repo, err := accountmap.OpenBoltRepository(cfg.MappingBoltPath)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, accountmap.WithRepository(repo))
		closeFn = func() { _ = repo.Close() }
	}
	return accountmap.New(src, opts...), closeFn, nil
}
