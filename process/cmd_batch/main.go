package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"buktitf/pkg/accountmap"
	"buktitf/pkg/logger"
	"buktitf/pkg/ocr"
	"buktitf/pkg/receipt"
	"buktitf/process/batch"
)

// Scans a directory of receipt photos and writes a JSON sidecar per photo,
// optionally watching for new ones.
func main() {
	dir := flag.String("dir", "public/receipts", "directory to scan for receipt photos")
	processed := flag.String("processed", "public/processed", "directory processed photos are moved to (empty keeps them in place)")
	bank := flag.String("bank", "AUTO", "provider tag, or AUTO to detect it from the photo colours")
	paper := flag.String("paper", "58mm", "paper size stamped on records")
	watch := flag.Bool("watch", false, "watch the directory for new photos after the initial scan")
	workers := flag.Int("workers", 0, "worker pool size (default NumCPU)")
	autosave := flag.Bool("autosave", false, "learn receiver name/account pairs from extracted records")
	record := flag.Bool("record", false, "record each photo in receipt_uploads (needs DB_DSN)")
	lang := flag.String("lang", "ind+eng", "tesseract languages")
	timeout := flag.Duration("timeout", receipt.DefaultOCRTimeout, "per-photo OCR timeout")
	verbose := flag.Bool("verbose", false, "per-file debug logging")
	flag.Parse()

	_ = godotenv.Load()
	log := logger.New()
	if !*verbose {
		log = log.Level(zerolog.InfoLevel)
	}

	var db *gorm.DB
	if *record || (*autosave && os.Getenv("DB_DSN") != "") {
		dsn := os.Getenv("DB_DSN")
		if dsn == "" {
			log.Fatal().Msg("DB_DSN must be set in environment to use --record")
		}
		gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		db = gdb
	}

	var store *accountmap.Store
	if *autosave {
		opts := []accountmap.Option{accountmap.WithLogger(log)}
		switch {
		case db != nil:
			opts = append(opts, accountmap.WithRepository(accountmap.NewGormRepository(db)))
		case os.Getenv("MAPPING_BOLT_PATH") != "":
			repo, err := accountmap.OpenBoltRepository(os.Getenv("MAPPING_BOLT_PATH"))
			if err != nil {
				log.Fatal().Err(err).Msg("open mapping store")
			}
			defer repo.Close()
			opts = append(opts, accountmap.WithRepository(repo))
		default:
			log.Warn().Msg("--autosave without DB_DSN or MAPPING_BOLT_PATH only learns for this run")
		}
		store = accountmap.New(nil, opts...)
	}

	var lookup receipt.AccountLookup
	if store != nil {
		lookup = store
	}
	p := &batch.Processor{
		Extractor:    receipt.NewExtractor(lookup, receipt.WithLogger(log), receipt.WithOCRTimeout(*timeout)),
		Recognizer:   ocr.NewTesseract(*lang, log),
		Classifier:   ocr.NewClassifier(),
		Bank:         receipt.ParseBankType(*bank),
		Paper:        receipt.ParsePaperSize(*paper),
		Store:        store,
		AutoSave:     *autosave,
		DB:           db,
		ProcessedDir: *processed,
		Workers:      *workers,
		Log:          log,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	if _, err := p.Scan(ctx, *dir); err != nil {
		log.Error().Err(err).Msg("scan")
		return
	}
	log.Info().Dur("took", time.Since(start)).Msg("initial scan done")

	if *watch {
		if _, err := p.Watch(ctx, *dir); err != nil {
			log.Error().Err(err).Msg("watch failed")
		}
	}
}
