// Package batch runs receipt extraction over a directory of photos, either as
// a one-shot scan or by watching the directory for new files. Every processed
// photo gets a JSON sidecar holding the extracted record; a photo whose
// sidecar already exists is skipped, so re-running a scan is cheap.
package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"buktitf/models"
	"buktitf/pkg/accountmap"
	"buktitf/pkg/ocr"
	"buktitf/pkg/receipt"
)

const (
	sidecarExt       = ".json"
	defaultQuiet     = 300 * time.Millisecond
	maxProcessedSize = 1_000_000
)

// Result is the sidecar document written for each photo.
type Result struct {
	File         string                 `json:"file"`
	RunID        string                 `json:"runId"`
	DetectedBank bool                   `json:"detectedBank"`
	Learned      bool                   `json:"learned"`
	ProcessedAt  time.Time              `json:"processedAt"`
	Record       receipt.TransferRecord `json:"record"`
}

// Summary counts the outcome of a run.
type Summary struct {
	Processed int
	Skipped   int
	Empty     int
	Errors    int
}

func (s *Summary) add(o outcome) {
	switch o {
	case outcomeDone:
		s.Processed++
	case outcomeSkipped:
		s.Skipped++
	case outcomeEmpty:
		s.Processed++
		s.Empty++
	case outcomeError:
		s.Errors++
	}
}

type outcome int

const (
	outcomeDone outcome = iota
	outcomeSkipped
	outcomeEmpty
	outcomeError
)

// Processor holds the pipeline for one run. Extractor and Recognizer are
// required; the rest is optional.
type Processor struct {
	Extractor  *receipt.Extractor
	Recognizer receipt.Recognizer
	// Classifier picks the provider from the photo when Bank is empty or AUTO.
	Classifier *ocr.Classifier
	Bank       receipt.BankType
	Paper      receipt.PaperSize

	// Store learns receiver name/account pairs when AutoSave is set.
	Store    *accountmap.Store
	AutoSave bool
	// DB, when set, gets a receipt_uploads row per photo.
	DB *gorm.DB

	// ProcessedDir receives photos and sidecars after extraction. Empty keeps
	// both in the scanned directory.
	ProcessedDir string
	Workers      int
	// Quiet is how long a watched file must stay unchanged before it is picked up.
	Quiet time.Duration
	Log   zerolog.Logger

	runID string
	once  sync.Once
}

// RunID identifies this processor's run in sidecars and logs.
func (p *Processor) RunID() string {
	p.once.Do(func() { p.runID = uuid.NewString() })
	return p.runID
}

func (p *Processor) workers() int {
	if p.Workers <= 0 {
		return runtime.NumCPU()
	}
	return p.Workers
}

// ListImages returns the supported photos in dir, sorted by name.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !isSupportedExt(e.Name()) {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out, nil
}

func isSupportedExt(name string) bool {
	// ignore OCR-generated temp files to avoid recursive processing
	if strings.Contains(name, ".ocr.") {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
		return true
	}
	return false
}

// Scan processes every photo currently in dir and returns when all are done.
func (p *Processor) Scan(ctx context.Context, dir string) (Summary, error) {
	files, err := ListImages(dir)
	if err != nil {
		return Summary{}, err
	}
	p.Log.Info().Str("run_id", p.RunID()).Str("dir", dir).Int("files", len(files)).Int("workers", p.workers()).Msg("scan started")

	ch := make(chan string)
	go func() {
		defer close(ch)
		for _, f := range files {
			select {
			case ch <- f:
			case <-ctx.Done():
				return
			}
		}
	}()
	sum := p.pool(ctx, dir, ch)
	p.Log.Info().
		Int("processed", sum.Processed).
		Int("skipped", sum.Skipped).
		Int("empty", sum.Empty).
		Int("errors", sum.Errors).
		Msg("scan finished")
	return sum, ctx.Err()
}

// Watch processes photos created in dir until ctx is cancelled. Files are
// debounced so a photo still being written is not read half way.
func (p *Processor) Watch(ctx context.Context, dir string) (Summary, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return Summary{}, err
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return Summary{}, fmt.Errorf("watch %s: %w", dir, err)
	}
	quiet := p.Quiet
	if quiet <= 0 {
		quiet = defaultQuiet
	}
	p.Log.Info().Str("run_id", p.RunID()).Str("dir", dir).Dur("quiet", quiet).Msg("watching")

	fileCh := make(chan string, 256)
	go func() {
		defer close(fileCh)
		pending := map[string]time.Time{}
		ticker := time.NewTicker(quiet / 2)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
					continue
				}
				name := filepath.Base(ev.Name)
				if isSupportedExt(name) {
					pending[name] = time.Now()
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				p.Log.Warn().Err(err).Msg("watch error")
			case now := <-ticker.C:
				for name, t := range pending {
					if now.Sub(t) < quiet {
						continue
					}
					delete(pending, name)
					select {
					case fileCh <- name:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()

	sum := p.pool(ctx, dir, fileCh)
	return sum, nil
}

func (p *Processor) pool(ctx context.Context, dir string, in <-chan string) Summary {
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		sum Summary
	)
	for i := 0; i < p.workers(); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range in {
				if ctx.Err() != nil {
					continue
				}
				o := p.processFile(ctx, dir, name)
				mu.Lock()
				sum.add(o)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return sum
}

func (p *Processor) outputDir(dir string) string {
	if p.ProcessedDir != "" {
		return p.ProcessedDir
	}
	return dir
}

func (p *Processor) processFile(ctx context.Context, dir, name string) outcome {
	log := p.Log.With().Str("file", name).Logger()
	src := filepath.Join(dir, name)
	outDir := p.outputDir(dir)
	sidecar := filepath.Join(outDir, name+sidecarExt)

	if _, err := os.Stat(sidecar); err == nil {
		log.Debug().Msg("skip, sidecar exists")
		return outcomeSkipped
	}
	if _, err := os.Stat(src); err != nil {
		// moved or deleted since it was listed
		log.Debug().Err(err).Msg("skip, file gone")
		return outcomeSkipped
	}

	bank, detected := p.Bank, false
	if bank == "" || bank == "AUTO" {
		bank, detected = receipt.BankUnknown, true
		if p.Classifier != nil {
			b, err := p.Classifier.ClassifyFile(src)
			if err != nil {
				log.Warn().Err(err).Msg("bank colour detection failed")
			} else {
				bank = b
			}
		}
	}

	rec := p.Extractor.ExtractImage(ctx, p.Recognizer, src, bank, p.Paper)
	res := Result{
		File:         name,
		RunID:        p.RunID(),
		DetectedBank: detected,
		ProcessedAt:  time.Now().UTC(),
		Record:       rec,
	}
	empty := rec.Amount == 0 && receipt.IsSentinelName(rec.ReceiverName)

	if p.AutoSave && p.Store != nil && !empty {
		saved, err := p.Store.AutoSave(ctx, rec.ReceiverName, rec.ReceiverAccount)
		if err != nil {
			log.Warn().Err(err).Msg("auto-save failed")
		}
		res.Learned = saved
	}
	p.record(ctx, log, name, bank, detected, rec, empty)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		log.Error().Err(err).Msg("create output dir")
		return outcomeError
	}
	if outDir != dir {
		if err := moveToProcessed(src, filepath.Join(outDir, name)); err != nil {
			log.Warn().Err(err).Msg("failed to move processed file")
		}
	}
	if err := writeSidecar(sidecar, res); err != nil {
		log.Error().Err(err).Msg("write sidecar")
		return outcomeError
	}

	log.Info().
		Str("bank", string(bank)).
		Str("receiver", rec.ReceiverName).
		Int64("amount", rec.Amount).
		Bool("learned", res.Learned).
		Msg("receipt processed")
	if empty {
		return outcomeEmpty
	}
	return outcomeDone
}

func (p *Processor) record(ctx context.Context, log zerolog.Logger, name string, bank receipt.BankType, detected bool, rec receipt.TransferRecord, empty bool) {
	if p.DB == nil {
		return
	}
	up := models.ReceiptUpload{
		RequestID:       uuid.NewString(),
		FileName:        name,
		ContentType:     mimeFromExt(name),
		BankType:        string(bank),
		DetectedBank:    detected,
		PaperSize:       string(rec.PaperSize),
		ReceiverName:    rec.ReceiverName,
		ReceiverAccount: rec.ReceiverAccount,
		Amount:          rec.Amount,
		ReferenceNumber: rec.ReferenceNumber,
		Failed:          empty,
	}
	if empty {
		up.FailedReason = "nothing extracted"
	}
	if err := p.DB.WithContext(ctx).Create(&up).Error; err != nil {
		log.Warn().Err(err).Msg("failed to record upload")
	}
}

func writeSidecar(path string, res Result) error {
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

var extMime = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

func mimeFromExt(name string) string {
	return extMime[strings.ToLower(filepath.Ext(name))]
}

// moveToProcessed moves src to dst. Photos over maxProcessedSize are
// re-encoded at a smaller size on the way.
func moveToProcessed(src, dst string) error {
	fi, err := os.Stat(src)
	if err != nil {
		return err
	}
	if fi.Size() <= maxProcessedSize {
		return rename(src, dst)
	}
	img, err := imaging.Open(src)
	if err != nil {
		return rename(src, dst)
	}
	// size roughly scales with area
	scale := math.Sqrt(float64(maxProcessedSize) / float64(fi.Size()))
	scale = math.Max(0.1, math.Min(scale, 0.95))
	b := img.Bounds()
	w := int(math.Max(1, math.Round(float64(b.Dx())*scale)))
	h := int(math.Max(1, math.Round(float64(b.Dy())*scale)))
	if err := imaging.Save(imaging.Resize(img, w, h, imaging.Lanczos), dst); err != nil {
		return rename(src, dst)
	}
	return os.Remove(src)
}

// rename falls back to copy and remove across filesystems.
func rename(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
