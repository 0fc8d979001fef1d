package receipt

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// DefaultOCRTimeout bounds one recognition call in ExtractImage.
const DefaultOCRTimeout = 60 * time.Second

// AccountLookup resolves a receiver name to a previously learned account.
type AccountLookup interface {
	Lookup(ctx context.Context, name string) (string, bool)
}

// Recognizer turns an image file into raw OCR text.
type Recognizer interface {
	Recognize(ctx context.Context, path string) (string, error)
}

// Extractor turns OCR text into a TransferRecord. It is safe for concurrent
// use; the only shared state is behind the AccountLookup.
type Extractor struct {
	lookup     AccountLookup
	now        func() time.Time
	log        zerolog.Logger
	ocrTimeout time.Duration
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithClock replaces time.Now, mainly for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

func WithLogger(l zerolog.Logger) Option {
	return func(e *Extractor) { e.log = l }
}

// WithOCRTimeout sets the recognition deadline used by ExtractImage.
func WithOCRTimeout(d time.Duration) Option {
	return func(e *Extractor) {
		if d > 0 {
			e.ocrTimeout = d
		}
	}
}

// NewExtractor builds an Extractor. lookup may be nil, which disables enrichment.
func NewExtractor(lookup AccountLookup, opts ...Option) *Extractor {
	e := &Extractor{
		lookup:     lookup,
		now:        time.Now,
		log:        zerolog.Nop(),
		ocrTimeout: DefaultOCRTimeout,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Extract runs the grammar for bank over text. It never fails: anything it
// cannot read is returned as a placeholder value.
func (e *Extractor) Extract(ctx context.Context, text string, bank BankType, paper PaperSize) (rec TransferRecord) {
	now := e.now()
	if paper == "" {
		paper = Paper58mm
	}
	if bank == "" {
		bank = BankUnknown
	}

	defer func() {
		if r := recover(); r != nil {
			e.log.Error().Str("bank", string(bank)).Interface("panic", r).Msg("grammar panicked, returning placeholders")
			rec = Sentinel(bank, paper, now)
		}
	}()

	lines := splitLines(text)
	rec = Dispatch(bank)(lines, now)
	rec.BankType = bank
	rec.PaperSize = paper
	e.enrich(ctx, &rec)
	rec.fillDefaults(now)

	e.log.Debug().
		Str("bank", string(bank)).
		Int("lines", len(lines)).
		Str("receiver", rec.ReceiverName).
		Int64("amount", rec.Amount).
		Msg("extracted receipt")
	return rec
}

// enrich fills the receiver account from the learned mapping when the grammar
// found a name but no usable account.
func (e *Extractor) enrich(ctx context.Context, rec *TransferRecord) {
	if e.lookup == nil || IsSentinelName(rec.ReceiverName) || !IsSentinelAccount(rec.ReceiverAccount) {
		return
	}
	if acct, ok := e.lookup.Lookup(ctx, rec.ReceiverName); ok && acct != "" {
		e.log.Debug().Str("receiver", rec.ReceiverName).Msg("receiver account filled from mapping")
		rec.ReceiverAccount = acct
	}
}

// ExtractImage recognizes the image at path and extracts it. OCR errors and
// timeouts produce the placeholder record.
func (e *Extractor) ExtractImage(ctx context.Context, r Recognizer, path string, bank BankType, paper PaperSize) TransferRecord {
	text, err := e.recognize(ctx, r, path)
	if err != nil {
		e.log.Warn().Err(err).Str("path", path).Str("bank", string(bank)).Msg("ocr failed, returning placeholders")
		if paper == "" {
			paper = Paper58mm
		}
		if bank == "" {
			bank = BankUnknown
		}
		return Sentinel(bank, paper, e.now())
	}
	return e.Extract(ctx, text, bank, paper)
}

type ocrResult struct {
	text string
	err  error
}

func (e *Extractor) recognize(ctx context.Context, r Recognizer, path string) (string, error) {
	if r == nil {
		return "", fmt.Errorf("recognize %s: no recognizer configured", path)
	}
	ctx, cancel := context.WithTimeout(ctx, e.ocrTimeout)
	defer cancel()

	done := make(chan ocrResult, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- ocrResult{err: fmt.Errorf("recognize %s: panic: %v", path, p)}
			}
		}()
		text, err := r.Recognize(ctx, path)
		done <- ocrResult{text: text, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return "", fmt.Errorf("recognize %s: %w", path, res.err)
		}
		return res.text, nil
	case <-ctx.Done():
		return "", fmt.Errorf("recognize %s: %w", path, ctx.Err())
	}
}
