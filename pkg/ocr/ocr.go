// Package ocr reads receipt photos: Tesseract recognition with light image
// preprocessing, and a colour classifier that guesses the issuing provider.
package ocr

import (
	"context"
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
	"github.com/rs/zerolog"
)

// Recognizer turns an image file into raw OCR text, one receipt line per line.
type Recognizer interface {
	Recognize(ctx context.Context, path string) (string, error)
}

// receiptWhitelist covers Indonesian receipt text plus the mask characters.
const receiptWhitelist = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz.,:;()/-*'& "

// Tesseract is a Recognizer backed by gosseract.
type Tesseract struct {
	Lang string
	// MinScore is the score at which the first pass is accepted without
	// running the fallback passes.
	MinScore int
	Log      zerolog.Logger
}

// NewTesseract returns a recognizer for lang ("ind+eng" when empty).
func NewTesseract(lang string, log zerolog.Logger) *Tesseract {
	if lang == "" {
		lang = "ind+eng"
	}
	return &Tesseract{Lang: lang, MinScore: 40, Log: log}
}

// Recognize preprocesses the image and runs the OCR passes until one reads
// enough receipt text. Passes are not interruptible once started; ctx is
// checked between them.
func (t *Tesseract) Recognize(ctx context.Context, path string) (string, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	gray := prepare(img)

	tmp, cleanup := t.stage(gray, path)
	defer cleanup()

	best, bestScore := "", -1
	for _, p := range t.passes(gray, tmp) {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("ocr %s: %w", path, err)
		}
		text, err := p.run(t.Lang)
		if err != nil {
			t.Log.Debug().Err(err).Str("pass", p.name).Msg("ocr pass failed")
			continue
		}
		text = normalizeLines(text)
		score := scoreText(text)
		t.Log.Debug().Str("pass", p.name).Int("score", score).Str("snippet", snippet(text, 120)).Msg("ocr pass")
		if score > bestScore {
			best, bestScore = text, score
		}
		if score >= t.MinScore {
			break
		}
	}
	if strings.TrimSpace(best) == "" {
		return "", ErrNoText
	}
	return best, nil
}

// saveImage is swapped in tests.
var saveImage = func(img image.Image, path string) error { return imaging.Save(img, path) }

// stage writes img to a temp PNG for the file based passes. When that fails
// it returns fallback and leaves no temp file behind.
func (t *Tesseract) stage(img image.Image, fallback string) (string, func()) {
	f, err := os.CreateTemp("", "ocr-*.png")
	if err != nil {
		t.Log.Debug().Err(err).Msg("cannot create temp image, using original")
		return fallback, func() {}
	}
	tmp := f.Name()
	_ = f.Close()
	if err := saveImage(img, tmp); err != nil {
		t.Log.Debug().Err(err).Msg("cannot write preprocessed image, using original")
		_ = os.Remove(tmp)
		return fallback, func() {}
	}
	return tmp, func() { _ = os.Remove(tmp) }
}

// recognizeFile runs one Tesseract call on an image file.
func recognizeFile(path, lang string, mode gosseract.PageSegMode) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()
	_ = client.SetLanguage(strings.Split(lang, "+")...)
	_ = client.SetWhitelist(receiptWhitelist)
	_ = client.SetPageSegMode(mode)
	if err := client.SetImage(path); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr error: %w", err)
	}
	return text, nil
}
