package ocr

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLinesKeepsLineBreaks(t *testing.T) {
	in := "  BRImo \r\n\r\n Total   Transaksi\n\tRp300.000  \n"
	assert.Equal(t, "BRImo\nTotal Transaksi\nRp300.000", normalizeLines(in))
}

func TestScoreTextPrefersReceiptText(t *testing.T) {
	receiptText := "Transfer Berhasil\nTotal Transaksi\nRp300.000\nNo. Ref\n250724101532"
	noise := "lllll\nIIII\n---"

	assert.Zero(t, scoreText(""))
	assert.Greater(t, scoreText(receiptText), scoreText(noise))
	assert.GreaterOrEqual(t, scoreText(receiptText), NewTesseract("", zerolog.Nop()).MinScore)
}

func TestErrNoText(t *testing.T) {
	if _, err := exec.LookPath("tesseract"); err != nil {
		t.Skip("tesseract not installed")
	}
	img := imaging.New(400, 200, color.NRGBA{255, 255, 255, 255})
	f, err := os.CreateTemp("", "blank-*.png")
	if err != nil {
		t.Skip("temp file")
	}
	_ = f.Close()
	_ = imaging.Save(img, f.Name())
	defer os.Remove(f.Name())

	_, er := NewTesseract("eng", zerolog.Nop()).Recognize(context.Background(), f.Name())
	if er != ErrNoText {
		t.Fatalf("expected ErrNoText got %v", er)
	}
}

func TestRecognizeMissingFile(t *testing.T) {
	_, err := NewTesseract("", zerolog.Nop()).Recognize(context.Background(), "/nonexistent/receipt.png")
	assert.Error(t, err)
}

func TestRecognizeHonoursCancelledContext(t *testing.T) {
	img := imaging.New(50, 50, color.NRGBA{255, 255, 255, 255})
	path := t.TempDir() + "/blank.png"
	_ = imaging.Save(img, path)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewTesseract("", zerolog.Nop()).Recognize(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStageWritesAndCleansUpTempImage(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TMPDIR", dir)

	tmp, cleanup := NewTesseract("", zerolog.Nop()).stage(imaging.New(10, 10, color.White), "/orig.png")
	assert.Equal(t, dir, filepath.Dir(tmp))
	assert.FileExists(t, tmp)

	cleanup()
	assert.NoFileExists(t, tmp)
}

func TestStageFailureLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TMPDIR", dir)
	orig := saveImage
	saveImage = func(image.Image, string) error { return errors.New("disk full") }
	t.Cleanup(func() { saveImage = orig })

	tmp, cleanup := NewTesseract("", zerolog.Nop()).stage(imaging.New(10, 10, color.White), "/orig.png")
	cleanup()
	assert.Equal(t, "/orig.png", tmp)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
