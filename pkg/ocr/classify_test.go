package ocr

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buktitf/pkg/receipt"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	return imaging.New(w, h, c)
}

func TestClassifySolidBrandColours(t *testing.T) {
	tests := []struct {
		name string
		c    color.NRGBA
		want receipt.BankType
	}{
		{"bri blue", color.NRGBA{0, 102, 204, 255}, receipt.BankBRI},
		{"bca navy", color.NRGBA{0, 61, 130, 255}, receipt.BankBCA},
		{"mandiri yellow", color.NRGBA{255, 184, 28, 255}, receipt.BankMandiri},
		{"bni orange", color.NRGBA{255, 140, 0, 255}, receipt.BankBNI},
		{"seabank teal", color.NRGBA{0, 150, 136, 255}, receipt.BankSeabank},
		{"dana light blue", color.NRGBA{100, 181, 246, 255}, receipt.BankDana},
		{"white paper", color.NRGBA{255, 255, 255, 255}, receipt.BankUnknown},
	}
	c := NewClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := c.Classify(solid(200, 200, tt.c))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyNeedsEnoughPixels(t *testing.T) {
	img := solid(200, 200, color.NRGBA{255, 255, 255, 255})
	patch := solid(5, 5, color.NRGBA{0, 102, 204, 255})
	img = imaging.Paste(img, patch, image.Pt(10, 10))

	got, scores := NewClassifier().Classify(img)
	assert.Equal(t, receipt.BankUnknown, got)
	assert.Equal(t, receipt.BankBRI, scores[0].Bank)
	assert.Equal(t, 25, scores[0].Strong)
	assert.False(t, scores[0].Detected())
}

func TestClassifyStrongestPaletteWins(t *testing.T) {
	// A receipt with a small BCA logo on a large BNI header.
	img := solid(300, 300, color.NRGBA{255, 102, 0, 255})
	img = imaging.Paste(img, solid(20, 20, color.NRGBA{0, 61, 130, 255}), image.Pt(0, 0))

	got, _ := NewClassifier().Classify(img)
	assert.Equal(t, receipt.BankBNI, got)
}

func TestClassifyDownscalesLargeImages(t *testing.T) {
	got, scores := NewClassifier().Classify(solid(2000, 1500, color.NRGBA{0, 150, 136, 255}))
	assert.Equal(t, receipt.BankSeabank, got)
	for _, s := range scores {
		if s.Bank == receipt.BankSeabank {
			assert.LessOrEqual(t, s.Matches, classifyMaxSide*classifyMaxSide)
		}
	}
}

func TestClassifyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mandiri.png")
	require.NoError(t, imaging.Save(solid(120, 120, color.NRGBA{255, 165, 0, 255}), path))

	got, err := NewClassifier().ClassifyFile(path)
	require.NoError(t, err)
	assert.Equal(t, receipt.BankMandiri, got)

	got, err = NewClassifier().ClassifyFile(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
	assert.Equal(t, receipt.BankUnknown, got)
}
