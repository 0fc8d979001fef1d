package ocr

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"buktitf/pkg/receipt"
)

// Palette is the set of brand colours that identifies one provider's receipt.
type Palette struct {
	Bank   receipt.BankType
	Colors [][3]uint8
}

// DefaultPalettes are checked in order; ties go to the earlier palette.
var DefaultPalettes = []Palette{
	{receipt.BankBRI, [][3]uint8{{0, 102, 204}, {51, 153, 255}, {0, 76, 153}, {25, 118, 210}, {30, 144, 255}}},
	{receipt.BankBCA, [][3]uint8{{0, 61, 130}, {0, 40, 100}, {0, 82, 160}, {25, 86, 155}, {0, 51, 102}, {13, 71, 161}}},
	{receipt.BankMandiri, [][3]uint8{{255, 184, 28}, {255, 165, 0}}},
	{receipt.BankBNI, [][3]uint8{{255, 102, 0}, {255, 140, 0}}},
	{receipt.BankSeabank, [][3]uint8{{0, 150, 136}, {76, 175, 80}}},
	{receipt.BankDana, [][3]uint8{{33, 150, 243}, {100, 181, 246}, {21, 101, 192}}},
}

const (
	matchDiff       = 30
	strongDiff      = 15
	minMatches      = 100
	minStrong       = 50
	classifyMaxSide = 600
)

// Classifier guesses the provider from brand colours. The grammar still
// needs the tag, so this only saves the user from picking it.
type Classifier struct {
	Palettes []Palette
	// MaxSide bounds the image before counting so thresholds stay comparable
	// between phone photos and screenshots.
	MaxSide int
}

// NewClassifier returns a classifier with DefaultPalettes.
func NewClassifier() *Classifier {
	return &Classifier{Palettes: DefaultPalettes, MaxSide: classifyMaxSide}
}

// ColorScore is the per-palette result of one classification.
type ColorScore struct {
	Bank    receipt.BankType
	Matches int
	Strong  int
}

// Detected reports whether the score passes both thresholds.
func (s ColorScore) Detected() bool {
	return s.Matches > minMatches && s.Strong > minStrong
}

// Classify returns the detected provider, or UNKNOWN, and every palette's score.
func (c *Classifier) Classify(img image.Image) (receipt.BankType, []ColorScore) {
	if c.MaxSide > 0 {
		b := img.Bounds()
		if b.Dx() > c.MaxSide || b.Dy() > c.MaxSide {
			img = imaging.Fit(img, c.MaxSide, c.MaxSide, imaging.Box)
		}
	}
	nrgba := imaging.Clone(img)

	scores := make([]ColorScore, len(c.Palettes))
	for i, p := range c.Palettes {
		scores[i].Bank = p.Bank
	}
	pix := nrgba.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		r, g, b := pix[i], pix[i+1], pix[i+2]
		for pi, p := range c.Palettes {
			for _, col := range p.Colors {
				dr, dg, db := absDiff(r, col[0]), absDiff(g, col[1]), absDiff(b, col[2])
				if dr < matchDiff && dg < matchDiff && db < matchDiff {
					scores[pi].Matches++
					if dr < strongDiff && dg < strongDiff && db < strongDiff {
						scores[pi].Strong++
					}
				}
			}
		}
	}

	best, bestStrong := receipt.BankUnknown, -1
	for _, s := range scores {
		if s.Detected() && s.Strong > bestStrong {
			best, bestStrong = s.Bank, s.Strong
		}
	}
	return best, scores
}

// ClassifyFile opens path and classifies it.
func (c *Classifier) ClassifyFile(path string) (receipt.BankType, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return receipt.BankUnknown, fmt.Errorf("open image: %w", err)
	}
	bank, _ := c.Classify(img)
	return bank, nil
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
