package ocr

import (
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// pass is one OCR attempt over a particular rendition of the image.
type pass struct {
	name string
	run  func(lang string) (string, error)
}

// prepare is the base rendition: grayscale, a little contrast and sharpening,
// upscaled when the photo is small.
func prepare(img image.Image) *image.NRGBA {
	gray := imaging.Grayscale(img)
	gray = imaging.AdjustContrast(gray, 15)
	gray = imaging.Sharpen(gray, 0.7)
	if gray.Bounds().Dy() < 900 {
		gray = imaging.Resize(gray, 0, 1300, imaging.Lanczos)
	}
	return gray
}

// passes lists the attempts in order: the base image as one block, the base
// image as sparse text, then thresholded renditions for low-contrast photos.
func (t *Tesseract) passes(gray *image.NRGBA, base string) []pass {
	return []pass{
		{name: "block", run: func(lang string) (string, error) {
			return recognizeFile(base, lang, gosseract.PSM_SINGLE_BLOCK)
		}},
		{name: "sparse", run: func(lang string) (string, error) {
			return recognizeFile(base, lang, gosseract.PSM_SPARSE_TEXT)
		}},
		{name: "binarized", run: func(lang string) (string, error) {
			return recognizeRendition(binarize(gray, 210), lang, gosseract.PSM_SINGLE_BLOCK)
		}},
		{name: "adaptive", run: func(lang string) (string, error) {
			return recognizeRendition(dilate(adaptiveThreshold(gray, 15, 7), 1), lang, gosseract.PSM_SINGLE_BLOCK)
		}},
		{name: "inverted", run: func(lang string) (string, error) {
			return recognizeRendition(imaging.Invert(gray), lang, gosseract.PSM_SINGLE_BLOCK)
		}},
	}
}

// recognizeRendition saves img to a temp file and recognizes it.
func recognizeRendition(img image.Image, lang string, mode gosseract.PageSegMode) (string, error) {
	f, err := os.CreateTemp("", "ocr-pass-*.png")
	if err != nil {
		return "", fmt.Errorf("temp file: %w", err)
	}
	name := f.Name()
	_ = f.Close()
	defer os.Remove(name)
	if err := imaging.Save(img, name); err != nil {
		return "", fmt.Errorf("save rendition: %w", err)
	}
	return recognizeFile(name, lang, mode)
}
