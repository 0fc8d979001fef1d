package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/disintegration/imaging"

	"buktitf/pkg/logger"
	"buktitf/pkg/ocr"
)

// Prints the raw OCR text and the colour scores for one photo, for tuning
// grammars and palettes.
func main() {
	path := flag.String("path", "", "image path")
	lang := flag.String("lang", "ind+eng", "tesseract languages")
	flag.Parse()
	if *path == "" {
		log.Fatal("--path is required")
	}

	img, err := imaging.Open(*path, imaging.AutoOrientation(true))
	if err != nil {
		log.Fatalf("open image: %v", err)
	}
	bank, scores := ocr.NewClassifier().Classify(img)
	fmt.Printf("detected=%s\n", bank)
	for _, s := range scores {
		fmt.Printf("  %-8s matches=%d strong=%d detected=%v\n", s.Bank, s.Matches, s.Strong, s.Detected())
	}
	fmt.Println(strings.Repeat("-", 50))

	text, err := ocr.NewTesseract(*lang, logger.New()).Recognize(context.Background(), *path)
	if err != nil {
		log.Fatalf("ocr error: %v", err)
	}
	for i, line := range strings.Split(text, "\n") {
		fmt.Printf("%3d| %s\n", i, line)
	}
}
