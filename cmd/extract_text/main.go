package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log"
	"os"

	"buktitf/pkg/accountmap"
	"buktitf/pkg/logger"
	"buktitf/pkg/receipt"
)

// Runs a grammar over OCR text read from a file (or stdin) and prints the
// record as JSON. Handy for checking a grammar against a dumped receipt.
func main() {
	file := flag.String("file", "", "text file (default stdin)")
	bank := flag.String("bank", "", "provider tag (BCA, BRI, MANDIRI, BNI, SEABANK, DANA)")
	paper := flag.String("paper", "58mm", "paper size")
	seed := flag.String("seed", "", "account mapping JSON (default embedded seed)")
	flag.Parse()

	var in io.Reader = os.Stdin
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			log.Fatalf("open: %v", err)
		}
		defer f.Close()
		in = f
	}
	text, err := io.ReadAll(in)
	if err != nil {
		log.Fatalf("read: %v", err)
	}

	var src accountmap.Source
	if *seed != "" {
		src = accountmap.FileSource(*seed)
	}
	l := logger.New()
	store := accountmap.New(src, accountmap.WithLogger(l))
	ex := receipt.NewExtractor(store, receipt.WithLogger(l))
	rec := ex.Extract(context.Background(), string(text), receipt.ParseBankType(*bank), receipt.ParsePaperSize(*paper))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		log.Fatal(err)
	}
}
