package ocr

import (
	"regexp"
	"strings"
)

var (
	currencyRE = regexp.MustCompile(`(?i)\b(rp|idr)\.?\s*[0-9]`)
	keywordRE  = regexp.MustCompile(`(?i)\b(transfer|berhasil|penerima|tujuan|referensi|ref|transaksi|total|jumlah|nominal|rekening)\b`)
)

// scoreText rates how much of a receipt an OCR pass recovered. Lines and
// digits count for a little; currency amounts and receipt keywords count for
// more since they are what the grammars anchor on.
func scoreText(text string) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	lines := strings.Count(text, "\n") + 1
	digits := 0
	for _, r := range text {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits > 40 {
		digits = 40
	}
	score := lines + digits/2
	score += 10 * len(currencyRE.FindAllStringIndex(text, -1))
	score += 5 * len(keywordRE.FindAllStringIndex(text, -1))
	return score
}
