package receipt

import (
	"regexp"
	"strings"
)

// peekWindow is how many lines after a label are searched for its value.
const peekWindow = 3

var (
	nameShapeRE = regexp.MustCompile(`^[A-Z][A-Z ]{2,}[A-Z]$`)

	// "24 Juli 2025, 10:15:32", "24 Jul 2025, 11:20", "21 Jul 2025 • 10:12"
	longDateRE = regexp.MustCompile(`(?i)\b(\d{1,2}\s+(?:jan|feb|mar|apr|mei|may|jun|jul|agu|agt|aug|sep|okt|oct|nov|des|dec)[a-z]*\.?\s+\d{4})(?:\W{0,4}(\d{2}[:.]\d{2}(?:[:.]\d{2})?))?`)
	// "25/07/2025 09:41:07"
	slashDateRE = regexp.MustCompile(`\b(\d{2}/\d{2}/\d{4})(?:\s+(\d{2}:\d{2}(?::\d{2})?))?`)
	// "25-07-2025 14:02:11"
	dashDateRE = regexp.MustCompile(`\b(\d{2}-\d{2}-\d{4})(?:\s+(\d{2}:\d{2}(?::\d{2})?))?`)

	// "Mandiri - 1370012345678", "SEABANK - ****0190", "Bank BRI: 6603..."
	bankAccountRE = regexp.MustCompile(`(?i)^(?:bank\s+)?([a-z][a-z ]*?)\s*[-:]\s*([0-9*•][0-9*• ]{2,})$`)
	trailingAcctRE = regexp.MustCompile(`([0-9*•][0-9*• ]*[0-9])\s*$`)
)

// nonFieldWords are words that disqualify a line from being a name: provider
// names, section headers and currency markers.
var nonFieldWords = map[string]struct{}{
	"BANK": {}, "BCA": {}, "BRI": {}, "BNI": {}, "MANDIRI": {}, "SEABANK": {}, "DANA": {},
	"TRANSFER": {}, "BERHASIL": {}, "SUKSES": {}, "TRANSAKSI": {}, "STATUS": {},
	"TOTAL": {}, "NOMINAL": {}, "JUMLAH": {}, "BIAYA": {}, "ADMIN": {},
	"REF": {}, "REFERENSI": {}, "RP": {}, "IDR": {}, "SALDO": {},
	"TUJUAN": {}, "PENERIMA": {}, "PENGIRIM": {}, "SUMBER": {}, "REKENING": {},
	"KETERANGAN": {}, "CATATAN": {}, "RINCIAN": {}, "DETAIL": {}, "WIB": {},
	"WAKTU": {}, "TANGGAL": {}, "KIRIM": {}, "UANG": {}, "MOBILE": {}, "BANKING": {},
}

// splitLines trims every OCR line and drops the empty ones.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	var out []string
	for _, l := range strings.Split(text, "\n") {
		l = strings.Join(strings.Fields(l), " ")
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

// looksLikeName accepts upper-case letters and spaces that are not a header
// or provider keyword.
func looksLikeName(s string) bool {
	if !nameShapeRE.MatchString(s) {
		return false
	}
	for _, w := range strings.Fields(s) {
		if _, bad := nonFieldWords[w]; bad {
			return false
		}
	}
	return true
}

// looksLikeAccount accepts digits, mask characters and spaces with at least three digits.
func looksLikeAccount(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) < 4 {
		return false
	}
	digits := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '*' || r == '•' || r == ' ' || r == '-':
		default:
			return false
		}
	}
	return digits >= 3
}

// normalizeAccount maps bullet masks to asterisks and trims.
func normalizeAccount(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "•", "*"))
}

// peekName returns the first name-shaped line among the peekWindow lines after i.
func peekName(lines []string, i int) (string, bool) {
	for j := i + 1; j < len(lines) && j <= i+peekWindow; j++ {
		if looksLikeName(lines[j]) {
			return lines[j], true
		}
	}
	return "", false
}

// peekAccount looks at the lines after i for either "<bank> - <account>" or a
// bare account number.
func peekAccount(lines []string, i int) (bank, account string, ok bool) {
	for j := i + 1; j < len(lines) && j <= i+peekWindow; j++ {
		if b, a, found := splitBankAccount(lines[j]); found {
			return b, a, true
		}
		if looksLikeAccount(lines[j]) {
			return "", normalizeAccount(lines[j]), true
		}
	}
	return "", "", false
}

// splitBankAccount parses "Mandiri - 1370012345678" style lines.
func splitBankAccount(line string) (bank, account string, ok bool) {
	m := bankAccountRE.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	return strings.ToUpper(strings.TrimSpace(m[1])), normalizeAccount(m[2]), true
}

// trailingAccount returns the digit/mask run at the end of a line.
func trailingAccount(line string) (string, bool) {
	m := trailingAcctRE.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return normalizeAccount(m[1]), true
}

// fallbackName is the secondary pass: the first name-shaped line anywhere.
func fallbackName(lines []string) (string, bool) {
	for _, l := range lines {
		if looksLikeName(l) {
			return l, true
		}
	}
	return "", false
}

// afterLabel returns what follows a label on the same line, without a leading colon.
func afterLabel(line string, label *regexp.Regexp) (string, bool) {
	loc := label.FindStringIndex(line)
	if loc == nil {
		return "", false
	}
	rest := strings.TrimSpace(line[loc[1]:])
	rest = strings.TrimSpace(strings.TrimLeft(rest, ":"))
	return rest, true
}

func hasDigit(s string) bool {
	return strings.ContainsAny(s, "0123456789")
}
