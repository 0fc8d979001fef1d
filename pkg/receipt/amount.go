package receipt

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// Rp / Rp. as a word of its own, then either a grouped number (130,000 / 1.250.000) or a plain
	// digit run, then an optional two digit cents suffix.
	amountRE = regexp.MustCompile(`(?i)\brp\.?\s*([0-9]{1,3}(?:[.,][0-9]{3})+|[0-9]+)(?:[.,]([0-9]{2}))?`)

	totalLabelRE = regexp.MustCompile(`(?i)\b(total(\s+(bayar|transaksi|pembayaran|transfer))?|jumlah\s+transfer)\b`)
	feeLabelRE   = regexp.MustCompile(`(?i)\bbiaya(\s+(admin|transfer|transaksi|layanan))?\b`)
)

// ParseAmount reads the first Rp amount in s, in whole rupiah.
// "Rp 130,000.00" -> 130000, "Rp300.000" -> 300000, "Rp 1.250.000,00" -> 1250000.
func ParseAmount(s string) (int64, bool) {
	m := amountRE.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	digits := onlyDigits(m[1])
	if digits == "" {
		return 0, false
	}
	if m[2] != "" {
		digits += "." + m[2]
	}
	d, err := decimal.NewFromString(digits)
	if err != nil {
		return 0, false
	}
	return d.Abs().IntPart(), true
}

// amountScanner collects the transfer amount and admin fee over one forward
// scan. A line under a total label (Total, Total Bayar, Jumlah Transfer...)
// beats a bare Rp line; otherwise the first amount seen is kept.
type amountScanner struct {
	amount   int64
	found    bool
	labeled  bool
	fee      int64
	feeFound bool
	consumed int
}

func newAmountScanner() *amountScanner {
	return &amountScanner{consumed: -1}
}

func (s *amountScanner) scan(lines []string, i int) {
	if i == s.consumed {
		return
	}
	line := lines[i]
	switch {
	case feeLabelRE.MatchString(line):
		if v, ok := s.sameOrNext(lines, i); ok && !s.feeFound {
			s.fee, s.feeFound = v, true
		}
	case totalLabelRE.MatchString(line):
		if v, ok := s.sameOrNext(lines, i); ok {
			s.offer(v, true)
		}
	default:
		if v, ok := ParseAmount(line); ok && v > 0 {
			s.offer(v, false)
		}
	}
}

// sameOrNext parses the amount on the label line, or on the line right after
// it when the label stands alone. The next line is then marked consumed.
func (s *amountScanner) sameOrNext(lines []string, i int) (int64, bool) {
	if v, ok := ParseAmount(lines[i]); ok {
		return v, true
	}
	if i+1 < len(lines) {
		if v, ok := ParseAmount(lines[i+1]); ok {
			s.consumed = i + 1
			return v, true
		}
	}
	return 0, false
}

func (s *amountScanner) offer(v int64, labeled bool) {
	switch {
	case !s.found:
		s.amount, s.found, s.labeled = v, true, labeled
	case labeled && !s.labeled:
		s.amount, s.labeled = v, true
	}
}

func (s *amountScanner) apply(rec *TransferRecord) {
	if s.found {
		rec.Amount = s.amount
	}
	if s.feeFound {
		rec.AdminFee = s.fee
	}
}

func onlyDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
