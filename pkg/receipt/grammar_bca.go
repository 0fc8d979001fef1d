package receipt

import (
	"regexp"
	"strings"
	"time"
)

// m-BCA thermal receipt:
//
//	25/07 07:29:32
//	Ke 1670903504
//	BUDI SANTOSO
//	Rp 130,000.00
//	Ref 9503120250725072931956672CAE83FCB72B
var (
	bcaDateRE = regexp.MustCompile(`\b(\d{2}/\d{2})\s+(\d{2}:\d{2}:\d{2})\b`)
	bcaToRE   = regexp.MustCompile(`(?i)^ke\s*:?\s+`)
	bcaRefRE  = regexp.MustCompile(`(?i)^ref\b\s*:?`)

	bcaRef = DigitJoiner{MinAccepted: 16}
)

func parseBCA(lines []string, now time.Time) TransferRecord {
	rec := TransferRecord{BankType: BankBCA, ReceiverBank: string(BankBCA)}
	amounts := newAmountScanner()

	for i, line := range lines {
		if rec.Date == "" {
			if m := bcaDateRE.FindStringSubmatch(line); m != nil {
				rec.Date = m[1] + "/" + now.Format("2006")
				rec.Time = m[2]
			}
		}

		if rest, ok := afterLabel(line, bcaToRE); ok && rec.ReceiverAccount == "" {
			if looksLikeAccount(rest) {
				rec.ReceiverAccount = strings.ReplaceAll(normalizeAccount(rest), " ", "")
			}
			if rec.ReceiverName == "" {
				if name, ok := peekName(lines, i); ok {
					rec.ReceiverName = DefaultNames.cleanName(name)
				}
			}
		}

		amounts.scan(lines, i)

		if rest, ok := afterLabel(line, bcaRefRE); ok && rec.ReferenceNumber == "" {
			rec.ReferenceNumber = bcaReference(rest, lines, i)
		}
	}

	if rec.ReceiverName == "" {
		if name, ok := fallbackName(lines); ok {
			rec.ReceiverName = DefaultNames.cleanName(name)
		}
	}
	amounts.apply(&rec)
	rec.fillDefaults(now)
	return rec
}

// bcaReference keeps the alphanumeric reference as printed; a short all-digit
// head is completed from the wrapped digit lines that follow.
func bcaReference(rest string, lines []string, i int) string {
	rest = strings.ReplaceAll(rest, " ", "")
	if rest == "" {
		if ref, ok := bcaRef.Join(lines, i+1); ok {
			return ref
		}
		return ""
	}
	if len(rest) < bcaRef.MinAccepted && isAllDigits(rest) {
		if ref, ok := bcaRef.joinFrom(rest, lines, i+1); ok {
			return ref
		}
	}
	return rest
}
