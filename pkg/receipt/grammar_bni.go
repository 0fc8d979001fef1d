package receipt

import (
	"regexp"
	"strings"
	"time"
)

// BNI mobile prints every field as a label line followed by its value.
var (
	bniSenderRE   = regexp.MustCompile(`(?i)^nama\s+pengirim\b`)
	bniReceiverRE = regexp.MustCompile(`(?i)^nama\s+penerima\b`)
	bniBankRE     = regexp.MustCompile(`(?i)^bank\s+(penerima|tujuan)\b`)
	bniAccountRE  = regexp.MustCompile(`(?i)^(no\.?\s*)?rekening\s+(penerima|tujuan)\b`)
	bniRefRE      = regexp.MustCompile(`(?i)^(no\.?\s*)?(referensi|ref|trace)\b`)

	bniRef = DigitJoiner{MinAccepted: 16}
)

func parseBNI(lines []string, now time.Time) TransferRecord {
	rec := TransferRecord{BankType: BankBNI}
	amounts := newAmountScanner()

	for i, line := range lines {
		if rec.Date == "" {
			if m := slashDateRE.FindStringSubmatch(line); m != nil {
				rec.Date, rec.Time = m[1], m[2]
			} else if m := longDateRE.FindStringSubmatch(line); m != nil {
				rec.Date, rec.Time = m[1], strings.ReplaceAll(m[2], ".", ":")
			}
		}

		switch {
		case bniSenderRE.MatchString(line):
			if name, ok := peekName(lines, i); ok && rec.SenderName == "" {
				rec.SenderName = DefaultNames.cleanName(name)
			}
			continue
		case bniReceiverRE.MatchString(line):
			if name, ok := peekName(lines, i); ok && rec.ReceiverName == "" {
				rec.ReceiverName = DefaultNames.cleanName(name)
			}
			continue
		case bniBankRE.MatchString(line):
			if rec.ReceiverBank == "" {
				rec.ReceiverBank = bniBankValue(line, lines, i)
			}
			continue
		case bniAccountRE.MatchString(line):
			if rec.ReceiverAccount == "" {
				if rest, _ := afterLabel(line, bniAccountRE); looksLikeAccount(rest) {
					rec.ReceiverAccount = normalizeAccount(rest)
				} else if _, acct, ok := peekAccount(lines, i); ok {
					rec.ReceiverAccount = acct
				}
			}
			continue
		}

		amounts.scan(lines, i)

		if rest, ok := afterLabel(line, bniRefRE); ok && rec.ReferenceNumber == "" {
			rec.ReferenceNumber = labeledReference(bniRef, rest, lines, i)
		}
	}

	amounts.apply(&rec)
	rec.fillDefaults(now)
	return rec
}

// bniBankValue reads the bank name on the label line or the line after it.
func bniBankValue(line string, lines []string, i int) string {
	if rest, _ := afterLabel(line, bniBankRE); rest != "" && !hasDigit(rest) {
		return strings.ToUpper(rest)
	}
	if i+1 < len(lines) && !hasDigit(lines[i+1]) {
		return strings.ToUpper(lines[i+1])
	}
	return ""
}
