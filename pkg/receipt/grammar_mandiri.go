package receipt

import (
	"regexp"
	"strings"
	"time"
)

var (
	mandiriReceiverRE = regexp.MustCompile(`(?i)^(penerima|tujuan|ke)\b`)
	mandiriSenderRE   = regexp.MustCompile(`(?i)^(sumber\s+rekening|dari|pengirim)\b`)
	mandiriRefRE      = regexp.MustCompile(`(?i)^(no\.?\s*)?(referensi|ref|journal)\b`)

	mandiriRef = DigitJoiner{MinAccepted: 16}
)

// Livin' by Mandiri receipt. The receiver block prints the bank and account
// on one line ("Mandiri - 1370012345678") and the reference usually wraps.
func parseMandiri(lines []string, now time.Time) TransferRecord {
	rec := TransferRecord{BankType: BankMandiri}
	amounts := newAmountScanner()

	for i, line := range lines {
		if rec.Date == "" {
			if m := dashDateRE.FindStringSubmatch(line); m != nil {
				rec.Date, rec.Time = m[1], m[2]
			} else if m := longDateRE.FindStringSubmatch(line); m != nil {
				rec.Date, rec.Time = m[1], strings.ReplaceAll(m[2], ".", ":")
			}
		}

		switch {
		case mandiriReceiverRE.MatchString(line):
			if rec.ReceiverName == "" {
				if name, ok := peekName(lines, i); ok {
					rec.ReceiverName = DefaultNames.cleanName(name)
				}
			}
			if rec.ReceiverAccount == "" {
				if bank, acct, ok := peekAccount(lines, i); ok {
					rec.ReceiverAccount = acct
					if bank != "" {
						rec.ReceiverBank = bank
					}
				}
			}
			continue
		case mandiriSenderRE.MatchString(line):
			if rec.SenderName == "" {
				if name, ok := peekName(lines, i); ok {
					rec.SenderName = DefaultNames.cleanName(name)
				}
			}
			continue
		}

		amounts.scan(lines, i)

		if rest, ok := afterLabel(line, mandiriRefRE); ok && rec.ReferenceNumber == "" {
			rec.ReferenceNumber = labeledReference(mandiriRef, rest, lines, i)
		}
	}

	amounts.apply(&rec)
	rec.fillDefaults(now)
	return rec
}

// labeledReference reads a digit reference that either follows its label on
// the same line or starts on the next one, joining wrapped fragments. An
// alphanumeric value on the label line is taken as printed.
func labeledReference(j DigitJoiner, rest string, lines []string, i int) string {
	rest = strings.ReplaceAll(rest, " ", "")
	if rest == "" {
		ref, _ := j.Join(lines, i+1)
		return ref
	}
	if !isAllDigits(rest) {
		return rest
	}
	if ref, ok := j.joinFrom(rest, lines, i+1); ok {
		return ref
	}
	return ""
}
