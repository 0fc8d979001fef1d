package receipt

import (
	"regexp"
	"strings"
	"time"
)

var (
	danaReceiverRE = regexp.MustCompile(`(?i)^(penerima|tujuan|kirim\s+ke)\b`)
	danaSourceRE   = regexp.MustCompile(`(?i)^sumber\s+dana\b`)
	danaRefRE      = regexp.MustCompile(`(?i)^(id|no\.?)\s*transaksi\b`)

	// DANA ids are 37 digits printed over two lines.
	danaRef = DigitJoiner{MinAccepted: 30, Complete: 37}
)

// DANA "Kirim Uang" receipt. The sender is shown as a masked wallet phone
// number under Sumber Dana, and a bank receiver as "SEABANK - 0190".
func parseDana(lines []string, now time.Time) TransferRecord {
	rec := TransferRecord{BankType: BankDana}
	amounts := newAmountScanner()

	for i, line := range lines {
		if rec.Date == "" {
			if m := longDateRE.FindStringSubmatch(line); m != nil {
				rec.Date, rec.Time = m[1], strings.ReplaceAll(m[2], ".", ":")
			}
		}

		switch {
		case danaReceiverRE.MatchString(line):
			if name, ok := peekName(lines, i); ok && rec.ReceiverName == "" {
				rec.ReceiverName = DefaultNames.cleanName(name)
			}
			if bank, acct, ok := peekAccount(lines, i); ok && rec.ReceiverAccount == "" {
				rec.ReceiverAccount = danaReceiverMask.Rebuild(acct)
				if bank != "" {
					rec.ReceiverBank = bank
				}
			}
			continue
		case danaSourceRE.MatchString(line):
			if rec.SenderName == "" && i+1 < len(lines) {
				if acct, ok := trailingAccount(lines[i+1]); ok {
					rec.SenderName = danaSenderMask.Rebuild(acct)
				}
			}
			continue
		}

		amounts.scan(lines, i)

		if rest, ok := afterLabel(line, danaRefRE); ok && rec.ReferenceNumber == "" {
			rec.ReferenceNumber = labeledReference(danaRef, rest, lines, i)
		}
	}

	amounts.apply(&rec)
	rec.fillDefaults(now)
	return rec
}
