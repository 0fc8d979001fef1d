package receipt

import (
	"regexp"
	"strings"
	"time"
)

// BRImo receipt. Sender and receiver blocks share the same shape, so the
// grammar tracks which block it is in:
//
//	Sumber Dana / ANDI PRATAMA / BANK BRI / 0123 **** **** 456
//	Tujuan      / SITI AMINAH  / BANK BRI / 6603 0103 5831539
var (
	briSenderRE   = regexp.MustCompile(`(?i)^sumber\s+dana\b`)
	briReceiverRE = regexp.MustCompile(`(?i)^(tujuan|penerima)\b`)
	briRefRE      = regexp.MustCompile(`(?i)^no\.?\s*ref(erensi)?\b`)
	briBankRE     = regexp.MustCompile(`(?i)^bank\s+([a-z]+)$`)
	briAccountRE  = regexp.MustCompile(`\b(\d{4})\s+(\d{4})\s+(\d{7})\b`)
	briPlainRE    = regexp.MustCompile(`^(\d{4})(\d{4})(\d{7})$`)

	briRef = DigitJoiner{MinAccepted: 12}
)

type briBlock int

const (
	briHeader briBlock = iota
	briSender
	briReceiver
)

func parseBRI(lines []string, now time.Time) TransferRecord {
	rec := TransferRecord{BankType: BankBRI}
	amounts := newAmountScanner()
	block := briHeader

	for i, line := range lines {
		switch {
		case briSenderRE.MatchString(line):
			block = briSender
			if rec.SenderName == "" {
				if name, ok := peekName(lines, i); ok {
					rec.SenderName = DefaultNames.cleanName(name)
				}
			}
			continue
		case briReceiverRE.MatchString(line):
			block = briReceiver
			if rec.ReceiverName == "" {
				if name, ok := peekName(lines, i); ok {
					rec.ReceiverName = DefaultNames.cleanName(name)
				}
			}
			continue
		}

		if rec.Date == "" {
			if m := longDateRE.FindStringSubmatch(line); m != nil {
				rec.Date, rec.Time = m[1], strings.ReplaceAll(m[2], ".", ":")
			}
		}

		if block == briReceiver {
			if m := briBankRE.FindStringSubmatch(line); m != nil && rec.ReceiverBank == "" {
				rec.ReceiverBank = strings.ToUpper(m[1])
			}
		}
		if block != briSender && rec.ReceiverAccount == "" {
			// Unspaced 15 digit runs are only trusted inside the receiver block;
			// in the header they are more likely a reference.
			if acct, ok := briAccount(line, block == briReceiver); ok {
				rec.ReceiverAccount = acct
			}
		}

		amounts.scan(lines, i)

		if rest, ok := afterLabel(line, briRefRE); ok && rec.ReferenceNumber == "" {
			rec.ReferenceNumber = labeledReference(briRef, rest, lines, i)
		}
	}

	amounts.apply(&rec)
	rec.fillDefaults(now)
	return rec
}

// briAccount accepts "6603 0103 5831539" or the same 15 digits unspaced, and
// always returns the spaced form.
func briAccount(line string, plain bool) (string, bool) {
	if m := briAccountRE.FindStringSubmatch(line); m != nil {
		return m[1] + " " + m[2] + " " + m[3], true
	}
	if !plain {
		return "", false
	}
	if m := briPlainRE.FindStringSubmatch(strings.ReplaceAll(line, " ", "")); m != nil {
		return m[1] + " " + m[2] + " " + m[3], true
	}
	return "", false
}
