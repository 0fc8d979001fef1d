package receipt

import (
	"regexp"
	"strings"
	"time"
)

// SeaBank prints labels and values on the same line:
//
//	Dari Gani Muhammad Ramladlan
//	Ke Yulia Ningsih
//	BANK BRI: ttiitiinkg 8532
//	No. Referensi 20250724SSPIIDJA95426210
//
// Transfers into a DANA wallet carry a "Dana:" destination line instead of the
// bank line and are parsed by parseSeabankDana.
var (
	seaFromRE     = regexp.MustCompile(`(?i)^dari\s*:?\s+`)
	seaToRE       = regexp.MustCompile(`(?i)^ke\s*:?\s+`)
	seaBankLineRE = regexp.MustCompile(`(?i)^bank\s+([a-z]+)\s*:\s*(.*)$`)
	seaDanaRE     = regexp.MustCompile(`(?i)^dana\s*:`)
	seaRefRE      = regexp.MustCompile(`(?i)^no\.?\s*referensi\b`)
	seaTrxRE      = regexp.MustCompile(`(?i)^no\.?\s*transaksi\b`)

	seaRef     = DigitJoiner{MinAccepted: 16}
	seaDanaRef = DigitJoiner{MinAccepted: 20}
)

// seaDestMasks picks the mask table by destination bank.
var seaDestMasks = map[string]MaskTable{
	string(BankBRI): seabankBRIMask,
}

func parseSeabank(lines []string, now time.Time) TransferRecord {
	for _, l := range lines {
		if seaDanaRE.MatchString(l) {
			return parseSeabankDana(lines, now)
		}
	}

	rec := TransferRecord{BankType: BankSeabank}
	amounts := newAmountScanner()
	var referensi, transaksi string

	for i, line := range lines {
		if rec.Date == "" {
			if m := longDateRE.FindStringSubmatch(line); m != nil {
				rec.Date, rec.Time = m[1], strings.ReplaceAll(m[2], ".", ":")
			}
		}

		if rest, ok := afterLabel(line, seaFromRE); ok && rec.SenderName == "" {
			rec.SenderName = DefaultNames.cleanName(rest)
			continue
		}
		if rest, ok := afterLabel(line, seaToRE); ok && rec.ReceiverName == "" {
			rec.ReceiverName = DefaultNames.cleanName(rest)
			continue
		}
		if m := seaBankLineRE.FindStringSubmatch(line); m != nil && rec.ReceiverAccount == "" {
			bank := strings.ToUpper(m[1])
			rec.ReceiverBank = bank
			if acct, ok := trailingAccount(m[2]); ok {
				if table, ok := seaDestMasks[bank]; ok {
					acct = table.Rebuild(acct)
				}
				rec.ReceiverAccount = acct
			}
			continue
		}

		amounts.scan(lines, i)

		// The bank-side reference is preferred over SeaBank's own transaction id.
		if rest, ok := afterLabel(line, seaRefRE); ok && referensi == "" {
			referensi = labeledReference(seaRef, rest, lines, i)
		}
		if rest, ok := afterLabel(line, seaTrxRE); ok && transaksi == "" {
			transaksi = labeledReference(seaRef, rest, lines, i)
		}
	}

	rec.ReferenceNumber = referensi
	if rec.ReferenceNumber == "" {
		rec.ReferenceNumber = transaksi
	}
	amounts.apply(&rec)
	rec.fillDefaults(now)
	return rec
}

// parseSeabankDana handles SeaBank transfers into a DANA wallet:
//
//	Ke WN DNID Oian Permata
//	Dana: 0812337
//	No. Transaksi 2025072143504461
//	9659
func parseSeabankDana(lines []string, now time.Time) TransferRecord {
	rec := TransferRecord{BankType: BankSeabank, ReceiverBank: string(BankDana)}
	amounts := newAmountScanner()

	for i, line := range lines {
		if rec.Date == "" {
			if m := longDateRE.FindStringSubmatch(line); m != nil {
				rec.Date, rec.Time = m[1], strings.ReplaceAll(m[2], ".", ":")
			}
		}

		if rest, ok := afterLabel(line, seaFromRE); ok && rec.SenderName == "" {
			rec.SenderName = DefaultNames.cleanName(rest)
			continue
		}
		if rest, ok := afterLabel(line, seaToRE); ok && rec.ReceiverName == "" {
			rec.ReceiverName = danaForwardNames.cleanName(rest)
			continue
		}
		if rest, ok := afterLabel(line, seaDanaRE); ok && rec.ReceiverAccount == "" {
			if acct, ok := trailingAccount(rest); ok {
				rec.ReceiverAccount = seabankDanaMask.Rebuild(acct)
			}
			continue
		}

		amounts.scan(lines, i)

		if rest, ok := afterLabel(line, seaRefRE); ok && rec.ReferenceNumber == "" {
			rec.ReferenceNumber = labeledReference(seaDanaRef, rest, lines, i)
		}
		if rest, ok := afterLabel(line, seaTrxRE); ok && rec.ReferenceNumber == "" {
			rec.ReferenceNumber = labeledReference(seaDanaRef, rest, lines, i)
		}
	}

	amounts.apply(&rec)
	rec.fillDefaults(now)
	return rec
}
