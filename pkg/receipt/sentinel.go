package receipt

import (
	"strconv"
	"strings"
	"time"
)

// Placeholders substituted when a field cannot be read from the receipt.
const (
	SentinelReceiverName = "NAMA PENERIMA"
	SentinelAccount      = "NOMOR REKENING"
	SentinelTime         = "--:--"
)

var referencePrefixes = map[BankType]string{
	BankBCA:     "BCA",
	BankBRI:     "BRI",
	BankMandiri: "MDR",
	BankBNI:     "BNI",
	BankSeabank: "SEA",
	BankDana:    "DNA",
}

// SentinelSender is the sender placeholder, e.g. "PENGIRIM BCA".
func SentinelSender(b BankType) string {
	return "PENGIRIM " + string(b)
}

// SentinelDate formats now as an id-ID short date (d/m/yyyy).
func SentinelDate(now time.Time) string {
	return now.Format("2/1/2006")
}

// SentinelReference builds "<prefix><last 8 digits of unix millis>".
// Unknown tags use the tag itself as the prefix.
func SentinelReference(b BankType, now time.Time) string {
	prefix, ok := referencePrefixes[b]
	if !ok {
		prefix = string(b)
	}
	ms := strconv.FormatInt(now.UnixMilli(), 10)
	if len(ms) > 8 {
		ms = ms[len(ms)-8:]
	}
	return prefix + ms
}

// Sentinel returns the record used when nothing could be extracted.
func Sentinel(b BankType, paper PaperSize, now time.Time) TransferRecord {
	rec := TransferRecord{BankType: b, PaperSize: paper}
	rec.fillDefaults(now)
	return rec
}

// IsSentinelName reports whether name is one of the name placeholders.
func IsSentinelName(name string) bool {
	name = strings.TrimSpace(name)
	return name == "" || name == SentinelReceiverName || strings.HasPrefix(name, "PENGIRIM ")
}

// IsSentinelAccount reports whether acct carries no usable digits.
func IsSentinelAccount(acct string) bool {
	acct = strings.TrimSpace(acct)
	if acct == "" || acct == SentinelAccount {
		return true
	}
	return !strings.ContainsAny(acct, "0123456789")
}

// fillDefaults replaces every empty field with its placeholder.
func (r *TransferRecord) fillDefaults(now time.Time) {
	if r.BankType == "" {
		r.BankType = BankUnknown
	}
	if r.PaperSize == "" {
		r.PaperSize = Paper58mm
	}
	if r.Date == "" {
		r.Date = SentinelDate(now)
	}
	if r.Time == "" {
		r.Time = SentinelTime
	}
	if r.SenderName == "" {
		r.SenderName = SentinelSender(r.BankType)
	}
	if r.ReceiverName == "" {
		r.ReceiverName = SentinelReceiverName
	}
	if r.ReceiverBank == "" {
		r.ReceiverBank = string(r.BankType)
	}
	if r.ReceiverAccount == "" {
		r.ReceiverAccount = SentinelAccount
	}
	if r.ReferenceNumber == "" {
		r.ReferenceNumber = SentinelReference(r.BankType, now)
	}
	if r.Amount < 0 {
		r.Amount = -r.Amount
	}
	if r.AdminFee < 0 {
		r.AdminFee = -r.AdminFee
	}
}
