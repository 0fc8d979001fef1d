// Package receipt turns raw OCR text of Indonesian bank-transfer receipts into
// TransferRecord values. Every provider has its own grammar; all of them share
// the correction rule tables, the line reconstructor and the amount parser in
// this package. Extraction is pure and safe for concurrent use.
package receipt

import "strings"

// BankType tags the provider that issued a receipt. It selects the grammar.
type BankType string

const (
	BankBCA     BankType = "BCA"
	BankBRI     BankType = "BRI"
	BankMandiri BankType = "MANDIRI"
	BankBNI     BankType = "BNI"
	BankSeabank BankType = "SEABANK"
	BankDana    BankType = "DANA"
	BankUnknown BankType = "UNKNOWN"
)

// KnownBanks lists the providers that have a dedicated grammar.
var KnownBanks = []BankType{BankBCA, BankBRI, BankMandiri, BankBNI, BankSeabank, BankDana}

// ParseBankType normalizes a user supplied tag. Unrecognized tags are kept
// verbatim (upper-cased) so the generic grammar can stamp them into the
// placeholder reference; an empty tag becomes UNKNOWN.
func ParseBankType(s string) BankType {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return BankUnknown
	}
	return BankType(s)
}

// Known reports whether b has a dedicated grammar.
func (b BankType) Known() bool {
	for _, k := range KnownBanks {
		if b == k {
			return true
		}
	}
	return false
}

// PaperSize is the thermal paper width the record will be re-printed on.
type PaperSize string

const (
	Paper58mm PaperSize = "58mm"
	Paper80mm PaperSize = "80mm"
)

// ParsePaperSize accepts "58mm"/"80mm" (also without the unit) and falls back to 58mm.
func ParsePaperSize(s string) PaperSize {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "80mm", "80":
		return Paper80mm
	default:
		return Paper58mm
	}
}

// TransferRecord is the extracted, user-editable transfer.
// Every field is always populated; see sentinel.go for the placeholders.
type TransferRecord struct {
	Date            string    `json:"date"`
	Time            string    `json:"time"`
	SenderName      string    `json:"senderName"`
	ReceiverName    string    `json:"receiverName"`
	ReceiverBank    string    `json:"receiverBank"`
	ReceiverAccount string    `json:"receiverAccount"`
	Amount          int64     `json:"amount"`
	ReferenceNumber string    `json:"referenceNumber"`
	AdminFee        int64     `json:"adminFee"`
	PaperSize       PaperSize `json:"paperSize"`
	BankType        BankType  `json:"bankType"`
}
