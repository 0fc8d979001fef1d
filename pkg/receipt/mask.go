package receipt

import (
	"regexp"
	"strings"
)

// MaskRule rebuilds a masked account number from the digits OCR kept when it
// dropped the mask characters. Either Template (a regexp replacement) or PadTo
// (left-pad with '*' to a fixed width) is used.
type MaskRule struct {
	Pattern   *regexp.Regexp
	Template  string
	PadTo     int
	Rationale string
}

// MaskTable is an explicitly enumerated list of truncation signatures for one
// provider/destination pair. The first matching rule wins.
type MaskTable []MaskRule

// Rebuild applies the first rule whose pattern matches the compacted raw
// value; otherwise raw is returned with bullet masks normalized.
func (t MaskTable) Rebuild(raw string) string {
	compact := strings.ReplaceAll(normalizeAccount(raw), " ", "")
	for _, r := range t {
		if !r.Pattern.MatchString(compact) {
			continue
		}
		if r.PadTo > 0 {
			if len(compact) >= r.PadTo {
				return compact
			}
			return strings.Repeat("*", r.PadTo-len(compact)) + compact
		}
		return r.Pattern.ReplaceAllString(compact, r.Template)
	}
	return normalizeAccount(raw)
}

var (
	// SeaBank → BRI prints the last digits of a BRI account behind 11 mask
	// characters.
	seabankBRIMask = MaskTable{
		{Pattern: regexp.MustCompile(`^\d+$`), Template: "***********$0", Rationale: "BRI account suffix without mask"},
	}
	// SeaBank → DANA prints 0812****337; OCR tends to drop the asterisks.
	seabankDanaMask = MaskTable{
		{Pattern: regexp.MustCompile(`^(\d{4})(\d{3})$`), Template: "$1****$2", Rationale: "DANA id 4+3 without mask"},
	}
	// DANA shows the sender phone as 0857****4165.
	danaSenderMask = MaskTable{
		{Pattern: regexp.MustCompile(`^(\d{4})(\d{4})$`), Template: "$1****$2", Rationale: "DANA phone 4+4 without mask"},
	}
	// DANA → bank shows ****0190.
	danaReceiverMask = MaskTable{
		{Pattern: regexp.MustCompile(`^\d{4}$`), PadTo: 8, Rationale: "bank account last four without mask"},
	}
)
