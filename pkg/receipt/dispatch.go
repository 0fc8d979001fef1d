package receipt

import "time"

// Grammar extracts a record from trimmed, non-empty OCR lines. It must return
// a fully populated record even when nothing matches.
type Grammar func(lines []string, now time.Time) TransferRecord

var grammars = map[BankType]Grammar{
	BankBCA:     parseBCA,
	BankBRI:     parseBRI,
	BankMandiri: parseMandiri,
	BankBNI:     parseBNI,
	BankSeabank: parseSeabank,
	BankDana:    parseDana,
}

// Dispatch returns the grammar registered for b, or the generic grammar.
func Dispatch(b BankType) Grammar {
	if g, ok := grammars[b]; ok {
		return g
	}
	return genericGrammar(b)
}

// genericGrammar stamps the tag into an otherwise placeholder record.
func genericGrammar(b BankType) Grammar {
	return func(_ []string, now time.Time) TransferRecord {
		return Sentinel(b, Paper58mm, now)
	}
}
