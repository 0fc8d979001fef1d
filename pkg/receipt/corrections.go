package receipt

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CorrectionRule repairs one systematic OCR confusion in a name.
type CorrectionRule struct {
	Pattern     *regexp.Regexp
	Replacement string
	Rationale   string
}

// RuleTable is the ordered cleanup applied to candidate names. It never
// touches numeric fields.
type RuleTable struct {
	// Prefixes are provider annotations removed when the name starts with them.
	Prefixes []string
	Rules    []CorrectionRule
}

var (
	nonNameCharRE  = regexp.MustCompile(`[^\p{L} ]+`)
	shortPrefixRE  = regexp.MustCompile(`^[\p{L}0-9]{1,2}\s+(.+)$`)
	letterRE       = regexp.MustCompile(`\p{L}`)
	minNameRemains = 3
)

// SharedRules are the repairs every provider gets. None of them can match its
// own replacement text, which keeps Apply idempotent.
var SharedRules = []CorrectionRule{
	{regexp.MustCompile(`VV`), "W", "double V read for W"},
	{regexp.MustCompile(`\bOIAN\b`), "DIAH", "D read as O and H read as N"},
	{regexp.MustCompile(`\bRAMLADLAN\b`), "RAMADLAN", "stray L inserted"},
	{regexp.MustCompile(`\b(MUHAMMAD|MOHAMMAD|SITI)([A-Z]{3,})\b`), "$1 $2", "words merged across a line break"},
	{regexp.MustCompile(`\b(SETIAWA|KURNIAWA|GUNAWA|HERMAWA|IRAWA)\b`), "${1}N", "truncated -WAN suffix"},
	{regexp.MustCompile(`\bPRATAM\b`), "PRATAMA", "truncated -MA suffix"},
}

// DefaultNames is the table used by grammars without provider specifics.
var DefaultNames = RuleTable{Rules: SharedRules}

// danaForwardNames strips the annotation SeaBank prints on transfers into DANA wallets.
var danaForwardNames = RuleTable{Prefixes: []string{"WN DNID"}, Rules: SharedRules}

// Apply cleans raw and reports the rationale of every rule that fired.
// The steps repeat until the name stops changing, so a repair that leaves a
// new short leading token is handled in the same call.
func (t RuleTable) Apply(raw string) (string, []string) {
	var applied []string
	note := func(r string) {
		for _, a := range applied {
			if a == r {
				return
			}
		}
		applied = append(applied, r)
	}

	s := nonNameCharRE.ReplaceAllString(raw, "")
	s = strings.Join(strings.Fields(s), " ")
	s = cases.Upper(language.Indonesian).String(s)

	for prev := ""; s != prev; {
		prev = s
		s = t.stripPrefixes(s, note)
		s = stripShortPrefix(s, note)
		for _, r := range t.Rules {
			if !r.Pattern.MatchString(s) {
				continue
			}
			s = r.Pattern.ReplaceAllString(s, r.Replacement)
			note(r.Rationale)
		}
	}
	return s, applied
}

func (t RuleTable) stripPrefixes(s string, note func(string)) string {
	for stripped := true; stripped; {
		stripped = false
		for _, p := range t.Prefixes {
			if strings.HasPrefix(s, p+" ") {
				s = strings.TrimSpace(strings.TrimPrefix(s, p))
				note("removed " + p + " prefix")
				stripped = true
			}
		}
	}
	return s
}

// stripShortPrefix drops leading 1-2 character tokens while a name of at
// least three characters with a letter remains.
func stripShortPrefix(s string, note func(string)) string {
	for {
		m := shortPrefixRE.FindStringSubmatch(s)
		if m == nil {
			return s
		}
		rest := m[1]
		if len(rest) < minNameRemains || !letterRE.MatchString(rest) {
			return s
		}
		s = rest
		note("short OCR prefix")
	}
}

// cleanName applies t and returns "" when nothing usable remains.
func (t RuleTable) cleanName(raw string) string {
	s, _ := t.Apply(raw)
	if len(s) < minNameRemains {
		return ""
	}
	return s
}
