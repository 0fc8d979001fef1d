package receipt

import "regexp"

// maxIdentifierDigits bounds a reconstructed identifier.
const maxIdentifierDigits = 40

var digitFragmentRE = regexp.MustCompile(`^[0-9]{1,25}$`)

// DigitJoiner reassembles a numeric identifier that the receipt printer
// wrapped over several lines.
type DigitJoiner struct {
	// MinAccepted is the shortest result accepted. It keeps a date or an
	// amount on the following line from being glued onto a short id.
	MinAccepted int
	// Complete, when non-zero, is a length at which a single line is taken as
	// the whole identifier without looking further.
	Complete int
	// Max caps the result; zero means 40.
	Max int
}

// Join concatenates pure-digit lines starting at lines[start] and stops at the
// first line that is not a digit fragment, at the end of input, or when the
// next fragment would push the result past Max.
func (j DigitJoiner) Join(lines []string, start int) (string, bool) {
	if start < 0 || start >= len(lines) {
		return "", false
	}
	max := j.Max
	if max <= 0 {
		max = maxIdentifierDigits
	}
	head := lines[start]
	if !isAllDigits(head) {
		return "", false
	}
	if j.Complete > 0 && len(head) == j.Complete {
		return head, true
	}
	out := head
	if len(out) > max {
		out = out[:max]
	}
	for i := start + 1; i < len(lines); i++ {
		frag := lines[i]
		if !digitFragmentRE.MatchString(frag) {
			break
		}
		if len(out)+len(frag) > max {
			break
		}
		out += frag
	}
	if len(out) < j.MinAccepted {
		return "", false
	}
	return out, true
}

// ReconstructDigits is Join with only a minimum length.
func ReconstructDigits(lines []string, start, minAccepted int) (string, bool) {
	return DigitJoiner{MinAccepted: minAccepted}.Join(lines, start)
}

// joinFrom reconstructs an identifier whose head sits on the label line itself.
func (j DigitJoiner) joinFrom(head string, lines []string, next int) (string, bool) {
	frags := make([]string, 0, 1+len(lines)-next)
	frags = append(frags, head)
	if next < len(lines) {
		frags = append(frags, lines[next:]...)
	}
	return j.Join(frags, 0)
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
