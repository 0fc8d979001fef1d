package ocr

import "strings"

// snippet returns a shortened version of text for logging.
func snippet(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " | ")
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}

// normalizeLines collapses whitespace inside each line and drops empty lines.
// Line breaks are kept; the grammars scan line by line.
func normalizeLines(t string) string {
	t = strings.ReplaceAll(t, "\r\n", "\n")
	var out []string
	for _, l := range strings.Split(t, "\n") {
		l = strings.Join(strings.Fields(l), " ")
		if l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
