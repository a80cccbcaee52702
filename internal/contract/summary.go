package contract

import (
	"strings"
	"unicode/utf8"
)

// SummaryLimit bounds the length in bytes of a body summary.
const SummaryLimit = 120

// Summarize renders a body for diagnostics: runs of whitespace collapse to a
// single space and the result is cut to SummaryLimit bytes on a rune
// boundary, with "..." appended when anything was dropped.
func Summarize(body []byte) string {
	s := strings.Join(strings.Fields(string(body)), " ")
	if len(s) <= SummaryLimit {
		return s
	}

	cut := SummaryLimit - len("...")
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
