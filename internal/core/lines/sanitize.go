package lines

import (
	"unicode"
	"unicode/utf8"
)

// MinLineLength is the shortest line kept by Sanitize, in characters.
const MinLineLength = 3

// SanitizeOptions tunes the noise filter.
//
// MinAlnum is the minimum count of letters or digits a line needs to be kept.
// Zero keeps every line that passes the length check.
type SanitizeOptions struct {
	MinLength int
	MinAlnum  int
}

// Sanitize cleans one recognizer's lines for one page with the default
// options: whitespace collapsed, empty and too-short lines dropped.
func Sanitize(raw []string) []string {
	return SanitizeWith(raw, SanitizeOptions{})
}

// SanitizeWith is Sanitize with explicit options. Order is preserved.
func SanitizeWith(raw []string, opts SanitizeOptions) []string {
	if opts.MinLength <= 0 {
		opts.MinLength = MinLineLength
	}
	out := make([]string, 0, len(raw))
	for _, line := range raw {
		line = CollapseSpaces(line)
		if line == "" {
			continue
		}
		if utf8.RuneCountInString(line) < opts.MinLength {
			continue
		}
		if opts.MinAlnum > 0 && countAlnum(line) < opts.MinAlnum {
			continue
		}
		out = append(out, line)
	}
	return out
}

func countAlnum(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			n++
		}
	}
	return n
}
