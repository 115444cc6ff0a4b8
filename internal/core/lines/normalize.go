package lines

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// CollapseSpaces replaces every run of whitespace with a single space and
// trims both ends.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizedKey is the equality key used for deduplication. It is never
// displayed. Compatibility forms (full-width digits, ligatures) fold to
// their plain equivalents before punctuation is stripped.
func NormalizedKey(line string) string {
	s := CollapseSpaces(norm.NFKC.String(line))
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, s)
	return strings.ToLower(strings.TrimSpace(s))
}
