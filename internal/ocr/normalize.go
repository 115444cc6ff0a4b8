package ocr

import (
	"regexp"
	"strings"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reTabs       = regexp.MustCompile(`\t+`)
	reFormFeed   = regexp.MustCompile(`\f`)
	reMultiSpace = regexp.MustCompile(` {2,}`)
	reBoxNoise   = regexp.MustCompile(`(?m)^\s*[_\-=|]{3,}\s*$`)
)

// Normalize cleans raw recognizer text while keeping line breaks: CRLF and
// form feeds become newlines, tabs and space runs collapse, and ruler lines
// made of '_', '-', '=' or '|' disappear. Characters are never rewritten so
// id numbers survive untouched.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reFormFeed.ReplaceAllString(s, "\n")
	s = reTabs.ReplaceAllString(s, " ")
	s = reMultiSpace.ReplaceAllString(s, " ")
	s = reBoxNoise.ReplaceAllString(s, "")
	out := strings.Split(s, "\n")
	for i := range out {
		out[i] = strings.TrimRight(out[i], " ")
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// SplitLines returns the non-blank lines of normalized text.
func SplitLines(s string) []string {
	var out []string
	for _, ln := range strings.Split(Normalize(s), "\n") {
		if ln = strings.TrimSpace(ln); ln != "" {
			out = append(out, ln)
		}
	}
	return out
}
