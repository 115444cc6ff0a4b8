package fields

import (
	"regexp"
	"strings"

	"github.com/fahroediin/PDF-Analyzer/constants"
)

// Rule populates one field. Patterns are tried in order against the joined
// text and the first match wins: its first capture group (or the whole match
// when the pattern has no group), trimmed, becomes the value. Derive runs only
// when no pattern matched. Default fills a field that is still empty.
type Rule struct {
	Field    string
	Patterns []*regexp.Regexp
	Derive   func(text string) (string, bool)
	Clean    func(string) string
	Default  string
}

// FieldSpec is the declarative rule table of one document type. Rules are
// independent: a miss on one field never affects another.
type FieldSpec struct {
	DocType constants.DocType
	Rules   []Rule
}

// Fields lists the output schema in rule order.
func (s FieldSpec) Fields() []string {
	out := make([]string, len(s.Rules))
	for i, r := range s.Rules {
		out[i] = r.Field
	}
	return out
}

// Apply runs every rule against text and stores the results in rec.
func (s FieldSpec) Apply(text string, rec *Record) {
	for _, rule := range s.Rules {
		v, ok := firstMatch(text, rule.Patterns...)
		if !ok && rule.Derive != nil {
			v, ok = rule.Derive(text)
		}
		if ok && rule.Clean != nil {
			v = rule.Clean(v)
		}
		if v == "" {
			v = rule.Default
		}
		rec.setString(rule.Field, v)
	}
}

// firstMatch returns the trimmed value of the first pattern that matches.
func firstMatch(text string, patterns ...*regexp.Regexp) (string, bool) {
	for _, re := range patterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v := m[0]
		if len(m) > 1 {
			v = m[1]
		}
		if v = strings.TrimSpace(v); v != "" {
			return v, true
		}
	}
	return "", false
}

// ci compiles a case-insensitive pattern.
func ci(pattern string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + pattern)
}

func patterns(ps ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(ps))
	for i, p := range ps {
		out[i] = ci(p)
	}
	return out
}

// collapse joins a multi-line capture into a single line.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// digitsOnly drops separators such as '.', '-' and spaces.
func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
