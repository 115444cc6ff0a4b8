package lines

import (
	"maps"
	"slices"
	"strconv"
	"strings"
)

// PageLines maps a 0-based page index to that page's lines in detection order.
type PageLines map[int][]string

// Flatten concatenates all pages in ascending page order.
func (p PageLines) Flatten() []string {
	var out []string
	for _, page := range slices.Sorted(maps.Keys(p)) {
		out = append(out, p[page]...)
	}
	return out
}

// Lines counts lines across all pages.
func (p PageLines) Lines() int {
	n := 0
	for _, l := range p {
		n += len(l)
	}
	return n
}

// FragmentsFromAny decodes one page of recognizer output. Each element may be
// a bare string or an object exposing a string "text" attribute; anything
// else is skipped. A value that is not a list yields nil.
func FragmentsFromAny(v any) []string {
	switch items := v.(type) {
	case []string:
		out := make([]string, 0, len(items))
		for _, s := range items {
			out = append(out, strings.TrimSpace(s))
		}
		return out
	case []any:
		out := make([]string, 0, len(items))
		for _, item := range items {
			switch f := item.(type) {
			case string:
				out = append(out, strings.TrimSpace(f))
			case map[string]any:
				if text, ok := f["text"].(string); ok {
					out = append(out, strings.TrimSpace(text))
				}
			case interface{ GetText() string }:
				out = append(out, strings.TrimSpace(f.GetText()))
			}
		}
		return out
	default:
		return nil
	}
}

// PageLinesFromAny decodes a whole recognizer result. It accepts an object
// keyed by page index ("0", "1", ...) or a list of pages. Keys that are not
// non-negative integers and pages that are not lists are treated as no data.
func PageLinesFromAny(v any) PageLines {
	out := PageLines{}
	switch pages := v.(type) {
	case map[string]any:
		for key, page := range pages {
			idx, err := strconv.Atoi(strings.TrimSpace(key))
			if err != nil || idx < 0 {
				continue
			}
			if frags := FragmentsFromAny(page); frags != nil {
				out[idx] = frags
			}
		}
	case []any:
		for idx, page := range pages {
			if frags := FragmentsFromAny(page); frags != nil {
				out[idx] = frags
			}
		}
	}
	return out
}
