package lines

import "strings"

// Merge flattens engine A's pages then engine B's pages (engines are not
// interleaved) and keeps the first line seen for every normalized key.
func Merge(a, b PageLines) []string {
	all := a.Flatten()
	all = append(all, b.Flatten()...)
	return Dedup(all)
}

// Dedup keeps each line, trimmed and in original case, only the first time its
// NormalizedKey appears. Lines whose key is empty are dropped.
func Dedup(lines []string) []string {
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		key := NormalizedKey(line)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, strings.TrimSpace(line))
	}
	return out
}
