package lines

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// CardLabels is the fixed, ordered label vocabulary printed on the national
// id card. It drives both the card reconstruction policy and the blob pass of
// the id card extractor.
var CardLabels = []string{
	"NIK",
	"Nama",
	"Tempat/TglLahir",
	"Jenis kelamin",
	"Gol.Darah",
	"Alamat",
	"RT/RW",
	"Kel/Desa",
	"Kecamatan",
	"Status Perkawinan",
	"Agama",
	"Pekerjaan",
	"Kewarganegaraan",
	"Berlaku Hingga",
}

// FusedCardLabels may be glued to their value with no break, as in
// "Status PerkawinanBELUM KAWIN".
var FusedCardLabels = []string{"Status Perkawinan", "Kewarganegaraan"}

// CardSplitter splits on CardLabels.
var CardSplitter = NewLabelSplitter(CardLabels, FusedCardLabels...)

// genericLabelWords start a new logical line when followed by ':' or '-'.
var genericLabelWords = []string{
	"Email", "Nama", "Alamat", "Kode", "NPWP", "NIK", "Tempat", "Tanggal",
	"Periode", "Total", "Denda", "Jatuh Tempo", "ID Pelanggan",
}

var reLabelStart = regexp.MustCompile(
	`(?i)^\s*(?:\d+\.|[A-Za-z0-9\s\-()]{1,60}[:：])|^(?:` +
		strings.Join(genericLabelWords, "|") + `)\s*[:：\-]`)

// IsLabelStart reports whether a line opens a new logical line under the
// generic policy: a numbered-list marker, a short lead-in ending in a colon,
// or a known field label followed by a colon or hyphen.
func IsLabelStart(line string) bool {
	return reLabelStart.MatchString(line)
}

// LabelSplitter cuts text at every occurrence of any label in its vocabulary.
// The label stays at the head of the segment it starts.
type LabelSplitter struct {
	labels []string
	any    *regexp.Regexp
	each   []*regexp.Regexp // anchored, longest label first
	order  []int            // index into labels for each entry of each
}

// NewLabelSplitter compiles a splitter. Matching ignores case, tolerates
// spacing around '/' and '.', and requires a word boundary on both sides of
// the label, so "NIKITA" is not "NIK". Labels listed in fused only need the
// leading boundary.
func NewLabelSplitter(labels []string, fused ...string) *LabelSplitter {
	glued := make(map[string]bool, len(fused))
	for _, f := range fused {
		glued[f] = true
	}
	order := make([]int, len(labels))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return len(labels[order[a]]) > len(labels[order[b]])
	})

	alts := make([]string, 0, len(labels))
	each := make([]*regexp.Regexp, 0, len(labels))
	for _, i := range order {
		p := labelPattern(labels[i])
		if !glued[labels[i]] {
			p += `\b`
		}
		alts = append(alts, p)
		each = append(each, regexp.MustCompile(`(?i)^`+p))
	}
	return &LabelSplitter{
		labels: append([]string(nil), labels...),
		any:    regexp.MustCompile(`(?i)\b(?:` + strings.Join(alts, "|") + `)`),
		each:   each,
		order:  order,
	}
}

func labelPattern(label string) string {
	var b strings.Builder
	prev := rune(0)
	for _, r := range label {
		switch {
		case r == ' ':
			b.WriteString(`\s*`)
		case r == '.':
			b.WriteString(`\s*\.?\s*`)
		case r == '/':
			b.WriteString(`\s*/\s*`)
		default:
			// "TglLahir" is often recognized as "Tgl Lahir".
			if unicode.IsUpper(r) && unicode.IsLower(prev) {
				b.WriteString(`\s*`)
			}
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
		prev = r
	}
	return b.String()
}

// Labels returns the vocabulary in its declared order.
func (s *LabelSplitter) Labels() []string {
	return append([]string(nil), s.labels...)
}

// Split cuts blob into trimmed, non-empty segments. Text before the first
// label is kept as its own segment when non-empty.
func (s *LabelSplitter) Split(blob string) []string {
	locs := s.any.FindAllStringIndex(blob, -1)
	starts := make([]int, 0, len(locs)+1)
	if len(locs) == 0 || locs[0][0] > 0 {
		starts = append(starts, 0)
	}
	for _, loc := range locs {
		starts = append(starts, loc[0])
	}

	var out []string
	for i, start := range starts {
		end := len(blob)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		if seg := strings.TrimSpace(blob[start:end]); seg != "" {
			out = append(out, seg)
		}
	}
	return out
}

// Cut reports which label opens segment and returns the rest of the segment
// with a leading colon removed. ok is false when segment does not start with
// a known label.
func (s *LabelSplitter) Cut(segment string) (label, value string, ok bool) {
	segment = strings.TrimSpace(segment)
	for i, re := range s.each {
		loc := re.FindStringIndex(segment)
		if loc == nil {
			continue
		}
		value = strings.TrimSpace(strings.TrimLeft(segment[loc[1]:], ":： "))
		return s.labels[s.order[i]], value, true
	}
	return "", segment, false
}

// Match reports whether line consists of exactly one label, optionally
// followed by a colon, and returns that label.
func (s *LabelSplitter) Match(line string) (string, bool) {
	label, value, ok := s.Cut(line)
	if !ok || value != "" {
		return "", false
	}
	return label, true
}
