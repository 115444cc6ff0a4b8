package lines

import (
	"strings"

	"github.com/fahroediin/PDF-Analyzer/constants"
)

// Policy selects how physical lines are regrouped.
type Policy int

const (
	// PolicyGeneric joins continuation lines onto the preceding label line.
	PolicyGeneric Policy = iota
	// PolicyCard ignores line boundaries and resegments on card labels.
	PolicyCard
)

func (p Policy) String() string {
	if p == PolicyCard {
		return "card"
	}
	return "generic"
}

// PolicyFor returns the reconstruction policy of a document type.
func PolicyFor(dt constants.DocType) Policy {
	if dt == constants.KTP {
		return PolicyCard
	}
	return PolicyGeneric
}

// Reconstruct regroups merged lines into logical lines using the policy of dt.
func Reconstruct(merged []string, dt constants.DocType) []string {
	if PolicyFor(dt) == PolicyCard {
		return ReconstructCard(merged)
	}
	return ReconstructGeneric(merged)
}

// ReconstructGeneric keeps one buffer. A label-starting line flushes the
// buffer and starts a new one; any other line is appended to it with a single
// space. The result never has more lines than the input.
func ReconstructGeneric(merged []string) []string {
	out := make([]string, 0, len(merged))
	var buf strings.Builder
	flush := func() {
		if s := strings.TrimSpace(buf.String()); s != "" {
			out = append(out, s)
		}
		buf.Reset()
	}

	for _, line := range merged {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if IsLabelStart(line) {
			flush()
			buf.WriteString(line)
			continue
		}
		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(line)
	}
	flush()
	return out
}

// ReconstructCard joins everything into one blob and splits it at every card
// label, so labels and values interleaved on a visual row end up paired.
func ReconstructCard(merged []string) []string {
	return CardSplitter.Split(strings.Join(merged, " "))
}
