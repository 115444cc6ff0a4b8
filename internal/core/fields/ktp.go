package fields

import (
	"strings"

	"github.com/fahroediin/PDF-Analyzer/constants"
	"github.com/fahroediin/PDF-Analyzer/internal/core/lines"
)

// ktpFields parallels lines.CardLabels index by index.
var ktpFields = []string{
	"nik",
	"nama",
	"tempat_tanggal_lahir",
	"jenis_kelamin",
	"gol_darah",
	"alamat",
	"rt_rw",
	"kel_desa",
	"kecamatan",
	"status_perkawinan",
	"agama",
	"pekerjaan",
	"kewarganegaraan",
	"berlaku_hingga",
}

// fusedLabels are labels the recognizers commonly glue to their value.
var fusedLabels = func() map[string]bool {
	m := make(map[string]bool, len(lines.FusedCardLabels))
	for _, l := range lines.FusedCardLabels {
		m[l] = true
	}
	return m
}()

var ktpFieldByLabel = func() map[string]string {
	if len(ktpFields) != len(lines.CardLabels) {
		panic("fields: ktp field table out of sync with card labels")
	}
	m := make(map[string]string, len(ktpFields))
	for i, label := range lines.CardLabels {
		m[label] = ktpFields[i]
	}
	return m
}()

// KTPExtractor reads the national id card. The primary pass walks the raw
// merged lines pairing each label line with the line after it. With
// CrossCheck set, a second pass over the label-split blob fills fields the
// first pass left null.
type KTPExtractor struct {
	CrossCheck bool
}

func (KTPExtractor) DocType() constants.DocType { return constants.KTP }

func (KTPExtractor) Fields() []string { return append([]string(nil), ktpFields...) }

func (e KTPExtractor) Extract(in Input) *Record {
	rec := ScanCardLines(in.Merged)
	if e.CrossCheck {
		blob := CardBlob(in.Merged)
		for _, k := range ktpFields {
			if !rec.IsNull(k) {
				continue
			}
			if v, ok := blob.Get(k); ok {
				rec.setString(k, v)
			}
		}
	}
	return rec
}

// ScanCardLines is the sequential label/value pass over merged id card lines.
func ScanCardLines(merged []string) *Record {
	rec := newRecord(constants.KTP, ktpFields)
	for i := 0; i < len(merged); i++ {
		label, rest, ok := lines.CardSplitter.Cut(merged[i])
		if !ok {
			continue
		}
		field := ktpFieldByLabel[label]
		if rest != "" {
			// "Status PerkawinanBELUM KAWIN"
			if fusedLabels[label] {
				rec.setString(field, rest)
			}
			continue
		}
		if i+1 >= len(merged) {
			break
		}
		next := strings.TrimSpace(merged[i+1])
		if _, _, isLabel := lines.CardSplitter.Cut(next); isLabel {
			continue
		}
		if v := strings.TrimSpace(strings.TrimLeft(next, ":： ")); v != "" {
			rec.setString(field, v)
			i++
		}
	}
	return rec
}

// CardBlob joins merged into one blob, splits it on the card labels and reads
// each segment as label plus value. The first value seen for a label wins.
func CardBlob(merged []string) *Record {
	rec := newRecord(constants.KTP, ktpFields)
	for _, seg := range lines.ReconstructCard(merged) {
		label, value, ok := lines.CardSplitter.Cut(seg)
		if !ok || value == "" {
			continue
		}
		if field := ktpFieldByLabel[label]; rec.IsNull(field) {
			rec.setString(field, value)
		}
	}
	return rec
}
