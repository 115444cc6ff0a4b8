package fields

import (
	"strings"

	"github.com/fahroediin/PDF-Analyzer/constants"
)

// Input carries both line views of one document. Most extractors read the
// reconstructed logical lines; the id card reads the raw merged sequence.
type Input struct {
	Merged  []string
	Logical []string
}

// Extractor turns one document's lines into a record of its type.
type Extractor interface {
	DocType() constants.DocType
	Fields() []string
	Extract(in Input) *Record
}

// For returns the extractor of dt. Unknown types get the catch-all extractor.
func For(dt constants.DocType) Extractor {
	switch dt {
	case constants.NIB:
		return specExtractor{NIBSpec}
	case constants.SIUP:
		return specExtractor{SIUPSpec}
	case constants.NPWP:
		return specExtractor{NPWPSpec}
	case constants.AktaKelahiran:
		return specExtractor{AktaSpec}
	case constants.TagihanListrik:
		return specExtractor{TagihanSpec}
	case constants.KTP:
		return KTPExtractor{CrossCheck: true}
	case constants.KK:
		return KKExtractor{}
	default:
		return defaultExtractor{}
	}
}

// Extract is shorthand for For(dt).Extract(in).
func Extract(dt constants.DocType, in Input) *Record {
	return For(dt).Extract(in)
}

// JoinLogical is the text blob pattern rules run against.
func JoinLogical(logical []string) string {
	return strings.Join(logical, "\n")
}

type specExtractor struct {
	spec FieldSpec
}

func (e specExtractor) DocType() constants.DocType { return e.spec.DocType }

func (e specExtractor) Fields() []string { return e.spec.Fields() }

func (e specExtractor) Extract(in Input) *Record {
	rec := newRecord(e.spec.DocType, e.spec.Fields())
	e.spec.Apply(JoinLogical(in.Logical), rec)
	return rec
}

// defaultExtractor returns the whole text under a single "content" field.
type defaultExtractor struct{}

func (defaultExtractor) DocType() constants.DocType { return constants.Default }

func (defaultExtractor) Fields() []string { return []string{"content"} }

func (e defaultExtractor) Extract(in Input) *Record {
	rec := newRecord(constants.Default, e.Fields())
	rec.setString("content", JoinLogical(in.Logical))
	return rec
}
