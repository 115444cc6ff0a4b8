package constants

import (
	"strings"
)

// DocType selects the reconstruction policy and the field extractor.
type DocType string

const (
	NIB            DocType = "NIB"             // business license (Nomor Induk Berusaha)
	SIUP           DocType = "SIUP"            // business permit
	NPWP           DocType = "NPWP"            // tax id
	KTP            DocType = "KTP"             // national id card
	KK             DocType = "KK"              // family card
	AktaKelahiran  DocType = "AKTA_KELAHIRAN"  // birth certificate
	TagihanListrik DocType = "TAGIHAN_LISTRIK" // utility bill
	Default        DocType = "DEFAULT"
)

// DefaultSelector is used when a request carries no type at all.
const DefaultSelector = NIB

var allDocTypes = []DocType{
	NIB,
	SIUP,
	NPWP,
	KTP,
	KK,
	AktaKelahiran,
	TagihanListrik,
	Default,
}

// DocTypes returns every known document type, DEFAULT last.
func DocTypes() []DocType {
	out := make([]DocType, len(allDocTypes))
	copy(out, allDocTypes)
	return out
}

func DocTypesAsStrings() []string {
	result := make([]string, len(allDocTypes))
	for i, dt := range allDocTypes {
		result[i] = string(dt)
	}
	return result
}

// ParseDocType resolves a selector case-insensitively. The bool reports
// whether the selector named a known type; unknown selectors map to Default.
func ParseDocType(input string) (DocType, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(input))
	if normalized == "" {
		return Default, false
	}

	synonyms := map[string]DocType{
		"AKTA":    AktaKelahiran,
		"LISTRIK": TagihanListrik,
		"PLN":     TagihanListrik,
		"E-KTP":   KTP,
		"EKTP":    KTP,
	}
	if dt, ok := synonyms[normalized]; ok {
		return dt, true
	}

	for _, dt := range allDocTypes {
		if normalized == string(dt) {
			return dt, true
		}
	}
	return Default, false
}

// SelectDocType applies the request-level default: an absent selector means
// DefaultSelector, an unknown one means Default.
func SelectDocType(input string) DocType {
	if strings.TrimSpace(input) == "" {
		return DefaultSelector
	}
	dt, _ := ParseDocType(input)
	return dt
}
