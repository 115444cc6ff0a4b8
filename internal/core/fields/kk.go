package fields

import (
	"regexp"
	"strings"

	"github.com/fahroediin/PDF-Analyzer/constants"
)

// KKSpec holds the scalar fields of the family card. The member table is read
// separately by KKExtractor. Headings such as "RT/RW" do not open a new
// logical line, so free-text values are cut at the next one.
var KKSpec = FieldSpec{
	DocType: constants.KK,
	Rules: []Rule{
		{Field: "no_kk", Patterns: patterns(
			`No\.?\s*KK\s*[:：]?\s*(\d{16})`,
			`Nomor\s+(?:Kartu\s+Keluarga|KK)\s*[:：]?\s*(\d{16})`,
			`KARTU\s+KELUARGA\s+No\.?\s*[:：]?\s*(\d{16})`,
		)},
		{Field: "kepala_keluarga", Patterns: patterns(
			`Nama\s+Kepala\s+Keluarga\s*[:：]?\s*(.+)`,
		)},
		{Field: "alamat", Patterns: patterns(`\bAlamat\s*[:：]?\s*(.+)`), Clean: cutAtKKHeading},
		{Field: "rt_rw", Patterns: patterns(`RT\s*/\s*RW\s*[:：]?\s*(\d{1,3}\s*/\s*\d{1,3})`)},
		{Field: "kel_desa", Patterns: patterns(`(?:Desa\s*/\s*Kelurahan|Kel\s*/\s*Desa)\s*[:：]?\s*(.+)`), Clean: cutAtKKHeading},
		{Field: "kecamatan", Patterns: patterns(`Kecamatan\s*[:：]?\s*(.+)`), Clean: cutAtKKHeading},
	},
}

const membersField = "anggota_keluarga"

var (
	reMemberTable = ci(`Nama(?:\s+Lengkap)?\s+NIK`)
	reMemberRow   = regexp.MustCompile(`([A-Z][A-Z .,'\-]{3,34})\s*(\d{16})`)
	reTrailingSex = regexp.MustCompile(`(?:\s+(?:LAKI\s*-\s*LAKI|PEREMPUAN))+$`)
	reKKHeading   = ci(`\s(?:RT\s*/\s*RW|Desa\s*/\s*Kelurahan|Kel\s*/\s*Desa|Kecamatan|Kabupaten|Kode\s+Pos|Provinsi|No\.?\s+Nama\s+Lengkap|Nama\s+Lengkap)\b`)
)

func cutAtKKHeading(s string) string {
	if loc := reKKHeading.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}
	return strings.TrimSpace(s)
}

// KKExtractor reads the family card: the scalar fields from KKSpec plus the
// member table as a list of name and national id pairs.
type KKExtractor struct{}

func (KKExtractor) DocType() constants.DocType { return constants.KK }

func (KKExtractor) Fields() []string { return append(KKSpec.Fields(), membersField) }

func (e KKExtractor) Extract(in Input) *Record {
	text := strings.Join(in.Logical, "\n")
	rec := newRecord(constants.KK, e.Fields())
	KKSpec.Apply(text, rec)

	members := ScanMembers(text)
	rec.setMembers(membersField, members)
	if rec.IsNull("kepala_keluarga") && len(members) > 0 {
		rec.setString("kepala_keluarga", members[0].Name)
	}
	return rec
}

// ScanMembers finds the member table header and reads every uppercase name
// directly followed by a 16 digit national id after it. Nothing is returned
// when the header is missing.
func ScanMembers(text string) []Member {
	loc := reMemberTable.FindStringIndex(text)
	if loc == nil {
		return nil
	}
	var out []Member
	for _, m := range reMemberRow.FindAllStringSubmatch(text[loc[1]:], -1) {
		name := strings.TrimSpace(reTrailingSex.ReplaceAllString(strings.TrimSpace(m[1]), ""))
		if name == "" {
			continue
		}
		out = append(out, Member{Name: collapse(name), NationalID: m[2]})
	}
	return out
}
