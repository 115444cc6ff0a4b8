package fields

import (
	"regexp"

	"github.com/fahroediin/PDF-Analyzer/constants"
)

const dateValue = `(\d{1,2}\s+[A-Za-z]+\s+\d{4})`

var reJalan = regexp.MustCompile(`Jalan\s+[A-Za-z0-9 ,./\-]+`)

var reScale = ci(`Usaha\s+(Mikro|Kecil|Menengah|Besar)\b`)

// NIBSpec covers the business registration number document.
var NIBSpec = FieldSpec{
	DocType: constants.NIB,
	Rules: []Rule{
		{Field: "nib", Patterns: patterns(
			`NOMOR\s+INDUK\s+BERUSAHA\s*[:：]?\s*(\d{13})`,
			`\bNIB\s*[:：]?\s*(\d{13})`,
		)},
		{Field: "npwp", Patterns: patterns(
			`\bNPWP\s*[:：]?\s*(\d[\d.\- ]{13,22}\d)`,
		), Clean: digitsOnly},
		{Field: "kode_kbli", Patterns: patterns(
			`Lampiran[\s\S]*?(\d{5})`,
			`Kode[^:：\n]*KBLI[^:：\n]*[:：]?\s*(\d{5})`,
			`\bKBLI\s*[:：]?\s*(\d{5})`,
			`\bNo\.\s*(\d{5})\b`,
		)},
		{Field: "nama_pelaku_usaha", Patterns: patterns(
			`Nama\s+Pelaku\s+Usaha\s*[:：]?\s*(.+)`,
		)},
		{Field: "alamat", Patterns: patterns(
			`Alamat\s+Kantor\s*[:：]?\s*(.+)`,
			`Alamat\s*[:：]?\s*(.+)`,
		), Derive: func(text string) (string, bool) {
			return firstMatch(text, reJalan)
		}},
		{Field: "alamat_usaha", Patterns: patterns(
			`Alamat\s+(?:Lokasi\s+|Tempat\s+)?Usaha\s*[:：]?\s*(.+)`,
			`Lokasi\s+Usaha\s*[:：]?\s*(.+)`,
			`Lampiran[\s\S]*?Alamat\s*[:：]?\s*(.+)`,
		)},
		{Field: "email", Patterns: patterns(
			`Email\s*[:：]?\s*([A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,})`,
		)},
		{Field: "nomor_telepon", Patterns: patterns(
			`No\.?\s*Telepon\s*[:：]?\s*(\d{6,15})`,
			`Nomor\s+Telepon\s+Seluler\s*[:：]?\s*(\d{6,15})`,
			`Nomor\s+Telepon\s*[:：]?\s*(\d{6,15})`,
		)},
		{Field: "skala_usaha", Patterns: patterns(
			`Skala\s+Usaha\s*[:：]?\s*(Usaha\s+(?:Mikro|Kecil|Menengah|Besar))`,
		), Derive: func(text string) (string, bool) {
			m := reScale.FindStringSubmatch(text)
			if m == nil {
				return "", false
			}
			return "Usaha " + m[1], true
		}, Clean: collapse},
		{Field: "jenis_penanaman_modal", Patterns: patterns(
			`Status\s+Penanaman\s+Modal\s*[:：]?\s*(\w+)`,
			`\b(PMDN|PMA)\b`,
		)},
		{Field: "tanggal_terbit", Patterns: patterns(
			`Diterbitkan\s+di\s+.+?,\s*tanggal\s*[:：]?\s*`+dateValue,
			`Dicetak\s+tanggal\s*[:：]?\s*`+dateValue,
		)},
	},
}

// SIUPSpec covers the trading business license. Addresses may span several
// logical lines and end at the next known section heading.
var SIUPSpec = FieldSpec{
	DocType: constants.SIUP,
	Rules: []Rule{
		{Field: "nib", Patterns: patterns(
			`Nomor\s+Induk\s+Berusaha\s*[:：]?\s*(\d{13,})`,
			`\bNIB\s*[:：]?\s*(\d{13,})`,
		)},
		{Field: "kode_kbli", Patterns: patterns(
			`Kode\s*KBLI\s*[:：]?\s*(\d{5})`,
		)},
		{Field: "nama_usaha", Patterns: patterns(
			`Nama\s+Perusahaan\s*[:：]?\s*(.+)`,
			`Nama\s+Usaha\s*[:：]?\s*(.+)`,
		)},
		{Field: "nama_pemilik", Patterns: patterns(
			`Nama\s+Pemilik\s*[:：]?\s*(.+)`,
		)},
		{Field: "alamat_pemilik", Patterns: patterns(
			`Alamat\s+Pemilik\s*[:：]?\s*([\s\S]+?)\n(?:Nama|Kode|Barang|Lokasi|Izin|Dikeluarkan)`,
			`Alamat\s+Pemilik\s*[:：]?\s*(.+)`,
		), Clean: collapse},
		{Field: "jenis_usaha", Patterns: patterns(
			`Barang\s*/\s*Jasa\s+Dagangan\s+Utama\s*[:：]?\s*(.+)`,
		)},
		{Field: "alamat_usaha", Patterns: patterns(
			`Lokasi\s+Usaha\s*[:：]?\s*([\s\S]+?)(?:\n(?:Izin|Dikeluarkan)|\z)`,
		), Clean: collapse},
		{Field: "tanggal_terbit", Patterns: patterns(
			`Dikeluarkan\s+tanggal\s*[:：]?\s*(.+)`,
		)},
	},
}

// NPWPSpec covers the taxpayer registration card.
var NPWPSpec = FieldSpec{
	DocType: constants.NPWP,
	Rules: []Rule{
		{Field: "npwp", Patterns: patterns(
			`\bNPWP\s*[:：]?\s*(\d[\d.\-]*\d)`,
		)},
		{Field: "npwp_normalized", Patterns: patterns(
			`\bNPWP\s*[:：]?\s*(\d[\d.\-]*\d)`,
		), Clean: digitsOnly},
		{Field: "nama", Patterns: patterns(
			`\bNama\s*[:：]?\s*(.+)`,
		)},
		{Field: "alamat", Patterns: patterns(
			`\bAlamat\s*[:：]?\s*(.+)`,
		)},
	},
}

// AktaSpec covers the birth certificate.
var AktaSpec = FieldSpec{
	DocType: constants.AktaKelahiran,
	Rules: []Rule{
		{Field: "nama", Patterns: patterns(`Nama\s+Lengkap\s*[:：]?\s*(.+)`)},
		{Field: "tempat_lahir", Patterns: patterns(`Tempat\s+Lahir\s*[:：]?\s*(.+)`)},
		{Field: "tanggal_lahir", Patterns: patterns(`Tanggal\s+Lahir\s*[:：]?\s*(.+)`)},
		{Field: "nama_ayah", Patterns: patterns(`Nama\s+Ayah\s*[:：]?\s*(.+)`)},
		{Field: "nama_ibu", Patterns: patterns(`Nama\s+Ibu\s*[:：]?\s*(.+)`)},
		{Field: "tanggal_diterbitkan", Patterns: patterns(`Tanggal\s+Dikeluarkan\s*[:：]?\s*(.+)`)},
	},
}

// TagihanSpec covers the electricity bill. A bill without a penalty line
// reports denda as "0".
var TagihanSpec = FieldSpec{
	DocType: constants.TagihanListrik,
	Rules: []Rule{
		{Field: "id_pelanggan", Patterns: patterns(`ID\s*Pelanggan\s*[:：\-]?\s*(\d+)`)},
		{Field: "nama_pelanggan", Patterns: patterns(`\bNama\s*(?:Pelanggan\s*)?[:：\-]?\s*(.+)`)},
		{Field: "alamat", Patterns: patterns(`\bAlamat\s*[:：\-]?\s*(.+)`)},
		{Field: "periode", Patterns: patterns(`Periode\s*[:：\-]?\s*(.+)`)},
		{Field: "total_tagihan", Patterns: patterns(`Total\s+Tagihan\s*[:：\-]?\s*Rp\.?\s*([\d.,]+)`)},
		{Field: "denda", Patterns: patterns(`Denda\s*[:：\-]?\s*Rp\.?\s*([\d.,]+)`), Default: "0"},
		{Field: "jatuh_tempo", Patterns: patterns(`Jatuh\s+Tempo\s*[:：\-]?\s*(.+)`)},
	},
}
