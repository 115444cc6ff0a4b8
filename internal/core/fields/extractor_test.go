package fields

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/fahroediin/PDF-Analyzer/constants"
	"github.com/fahroediin/PDF-Analyzer/internal/core/lines"
)

func logical(ls ...string) Input {
	return Input{Merged: ls, Logical: ls}
}

func assertFields(t *testing.T, rec *Record, want map[string]string) {
	t.Helper()
	for _, k := range rec.Keys() {
		w, expected := want[k]
		got, ok := rec.Get(k)
		switch {
		case expected && got != w:
			t.Errorf("%s = %q, want %q", k, got, w)
		case !expected && ok:
			t.Errorf("%s = %q, want null", k, got)
		}
	}
}

func TestForCoversEveryDocType(t *testing.T) {
	for _, dt := range constants.DocTypes() {
		ex := For(dt)
		if ex.DocType() != dt {
			t.Errorf("For(%s).DocType() = %s", dt, ex.DocType())
		}
		if len(ex.Fields()) == 0 {
			t.Errorf("For(%s) has no fields", dt)
		}
	}
	if For("UNKNOWN").DocType() != constants.Default {
		t.Errorf("unknown type should use the catch-all extractor")
	}
}

func TestEmptyInputYieldsNullRecord(t *testing.T) {
	for _, dt := range constants.DocTypes() {
		rec := Extract(dt, Input{})
		want := map[string]string{}
		if dt == constants.TagihanListrik {
			want["denda"] = "0"
		}
		t.Run(string(dt), func(t *testing.T) {
			assertFields(t, rec, want)
		})
	}
}

func TestNIB(t *testing.T) {
	rec := Extract(constants.NIB, logical(
		"NOMOR INDUK BERUSAHA: 1234567890123",
		"Nama Pelaku Usaha : PT MAJU JAYA",
		"Alamat Kantor : Jalan Merdeka No. 1",
		"Email : info@majujaya.co.id",
		"No. Telepon : 02112345678",
		"Skala Usaha : Usaha Mikro",
		"Status Penanaman Modal : PMDN",
		"KBLI : 47111",
		"Diterbitkan di Jakarta, tanggal: 12 Januari 2023",
	))
	assertFields(t, rec, map[string]string{
		"nib":                   "1234567890123",
		"kode_kbli":             "47111",
		"nama_pelaku_usaha":     "PT MAJU JAYA",
		"alamat":                "Jalan Merdeka No. 1",
		"email":                 "info@majujaya.co.id",
		"nomor_telepon":         "02112345678",
		"skala_usaha":           "Usaha Mikro",
		"jenis_penanaman_modal": "PMDN",
		"tanggal_terbit":        "12 Januari 2023",
	})
}

func TestNIBFallbacks(t *testing.T) {
	rec := Extract(constants.NIB, logical(
		"NIB 1234567890123",
		"NPWP : 01.234.567.8-901.000",
		"Perizinan untuk Usaha Kecil dengan modal PMA",
		"Lampiran",
		"1. 56101 Restoran",
		"Jalan Asia Afrika No. 8, Bandung",
		"Dicetak tanggal 3 Maret 2024",
	))
	assertFields(t, rec, map[string]string{
		"nib":                   "1234567890123",
		"npwp":                  "012345678901000",
		"kode_kbli":             "56101",
		"alamat":                "Jalan Asia Afrika No. 8, Bandung",
		"skala_usaha":           "Usaha Kecil",
		"jenis_penanaman_modal": "PMA",
		"tanggal_terbit":        "3 Maret 2024",
	})
}

func TestSIUPMultiLineAddresses(t *testing.T) {
	base := []string{
		"Nomor Induk Berusaha : 9120001234567",
		"Nama Perusahaan : CV SUMBER REJEKI",
		"Nama Pemilik : ANDI",
		"Alamat Pemilik : Jl. Kenanga No. 5",
		"Kelurahan Sukamaju",
		"Kode KBLI : 47111",
		"Barang/Jasa Dagangan Utama : Sembako",
		"Lokasi Usaha : Pasar Baru Blok A",
		"Kios 12",
	}
	want := map[string]string{
		"nib":            "9120001234567",
		"kode_kbli":      "47111",
		"nama_usaha":     "CV SUMBER REJEKI",
		"nama_pemilik":   "ANDI",
		"alamat_pemilik": "Jl. Kenanga No. 5 Kelurahan Sukamaju",
		"jenis_usaha":    "Sembako",
		"alamat_usaha":   "Pasar Baru Blok A Kios 12",
	}

	t.Run("ends at heading", func(t *testing.T) {
		in := append(append([]string(nil), base...), "Dikeluarkan tanggal : 1 Februari 2024")
		w := map[string]string{"tanggal_terbit": "1 Februari 2024"}
		for k, v := range want {
			w[k] = v
		}
		assertFields(t, Extract(constants.SIUP, logical(in...)), w)
	})
	t.Run("ends at text end", func(t *testing.T) {
		assertFields(t, Extract(constants.SIUP, logical(base...)), want)
	})
}

func TestNPWP(t *testing.T) {
	rec := Extract(constants.NPWP, logical(
		"NPWP : 01.234.567.8-901.000",
		"Nama : PT ABC",
		"Alamat : Jl. Sudirman 10",
	))
	assertFields(t, rec, map[string]string{
		"npwp":            "01.234.567.8-901.000",
		"npwp_normalized": "012345678901000",
		"nama":            "PT ABC",
		"alamat":          "Jl. Sudirman 10",
	})
}

func TestAktaKelahiran(t *testing.T) {
	rec := Extract(constants.AktaKelahiran, logical(
		"Nama Lengkap : RINA PUTRI",
		"Tempat Lahir : Surabaya",
		"Tanggal Lahir : 5 Mei 2010",
		"Nama Ayah : AGUS",
		"Nama Ibu : SRI",
		"Tanggal Dikeluarkan : 10 Mei 2010",
	))
	assertFields(t, rec, map[string]string{
		"nama":                "RINA PUTRI",
		"tempat_lahir":        "Surabaya",
		"tanggal_lahir":       "5 Mei 2010",
		"nama_ayah":           "AGUS",
		"nama_ibu":            "SRI",
		"tanggal_diterbitkan": "10 Mei 2010",
	})
}

func TestTagihanListrik(t *testing.T) {
	in := []string{
		"ID Pelanggan : 512345678901",
		"Nama : BUDI",
		"Total Tagihan : Rp 250.000",
		"Jatuh Tempo : 20 Juni 2024",
	}
	assertFields(t, Extract(constants.TagihanListrik, logical(in...)), map[string]string{
		"id_pelanggan":   "512345678901",
		"nama_pelanggan": "BUDI",
		"total_tagihan":  "250.000",
		"denda":          "0",
		"jatuh_tempo":    "20 Juni 2024",
	})

	in = append(in, "Denda : Rp 5.000")
	if got, _ := Extract(constants.TagihanListrik, logical(in...)).Get("denda"); got != "5.000" {
		t.Errorf("denda = %q", got)
	}
}

func TestTagihanListrikHyphenSeparators(t *testing.T) {
	merged := []string{
		"ID Pelanggan - 512345678901",
		"Nama - BUDI SANTOSO",
		"Alamat - JL MAWAR NO 1",
		"Periode - MEI 2024",
		"Denda - Rp 5.000",
		"Total Tagihan - Rp 250.000",
		"Jatuh Tempo - 20 Mei 2024",
	}
	logicalLines := lines.ReconstructGeneric(merged)
	rec := Extract(constants.TagihanListrik, Input{Merged: merged, Logical: logicalLines})
	assertFields(t, rec, map[string]string{
		"id_pelanggan":   "512345678901",
		"nama_pelanggan": "BUDI SANTOSO",
		"alamat":         "JL MAWAR NO 1",
		"periode":        "MEI 2024",
		"total_tagihan":  "250.000",
		"denda":          "5.000",
		"jatuh_tempo":    "20 Mei 2024",
	})
}

func TestNIBKodeKBLIChain(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want string
	}{
		{"lampiran wins", []string{"Kode KBLI : 47111", "Lampiran", "1. 56101 Restoran"}, "56101"},
		{"kode kbli label", []string{"Kode Klasifikasi KBLI : 47111"}, "47111"},
		{"bare kbli", []string{"KBLI 62019"}, "62019"},
		{"numbered entry", []string{"Daftar usaha", "No. 47111 Perdagangan eceran"}, "47111"},
		{"no match", []string{"No. Telepon : 02112345678", "No. 1234567890"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := Extract(constants.NIB, logical(tt.in...)).Get("kode_kbli")
			if got != tt.want {
				t.Errorf("kode_kbli = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDefaultContent(t *testing.T) {
	rec := Extract(constants.Default, logical("first line", "second line"))
	if got, _ := rec.Get("content"); got != "first line\nsecond line" {
		t.Errorf("content = %q", got)
	}
	if keys := rec.Keys(); len(keys) != 1 || keys[0] != "content" {
		t.Errorf("keys = %v", keys)
	}
}

func TestFieldIndependence(t *testing.T) {
	// A broken NIB line must not affect the email rule.
	rec := Extract(constants.NIB, logical("NOMOR INDUK BERUSAHA: 12AB", "Email: a@b.co"))
	if !rec.IsNull("nib") {
		t.Errorf("nib should be null")
	}
	if got, _ := rec.Get("email"); got != "a@b.co" {
		t.Errorf("email = %q", got)
	}
}

func TestRecordJSONKeepsSchemaOrder(t *testing.T) {
	rec := Extract(constants.NPWP, logical("Nama : PT ABC"))
	raw, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"npwp":null,"npwp_normalized":null,"nama":"PT ABC","alamat":null}`
	if string(raw) != want {
		t.Errorf("json = %s, want %s", raw, want)
	}
	if !strings.HasPrefix(string(raw), `{"npwp"`) {
		t.Errorf("first key should be npwp")
	}
}
