package fields

import (
	"reflect"
	"testing"

	"github.com/fahroediin/PDF-Analyzer/constants"
)

func TestKKMembers(t *testing.T) {
	rec := Extract(constants.KK, logical(
		"KARTU KELUARGA No. 3273010101010001",
		"Nama Kepala Keluarga : BUDI SANTOSO",
		"Alamat : JL MAWAR 1",
		"Nama Lengkap NIK Jenis Kelamin",
		"1 BUDI SANTOSO 3273010101800001 LAKI-LAKI",
		"2 SITI AMINAH 3273010101850002 PEREMPUAN",
	))

	assertFields(t, rec, map[string]string{
		"no_kk":           "3273010101010001",
		"kepala_keluarga": "BUDI SANTOSO",
		"alamat":          "JL MAWAR 1",
	})
	want := []Member{
		{Name: "BUDI SANTOSO", NationalID: "3273010101800001"},
		{Name: "SITI AMINAH", NationalID: "3273010101850002"},
	}
	if got := rec.Members("anggota_keluarga"); !reflect.DeepEqual(got, want) {
		t.Errorf("members = %+v, want %+v", got, want)
	}
}

func TestScanMembersStripsGender(t *testing.T) {
	got := ScanMembers("Nama Lengkap NIK\nBUDI SANTOSO LAKI-LAKI 3273010101800001")
	want := []Member{{Name: "BUDI SANTOSO", NationalID: "3273010101800001"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("members = %+v, want %+v", got, want)
	}
}

func TestScanMembersNeedsHeader(t *testing.T) {
	if got := ScanMembers("BUDI SANTOSO 3273010101800001"); got != nil {
		t.Errorf("members without header = %+v", got)
	}
}

func TestKKHeadOfHouseholdFallback(t *testing.T) {
	rec := Extract(constants.KK, logical(
		"Nama Lengkap NIK",
		"AHMAD DAHLAN 3273010101700003",
	))
	if got, _ := rec.Get("kepala_keluarga"); got != "AHMAD DAHLAN" {
		t.Errorf("kepala_keluarga = %q", got)
	}
	if !rec.IsNull("no_kk") {
		t.Errorf("no_kk should be null")
	}
}
