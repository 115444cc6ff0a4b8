package lines

import (
	"reflect"
	"testing"

	"github.com/fahroediin/PDF-Analyzer/constants"
)

func TestIsLabelStart(t *testing.T) {
	tests := map[string]bool{
		"1. Nama Pelaku Usaha": true,
		"12.":                  true,
		"Alamat Kantor : Jl.":  true,
		"Email: a@b.co":        true,
		"Jatuh Tempo - 20 Mei": true,
		"ID Pelanggan-5123":    true,
		"KOTA BANDUNG":         false,
		"Rp 120.000":           false,
		"Jl. Mawar No. 1":      false,
	}
	for line, want := range tests {
		if got := IsLabelStart(line); got != want {
			t.Errorf("IsLabelStart(%q) = %v, want %v", line, got, want)
		}
	}
}

func TestReconstructGeneric(t *testing.T) {
	in := []string{
		"PEMERINTAH REPUBLIK INDONESIA",
		"Nama Pelaku Usaha : PT MAJU",
		"JAYA ABADI",
		"Alamat Kantor : Jl. Mawar No. 1",
		"Kel. Sukamaju, Kec. Cibeunying",
		"2. Email: info@maju.co.id",
	}
	got := ReconstructGeneric(in)
	want := []string{
		"PEMERINTAH REPUBLIK INDONESIA",
		"Nama Pelaku Usaha : PT MAJU JAYA ABADI",
		"Alamat Kantor : Jl. Mawar No. 1 Kel. Sukamaju, Kec. Cibeunying",
		"2. Email: info@maju.co.id",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ReconstructGeneric() =\n%q\nwant\n%q", got, want)
	}
	if len(got) > len(in) {
		t.Errorf("reconstruction grew the line count: %d > %d", len(got), len(in))
	}
}

func TestReconstructGenericNeverGrows(t *testing.T) {
	inputs := [][]string{
		nil,
		{"a: 1", "b: 2", "c: 3"},
		{"x", "y", "z"},
		{"1.", "", "  ", "tail"},
	}
	for _, in := range inputs {
		if got := ReconstructGeneric(in); len(got) > len(in) {
			t.Errorf("ReconstructGeneric(%q) has %d lines", in, len(got))
		}
	}
}

func TestReconstructCard(t *testing.T) {
	got := ReconstructCard([]string{"NIK 1234567890123456 Nama BUDI Jenis kelamin LAKI-LAKI"})
	want := []string{"NIK 1234567890123456", "Nama BUDI", "Jenis kelamin LAKI-LAKI"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ReconstructCard() = %q, want %q", got, want)
	}
}

func TestReconstructCardIgnoresLineBoundaries(t *testing.T) {
	in := []string{
		"PROVINSI JAWA BARAT",
		"NIK : 3273012345678901 Nama",
		": SITI AMINAH",
		"Gol. Darah O Alamat JL MAWAR",
		"Status PerkawinanKAWIN",
	}
	got := ReconstructCard(in)
	want := []string{
		"PROVINSI JAWA BARAT",
		"NIK : 3273012345678901",
		"Nama : SITI AMINAH",
		"Gol. Darah O",
		"Alamat JL MAWAR",
		"Status PerkawinanKAWIN",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ReconstructCard() =\n%q\nwant\n%q", got, want)
	}
}

func TestReconstructDispatch(t *testing.T) {
	if PolicyFor(constants.KTP) != PolicyCard {
		t.Error("KTP should use the card policy")
	}
	for _, dt := range []constants.DocType{constants.NIB, constants.KK, constants.Default} {
		if PolicyFor(dt) != PolicyGeneric {
			t.Errorf("%s should use the generic policy", dt)
		}
	}
	in := []string{"NIK 1 Nama A"}
	if got := Reconstruct(in, constants.KTP); len(got) != 2 {
		t.Errorf("card dispatch: got %q", got)
	}
	if got := Reconstruct(in, constants.NIB); len(got) != 1 {
		t.Errorf("generic dispatch: got %q", got)
	}
}
