package constants

import "testing"

func TestParseDocType(t *testing.T) {
	tests := []struct {
		in    string
		want  DocType
		known bool
	}{
		{"KTP", KTP, true},
		{"ktp", KTP, true},
		{" npwp ", NPWP, true},
		{"akta_kelahiran", AktaKelahiran, true},
		{"pln", TagihanListrik, true},
		{"passport", Default, false},
		{"", Default, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDocType(tt.in)
			if got != tt.want || ok != tt.known {
				t.Errorf("ParseDocType(%q) = %s, %v; want %s, %v", tt.in, got, ok, tt.want, tt.known)
			}
		})
	}
}

func TestSelectDocType(t *testing.T) {
	if got := SelectDocType(""); got != NIB {
		t.Errorf("empty selector: got %s, want NIB", got)
	}
	if got := SelectDocType("unknown-kind"); got != Default {
		t.Errorf("unknown selector: got %s, want DEFAULT", got)
	}
	if got := SelectDocType("kk"); got != KK {
		t.Errorf("kk selector: got %s, want KK", got)
	}
}

func TestMapExtToFormat(t *testing.T) {
	cases := map[string]string{".PDF": PDF, "jpeg": IMAGE, "png": IMAGE, "heic": "", "": ""}
	for ext, want := range cases {
		if got := MapExtToFormat(ext); got != want {
			t.Errorf("MapExtToFormat(%q) = %q, want %q", ext, got, want)
		}
	}
}
