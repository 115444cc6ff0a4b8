package lines

import (
	"reflect"
	"testing"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "collapses whitespace and trims",
			in:   []string{"  NOMOR   INDUK\tBERUSAHA  ", "Nama : BUDI"},
			want: []string{"NOMOR INDUK BERUSAHA", "Nama : BUDI"},
		},
		{
			name: "drops empty and short lines",
			in:   []string{"", "   ", "ab", " a b ", "abc"},
			want: []string{"a b", "abc"},
		},
		{
			name: "keeps punctuation-only lines by default",
			in:   []string{"---", "...:"},
			want: []string{"---", "...:"},
		},
		{
			name: "nil input",
			in:   nil,
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Sanitize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSanitizeWithMinAlnum(t *testing.T) {
	got := SanitizeWith([]string{"---", "a--", "NIK"}, SanitizeOptions{MinAlnum: 1})
	want := []string{"a--", "NIK"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SanitizeWith() = %q, want %q", got, want)
	}
}

func TestSanitizeCountsCharactersNotBytes(t *testing.T) {
	// two runes, four bytes
	if got := Sanitize([]string{"éé"}); len(got) != 0 {
		t.Errorf("expected two-character line to be dropped, got %q", got)
	}
}
