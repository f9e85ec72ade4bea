package fonts

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/wudi/formfill/internal/memstore"
)

func helvetica(enc types.Object) types.Dict {
	d := types.Dict{
		"Type":     types.Name("Font"),
		"Subtype":  types.Name("Type1"),
		"BaseFont": types.Name("Helvetica"),
	}
	if enc != nil {
		d["Encoding"] = enc
	}
	return d
}

func TestSimpleFaceEncodings(t *testing.T) {
	tests := []struct {
		name    string
		font    types.Dict
		text    string
		want    []byte
		badRune rune
	}{
		{"winansi latin", helvetica(types.Name("WinAnsiEncoding")), "café €", []byte{'c', 'a', 'f', 0xE9, ' ', 0x80}, 0},
		{"winansi greek", helvetica(types.Name("WinAnsiEncoding")), "αβ", nil, 'α'},
		{"standard ascii", helvetica(nil), "Hi!", []byte("Hi!"), 0},
		{"standard accent", helvetica(nil), "é", nil, 'é'},
		{"macroman", helvetica(types.Name("MacRomanEncoding")), "é", []byte{0x8E}, 0},
		{"differences", helvetica(types.Dict{
			"BaseEncoding": types.Name("WinAnsiEncoding"),
			"Differences":  types.Array{types.Integer(0x41), types.Name("uni03A9"), types.Name("bullet")},
		}), "Ω•", []byte{0x41, 0x42}, 0},
		{"symbol", types.Dict{"Subtype": types.Name("Type1"), "BaseFont": types.Name("Symbol")}, "a", nil, 'a'},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := memstore.New()
			face, err := Load(store, tc.font)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			got, err := face.Encode(tc.text)
			if tc.badRune != 0 {
				var ue *UnencodableError
				if !errors.As(err, &ue) || ue.Rune != tc.badRune {
					t.Fatalf("expected unencodable %q, got %v", tc.badRune, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("codes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSimpleFaceWidths(t *testing.T) {
	store := memstore.New()
	d := helvetica(types.Name("WinAnsiEncoding"))
	d["FirstChar"] = types.Integer(65)
	d["Widths"] = types.Array{types.Integer(667), types.Integer(667)}
	face, err := Load(store, store.Add(d))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := face.Width("AB"); got != 1334 {
		t.Fatalf("width AB = %v", got)
	}
	if got := face.Width("C"); got != defaultGlyphWidth {
		t.Fatalf("missing width should default, got %v", got)
	}
	if face.BaseFont() != "Helvetica" {
		t.Fatalf("base font %q", face.BaseFont())
	}
}

func TestLoadUnsupportedSubtype(t *testing.T) {
	store := memstore.New()
	if _, err := Load(store, types.Dict{"Subtype": types.Name("CIDFontType0")}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestGlyphRune(t *testing.T) {
	tests := map[string]rune{
		"A":        'A',
		"uni00E9":  'é',
		"u1F600":   0x1F600,
		"eacute":   'é',
		"ellipsis": '…',
		"unknown":  0,
	}
	for name, want := range tests {
		if got := glyphRune(name); got != want {
			t.Errorf("glyphRune(%q) = %q want %q", name, got, want)
		}
	}
}
