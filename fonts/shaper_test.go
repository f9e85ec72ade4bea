package fonts

import (
	"testing"

	"github.com/go-text/typesetting/language"
)

func TestDetectScript(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect language.Script
	}{
		{"Latin", "Hello World", language.Latin},
		{"Arabic", "مرحبا بالعالم", language.Arabic},
		{"Hebrew", "שלום עולם", language.Hebrew},
		{"Cyrillic", "Привет мир", language.Cyrillic},
		{"Greek", "Γειά σου Κόσμε", language.Greek},
		{"Mixed Latin/Arabic (Latin dominant)", "Hello World مرحبا", language.Latin},
		{"Mixed Latin/Arabic (Arabic dominant)", "مرحبا بالعالم Hello", language.Arabic},
		{"CJK (Han)", "你好世界", language.Han},
		{"Hangul", "안녕하세요", language.Hangul},
		{"Digits only", "12345", language.Latin},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := detectScript([]rune(tc.input)); got != tc.expect {
				t.Errorf("Expected %v, got %v", tc.expect, got)
			}
		})
	}
}

func TestShapeMatchesNominalGlyphs(t *testing.T) {
	p, err := LoadAsset(AssetSerif)
	if err != nil {
		t.Fatalf("load asset: %v", err)
	}
	glyphs := p.Shape("Hi")
	if len(glyphs) != 2 {
		t.Fatalf("expected 2 glyphs, got %d", len(glyphs))
	}
	for i, r := range "Hi" {
		gid, ok := p.Glyph(r)
		if !ok {
			t.Fatalf("no glyph for %q", r)
		}
		if glyphs[i].ID != gid {
			t.Errorf("glyph %d: shaped %d nominal %d", i, glyphs[i].ID, gid)
		}
		if glyphs[i].XAdvance <= 0 {
			t.Errorf("glyph %d has no advance", i)
		}
	}
}
