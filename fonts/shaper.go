package fonts

import (
	"unicode"

	"github.com/go-text/typesetting/di"
	gofont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
)

// ShapedGlyph represents a single shaped glyph with positioning information.
type ShapedGlyph struct {
	ID       int
	Cluster  int
	XAdvance float64 // In PDF text units (1/1000 em)
	XOffset  float64
	YOffset  float64
}

// shapeRunes shapes text at 1000 units per em so advances come out in
// PDF glyph space.
func shapeRunes(face *gofont.Face, runes []rune) []ShapedGlyph {
	if face == nil || len(runes) == 0 {
		return nil
	}
	script := detectScript(runes)
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: scriptDirection(script),
		Face:      face,
		Size:      fixed.I(1000),
		Script:    script,
		Language:  language.DefaultLanguage(),
	}
	output := (&shaping.HarfbuzzShaper{}).Shape(input)

	result := make([]ShapedGlyph, 0, len(output.Glyphs))
	for _, g := range output.Glyphs {
		result = append(result, ShapedGlyph{
			ID:       int(g.GlyphID),
			Cluster:  g.ClusterIndex,
			XAdvance: float64(g.XAdvance) / 64.0,
			XOffset:  float64(g.XOffset) / 64.0,
			YOffset:  float64(g.YOffset) / 64.0,
		})
	}
	return result
}

// Shape shapes text with the program's glyphs.
func (p *Program) Shape(text string) []ShapedGlyph {
	return shapeRunes(p.face, []rune(text))
}

func scriptDirection(script language.Script) di.Direction {
	switch script {
	case language.Arabic, language.Hebrew, language.Syriac, language.Thaana, language.Nko:
		return di.DirectionRTL
	default:
		return di.DirectionLTR
	}
}

func detectScript(runes []rune) language.Script {
	counts := make(map[language.Script]int)
	maxCount := 0
	bestScript := language.Latin

	for _, r := range runes {
		script := scriptFromRune(r)
		if script == language.Unknown {
			continue
		}
		counts[script]++
		if counts[script] > maxCount {
			maxCount = counts[script]
			bestScript = script
		}
	}
	return bestScript
}

func scriptFromRune(r rune) language.Script {
	switch {
	case unicode.Is(unicode.Arabic, r):
		return language.Arabic
	case unicode.Is(unicode.Hebrew, r):
		return language.Hebrew
	case unicode.Is(unicode.Latin, r):
		return language.Latin
	case unicode.Is(unicode.Cyrillic, r):
		return language.Cyrillic
	case unicode.Is(unicode.Greek, r):
		return language.Greek
	case unicode.Is(unicode.Thai, r):
		return language.Thai
	case unicode.Is(unicode.Devanagari, r):
		return language.Devanagari
	case unicode.Is(unicode.Bengali, r):
		return language.Bengali
	case unicode.Is(unicode.Gurmukhi, r):
		return language.Gurmukhi
	case unicode.Is(unicode.Gujarati, r):
		return language.Gujarati
	case unicode.Is(unicode.Oriya, r):
		return language.Oriya
	case unicode.Is(unicode.Tamil, r):
		return language.Tamil
	case unicode.Is(unicode.Telugu, r):
		return language.Telugu
	case unicode.Is(unicode.Kannada, r):
		return language.Kannada
	case unicode.Is(unicode.Malayalam, r):
		return language.Malayalam
	case unicode.Is(unicode.Sinhala, r):
		return language.Sinhala
	case unicode.Is(unicode.Lao, r):
		return language.Lao
	case unicode.Is(unicode.Tibetan, r):
		return language.Tibetan
	case unicode.Is(unicode.Myanmar, r):
		return language.Myanmar
	case unicode.Is(unicode.Khmer, r):
		return language.Khmer
	case unicode.Is(unicode.Han, r):
		return language.Han
	case unicode.Is(unicode.Hiragana, r):
		return language.Hiragana
	case unicode.Is(unicode.Katakana, r):
		return language.Katakana
	case unicode.Is(unicode.Hangul, r):
		return language.Hangul
	}
	return language.Unknown
}
