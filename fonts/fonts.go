package fonts

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	gofont "github.com/go-text/typesetting/font"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// Program is a parsed TrueType/OpenType font ready to be embedded as a
// Type0 font with Identity-H encoding. CIDs equal glyph ids.
type Program struct {
	Name        string
	Data        []byte
	UnitsPerEm  int
	Widths      map[int]int
	Ascent      float64
	Descent     float64
	CapHeight   float64
	ItalicAngle float64
	BBox        [4]float64

	face *gofont.Face
}

// LoadTrueType parses a TrueType/OpenType font and extracts the metrics
// needed for a CIDFontType2 descendant. The full font is embedded.
func LoadTrueType(name string, data []byte) (*Program, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("truetype font data is empty")
	}
	font, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse truetype: %w", err)
	}
	unitsPerEm := font.UnitsPerEm()
	if unitsPerEm == 0 {
		return nil, fmt.Errorf("invalid unitsPerEm")
	}
	face, err := gofont.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse cmap: %w", err)
	}
	buf := &sfnt.Buffer{}
	ppem := fixed.Int26_6(unitsPerEm << 6)

	baseName := strings.TrimSpace(name)
	if ps, _ := font.Name(buf, sfnt.NameIDPostScript); len(ps) > 0 {
		baseName = ps
	}
	if baseName == "" {
		baseName = "CustomTT"
	}

	metrics, _ := font.Metrics(buf, ppem, xfont.HintingNone)
	bounds, _ := font.Bounds(buf, ppem, xfont.HintingNone)
	p := &Program{
		Name:        baseName,
		Data:        data,
		UnitsPerEm:  int(unitsPerEm),
		Widths:      glyphWidths(font, buf, unitsPerEm, ppem),
		Ascent:      scaleFixed(metrics.Ascent, unitsPerEm),
		Descent:     -scaleFixed(metrics.Descent, unitsPerEm),
		CapHeight:   scaleFixed(metrics.CapHeight, unitsPerEm),
		ItalicAngle: italicAngle(font),
		BBox: [4]float64{
			scaleFixed(bounds.Min.X, unitsPerEm),
			-scaleFixed(bounds.Max.Y, unitsPerEm),
			scaleFixed(bounds.Max.X, unitsPerEm),
			-scaleFixed(bounds.Min.Y, unitsPerEm),
		},
		face: face,
	}
	if p.CapHeight == 0 {
		p.CapHeight = p.Ascent
	}
	return p, nil
}

// Glyph returns the glyph id mapped to r by the font's cmap.
func (p *Program) Glyph(r rune) (int, bool) {
	gid, ok := p.face.NominalGlyph(r)
	if !ok || gid == 0 {
		return 0, false
	}
	return int(gid), true
}

// Runes maps every glyph reachable through the cmap to its lowest code point.
func (p *Program) Runes() map[int]rune {
	out := make(map[int]rune)
	it := p.face.Cmap.Iter()
	for it.Next() {
		r, gid := it.Char()
		if gid == 0 {
			continue
		}
		if prev, ok := out[int(gid)]; !ok || r < prev {
			out[int(gid)] = r
		}
	}
	return out
}

// DefaultWidth is the advance of glyph 0.
func (p *Program) DefaultWidth() int {
	if w := p.Widths[0]; w > 0 {
		return w
	}
	return 1000
}

// Face returns a face encoding text as two-byte glyph ids.
func (p *Program) Face() Face {
	widths := make(map[int]float64, len(p.Widths))
	for gid, w := range p.Widths {
		widths[gid] = float64(w)
	}
	return &compositeFace{
		name:         p.Name,
		program:      p.face,
		widths:       widths,
		defaultWidth: float64(p.DefaultWidth()),
		ascent:       p.Ascent,
		descent:      p.Descent,
	}
}

func glyphWidths(font *sfnt.Font, buf *sfnt.Buffer, unitsPerEm sfnt.Units, ppem fixed.Int26_6) map[int]int {
	glyphs := font.NumGlyphs()
	widths := make(map[int]int, glyphs)
	for i := 0; i < glyphs; i++ {
		adv, err := font.GlyphAdvance(buf, sfnt.GlyphIndex(i), ppem, xfont.HintingNone)
		if err != nil {
			continue
		}
		widths[i] = int(math.Round(scaleFixed(adv, unitsPerEm)))
	}
	return widths
}

func italicAngle(font *sfnt.Font) float64 {
	post := font.PostTable()
	if post == nil {
		return 0
	}
	return post.ItalicAngle
}

func scaleFixed(val fixed.Int26_6, unitsPerEm sfnt.Units) float64 {
	return float64(val) * 1000.0 / (64.0 * float64(unitsPerEm))
}
