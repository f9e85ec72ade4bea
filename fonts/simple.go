package fonts

import (
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"golang.org/x/text/encoding/charmap"

	"github.com/wudi/formfill/pdfobj"
)

const defaultGlyphWidth = 500

// simpleFace is a single-byte font: Type1, TrueType or Type3.
type simpleFace struct {
	name    string
	codes   map[rune]byte
	widths  [256]float64
	ascent  float64
	descent float64
}

func loadSimple(store pdfobj.Store, d types.Dict, subtype string) (*simpleFace, error) {
	f := &simpleFace{name: baseFont(store, d), ascent: 800, descent: -200}

	var table [256]rune
	encObj, _ := store.Dereference(d["Encoding"])
	switch enc := encObj.(type) {
	case types.Name:
		table = baseEncoding(string(enc), f.name, subtype)
	case types.Dict:
		baseName, _ := pdfobj.Name(store, enc["BaseEncoding"])
		table = baseEncoding(baseName, f.name, subtype)
		if diffs, err := store.DereferenceArray(enc["Differences"]); err == nil {
			applyDifferences(store, &table, diffs)
		}
	default:
		table = baseEncoding("", f.name, subtype)
	}

	f.codes = make(map[rune]byte, 256)
	for code := 255; code >= 0; code-- {
		if r := table[code]; r != 0 {
			f.codes[r] = byte(code)
		}
	}

	missing := float64(defaultGlyphWidth)
	if fd, err := store.DereferenceDict(d["FontDescriptor"]); err == nil && fd != nil {
		if mw, ok := pdfobj.Number(store, fd["MissingWidth"]); ok && mw > 0 {
			missing = mw
		}
		if a, ok := pdfobj.Number(store, fd["Ascent"]); ok && a != 0 {
			f.ascent = a
		}
		if dsc, ok := pdfobj.Number(store, fd["Descent"]); ok && dsc != 0 {
			f.descent = dsc
		}
	}
	for i := range f.widths {
		f.widths[i] = missing
	}
	first, _ := pdfobj.Int(store, d["FirstChar"])
	if ws, err := store.DereferenceArray(d["Widths"]); err == nil {
		for i, w := range ws {
			code := first + i
			if code < 0 || code > 255 {
				continue
			}
			if v, ok := pdfobj.Number(store, w); ok && v > 0 {
				f.widths[code] = v
			}
		}
	}
	return f, nil
}

func (f *simpleFace) BaseFont() string { return f.name }
func (f *simpleFace) Ascent() float64  { return f.ascent }
func (f *simpleFace) Descent() float64 { return f.descent }

func (f *simpleFace) Encode(s string) ([]byte, error) {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		code, ok := f.codes[r]
		if !ok {
			return nil, &UnencodableError{Font: f.name, Rune: r}
		}
		out = append(out, code)
	}
	return out, nil
}

func (f *simpleFace) Width(s string) float64 {
	total := 0.0
	for _, r := range s {
		if code, ok := f.codes[r]; ok {
			total += f.widths[code]
		} else {
			total += defaultGlyphWidth
		}
	}
	return total
}

func baseEncoding(name, base, subtype string) [256]rune {
	var table [256]rune
	var cm *charmap.Charmap
	switch name {
	case "WinAnsiEncoding":
		cm = charmap.Windows1252
	case "MacRomanEncoding":
		cm = charmap.Macintosh
	case "PDFDocEncoding":
		cm = charmap.ISO8859_1
	case "StandardEncoding":
	default:
		if isSymbolicBase(base) || subtype == "Type3" {
			return table
		}
		if subtype == "TrueType" {
			cm = charmap.Windows1252
		}
	}
	if cm == nil {
		for c := 0x20; c < 0x7F; c++ {
			table[c] = rune(c)
		}
		return table
	}
	for c := 0x20; c < 256; c++ {
		if r := cm.DecodeByte(byte(c)); r != 0xFFFD && r != 0x7F {
			table[c] = r
		}
	}
	return table
}

func isSymbolicBase(base string) bool {
	if i := strings.IndexByte(base, '+'); i == 6 {
		base = base[i+1:]
	}
	return base == "Symbol" || base == "ZapfDingbats"
}

func applyDifferences(store pdfobj.Store, table *[256]rune, diffs types.Array) {
	code := -1
	for _, o := range diffs {
		if n, ok := pdfobj.Int(store, o); ok {
			code = n
			continue
		}
		name, ok := pdfobj.Name(store, o)
		if !ok || code < 0 || code > 255 {
			continue
		}
		table[code] = glyphRune(name)
		code++
	}
}

var glyphNames = map[string]rune{
	"space": ' ', "exclam": '!', "quotedbl": '"', "numbersign": '#',
	"dollar": '$', "percent": '%', "ampersand": '&', "quotesingle": '\'',
	"parenleft": '(', "parenright": ')', "asterisk": '*', "plus": '+',
	"comma": ',', "hyphen": '-', "period": '.', "slash": '/',
	"zero": '0', "one": '1', "two": '2', "three": '3', "four": '4',
	"five": '5', "six": '6', "seven": '7', "eight": '8', "nine": '9',
	"colon": ':', "semicolon": ';', "less": '<', "equal": '=',
	"greater": '>', "question": '?', "at": '@', "bracketleft": '[',
	"backslash": '\\', "bracketright": ']', "underscore": '_',
	"braceleft": '{', "bar": '|', "braceright": '}', "asciitilde": '~',
	"quoteleft": '‘', "quoteright": '’', "quotedblleft": '“',
	"quotedblright": '”', "endash": '–', "emdash": '—', "bullet": '•',
	"ellipsis": '…', "Euro": '€', "degree": '°', "section": '§',
	"copyright": '©', "registered": '®', "trademark": '™',
	"eacute": 'é', "egrave": 'è', "agrave": 'à', "ccedilla": 'ç',
	"udieresis": 'ü', "odieresis": 'ö', "adieresis": 'ä', "germandbls": 'ß',
	"Eacute": 'É', "Udieresis": 'Ü', "Odieresis": 'Ö', "Adieresis": 'Ä',
}

// glyphRune maps a glyph name to its character: uniXXXX, uXXXX[XX],
// single letters and a table of common names.
func glyphRune(name string) rune {
	if r, ok := glyphNames[name]; ok {
		return r
	}
	if len(name) == 1 {
		return rune(name[0])
	}
	if strings.HasPrefix(name, "uni") && len(name) == 7 {
		if v, err := strconv.ParseUint(name[3:], 16, 32); err == nil {
			return rune(v)
		}
	}
	if strings.HasPrefix(name, "u") && len(name) >= 5 && len(name) <= 7 {
		if v, err := strconv.ParseUint(name[1:], 16, 32); err == nil {
			return rune(v)
		}
	}
	return 0
}
