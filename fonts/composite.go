package fonts

import (
	"bytes"
	"strings"

	gofont "github.com/go-text/typesetting/font"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/wudi/formfill/pdfobj"
)

// compositeFace is a Type0 font with two-byte codes. Codes come from the
// embedded program (shaped, cid = gid) or from the reversed ToUnicode map.
type compositeFace struct {
	name         string
	program      *gofont.Face
	gidToCID     map[int]int
	toUnicode    map[rune][]byte
	widths       map[int]float64
	defaultWidth float64
	ascent       float64
	descent      float64
}

func loadComposite(store pdfobj.Store, d types.Dict) (*compositeFace, error) {
	f := &compositeFace{
		name:         baseFont(store, d),
		widths:       make(map[int]float64),
		defaultWidth: 1000,
		ascent:       800,
		descent:      -200,
	}
	identity := true
	if enc, ok := pdfobj.Name(store, d["Encoding"]); ok {
		identity = enc == "Identity-H" || enc == "Identity-V"
	} else if d["Encoding"] != nil {
		identity = false
	}

	if d["ToUnicode"] != nil {
		if data, err := pdfobj.StreamContent(store, d["ToUnicode"]); err == nil {
			f.toUnicode = parseToUnicodeCMap(data).reverse()
		}
	}

	descendants, err := store.DereferenceArray(d["DescendantFonts"])
	if err != nil || len(descendants) == 0 {
		return f, nil
	}
	cid, err := store.DereferenceDict(descendants[0])
	if err != nil || cid == nil {
		return f, nil
	}
	if dw, ok := pdfobj.Number(store, cid["DW"]); ok {
		f.defaultWidth = dw
	}
	if w, err := store.DereferenceArray(cid["W"]); err == nil {
		parseCIDWidths(store, w, f.widths)
	}
	fd, err := store.DereferenceDict(cid["FontDescriptor"])
	if err != nil || fd == nil {
		return f, nil
	}
	if a, ok := pdfobj.Number(store, fd["Ascent"]); ok && a != 0 {
		f.ascent = a
	}
	if dsc, ok := pdfobj.Number(store, fd["Descent"]); ok && dsc != 0 {
		f.descent = dsc
	}
	// Subset programs only hold the glyphs already used, so they are
	// not trusted for new text.
	if !identity || isSubset(f.name) {
		return f, nil
	}
	program := fd["FontFile2"]
	if program == nil {
		program = fd["FontFile3"]
	}
	if program == nil {
		return f, nil
	}
	data, err := pdfobj.StreamContent(store, program)
	if err != nil {
		return f, nil
	}
	face, err := gofont.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return f, nil
	}
	f.program = face
	if m, err := cidToGIDMap(store, cid["CIDToGIDMap"]); err == nil {
		f.gidToCID = m
	}
	return f, nil
}

func (f *compositeFace) BaseFont() string { return f.name }
func (f *compositeFace) Ascent() float64  { return f.ascent }
func (f *compositeFace) Descent() float64 { return f.descent }

func (f *compositeFace) Encode(s string) ([]byte, error) {
	if out, ok := f.encodeToUnicode(s); ok {
		return out, nil
	}
	if f.program != nil {
		return f.encodeProgram(s)
	}
	for _, r := range s {
		if _, ok := f.toUnicode[r]; !ok {
			return nil, &UnencodableError{Font: f.name, Rune: r}
		}
	}
	return nil, nil
}

func (f *compositeFace) encodeToUnicode(s string) ([]byte, bool) {
	var out []byte
	for _, r := range s {
		code, ok := f.toUnicode[r]
		if !ok {
			return nil, false
		}
		out = append(out, code...)
	}
	return out, true
}

func (f *compositeFace) encodeProgram(s string) ([]byte, error) {
	runes := []rune(s)
	for _, r := range runes {
		if gid, ok := f.program.NominalGlyph(r); !ok || gid == 0 {
			return nil, &UnencodableError{Font: f.name, Rune: r}
		}
	}
	glyphs := shapeRunes(f.program, runes)
	out := make([]byte, 0, 2*len(glyphs))
	for _, g := range glyphs {
		if g.ID == 0 {
			r := rune(0xFFFD)
			if g.Cluster >= 0 && g.Cluster < len(runes) {
				r = runes[g.Cluster]
			}
			return nil, &UnencodableError{Font: f.name, Rune: r}
		}
		cid := f.cid(g.ID)
		out = append(out, byte(cid>>8), byte(cid))
	}
	return out, nil
}

func (f *compositeFace) cid(gid int) int {
	if f.gidToCID == nil {
		return gid
	}
	if cid, ok := f.gidToCID[gid]; ok {
		return cid
	}
	return gid
}

func (f *compositeFace) Width(s string) float64 {
	codes, err := f.Encode(s)
	if err != nil {
		return float64(len([]rune(s))) * f.defaultWidth / 2
	}
	total := 0.0
	for i := 0; i+1 < len(codes); i += 2 {
		cid := int(codes[i])<<8 | int(codes[i+1])
		if w, ok := f.widths[cid]; ok {
			total += w
		} else {
			total += f.defaultWidth
		}
	}
	return total
}

func parseCIDWidths(store pdfobj.Store, w types.Array, out map[int]float64) {
	for i := 0; i < len(w); {
		first, ok := pdfobj.Int(store, w[i])
		if !ok || i+1 >= len(w) {
			return
		}
		if arr, err := store.DereferenceArray(w[i+1]); err == nil && arr != nil {
			for j, o := range arr {
				if v, ok := pdfobj.Number(store, o); ok {
					out[first+j] = v
				}
			}
			i += 2
			continue
		}
		if i+2 >= len(w) {
			return
		}
		last, ok1 := pdfobj.Int(store, w[i+1])
		v, ok2 := pdfobj.Number(store, w[i+2])
		if !ok1 || !ok2 {
			return
		}
		for c := first; c <= last; c++ {
			out[c] = v
		}
		i += 3
	}
}

// cidToGIDMap inverts a CIDToGIDMap stream. Identity or absent yields nil.
func cidToGIDMap(store pdfobj.Store, o types.Object) (map[int]int, error) {
	if o == nil {
		return nil, nil
	}
	if name, ok := pdfobj.Name(store, o); ok && name == "Identity" {
		return nil, nil
	}
	data, err := pdfobj.StreamContent(store, o)
	if err != nil {
		return nil, err
	}
	out := make(map[int]int, len(data)/2)
	for cid := 0; 2*cid+1 < len(data); cid++ {
		gid := int(data[2*cid])<<8 | int(data[2*cid+1])
		if gid == 0 {
			continue
		}
		if _, seen := out[gid]; !seen {
			out[gid] = cid
		}
	}
	return out, nil
}

func isSubset(name string) bool {
	i := strings.IndexByte(name, '+')
	if i != 6 {
		return false
	}
	for _, c := range name[:6] {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}
