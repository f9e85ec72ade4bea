package fonts

import (
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/wudi/formfill/pdfobj"
)

// Embed writes p as a Type0 font with an Identity-H encoded CIDFontType2
// descendant and returns the reference of the Type0 dictionary.
func Embed(store pdfobj.Store, p *Program) (types.IndirectRef, error) {
	fontFile := types.Dict{"Length1": types.Integer(len(p.Data))}
	fileRef, err := pdfobj.NewStream(store, fontFile, p.Data, true)
	if err != nil {
		return types.IndirectRef{}, err
	}

	descriptor := types.Dict{
		"Type":        types.Name("FontDescriptor"),
		"FontName":    types.Name(p.Name),
		"Flags":       types.Integer(4),
		"ItalicAngle": types.Float(p.ItalicAngle),
		"Ascent":      types.Float(round2(p.Ascent)),
		"Descent":     types.Float(round2(p.Descent)),
		"CapHeight":   types.Float(round2(p.CapHeight)),
		"StemV":       types.Integer(80),
		"FontBBox": types.Array{
			types.Float(round2(p.BBox[0])), types.Float(round2(p.BBox[1])),
			types.Float(round2(p.BBox[2])), types.Float(round2(p.BBox[3])),
		},
		"FontFile2": fileRef,
	}
	descRef, err := store.IndRefForNewObject(descriptor)
	if err != nil {
		return types.IndirectRef{}, err
	}

	cidFont := types.Dict{
		"Type":     types.Name("Font"),
		"Subtype":  types.Name("CIDFontType2"),
		"BaseFont": types.Name(p.Name),
		"CIDSystemInfo": types.Dict{
			"Registry":   types.StringLiteral("Adobe"),
			"Ordering":   types.StringLiteral("Identity"),
			"Supplement": types.Integer(0),
		},
		"FontDescriptor": *descRef,
		"DW":             types.Integer(p.DefaultWidth()),
		"W":              encodeCIDWidths(p.Widths),
		"CIDToGIDMap":    types.Name("Identity"),
	}
	cidRef, err := store.IndRefForNewObject(cidFont)
	if err != nil {
		return types.IndirectRef{}, err
	}

	font := types.Dict{
		"Type":            types.Name("Font"),
		"Subtype":         types.Name("Type0"),
		"BaseFont":        types.Name(p.Name),
		"Encoding":        types.Name("Identity-H"),
		"DescendantFonts": types.Array{*cidRef},
	}
	if cmap := buildToUnicodeCMap(p.Name, p.Runes()); cmap != nil {
		ref, err := pdfobj.NewStream(store, nil, cmap, true)
		if err != nil {
			return types.IndirectRef{}, err
		}
		font["ToUnicode"] = ref
	}
	ref, err := store.IndRefForNewObject(font)
	if err != nil {
		return types.IndirectRef{}, err
	}
	return *ref, nil
}

// encodeCIDWidths compresses widths into c_first c_last w runs.
func encodeCIDWidths(widths map[int]int) types.Array {
	arr := types.Array{}
	if len(widths) == 0 {
		return arr
	}
	codes := make([]int, 0, len(widths))
	for c := range widths {
		codes = append(codes, c)
	}
	sort.Ints(codes)
	start := codes[0]
	prev := codes[0]
	current := widths[codes[0]]
	for i := 1; i < len(codes); i++ {
		code := codes[i]
		w := widths[code]
		if w == current && code == prev+1 {
			prev = code
			continue
		}
		arr = append(arr, types.Integer(start), types.Integer(prev), types.Integer(current))
		start = code
		prev = code
		current = w
	}
	return append(arr, types.Integer(start), types.Integer(prev), types.Integer(current))
}

func round2(v float64) float64 {
	if v < 0 {
		return -float64(int64(-v*100+0.5)) / 100
	}
	return float64(int64(v*100+0.5)) / 100
}
