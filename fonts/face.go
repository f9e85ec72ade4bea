package fonts

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/wudi/formfill/pdfobj"
)

// Face encodes and measures text for one font resource of a document.
type Face interface {
	// BaseFont is the PostScript name of the font.
	BaseFont() string
	// Encode returns the show-string bytes for s or an *UnencodableError
	// naming the first rune the font cannot represent.
	Encode(s string) ([]byte, error)
	// Width is the advance of s in thousandths of an em.
	Width(s string) float64
	// Ascent and Descent in thousandths of an em, Descent negative.
	Ascent() float64
	Descent() float64
}

// UnencodableError reports a rune with no code in a font.
type UnencodableError struct {
	Font string
	Rune rune
}

func (e *UnencodableError) Error() string {
	return fmt.Sprintf("font %s cannot encode %q (U+%04X)", e.Font, e.Rune, e.Rune)
}

// Cache loads faces from font dictionaries, keeping one face per indirect
// object so a font program is parsed at most once per document.
type Cache struct {
	store pdfobj.Store
	faces map[types.IndirectRef]Face
}

func NewCache(store pdfobj.Store) *Cache {
	return &Cache{store: store, faces: make(map[types.IndirectRef]Face)}
}

// Load returns the face for the font object o.
func (c *Cache) Load(o types.Object) (Face, error) {
	ref, indirect := o.(types.IndirectRef)
	if indirect {
		if f, ok := c.faces[ref]; ok {
			return f, nil
		}
	}
	f, err := Load(c.store, o)
	if err != nil {
		return nil, err
	}
	if indirect {
		c.faces[ref] = f
	}
	return f, nil
}

// Add records the face of a font the caller has just embedded.
func (c *Cache) Add(ref types.IndirectRef, f Face) {
	c.faces[ref] = f
}

// Load builds a face for the font dictionary o.
func Load(store pdfobj.Store, o types.Object) (Face, error) {
	d, err := store.DereferenceDict(o)
	if err != nil {
		return nil, fmt.Errorf("font dictionary: %w", err)
	}
	if d == nil {
		return nil, fmt.Errorf("font dictionary missing")
	}
	subtype, _ := pdfobj.Name(store, d["Subtype"])
	switch subtype {
	case "Type0":
		return loadComposite(store, d)
	case "Type1", "MMType1", "TrueType", "Type3", "":
		return loadSimple(store, d, subtype)
	}
	return nil, fmt.Errorf("unsupported font subtype %s", subtype)
}

func baseFont(store pdfobj.Store, d types.Dict) string {
	if name, ok := pdfobj.Name(store, d["BaseFont"]); ok {
		return name
	}
	if name, ok := pdfobj.Name(store, d["Name"]); ok {
		return name
	}
	return "unnamed"
}
