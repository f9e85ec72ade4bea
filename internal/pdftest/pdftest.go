// Package pdftest builds small AcroForm documents for tests, either as
// objects in a memstore or as complete PDF files.
package pdftest

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/wudi/formfill/internal/memstore"
	"github.com/wudi/formfill/pdfobj"
)

// Field describes one field of a fixture.
type Field struct {
	Name  string
	Type  string // Tx, Sig, Btn, Ch or empty to inherit
	DA    string
	Value string
	Flags int
	Q     int
	Rect  [4]float64
	// Border adds a /BS dictionary to every widget.
	Border bool
	// Widgets above one become separate widget kids.
	Widgets int
	Kids    []Field
}

// Doc describes a fixture document.
type Doc struct {
	// DA is the form level /DA. Empty means none.
	DA string
	// NoResources leaves out /DR.
	NoResources bool
	// NoForm leaves out /AcroForm.
	NoForm bool
	Rotate int
	Fields []Field
}

// Helvetica is the /DR font registered as /Helv.
func Helvetica() types.Dict {
	return types.Dict{
		"Type":     types.Name("Font"),
		"Subtype":  types.Name("Type1"),
		"BaseFont": types.Name("Helvetica"),
		"Encoding": types.Name("WinAnsiEncoding"),
	}
}

// Build adds doc to s and returns the catalog reference.
func Build(s *memstore.Store, doc Doc) types.IndirectRef {
	pagesRef := s.Add(nil)
	page := types.Dict{
		"Type":      types.Name("Page"),
		"Parent":    pagesRef,
		"MediaBox":  types.Array{types.Integer(0), types.Integer(0), types.Integer(612), types.Integer(792)},
		"Resources": types.Dict{},
	}
	if doc.Rotate != 0 {
		page["Rotate"] = types.Integer(doc.Rotate)
	}
	pageRef := s.Add(page)
	s.Set(pagesRef, types.Dict{
		"Type":  types.Name("Pages"),
		"Kids":  types.Array{pageRef},
		"Count": types.Integer(1),
	})
	catalog := types.Dict{"Type": types.Name("Catalog"), "Pages": pagesRef}
	catalogRef := s.Add(catalog)
	if doc.NoForm {
		return catalogRef
	}

	b := &builder{store: s, pageRef: pageRef}
	fields := types.Array{}
	for i := range doc.Fields {
		fields = append(fields, b.field(doc.Fields[i], nil))
	}
	page["Annots"] = b.annots

	acro := types.Dict{"Fields": fields}
	if doc.DA != "" {
		acro["DA"] = types.StringLiteral(pdfobj.Escape(doc.DA))
	}
	if !doc.NoResources {
		helv := s.Add(Helvetica())
		acro["DR"] = types.Dict{"Font": types.Dict{"Helv": helv}}
	}
	catalog["AcroForm"] = s.Add(acro)
	return catalogRef
}

type builder struct {
	store   *memstore.Store
	pageRef types.IndirectRef
	annots  types.Array
}

func (b *builder) field(f Field, parent *types.IndirectRef) types.IndirectRef {
	ref := b.store.Add(nil)
	d := types.Dict{}
	if f.Name != "" {
		d["T"] = types.StringLiteral(pdfobj.Escape(f.Name))
	}
	if f.Type != "" {
		d["FT"] = types.Name(f.Type)
	}
	if f.DA != "" {
		d["DA"] = types.StringLiteral(pdfobj.Escape(f.DA))
	}
	if f.Value != "" {
		d["V"] = pdfobj.EncodeText(f.Value)
	}
	if f.Flags != 0 {
		d["Ff"] = types.Integer(f.Flags)
	}
	if f.Q != 0 {
		d["Q"] = types.Integer(f.Q)
	}
	if parent != nil {
		d["Parent"] = *parent
	}
	b.store.Set(ref, d)

	switch {
	case len(f.Kids) > 0:
		kids := types.Array{}
		for i := range f.Kids {
			kids = append(kids, b.field(f.Kids[i], &ref))
		}
		d["Kids"] = kids
	case f.Widgets > 1:
		kids := types.Array{}
		for i := 0; i < f.Widgets; i++ {
			w := b.widget(f)
			w["Parent"] = ref
			wref := b.store.Add(w)
			b.annots = append(b.annots, wref)
			kids = append(kids, wref)
		}
		d["Kids"] = kids
	default:
		for k, v := range b.widget(f) {
			d[k] = v
		}
		b.annots = append(b.annots, ref)
	}
	return ref
}

func (b *builder) widget(f Field) types.Dict {
	rect := f.Rect
	if rect == [4]float64{} {
		rect = [4]float64{50, 700, 250, 720}
	}
	w := types.Dict{
		"Type":    types.Name("Annot"),
		"Subtype": types.Name("Widget"),
		"F":       types.Integer(4),
		"P":       b.pageRef,
		"Rect": types.Array{
			types.Float(rect[0]), types.Float(rect[1]), types.Float(rect[2]), types.Float(rect[3]),
		},
	}
	if f.Border {
		w["BS"] = types.Dict{"W": types.Integer(1), "S": types.Name("S")}
	}
	return w
}

// PDF renders doc as a complete PDF file with a correct cross-reference table.
func PDF(doc Doc) []byte {
	s := memstore.New()
	root := Build(s, doc)
	return Serialize(s, root)
}

// Serialize writes every object of s as an uncompressed PDF file.
func Serialize(s *memstore.Store, root types.IndirectRef) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n%\xE2\xE3\xCF\xD3\n")
	offsets := make([]int, s.Max()+1)
	for nr := 1; nr <= s.Max(); nr++ {
		o := s.Object(*types.NewIndirectRef(nr, 0))
		offsets[nr] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n", nr)
		switch v := o.(type) {
		case nil:
			buf.WriteString("null")
		case types.StreamDict:
			d := v.Dict.Clone().(types.Dict)
			content := v.Raw
			if content == nil {
				content = v.Content
			}
			d["Length"] = types.Integer(len(content))
			buf.WriteString(d.PDFString())
			buf.WriteString("\nstream\n")
			buf.Write(content)
			buf.WriteString("\nendstream")
		default:
			buf.WriteString(v.PDFString())
		}
		buf.WriteString("\nendobj\n")
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", s.Max()+1)
	buf.WriteString("0000000000 65535 f\r\n")
	for nr := 1; nr <= s.Max(); nr++ {
		fmt.Fprintf(&buf, "%010d 00000 n\r\n", offsets[nr])
	}
	fmt.Fprintf(&buf, "trailer\n<</Size %d /Root %s>>\nstartxref\n%d\n%%%%EOF\n", s.Max()+1, root.PDFString(), xref)
	return buf.Bytes()
}
