// Package form models the interactive form of a document on top of
// pdfcpu's object model. Field dictionaries are edited in place.
package form

import (
	"fmt"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/wudi/formfill/fonts"
	"github.com/wudi/formfill/pdfobj"
)

// Form is the /AcroForm dictionary of a document and its field tree.
type Form struct {
	store  pdfobj.Store
	dict   types.Dict
	fields []*Field
	faces  *fonts.Cache
}

// Load reads the form referenced by catalog. It returns ErrNoForm when the
// document has none.
func Load(store pdfobj.Store, catalog types.Dict) (*Form, error) {
	if catalog == nil || catalog["AcroForm"] == nil {
		return nil, ErrNoForm
	}
	dict, err := store.DereferenceDict(catalog["AcroForm"])
	if err != nil {
		return nil, fmt.Errorf("acroform: %w", err)
	}
	if dict == nil {
		return nil, ErrNoForm
	}
	f := &Form{store: store, dict: dict, faces: fonts.NewCache(store)}
	kids, err := store.DereferenceArray(dict["Fields"])
	if err != nil {
		return nil, fmt.Errorf("acroform fields: %w", err)
	}
	seen := make(map[types.IndirectRef]bool)
	for _, kid := range kids {
		if field := f.walk(kid, nil, seen); field != nil {
			f.fields = append(f.fields, field)
		}
	}
	return f, nil
}

func (f *Form) walk(obj types.Object, parent *Field, seen map[types.IndirectRef]bool) *Field {
	if ref, ok := obj.(types.IndirectRef); ok {
		if seen[ref] {
			return nil
		}
		seen[ref] = true
	}
	dict, err := f.store.DereferenceDict(obj)
	if err != nil || dict == nil {
		return nil
	}
	field := &Field{form: f, dict: dict, parent: parent}
	field.name, _ = pdfobj.Text(f.store, dict["T"])
	field.fullName = field.name
	if parent != nil && parent.fullName != "" {
		field.fullName = parent.fullName + "." + field.name
	}
	field.fieldType, _ = pdfobj.Name(f.store, field.inherited("FT"))
	field.kind = kindOf(field.fieldType)

	kids, _ := f.store.DereferenceArray(dict["Kids"])
	for _, kid := range kids {
		kd, err := f.store.DereferenceDict(kid)
		if err != nil || kd == nil {
			continue
		}
		if kd["T"] == nil {
			if ref, ok := kid.(types.IndirectRef); ok {
				if seen[ref] {
					continue
				}
				seen[ref] = true
			}
			field.widgets = append(field.widgets, kd)
			continue
		}
		if child := f.walk(kid, field, seen); child != nil {
			field.children = append(field.children, child)
		}
	}
	if len(kids) == 0 && isWidget(f.store, dict) {
		field.widgets = append(field.widgets, dict)
	}
	return field
}

func isWidget(store pdfobj.Store, d types.Dict) bool {
	if sub, ok := pdfobj.Name(store, d["Subtype"]); ok {
		return sub == "Widget"
	}
	return d["Rect"] != nil
}

// Store returns the object store backing the form.
func (f *Form) Store() pdfobj.Store { return f.store }

// Dict returns the /AcroForm dictionary.
func (f *Form) Dict() types.Dict { return f.dict }

// Fields returns the top-level fields in document order.
func (f *Form) Fields() []*Field { return f.fields }

// Terminals returns every field without child fields, depth first.
func (f *Form) Terminals() []*Field {
	var out []*Field
	var visit func(*Field)
	visit = func(fl *Field) {
		if len(fl.children) == 0 {
			out = append(out, fl)
			return
		}
		for _, c := range fl.children {
			visit(c)
		}
	}
	for _, fl := range f.fields {
		visit(fl)
	}
	return out
}

// Field looks name up as a top-level partial name first, then as a fully
// qualified dotted name.
func (f *Form) Field(name string) (*Field, error) {
	for _, fl := range f.fields {
		if fl.name == name {
			return fl, nil
		}
	}
	var found *Field
	var visit func(*Field)
	visit = func(fl *Field) {
		if found != nil {
			return
		}
		if fl.fullName == name {
			found = fl
			return
		}
		for _, c := range fl.children {
			visit(c)
		}
	}
	for _, fl := range f.fields {
		visit(fl)
	}
	if found == nil {
		return nil, &FieldError{Field: name, Err: ErrFieldNotFound}
	}
	return found, nil
}

// HasResources reports whether the form carries a /DR dictionary.
func (f *Form) HasResources() bool {
	dr, err := f.store.DereferenceDict(f.dict["DR"])
	return err == nil && dr != nil
}

// fontResources returns /DR /Font, creating both dictionaries when create is set.
func (f *Form) fontResources(create bool) (types.Dict, error) {
	dr, err := f.store.DereferenceDict(f.dict["DR"])
	if err != nil {
		return nil, fmt.Errorf("form resources: %w", err)
	}
	if dr == nil {
		if !create {
			return nil, nil
		}
		dr = types.NewDict()
		f.dict["DR"] = dr
	}
	fontDict, err := f.store.DereferenceDict(dr["Font"])
	if err != nil {
		return nil, fmt.Errorf("form font resources: %w", err)
	}
	if fontDict == nil {
		if !create {
			return nil, nil
		}
		fontDict = types.NewDict()
		dr["Font"] = fontDict
	}
	return fontDict, nil
}

// Face returns the face of the font registered in /DR under name.
func (f *Form) Face(name string) (fonts.Face, error) {
	fontDict, err := f.fontResources(false)
	if err != nil {
		return nil, err
	}
	obj, ok := fontDict[name]
	if !ok || obj == nil {
		return nil, fmt.Errorf("%w: /%s", ErrFontMissing, name)
	}
	return f.faces.Load(obj)
}

// FontObject returns the /DR /Font entry named name, usually a reference.
func (f *Form) FontObject(name string) types.Object {
	fontDict, err := f.fontResources(false)
	if err != nil {
		return nil
	}
	return fontDict[name]
}

// RegisterFont adds the font at ref to /DR /Font under the first free
// name F1, F2, ... and returns that name.
func (f *Form) RegisterFont(ref types.IndirectRef, face fonts.Face) (string, error) {
	fontDict, err := f.fontResources(true)
	if err != nil {
		return "", err
	}
	id := ""
	for n := 1; ; n++ {
		id = "F" + strconv.Itoa(n)
		if _, taken := fontDict[id]; !taken {
			break
		}
	}
	fontDict[id] = ref
	if face != nil {
		f.faces.Add(ref, face)
	}
	return id, nil
}

// DefaultAppearance returns the form level /DA.
func (f *Form) DefaultAppearance() string {
	s, _ := pdfobj.Text(f.store, f.dict["DA"])
	return s
}

// SetDefaultAppearance replaces the form level /DA.
func (f *Form) SetDefaultAppearance(da string) {
	f.dict["DA"] = types.StringLiteral(pdfobj.Escape(da))
}

// Quadding returns the form level /Q.
func (f *Form) Quadding() int {
	q, _ := pdfobj.Int(f.store, f.dict["Q"])
	return q
}

// SetNeedAppearances sets /NeedAppearances.
func (f *Form) SetNeedAppearances(v bool) {
	f.dict["NeedAppearances"] = types.Boolean(v)
}
