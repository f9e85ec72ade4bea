package form

import (
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/wudi/formfill/pdfobj"
)

// Kind classifies a field for filling and appearance handling.
type Kind int

const (
	KindOther Kind = iota
	KindText
	KindSignature
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindSignature:
		return "signature"
	}
	return "other"
}

func kindOf(fieldType string) Kind {
	switch fieldType {
	case "Tx":
		return KindText
	case "Sig":
		return KindSignature
	}
	return KindOther
}

// Field flags.
const (
	FlagReadOnly  = 1 << 0
	FlagRequired  = 1 << 1
	FlagMultiline = 1 << 12
	FlagComb      = 1 << 24
)

// Field is a node of the form's field tree.
type Field struct {
	form      *Form
	dict      types.Dict
	parent    *Field
	children  []*Field
	widgets   []types.Dict
	name      string
	fullName  string
	fieldType string
	kind      Kind
}

// Name is the partial name /T.
func (fl *Field) Name() string { return fl.name }

// FullName is the dotted fully qualified name.
func (fl *Field) FullName() string { return fl.fullName }

func (fl *Field) Kind() Kind { return fl.kind }

// Type is the /FT value, inherited from ancestors.
func (fl *Field) Type() string { return fl.fieldType }

func (fl *Field) Dict() types.Dict      { return fl.dict }
func (fl *Field) Parent() *Field        { return fl.parent }
func (fl *Field) Children() []*Field    { return fl.children }
func (fl *Field) Widgets() []types.Dict { return fl.widgets }

// Terminal reports whether the field has no child fields.
func (fl *Field) Terminal() bool { return len(fl.children) == 0 }

// Terminals returns fl itself when terminal, else its terminal descendants.
func (fl *Field) Terminals() []*Field {
	if fl.Terminal() {
		return []*Field{fl}
	}
	var out []*Field
	for _, c := range fl.children {
		out = append(out, c.Terminals()...)
	}
	return out
}

func (fl *Field) inherited(key string) types.Object {
	for n := fl; n != nil; n = n.parent {
		if v, ok := n.dict[key]; ok && v != nil {
			return v
		}
	}
	if fl.form == nil {
		return nil
	}
	// A /Parent chain the tree walk did not see.
	d := fl.dict
	for depth := 0; depth < 32 && d != nil; depth++ {
		if v, ok := d[key]; ok && v != nil {
			return v
		}
		next, err := fl.form.store.DereferenceDict(d["Parent"])
		if err != nil {
			return nil
		}
		d = next
	}
	return nil
}

// Flags returns the inherited /Ff value.
func (fl *Field) Flags() int {
	ff, _ := pdfobj.Int(fl.form.store, fl.inherited("Ff"))
	return ff
}

func (fl *Field) ReadOnly() bool  { return fl.Flags()&FlagReadOnly != 0 }
func (fl *Field) Multiline() bool { return fl.Flags()&FlagMultiline != 0 }
func (fl *Field) Comb() bool      { return fl.Flags()&FlagComb != 0 }

// SetReadOnly sets or clears the read-only flag on the field dictionary
// and on every descendant that carries its own /Ff.
func (fl *Field) SetReadOnly(v bool) {
	fl.setReadOnly(v)
	var visit func(*Field)
	visit = func(c *Field) {
		if _, own := c.dict["Ff"]; own {
			c.setReadOnly(v)
		}
		for _, k := range c.children {
			visit(k)
		}
	}
	for _, c := range fl.children {
		visit(c)
	}
}

func (fl *Field) setReadOnly(v bool) {
	ff := fl.Flags()
	if v {
		ff |= FlagReadOnly
	} else {
		ff &^= FlagReadOnly
	}
	fl.dict["Ff"] = types.Integer(ff)
}

// MaxLen returns the inherited /MaxLen or 0.
func (fl *Field) MaxLen() int {
	n, _ := pdfobj.Int(fl.form.store, fl.inherited("MaxLen"))
	return n
}

// Quadding returns the inherited /Q, falling back to the form's.
func (fl *Field) Quadding() int {
	if q, ok := pdfobj.Int(fl.form.store, fl.inherited("Q")); ok {
		return q
	}
	return fl.form.Quadding()
}

// DefaultAppearance returns the /DA in effect: the field's own, an
// ancestor's, then the form's.
func (fl *Field) DefaultAppearance() string {
	if s, ok := pdfobj.Text(fl.form.store, fl.inherited("DA")); ok {
		return s
	}
	return fl.form.DefaultAppearance()
}

// SetDefaultAppearance writes da on the field and replaces any /DA set
// below it, on descendant fields or widgets.
func (fl *Field) SetDefaultAppearance(da string) {
	lit := types.StringLiteral(pdfobj.Escape(da))
	fl.dict["DA"] = lit
	for _, w := range fl.widgets {
		if _, ok := w["DA"]; ok {
			w["DA"] = lit
		}
	}
	for _, c := range fl.children {
		if _, ok := c.dict["DA"]; ok {
			c.SetDefaultAppearance(da)
			continue
		}
		for _, w := range c.widgets {
			if _, ok := w["DA"]; ok {
				w["DA"] = lit
			}
		}
	}
}

// Value returns the inherited /V as text.
func (fl *Field) Value() string {
	s, _ := pdfobj.Text(fl.form.store, fl.inherited("V"))
	return s
}

// Rect returns the rectangle of widget i.
func (fl *Field) Rect(i int) (pdfobj.Rectangle, bool) {
	if i < 0 || i >= len(fl.widgets) {
		return pdfobj.Rectangle{}, false
	}
	return pdfobj.Rect(fl.form.store, fl.widgets[i]["Rect"])
}

// ClearBorderStyle removes /BS from every widget of the field and its
// descendants and returns how many were removed.
func (fl *Field) ClearBorderStyle() int {
	n := 0
	for _, w := range fl.widgets {
		if _, ok := w["BS"]; ok {
			delete(w, "BS")
			n++
		}
	}
	for _, c := range fl.children {
		n += c.ClearBorderStyle()
	}
	return n
}

// Lines splits a value at line breaks.
func Lines(value string) []string {
	value = strings.ReplaceAll(value, "\r\n", "\n")
	value = strings.ReplaceAll(value, "\r", "\n")
	return strings.Split(value, "\n")
}
