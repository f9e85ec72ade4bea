package appearance

import (
	"strings"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/wudi/formfill/form"
	"github.com/wudi/formfill/internal/memstore"
	"github.com/wudi/formfill/internal/pdftest"
	"github.com/wudi/formfill/pdfobj"
)

func setup(t *testing.T, fields ...pdftest.Field) (*form.Form, *memstore.Store) {
	t.Helper()
	s := memstore.New()
	root := pdftest.Build(s, pdftest.Doc{DA: "/Helv 0 Tf 0 g", Fields: fields})
	catalog, _ := s.DereferenceDict(root)
	f, err := form.Load(s, catalog)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return f, s
}

func appearanceOf(t *testing.T, s *memstore.Store, widget types.Dict) (types.Dict, string) {
	t.Helper()
	ap, err := s.DereferenceDict(widget["AP"])
	if err != nil || ap == nil {
		t.Fatalf("missing /AP: %v", err)
	}
	sd, _, err := s.DereferenceStreamDict(ap["N"])
	if err != nil {
		t.Fatalf("normal appearance: %v", err)
	}
	content, err := pdfobj.StreamContent(s, ap["N"])
	if err != nil {
		t.Fatalf("content: %v", err)
	}
	return sd.Dict, string(content)
}

func TestGenerateTextAppearance(t *testing.T) {
	f, s := setup(t, pdftest.Field{
		Name: "greeting", Type: "Tx", DA: "/Helv 12 Tf 0 g", Value: "Hello World",
		Rect: [4]float64{100, 100, 200, 120},
	})
	field, _ := f.Field("greeting")

	n, err := NewGenerator(f).Generate(field)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected one widget, got %d", n)
	}

	dict, content := appearanceOf(t, s, field.Widgets()[0])
	if sub, _ := pdfobj.Name(s, dict["Subtype"]); sub != "Form" {
		t.Errorf("Expected Subtype Form, got %s", sub)
	}
	bbox, ok := pdfobj.Rect(s, dict["BBox"])
	if !ok || bbox.Width() != 100 || bbox.Height() != 20 {
		t.Errorf("unexpected BBox %+v", bbox)
	}
	res, _ := s.DereferenceDict(dict["Resources"])
	fontRes, _ := s.DereferenceDict(res["Font"])
	if _, ok := fontRes["Helv"]; !ok {
		t.Errorf("appearance resources lack /Helv: %v", res)
	}

	for _, want := range []string{"/Tx BMC", "/Helv 12 Tf", "<48656C6C6F20576F726C64> Tj", "EMC"} {
		if !strings.Contains(content, want) {
			t.Errorf("Expected %q in %s", want, content)
		}
	}
}

func TestGenerateQuaddingAndAutoSize(t *testing.T) {
	f, s := setup(t, pdftest.Field{
		Name: "c", Type: "Tx", Value: "Hi", Q: 1, Rect: [4]float64{0, 0, 100, 10},
	})
	field, _ := f.Field("c")
	if _, err := NewGenerator(f).Generate(field); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	_, content := appearanceOf(t, s, field.Widgets()[0])
	if strings.Contains(content, "/Helv 0 Tf") {
		t.Errorf("auto size should resolve to a concrete size: %s", content)
	}
	if !strings.Contains(content, "/Helv 6 Tf") {
		t.Errorf("expected height-fitted 6pt text: %s", content)
	}
}

func TestGenerateMultiline(t *testing.T) {
	f, s := setup(t, pdftest.Field{
		Name: "notes", Type: "Tx", DA: "/Helv 10 Tf 0 g", Value: "first\nsecond",
		Flags: form.FlagMultiline, Rect: [4]float64{0, 0, 200, 60},
	})
	field, _ := f.Field("notes")
	if _, err := NewGenerator(f).Generate(field); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	_, content := appearanceOf(t, s, field.Widgets()[0])
	if strings.Count(content, " Tj") != 2 {
		t.Errorf("expected two shown lines: %s", content)
	}
}

func TestGenerateEmptyValue(t *testing.T) {
	f, s := setup(t, pdftest.Field{Name: "e", Type: "Tx", Widgets: 2})
	field, _ := f.Field("e")
	n, err := NewGenerator(f).Generate(field)
	if err != nil || n != 2 {
		t.Fatalf("Generate: %d %v", n, err)
	}
	_, content := appearanceOf(t, s, field.Widgets()[1])
	if content != "/Tx BMC\nEMC\n" {
		t.Errorf("unexpected empty appearance %q", content)
	}
}

func TestGenerateRejectsSignature(t *testing.T) {
	f, _ := setup(t, pdftest.Field{Name: "sig", Type: "Sig"})
	field, _ := f.Field("sig")
	if _, err := NewGenerator(f).Generate(field); err == nil {
		t.Fatalf("expected error for signature field")
	}
}

func TestWrap(t *testing.T) {
	f, _ := setup(t, pdftest.Field{Name: "x", Type: "Tx", DA: "/Helv 10 Tf 0 g"})
	field, _ := f.Field("x")
	face, _, err := field.Face()
	if err != nil {
		t.Fatalf("face: %v", err)
	}
	// Helvetica here has no /Widths, so every glyph is 500 units: 5pt at 10pt.
	got := wrap(face, []string{"aaaa bbbb cccc"}, 10, 40)
	if len(got) != 3 || got[0] != "aaaa" || got[2] != "cccc" {
		t.Fatalf("unexpected wrap %q", got)
	}
}
