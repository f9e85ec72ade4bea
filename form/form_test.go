package form

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/wudi/formfill/fonts"
	"github.com/wudi/formfill/internal/memstore"
	"github.com/wudi/formfill/internal/pdftest"
	"github.com/wudi/formfill/pdfobj"
)

func loadForm(t *testing.T, doc pdftest.Doc) (*Form, *memstore.Store) {
	t.Helper()
	s := memstore.New()
	root := pdftest.Build(s, doc)
	catalog, err := s.DereferenceDict(root)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	f, err := Load(s, catalog)
	if err != nil {
		t.Fatalf("load form: %v", err)
	}
	return f, s
}

func sampleDoc() pdftest.Doc {
	return pdftest.Doc{
		DA: "/Helv 0 Tf 0 g",
		Fields: []pdftest.Field{
			{Name: "name", Type: "Tx", DA: "/Helv 12 Tf 0 g", Border: true},
			{Name: "address", Type: "Tx", Kids: []pdftest.Field{
				{Name: "street", Border: true},
				{Name: "city", Widgets: 2, Border: true},
			}},
			{Name: "sig", Type: "Sig"},
			{Name: "agree", Type: "Btn"},
		},
	}
}

func TestLoadFieldTree(t *testing.T) {
	f, _ := loadForm(t, sampleDoc())

	var top []string
	for _, fl := range f.Fields() {
		top = append(top, fl.Name()+":"+fl.Kind().String())
	}
	want := []string{"name:text", "address:text", "sig:signature", "agree:other"}
	if diff := cmp.Diff(want, top); diff != "" {
		t.Fatalf("top-level fields (-want +got):\n%s", diff)
	}

	var terminals []string
	for _, fl := range f.Terminals() {
		terminals = append(terminals, fl.FullName())
	}
	want = []string{"name", "address.street", "address.city", "sig", "agree"}
	if diff := cmp.Diff(want, terminals); diff != "" {
		t.Fatalf("terminals (-want +got):\n%s", diff)
	}

	city, err := f.Field("address.city")
	if err != nil {
		t.Fatalf("qualified lookup: %v", err)
	}
	if city.Type() != "Tx" {
		t.Fatalf("FT should be inherited, got %q", city.Type())
	}
	if len(city.Widgets()) != 2 {
		t.Fatalf("city should have 2 widgets, got %d", len(city.Widgets()))
	}
}

func TestFieldNotFound(t *testing.T) {
	f, _ := loadForm(t, sampleDoc())
	_, err := f.Field("missing")
	if !errors.Is(err, ErrFieldNotFound) {
		t.Fatalf("expected ErrFieldNotFound, got %v", err)
	}
	var fe *FieldError
	if !errors.As(err, &fe) || fe.Field != "missing" {
		t.Fatalf("expected FieldError naming the field, got %v", err)
	}
}

func TestLoadNoForm(t *testing.T) {
	s := memstore.New()
	root := pdftest.Build(s, pdftest.Doc{NoForm: true})
	catalog, _ := s.DereferenceDict(root)
	if _, err := Load(s, catalog); !errors.Is(err, ErrNoForm) {
		t.Fatalf("expected ErrNoForm, got %v", err)
	}
}

func TestDefaultAppearanceInheritance(t *testing.T) {
	f, _ := loadForm(t, sampleDoc())
	name, _ := f.Field("name")
	if got := name.DefaultAppearance(); got != "/Helv 12 Tf 0 g" {
		t.Fatalf("own DA: %q", got)
	}
	street, _ := f.Field("address.street")
	if got := street.DefaultAppearance(); got != "/Helv 0 Tf 0 g" {
		t.Fatalf("form DA should apply: %q", got)
	}
}

func TestSetDefaultAppearancePropagates(t *testing.T) {
	doc := pdftest.Doc{Fields: []pdftest.Field{
		{Name: "group", Type: "Tx", Kids: []pdftest.Field{
			{Name: "a", DA: "/Helv 9 Tf 0 g"},
			{Name: "b"},
		}},
	}}
	f, _ := loadForm(t, doc)
	group, _ := f.Field("group")
	group.SetDefaultAppearance("/F1 9 Tf 0 g")
	for _, name := range []string{"group.a", "group.b"} {
		fl, _ := f.Field(name)
		if got := fl.DefaultAppearance(); got != "/F1 9 Tf 0 g" {
			t.Errorf("%s DA = %q", name, got)
		}
	}
}

func TestReadOnlyFlag(t *testing.T) {
	f, _ := loadForm(t, pdftest.Doc{Fields: []pdftest.Field{{Name: "x", Type: "Tx", Flags: FlagMultiline}}})
	x, _ := f.Field("x")
	if x.ReadOnly() {
		t.Fatalf("field should start writable")
	}
	x.SetReadOnly(true)
	if !x.ReadOnly() || !x.Multiline() {
		t.Fatalf("flags after lock: %d", x.Flags())
	}
	x.SetReadOnly(false)
	if x.ReadOnly() || !x.Multiline() {
		t.Fatalf("flags after unlock: %d", x.Flags())
	}
}

func TestReadOnlyReachesKidsWithOwnFlags(t *testing.T) {
	f, _ := loadForm(t, pdftest.Doc{Fields: []pdftest.Field{{Name: "addr", Type: "Tx", Kids: []pdftest.Field{
		{Name: "street", Flags: FlagMultiline},
		{Name: "city"},
	}}}})
	addr, _ := f.Field("addr")
	addr.SetReadOnly(true)
	for _, name := range []string{"addr", "addr.street", "addr.city"} {
		fl, err := f.Field(name)
		if err != nil {
			t.Fatal(err)
		}
		if !fl.ReadOnly() {
			t.Fatalf("%s editable after locking the parent (flags %d)", name, fl.Flags())
		}
	}
	street, _ := f.Field("addr.street")
	if !street.Multiline() {
		t.Fatalf("kid lost its own flags: %d", street.Flags())
	}
	if _, own := f.Fields()[0].Children()[1].Dict()["Ff"]; own {
		t.Fatalf("kid without /Ff should keep inheriting")
	}
}

func TestClearBorderStyle(t *testing.T) {
	f, _ := loadForm(t, sampleDoc())
	removed := 0
	for _, fl := range f.Fields() {
		removed += fl.ClearBorderStyle()
	}
	if removed != 4 {
		t.Fatalf("expected 4 border styles removed, got %d", removed)
	}
	for _, fl := range f.Terminals() {
		for _, w := range fl.Widgets() {
			if _, ok := w["BS"]; ok {
				t.Fatalf("%s still has /BS", fl.FullName())
			}
		}
	}
}

func TestCommit(t *testing.T) {
	f, _ := loadForm(t, sampleDoc())
	name, _ := f.Field("name")

	out := name.Commit("Zoë (test)")
	if !out.OK() {
		t.Fatalf("commit: %v %v", out.Status, out.Err)
	}
	if got := name.Value(); got != "Zoë (test)" {
		t.Fatalf("value %q", got)
	}

	out = name.Commit("Ωmega")
	if out.Status != EncodingFailed {
		t.Fatalf("expected encoding failure, got %v", out.Status)
	}
	if r, ok := out.UnencodableRune(); !ok || r != 'Ω' {
		t.Fatalf("unencodable rune %q %v", r, ok)
	}
	if got := name.Value(); got != "Zoë (test)" {
		t.Fatalf("failed commit must not change the value, got %q", got)
	}

	sig, _ := f.Field("sig")
	if out := sig.Commit("x"); out.Status != Rejected || !errors.Is(out.Err, ErrNotText) {
		t.Fatalf("signature commit: %v %v", out.Status, out.Err)
	}
}

func TestCommitMissingFont(t *testing.T) {
	f, _ := loadForm(t, pdftest.Doc{Fields: []pdftest.Field{{Name: "x", Type: "Tx", DA: "/Nope 10 Tf 0 g"}}})
	x, _ := f.Field("x")
	out := x.Commit("abc")
	if out.Status != EncodingFailed || !errors.Is(out.Err, ErrFontMissing) {
		t.Fatalf("expected missing font failure, got %v %v", out.Status, out.Err)
	}
}

func TestCommitNonTerminal(t *testing.T) {
	f, _ := loadForm(t, sampleDoc())
	addr, _ := f.Field("address")
	if out := addr.Commit("Main St"); !out.OK() {
		t.Fatalf("commit: %v", out.Err)
	}
	street, _ := f.Field("address.street")
	if got := street.Value(); got != "Main St" {
		t.Fatalf("kids should inherit the value, got %q", got)
	}
}

func TestRegisterFont(t *testing.T) {
	f, s := loadForm(t, pdftest.Doc{NoResources: true, Fields: []pdftest.Field{{Name: "x", Type: "Tx"}}})
	if f.HasResources() {
		t.Fatalf("fixture should have no /DR")
	}
	p, err := fonts.LoadAsset(fonts.AssetSerif)
	if err != nil {
		t.Fatalf("asset: %v", err)
	}
	ref, err := fonts.Embed(s, p)
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	id, err := f.RegisterFont(ref, p.Face())
	if err != nil || id != "F1" {
		t.Fatalf("register: %q %v", id, err)
	}
	id2, _ := f.RegisterFont(ref, nil)
	if id2 != "F2" {
		t.Fatalf("second id %q", id2)
	}
	if !f.HasResources() {
		t.Fatalf("/DR should have been created")
	}
	x, _ := f.Field("x")
	x.SetDefaultAppearance(FormatDA(id, "10"))
	if out := x.Commit("Ωmega"); !out.OK() {
		t.Fatalf("embedded font should encode Greek: %v", out.Err)
	}
	if lit, ok := x.Dict()["V"].(types.HexLiteral); !ok || pdfobj.DecodeText(pdfobj.DecodeHex(string(lit))) != "Ωmega" {
		t.Fatalf("unexpected /V %v", x.Dict()["V"])
	}
}
