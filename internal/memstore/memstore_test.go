package memstore

import (
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

func TestStoreDereference(t *testing.T) {
	s := New()
	d := types.Dict{"Type": types.Name("Catalog")}
	ref := s.Add(d)

	got, err := s.DereferenceDict(ref)
	if err != nil {
		t.Fatalf("deref: %v", err)
	}
	got["Extra"] = types.Integer(1)
	if _, ok := d["Extra"]; !ok {
		t.Fatalf("dictionaries should be shared, not copied")
	}
	if _, err := s.DereferenceArray(ref); err == nil {
		t.Fatalf("expected type error")
	}
	missing, err := s.DereferenceDict(*types.NewIndirectRef(99, 0))
	if err != nil || missing != nil {
		t.Fatalf("missing object should resolve to nil, got %v %v", missing, err)
	}
}

func TestStoreStreams(t *testing.T) {
	s := New()
	ref, err := s.IndRefForNewObject(types.StreamDict{Dict: types.NewDict(), Content: []byte("abc")})
	if err != nil {
		t.Fatalf("alloc: %v", err)
	}
	sd, indirect, err := s.DereferenceStreamDict(*ref)
	if err != nil || !indirect {
		t.Fatalf("deref stream: %v %v", indirect, err)
	}
	if string(sd.Content) != "abc" {
		t.Fatalf("content %q", sd.Content)
	}
	if s.Len() != 1 || s.Max() != 1 {
		t.Fatalf("len %d max %d", s.Len(), s.Max())
	}
}
