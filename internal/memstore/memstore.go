// Package memstore is an in-memory object table for tests. It resolves and
// allocates indirect objects the way pdfcpu's model.Context does.
package memstore

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

type Store struct {
	objects map[int]types.Object
	next    int
}

func New() *Store {
	return &Store{objects: make(map[int]types.Object), next: 1}
}

// Add stores o as a new indirect object and returns its reference.
func (s *Store) Add(o types.Object) types.IndirectRef {
	nr := s.next
	s.next++
	s.objects[nr] = o
	return *types.NewIndirectRef(nr, 0)
}

// Set replaces the object stored under ref.
func (s *Store) Set(ref types.IndirectRef, o types.Object) {
	s.objects[int(ref.ObjectNumber)] = o
}

// Max returns the highest allocated object number.
func (s *Store) Max() int { return s.next - 1 }

// Len reports the number of allocated objects.
func (s *Store) Len() int { return len(s.objects) }

// Object returns the object stored under ref.
func (s *Store) Object(ref types.IndirectRef) types.Object {
	return s.objects[int(ref.ObjectNumber)]
}

func (s *Store) IndRefForNewObject(o types.Object) (*types.IndirectRef, error) {
	ref := s.Add(o)
	return &ref, nil
}

func (s *Store) Dereference(o types.Object) (types.Object, error) {
	switch ref := o.(type) {
	case types.IndirectRef:
		return s.objects[int(ref.ObjectNumber)], nil
	case *types.IndirectRef:
		return s.objects[int(ref.ObjectNumber)], nil
	}
	return o, nil
}

func (s *Store) DereferenceDict(o types.Object) (types.Dict, error) {
	o, err := s.Dereference(o)
	if err != nil || o == nil {
		return nil, err
	}
	d, ok := o.(types.Dict)
	if !ok {
		return nil, fmt.Errorf("memstore: expected dict, got %T", o)
	}
	return d, nil
}

func (s *Store) DereferenceArray(o types.Object) (types.Array, error) {
	o, err := s.Dereference(o)
	if err != nil || o == nil {
		return nil, err
	}
	a, ok := o.(types.Array)
	if !ok {
		return nil, fmt.Errorf("memstore: expected array, got %T", o)
	}
	return a, nil
}

func (s *Store) DereferenceStreamDict(o types.Object) (*types.StreamDict, bool, error) {
	_, indirect := o.(types.IndirectRef)
	o, err := s.Dereference(o)
	if err != nil || o == nil {
		return nil, indirect, err
	}
	sd, ok := o.(types.StreamDict)
	if !ok {
		return nil, indirect, fmt.Errorf("memstore: expected stream, got %T", o)
	}
	return &sd, indirect, nil
}
