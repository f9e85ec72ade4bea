// Package pdfobj holds the small object-level helpers shared by the form,
// font and appearance packages. Objects come from pdfcpu's object model.
package pdfobj

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/filter"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Store resolves and allocates indirect objects.
// *model.Context satisfies it.
type Store interface {
	Dereference(o types.Object) (types.Object, error)
	DereferenceDict(o types.Object) (types.Dict, error)
	DereferenceArray(o types.Object) (types.Array, error)
	DereferenceStreamDict(o types.Object) (*types.StreamDict, bool, error)
	IndRefForNewObject(o types.Object) (*types.IndirectRef, error)
}

// Name resolves o to a name.
func Name(s Store, o types.Object) (string, bool) {
	o, err := s.Dereference(o)
	if err != nil || o == nil {
		return "", false
	}
	n, ok := o.(types.Name)
	return string(n), ok
}

// Int resolves o to an integer. Reals are truncated.
func Int(s Store, o types.Object) (int, bool) {
	o, err := s.Dereference(o)
	if err != nil || o == nil {
		return 0, false
	}
	switch v := o.(type) {
	case types.Integer:
		return int(v), true
	case types.Float:
		return int(v), true
	}
	return 0, false
}

// Number resolves o to a float.
func Number(s Store, o types.Object) (float64, bool) {
	o, err := s.Dereference(o)
	if err != nil || o == nil {
		return 0, false
	}
	switch v := o.(type) {
	case types.Integer:
		return float64(v), true
	case types.Float:
		return float64(v), true
	}
	return 0, false
}

// Bytes resolves o to the raw bytes of a string object.
func Bytes(s Store, o types.Object) ([]byte, bool) {
	o, err := s.Dereference(o)
	if err != nil || o == nil {
		return nil, false
	}
	switch v := o.(type) {
	case types.StringLiteral:
		return Unescape(string(v)), true
	case types.HexLiteral:
		return DecodeHex(string(v)), true
	}
	return nil, false
}

// Text resolves o to a text string.
func Text(s Store, o types.Object) (string, bool) {
	b, ok := Bytes(s, o)
	if !ok {
		return "", false
	}
	return DecodeText(b), true
}

// Rectangle is a normalised /Rect.
type Rectangle struct {
	LLX, LLY, URX, URY float64
}

func (r Rectangle) Width() float64  { return r.URX - r.LLX }
func (r Rectangle) Height() float64 { return r.URY - r.LLY }

// Rect resolves o to a rectangle with the lower-left corner first.
func Rect(s Store, o types.Object) (Rectangle, bool) {
	arr, err := s.DereferenceArray(o)
	if err != nil || len(arr) != 4 {
		return Rectangle{}, false
	}
	var v [4]float64
	for i := range arr {
		n, ok := Number(s, arr[i])
		if !ok {
			return Rectangle{}, false
		}
		v[i] = n
	}
	r := Rectangle{LLX: v[0], LLY: v[1], URX: v[2], URY: v[3]}
	if r.LLX > r.URX {
		r.LLX, r.URX = r.URX, r.LLX
	}
	if r.LLY > r.URY {
		r.LLY, r.URY = r.URY, r.LLY
	}
	return r, true
}

// StreamContent returns the decoded content of the stream o refers to.
func StreamContent(s Store, o types.Object) ([]byte, error) {
	sd, _, err := s.DereferenceStreamDict(o)
	if err != nil {
		return nil, err
	}
	if sd == nil {
		return nil, fmt.Errorf("not a stream")
	}
	if sd.Content == nil {
		if err := sd.Decode(); err != nil {
			return nil, fmt.Errorf("decode stream: %w", err)
		}
	}
	return sd.Content, nil
}

// NewStream stores content as a new stream object, Flate compressed when compress is set.
func NewStream(s Store, d types.Dict, content []byte, compress bool) (types.IndirectRef, error) {
	if d == nil {
		d = types.NewDict()
	}
	sd := types.StreamDict{Dict: d, Content: content}
	if compress {
		sd.FilterPipeline = []types.PDFFilter{{Name: filter.Flate}}
		sd.Dict["Filter"] = types.Name(filter.Flate)
	}
	if err := sd.Encode(); err != nil {
		return types.IndirectRef{}, fmt.Errorf("encode stream: %w", err)
	}
	length := int64(len(sd.Raw))
	sd.StreamLength = &length
	sd.Dict["Length"] = types.Integer(length)
	ref, err := s.IndRefForNewObject(sd)
	if err != nil {
		return types.IndirectRef{}, err
	}
	return *ref, nil
}
