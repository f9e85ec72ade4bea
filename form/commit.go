package form

import (
	"errors"
	"fmt"

	"github.com/wudi/formfill/fonts"
	"github.com/wudi/formfill/pdfobj"
)

// Status is the result class of a commit.
type Status int

const (
	// Committed means the value was stored.
	Committed Status = iota
	// EncodingFailed means the appearance font cannot show the value.
	// The field is left untouched.
	EncodingFailed
	// Rejected means the field cannot take a text value at all.
	Rejected
)

func (s Status) String() string {
	switch s {
	case Committed:
		return "committed"
	case EncodingFailed:
		return "encoding failed"
	case Rejected:
		return "rejected"
	}
	return "unknown"
}

// Outcome is the typed result of Field.Commit.
type Outcome struct {
	Status Status
	Err    error
}

func (o Outcome) OK() bool { return o.Status == Committed }

// UnencodableRune returns the rune that caused an encoding failure, if known.
func (o Outcome) UnencodableRune() (rune, bool) {
	var ue *fonts.UnencodableError
	if errors.As(o.Err, &ue) {
		return ue.Rune, true
	}
	return 0, false
}

// Commit stores value as the field's /V after checking that the font
// selected by the field's /DA can encode every line of it. Non-terminal
// fields commit to all their terminal text descendants or to none.
func (fl *Field) Commit(value string) Outcome {
	targets := fl.Terminals()
	for _, t := range targets {
		if t.kind != KindText {
			return Outcome{Status: Rejected, Err: &FieldError{Field: t.fullName, Err: ErrNotText}}
		}
	}
	for _, t := range targets {
		if err := t.checkEncodable(value); err != nil {
			return Outcome{Status: EncodingFailed, Err: &FieldError{Field: t.fullName, Err: err}}
		}
	}
	v := pdfobj.EncodeText(value)
	fl.dict["V"] = v
	for _, t := range targets {
		if _, own := t.dict["V"]; own && t != fl {
			t.dict["V"] = v
		}
	}
	return Outcome{Status: Committed}
}

func (fl *Field) checkEncodable(value string) error {
	face, _, err := fl.Face()
	if err != nil {
		return err
	}
	for _, line := range Lines(value) {
		if _, err := face.Encode(line); err != nil {
			return err
		}
	}
	return nil
}

// Face returns the face selected by the field's /DA.
func (fl *Field) Face() (fonts.Face, DefaultAppearance, error) {
	da := ParseDA(fl.DefaultAppearance())
	if da.Font == "" {
		return nil, da, fmt.Errorf("%w: no font in appearance string", ErrFontMissing)
	}
	face, err := fl.form.Face(da.Font)
	return face, da, err
}
