// Package appearance regenerates the normal appearance streams of text
// field widgets from their value and default appearance.
package appearance

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/wudi/formfill/fonts"
	"github.com/wudi/formfill/form"
	"github.com/wudi/formfill/pdfobj"
)

const (
	padding     = 2.0
	autoSizeMax = 12.0
	autoSizeMin = 4.0
)

// Generator builds Form XObjects for text widgets.
type Generator struct {
	form *form.Form
}

func NewGenerator(f *form.Form) *Generator {
	return &Generator{form: f}
}

// Generate replaces /AP of every widget of a terminal text field and
// returns the number of widgets updated.
func (g *Generator) Generate(field *form.Field) (int, error) {
	if field.Kind() != form.KindText {
		return 0, fmt.Errorf("unsupported field kind for appearance generation: %s", field.Kind())
	}
	face, da, err := field.Face()
	if err != nil {
		return 0, err
	}
	fontObj := g.form.FontObject(da.Font)
	value := field.Value()

	n := 0
	for i, widget := range field.Widgets() {
		rect, ok := field.Rect(i)
		if !ok {
			continue
		}
		content, err := buildTextStream(field, face, da, value, rect.Width(), rect.Height())
		if err != nil {
			return n, err
		}
		ref, err := g.store(content, rect, da.Font, fontObj)
		if err != nil {
			return n, err
		}
		widget["AP"] = types.Dict{"N": ref}
		n++
	}
	return n, nil
}

func (g *Generator) store(content []byte, rect pdfobj.Rectangle, fontName string, fontObj types.Object) (types.IndirectRef, error) {
	d := types.Dict{
		"Type":     types.Name("XObject"),
		"Subtype":  types.Name("Form"),
		"FormType": types.Integer(1),
		"BBox": types.Array{
			types.Integer(0), types.Integer(0),
			types.Float(round2(rect.Width())), types.Float(round2(rect.Height())),
		},
	}
	if fontObj != nil {
		d["Resources"] = types.Dict{"Font": types.Dict{fontName: fontObj}}
	}
	return pdfobj.NewStream(g.form.Store(), d, content, true)
}

func buildTextStream(field *form.Field, face fonts.Face, da form.DefaultAppearance, value string, width, height float64) ([]byte, error) {
	var buf bytes.Buffer

	// /Tx BMC ... EMC
	buf.WriteString("/Tx BMC\n")
	if value == "" {
		buf.WriteString("EMC\n")
		return buf.Bytes(), nil
	}
	buf.WriteString("q\n")
	buf.WriteString(fmt.Sprintf("1 1 %.2f %.2f re W n\n", width-2, height-2))

	multiline := field.Multiline()
	var lines []string
	if multiline {
		lines = form.Lines(value)
	} else {
		lines = []string{strings.Join(form.Lines(value), " ")}
	}

	fontSize := da.Size
	if fontSize <= 0 {
		fontSize = autoSize(face, lines, width, height, multiline)
	}
	if multiline {
		lines = wrap(face, lines, fontSize, width-2*padding)
	}

	buf.WriteString(fmt.Sprintf("BT\n/%s %g Tf\n", da.Font, round2(fontSize)))
	writeColor(&buf, da.Color)

	lineHeight := (face.Ascent() - face.Descent()) / 1000 * fontSize
	var baseline float64
	if multiline {
		baseline = height - padding - face.Ascent()/1000*fontSize
	} else {
		baseline = (height-lineHeight)/2 - face.Descent()/1000*fontSize
	}

	if field.Comb() && field.MaxLen() > 0 && !multiline {
		if err := writeComb(&buf, face, lines[0], fontSize, width, baseline, field.MaxLen()); err != nil {
			return nil, err
		}
	} else {
		prevX, prevY := 0.0, 0.0
		for i, line := range lines {
			codes, err := face.Encode(line)
			if err != nil {
				return nil, err
			}
			x := lineX(field.Quadding(), face.Width(line)/1000*fontSize, width)
			y := baseline - float64(i)*lineHeight
			buf.WriteString(fmt.Sprintf("%.2f %.2f Td\n", x-prevX, y-prevY))
			buf.WriteString(fmt.Sprintf("<%X> Tj\n", codes))
			prevX, prevY = x, y
		}
	}

	buf.WriteString("ET\n")
	buf.WriteString("Q\n")
	buf.WriteString("EMC\n")
	return buf.Bytes(), nil
}

func lineX(quadding int, textWidth, width float64) float64 {
	switch quadding {
	case 1: // Center
		return (width - textWidth) / 2
	case 2: // Right
		return width - textWidth - padding
	}
	return padding
}

func writeComb(buf *bytes.Buffer, face fonts.Face, text string, fontSize, width, baseline float64, maxLen int) error {
	cell := width / float64(maxLen)
	prevX := 0.0
	for i, r := range []rune(text) {
		if i >= maxLen {
			break
		}
		s := string(r)
		codes, err := face.Encode(s)
		if err != nil {
			return err
		}
		x := float64(i)*cell + (cell-face.Width(s)/1000*fontSize)/2
		y := 0.0
		if i == 0 {
			y = baseline
		}
		buf.WriteString(fmt.Sprintf("%.2f %.2f Td\n", x-prevX, y))
		buf.WriteString(fmt.Sprintf("<%X> Tj\n", codes))
		prevX = x
	}
	return nil
}

// autoSize picks the largest size up to 12pt that fits the widget height,
// and for single lines also its width.
func autoSize(face fonts.Face, lines []string, width, height float64, multiline bool) float64 {
	if multiline {
		return autoSizeMax
	}
	em := (face.Ascent() - face.Descent()) / 1000
	size := autoSizeMax
	if em > 0 {
		if fit := (height - 2*padding) / em; fit < size {
			size = fit
		}
	}
	if w := face.Width(lines[0]) / 1000; w > 0 {
		if fit := (width - 2*padding) / w; fit < size {
			size = fit
		}
	}
	if size < autoSizeMin {
		size = autoSizeMin
	}
	return size
}

// wrap breaks lines at spaces so each fits in width.
func wrap(face fonts.Face, lines []string, fontSize, width float64) []string {
	var out []string
	for _, line := range lines {
		words := strings.Fields(line)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		current := words[0]
		for _, w := range words[1:] {
			candidate := current + " " + w
			if face.Width(candidate)/1000*fontSize > width {
				out = append(out, current)
				current = w
				continue
			}
			current = candidate
		}
		out = append(out, current)
	}
	return out
}

func writeColor(buf *bytes.Buffer, color []float64) {
	switch len(color) {
	case 1:
		buf.WriteString(fmt.Sprintf("%.2f g\n", color[0]))
	case 3:
		buf.WriteString(fmt.Sprintf("%.2f %.2f %.2f rg\n", color[0], color[1], color[2]))
	case 4:
		buf.WriteString(fmt.Sprintf("%.2f %.2f %.2f %.2f k\n", color[0], color[1], color[2], color[3]))
	default:
		buf.WriteString("0 g\n")
	}
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
