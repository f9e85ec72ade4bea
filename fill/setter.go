package fill

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/wudi/formfill/form"
	"github.com/wudi/formfill/observability"
)

// Result classifies what Set did with a value.
type Result int

const (
	Filled Result = iota
	FilledWithFallback
	Failed
	NotFound
	Skipped
)

func (r Result) String() string {
	switch r {
	case Filled:
		return "filled"
	case FilledWithFallback:
		return "filled with fallback"
	case Failed:
		return "failed"
	case NotFound:
		return "not found"
	case Skipped:
		return "skipped"
	}
	return "unknown"
}

// escalation is the order fallback fonts are tried in after the field's own.
var escalation = []Tier{TierRegular, TierBroad}

// ValueSetter commits one value into one field.
type ValueSetter struct {
	session *Session
}

// Set looks name up and commits value, escalating through the fallback
// fonts while the field's font cannot encode it. Only a fatal condition
// or a strategy that aborts yields an error.
func (v *ValueSetter) Set(ctx context.Context, name, value string) (Result, error) {
	s := v.session
	log := s.log.With(observability.String("field", name))

	field, err := s.Form.Field(name)
	if err != nil {
		if errors.Is(err, form.ErrFieldNotFound) {
			log.Warn("field not found")
			return NotFound, s.fail(ctx, "setter", name, err)
		}
		return Failed, err
	}

	value = v.prepare(field, value)
	da := field.DefaultAppearance()

	out := field.Commit(value)
	switch out.Status {
	case form.Committed:
		v.lock(field)
		return Filled, nil
	case form.Rejected:
		log.Warn("field cannot take a text value", observability.String("type", field.Type()))
		return Skipped, s.fail(ctx, "setter", name, out.Err)
	}

	for _, tier := range escalation {
		v.logEncodingFailure(log, out, tier)
		resolved, err := s.Resolver.Resolve(da, tier)
		if err != nil {
			return Failed, err
		}
		resolved.Apply(s.Form, field)
		out = field.Commit(value)
		if out.OK() {
			v.lock(field)
			log.Info("filled with fallback font",
				observability.String("tier", tier.String()),
				observability.String("font", resolved.ID),
				observability.String("asset", resolved.Asset))
			return FilledWithFallback, nil
		}
	}

	log.Error("no fallback font can encode the value", observability.Error("error", out.Err))
	return Failed, s.fail(ctx, "setter", name, fmt.Errorf("encode value: %w", out.Err))
}

func (v *ValueSetter) prepare(field *form.Field, value string) string {
	if v.session.Config.Normalize {
		value = norm.NFC.String(value)
	}
	if !field.Multiline() {
		value = strings.Join(form.Lines(value), " ")
	}
	return value
}

func (v *ValueSetter) lock(field *form.Field) {
	if v.session.Config.LockFields {
		field.SetReadOnly(true)
	}
}

func (v *ValueSetter) logEncodingFailure(log observability.Logger, out form.Outcome, next Tier) {
	fields := []observability.Field{
		observability.String("next", next.String()),
		observability.Error("error", out.Err),
	}
	if r, ok := out.UnencodableRune(); ok {
		fields = append(fields, observability.Rune("rune", r))
	}
	log.Info("font cannot encode value, trying fallback", fields...)
}
