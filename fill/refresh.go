package fill

import (
	"context"

	"github.com/wudi/formfill/appearance"
	"github.com/wudi/formfill/form"
	"github.com/wudi/formfill/observability"
)

// ExcludeSignatures returns a new slice holding the fields that are not
// signature fields. The input is not modified.
func ExcludeSignatures(fields []*form.Field) []*form.Field {
	out := make([]*form.Field, 0, len(fields))
	for _, f := range fields {
		if f.Kind() != form.KindSignature {
			out = append(out, f)
		}
	}
	return out
}

// AppearanceRefresher regenerates widget appearances after filling.
type AppearanceRefresher struct {
	session *Session
}

func NewAppearanceRefresher(s *Session) *AppearanceRefresher {
	return &AppearanceRefresher{session: s}
}

// Refresh regenerates the appearance of every terminal non-signature text
// field. It does nothing when the form has no /DR. Per-field failures are
// logged and skipped; the count of refreshed widgets is returned.
func (r *AppearanceRefresher) Refresh(ctx context.Context) (int, error) {
	s := r.session
	if s.Form == nil || !s.Form.HasResources() {
		s.log.Debug("form has no default resources, appearances left as is")
		return 0, nil
	}
	gen := appearance.NewGenerator(s.Form)
	total := 0
	for _, field := range ExcludeSignatures(s.Form.Terminals()) {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		if field.Kind() != form.KindText {
			continue
		}
		n, err := gen.Generate(field)
		total += n
		if err != nil {
			s.log.Warn("appearance refresh failed",
				observability.String("field", field.FullName()),
				observability.Error("error", err))
		}
	}
	return total, nil
}
