package fill

import (
	"context"

	"github.com/wudi/formfill/datasource"
	"github.com/wudi/formfill/observability"
)

// Report counts what a run did.
type Report struct {
	Filled    int
	Fallback  int
	Failed    int
	NotFound  int
	Skipped   int
	Borders   int
	Refreshed int
}

func (r *Report) add(res Result) {
	switch res {
	case Filled:
		r.Filled++
	case FilledWithFallback:
		r.Fallback++
	case Failed:
		r.Failed++
	case NotFound:
		r.NotFound++
	case Skipped:
		r.Skipped++
	}
}

// Populator walks the top-level fields of a form and fills them.
type Populator struct {
	session *Session
}

func NewPopulator(s *Session) *Populator {
	return &Populator{session: s}
}

// Populate fills every top-level field that has a mapping entry, then the
// remaining keys in sorted order, which may name nested fields by their
// qualified name. Border styles are stripped from every top-level field
// whether or not it was filled.
func (p *Populator) Populate(ctx context.Context, mapping datasource.Mapping) (Report, error) {
	var report Report
	s := p.session
	fields := s.Form.Fields()
	if len(fields) == 0 {
		s.log.Debug("form has no fields")
		return report, nil
	}

	used := make(map[string]bool, len(mapping))
	for _, field := range fields {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		name := field.Name()
		if value, ok := mapping[name]; ok && !used[name] {
			used[name] = true
			s.log.Debug("filling field", observability.String("field", name))
			res, err := s.Setter.Set(ctx, name, value)
			report.add(res)
			if err != nil {
				return report, err
			}
		}
		if s.Config.StripBorders {
			report.Borders += field.ClearBorderStyle()
		}
	}

	for _, key := range mapping.Keys() {
		if used[key] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}
		res, err := s.Setter.Set(ctx, key, mapping[key])
		report.add(res)
		if err != nil {
			return report, err
		}
	}
	return report, nil
}
