// Package fill populates the text fields of a form from a key/value
// mapping, substituting fallback fonts where a field's own font cannot
// show a value, and refreshes the appearance of the result.
package fill

import (
	"context"
	"errors"

	"github.com/wudi/formfill/datasource"
	"github.com/wudi/formfill/fonts"
	"github.com/wudi/formfill/form"
	"github.com/wudi/formfill/observability"
	"github.com/wudi/formfill/recovery"
)

var ErrFontAsset = errors.New("fallback font asset unavailable")

// Config controls a fill run.
type Config struct {
	// LockFields marks every successfully filled field read-only.
	LockFields bool
	// StripBorders removes /BS from the widgets of every top-level field.
	StripBorders bool
	// RefreshAppearances regenerates text widget appearances after filling.
	// When off, /NeedAppearances is set instead.
	RefreshAppearances bool
	// Normalize converts values to Unicode NFC before committing them.
	Normalize bool
	// Fonts names the asset for each tier, TierRegular first.
	Fonts [3]string
	Strategy recovery.Strategy
	Logger   observability.Logger
}

func DefaultConfig() Config {
	return Config{
		LockFields:         true,
		StripBorders:       true,
		RefreshAppearances: true,
		Normalize:          true,
		Fonts:              [3]string{fonts.AssetSerif, fonts.AssetSerifBold, fonts.AssetBroad},
		Strategy:           recovery.NewLenientStrategy(),
		Logger:             observability.NopLogger{},
	}
}

// Session carries everything one fill run over one document needs.
type Session struct {
	Form     *form.Form
	Config   Config
	Resolver *FontResolver
	Setter   *ValueSetter

	log observability.Logger
}

func NewSession(f *form.Form, cfg Config) *Session {
	if cfg.Logger == nil {
		cfg.Logger = observability.NopLogger{}
	}
	if cfg.Strategy == nil {
		cfg.Strategy = recovery.NewLenientStrategy()
	}
	for i, def := range DefaultConfig().Fonts {
		if cfg.Fonts[i] == "" {
			cfg.Fonts[i] = def
		}
	}
	s := &Session{Form: f, Config: cfg, log: cfg.Logger}
	s.Resolver = NewFontResolver(f, cfg.Fonts, cfg.Logger)
	s.Setter = &ValueSetter{session: s}
	return s
}

// Run populates the form from mapping and refreshes appearances.
func (s *Session) Run(ctx context.Context, mapping datasource.Mapping) (Report, error) {
	report, err := NewPopulator(s).Populate(ctx, mapping)
	if err != nil {
		return report, err
	}
	if !s.Config.RefreshAppearances {
		s.Form.SetNeedAppearances(true)
		return report, nil
	}
	refreshed, err := NewAppearanceRefresher(s).Refresh(ctx)
	report.Refreshed = refreshed
	return report, err
}

// fail routes a per-field error through the recovery strategy and
// returns it when the strategy aborts the run.
func (s *Session) fail(ctx context.Context, component, field string, err error) error {
	if s.Config.Strategy.OnError(ctx, err, recovery.Location{Component: component, Field: field}) == recovery.ActionFail {
		return err
	}
	return nil
}
