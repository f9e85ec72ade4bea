package fill

import (
	"fmt"
	"strings"

	"github.com/wudi/formfill/fonts"
	"github.com/wudi/formfill/form"
	"github.com/wudi/formfill/observability"
)

// Tier selects a fallback font.
type Tier int

const (
	// TierRegular is the regular face, or the bold one when the field's
	// appearance asks for bold.
	TierRegular Tier = 1
	// TierBold is the bold face.
	TierBold Tier = 2
	// TierBroad is the face with the widest character coverage.
	TierBroad Tier = 3
)

func (t Tier) String() string {
	switch t {
	case TierRegular:
		return "regular"
	case TierBold:
		return "bold"
	case TierBroad:
		return "broad"
	}
	return fmt.Sprintf("tier(%d)", int(t))
}

// Resolved is a fallback font registered in the form resources.
type Resolved struct {
	ID    string
	Size  string
	Tier  Tier
	Asset string
}

// DA is the appearance string selecting the font.
func (r *Resolved) DA() string { return form.FormatDA(r.ID, r.Size) }

// Apply makes the font the form default and the field's own appearance font.
func (r *Resolved) Apply(f *form.Form, field *form.Field) {
	da := r.DA()
	f.SetDefaultAppearance(da)
	field.SetDefaultAppearance(da)
}

// FontResolver embeds fallback fonts on demand, each at most once per document.
type FontResolver struct {
	form   *form.Form
	assets [3]string
	ids    map[string]string
	log    observability.Logger
}

func NewFontResolver(f *form.Form, assets [3]string, log observability.Logger) *FontResolver {
	return &FontResolver{form: f, assets: assets, ids: make(map[string]string), log: log}
}

// Resolve returns the fallback font for tier, sized after da.
func (r *FontResolver) Resolve(da string, tier Tier) (*Resolved, error) {
	asset, err := r.asset(da, tier)
	if err != nil {
		return nil, err
	}
	id, err := r.register(asset)
	if err != nil {
		return nil, err
	}
	return &Resolved{ID: id, Size: form.SizeToken(da), Tier: tier, Asset: asset}, nil
}

func (r *FontResolver) asset(da string, tier Tier) (string, error) {
	switch tier {
	case TierRegular:
		if strings.Contains(strings.ToLower(da), "bold") {
			return r.assets[1], nil
		}
		return r.assets[0], nil
	case TierBold:
		return r.assets[1], nil
	case TierBroad:
		return r.assets[2], nil
	}
	return "", fmt.Errorf("unknown font tier %d", int(tier))
}

func (r *FontResolver) register(asset string) (string, error) {
	if id, ok := r.ids[asset]; ok {
		return id, nil
	}
	p, err := fonts.LoadAsset(asset)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFontAsset, err)
	}
	ref, err := fonts.Embed(r.form.Store(), p)
	if err != nil {
		return "", fmt.Errorf("%w: embed %s: %v", ErrFontAsset, asset, err)
	}
	id, err := r.form.RegisterFont(ref, p.Face())
	if err != nil {
		return "", err
	}
	r.ids[asset] = id
	r.log.Debug("registered fallback font",
		observability.String("asset", asset),
		observability.String("font", p.Name),
		observability.String("id", id))
	return id, nil
}
