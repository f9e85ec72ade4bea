package fonts

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-fonts/dejavu/dejavusans"
	"github.com/go-fonts/liberation/liberationserifbold"
	"github.com/go-fonts/liberation/liberationserifregular"
)

// Built-in asset names.
const (
	AssetSerif     = "liberation-serif"
	AssetSerifBold = "liberation-serif-bold"
	// AssetBroad has the widest character coverage of the bundled fonts.
	AssetBroad = "dejavu-sans"
)

var ErrUnknownAsset = errors.New("unknown font asset")

var (
	assetsMu sync.Mutex
	assets   = map[string][]byte{
		AssetSerif:     liberationserifregular.TTF,
		AssetSerifBold: liberationserifbold.TTF,
		AssetBroad:     dejavusans.TTF,
	}
	programs = map[string]*Program{}
)

// LoadAsset returns the parsed program for a bundled asset name. Programs
// are parsed once per process.
func LoadAsset(name string) (*Program, error) {
	assetsMu.Lock()
	defer assetsMu.Unlock()
	if p, ok := programs[name]; ok {
		return p, nil
	}
	data, ok := assets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAsset, name)
	}
	p, err := LoadTrueType(name, data)
	if err != nil {
		return nil, fmt.Errorf("font asset %s: %w", name, err)
	}
	programs[name] = p
	return p, nil
}
