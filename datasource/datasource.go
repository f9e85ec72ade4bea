// Package datasource loads the key/value mapping a form is filled from.
package datasource

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrEmpty     = errors.New("data source is empty")
	ErrMalformed = errors.New("malformed data source")
)

// Mapping maps field names to the text to fill in. It is not modified
// after loading.
type Mapping map[string]string

// Keys returns the keys in sorted order.
func (m Mapping) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Load reads a JSON or YAML object from path.
func Load(path string) (Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("datasource: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse reads data as YAML when source ends in .yaml or .yml and as
// strict JSON otherwise. Strings are taken as is, numbers and booleans in
// their literal form, nested objects and arrays as compact JSON. Null
// entries are left out.
func Parse(data []byte, source string) (Mapping, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("datasource: %s: %w", source, ErrEmpty)
	}
	switch strings.ToLower(filepath.Ext(source)) {
	case ".yaml", ".yml":
		return parseYAML(data, source)
	}
	return parseJSON(data, source)
}

func parseJSON(data []byte, source string) (Mapping, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("datasource: %s: %w: %v", source, ErrMalformed, err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("datasource: %s: %w: trailing data after object", source, ErrMalformed)
	}
	if raw == nil {
		return nil, fmt.Errorf("datasource: %s: top level is not an object", source)
	}
	out := make(Mapping, len(raw))
	for k, v := range raw {
		s, ok, err := jsonText(v)
		if err != nil {
			return nil, fmt.Errorf("datasource: %s: key %q: %w", source, k, err)
		}
		if ok {
			out[k] = s
		}
	}
	return out, nil
}

func jsonText(v interface{}) (string, bool, error) {
	switch t := v.(type) {
	case nil:
		return "", false, nil
	case string:
		return t, true, nil
	case json.Number:
		return t.String(), true, nil
	case bool:
		if t {
			return "true", true, nil
		}
		return "false", true, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", false, err
	}
	return string(b), true, nil
}

func parseYAML(data []byte, source string) (Mapping, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("datasource: %s: %w: %v", source, ErrMalformed, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("datasource: %s: top level is not a mapping", source)
	}
	root := doc.Content[0]
	out := make(Mapping, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		if val.Kind == yaml.AliasNode && val.Alias != nil {
			val = val.Alias
		}
		switch val.Kind {
		case yaml.ScalarNode:
			if val.Tag == "!!null" {
				continue
			}
			out[key.Value] = val.Value
		default:
			var v interface{}
			if err := val.Decode(&v); err != nil {
				return nil, fmt.Errorf("datasource: %s: key %q: %w", source, key.Value, err)
			}
			b, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("datasource: %s: key %q: %w", source, key.Value, err)
			}
			out[key.Value] = string(b)
		}
	}
	return out, nil
}
