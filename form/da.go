package form

import (
	"fmt"
	"strings"
)

// DefaultAppearance is a parsed /DA string.
type DefaultAppearance struct {
	Font  string
	Size  float64
	Color []float64
}

// ParseDA reads the font, size and fill color operators of a /DA string.
func ParseDA(da string) DefaultAppearance {
	var out DefaultAppearance
	parts := strings.Fields(da)
	for i := 0; i < len(parts); i++ {
		switch parts[i] {
		case "Tf":
			if i >= 2 && strings.HasPrefix(parts[i-2], "/") {
				out.Font = parts[i-2][1:]
				fmt.Sscanf(parts[i-1], "%g", &out.Size)
			}
		case "g":
			if i >= 1 {
				out.Color = scanFloats(parts[i-1 : i])
			}
		case "rg":
			if i >= 3 {
				out.Color = scanFloats(parts[i-3 : i])
			}
		case "k":
			if i >= 4 {
				out.Color = scanFloats(parts[i-4 : i])
			}
		}
	}
	if out.Font == "" {
		for _, p := range parts {
			if strings.HasPrefix(p, "/") {
				out.Font = p[1:]
				break
			}
		}
	}
	return out
}

func scanFloats(parts []string) []float64 {
	out := make([]float64, len(parts))
	for i, p := range parts {
		fmt.Sscanf(p, "%g", &out[i])
	}
	return out
}

// SizeToken returns the second whitespace separated token of da when it
// consists of digits only, and "0" otherwise.
func SizeToken(da string) string {
	parts := strings.Fields(da)
	if len(parts) < 2 || parts[1] == "" {
		return "0"
	}
	for _, c := range parts[1] {
		if c < '0' || c > '9' {
			return "0"
		}
	}
	return parts[1]
}

// FormatDA builds the appearance string selecting font id at size with black fill.
func FormatDA(id, size string) string {
	return "/" + id + " " + size + " Tf 0 g"
}
