package lattice

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// BCC is a body-centred cubic primitive basis. Its Brillouin zone is a
// rhombic dodecahedron.
var BCC = Basis{
	A1: r3.Vec{X: -0.5, Y: 0.5, Z: 0.5},
	A2: r3.Vec{X: 0.5, Y: -0.5, Z: 0.5},
	A3: r3.Vec{X: 0.5, Y: 0.5, Z: -0.5},
}

// Presets maps short names to well-known bases.
var Presets = map[string]Basis{
	"sc":  SimpleCubic,
	"fcc": FCC,
	"bcc": BCC,
}

// PresetNames returns the preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for n := range Presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// LookupPreset returns the named basis.
func LookupPreset(name string) (Basis, error) {
	b, ok := Presets[strings.ToLower(name)]
	if !ok {
		return Basis{}, &InputError{
			Field:  "preset",
			Reason: fmt.Sprintf("unknown preset %q, want one of %s", name, strings.Join(PresetNames(), ", ")),
		}
	}
	return b, nil
}

// ParseVector parses a comma-separated triple such as "1,0,0".
func ParseVector(field, s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return nil, &InputError{Field: field, Reason: fmt.Sprintf("must have exactly 3 components, got %d", len(parts))}
	}
	v := make([]float64, 3)
	for i, p := range parts {
		x, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, &InputError{Field: field, Reason: fmt.Sprintf("component %d is not a number", i+1)}
		}
		v[i] = x
	}
	return v, nil
}
