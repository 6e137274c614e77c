package lattice

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/lattice.report/internal/geometry"
)

// DefaultSpacing is applied when a request omits spacing.
const DefaultSpacing = 1.0

// Request carries raw direct lattice vectors and an optional uniform spacing.
type Request struct {
	A1      []float64 `json:"a1"`
	A2      []float64 `json:"a2"`
	A3      []float64 `json:"a3"`
	Spacing *float64  `json:"spacing,omitempty"`
}

// UnmarshalJSON accepts spacing as a JSON number or a numeric string such as
// "2".
func (r *Request) UnmarshalJSON(data []byte) error {
	type plain Request
	aux := struct {
		*plain
		Spacing json.RawMessage `json:"spacing"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.Spacing = nil
	raw := bytes.TrimSpace(aux.Spacing)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var v float64
	if raw[0] == '"' {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return &InputError{Field: "spacing", Reason: "must be a number"}
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
		if err != nil {
			return &InputError{Field: "spacing", Reason: fmt.Sprintf("must be a number, got %q", str)}
		}
		v = f
	} else if err := json.Unmarshal(raw, &v); err != nil {
		return &InputError{Field: "spacing", Reason: "must be a number"}
	}
	r.Spacing = &v
	return nil
}

// GetSpacing returns the spacing or DefaultSpacing.
func (r Request) GetSpacing() float64 {
	if r.Spacing == nil {
		return DefaultSpacing
	}
	return *r.Spacing
}

// Validate checks that all vectors are present with three finite components
// and that spacing is a positive finite number.
func (r Request) Validate() error {
	for _, f := range []struct {
		name string
		v    []float64
	}{{"a1", r.A1}, {"a2", r.A2}, {"a3", r.A3}} {
		if f.v == nil {
			return &InputError{Field: f.name, Reason: "is required"}
		}
		if len(f.v) != 3 {
			return &InputError{Field: f.name, Reason: fmt.Sprintf("must have exactly 3 components, got %d", len(f.v))}
		}
		for _, x := range f.v {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return &InputError{Field: f.name, Reason: "components must be finite numbers"}
			}
		}
	}
	s := r.GetSpacing()
	if math.IsNaN(s) || math.IsInf(s, 0) || s <= 0 {
		return &InputError{Field: "spacing", Reason: fmt.Sprintf("must be a positive number, got %g", s)}
	}
	return nil
}

// Basis validates the request and returns the scaled direct basis.
func (r Request) Basis() (Basis, error) {
	if err := r.Validate(); err != nil {
		return Basis{}, err
	}
	return NewBasis(r.A1, r.A2, r.A3, r.GetSpacing())
}

// RequestFor builds a Request from a basis with unit spacing.
func RequestFor(b Basis) Request {
	vec := func(v r3.Vec) []float64 { return []float64{v.X, v.Y, v.Z} }
	return Request{A1: vec(b.A1), A2: vec(b.A2), A3: vec(b.A3)}
}

// LatticeResult is a reciprocal basis with a display cloud of its points.
type LatticeResult struct {
	Points     []r3.Vec
	Reciprocal Reciprocal
}

// CalculatorConfig configures a Calculator.
type CalculatorConfig struct {
	// DisplayRadius is the diamond radius of the reciprocal lattice cloud.
	DisplayRadius int

	Extractor ExtractorConfig
}

// DefaultCalculatorConfig returns the default configuration.
func DefaultCalculatorConfig() CalculatorConfig {
	return CalculatorConfig{
		DisplayRadius: 2,
		Extractor:     DefaultExtractorConfig(),
	}
}

// Calculator is the entry point for both lattice operations. It holds no
// per-request state and is safe for concurrent use.
type Calculator struct {
	displayRadius int
	extractor     *Extractor
}

// NewCalculator creates a Calculator. A nil backend selects the default
// geometry.Clipper.
func NewCalculator(cfg CalculatorConfig, backend geometry.Backend) *Calculator {
	if cfg.DisplayRadius < 0 {
		cfg.DisplayRadius = 0
	}
	return &Calculator{
		displayRadius: cfg.DisplayRadius,
		extractor:     NewExtractor(cfg.Extractor, backend),
	}
}

// Config returns the effective configuration.
func (c *Calculator) Config() CalculatorConfig {
	return CalculatorConfig{DisplayRadius: c.displayRadius, Extractor: c.extractor.Config()}
}

// ReciprocalLattice computes the reciprocal basis of the request and a
// diamond-bounded cloud of reciprocal lattice points.
func (c *Calculator) ReciprocalLattice(req Request) (*LatticeResult, error) {
	b, err := req.Basis()
	if err != nil {
		return nil, err
	}
	r, err := ReciprocalOf(b)
	if err != nil {
		return nil, err
	}
	return &LatticeResult{
		Points:     DiamondPoints(r.B1, r.B2, r.B3, c.displayRadius),
		Reciprocal: r,
	}, nil
}

// BrillouinZone computes the first Brillouin zone of the request's lattice.
func (c *Calculator) BrillouinZone(req Request) (*Zone, error) {
	b, err := req.Basis()
	if err != nil {
		return nil, err
	}
	r, err := ReciprocalOf(b)
	if err != nil {
		return nil, err
	}
	return c.extractor.Extract(r)
}
