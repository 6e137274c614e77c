// Package wave renders the superposition of two travelling cosine waves and
// the beat envelope that moves at the group velocity.
//
// Each case pairs the fixed carrier (ω0/2π = 0.5, k0/2π = 0.4) with a second
// wave chosen so the group velocity is negative, positive or zero while the
// phase velocity stays positive.
package wave

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Carrier frequency and wavenumber, per 2π.
const (
	W0PerTwoPi = 0.5
	K0PerTwoPi = 0.4
)

// ErrUnknownCase is returned by Lookup for names that match no case.
var ErrUnknownCase = errors.New("unknown wave case")

// Case is one preset of the second wave.
type Case struct {
	// Name is the display label, e.g. "Vp>0, Vg<0".
	Name string
	// Slug is used in output filenames.
	Slug string

	W1PerTwoPi float64
	K1PerTwoPi float64
}

// Cases lists the presets in display order.
var Cases = []Case{
	{Name: "Vp>0, Vg<0", Slug: "vp-pos-vg-neg", W1PerTwoPi: 0.7, K1PerTwoPi: 0.2},
	{Name: "Vp>0, Vg>0", Slug: "vp-pos-vg-pos", W1PerTwoPi: 0.6, K1PerTwoPi: 0.5},
	{Name: "Vp>0, Vg=0", Slug: "vp-pos-vg-zero", W1PerTwoPi: 0.5, K1PerTwoPi: 0.6},
}

// Lookup finds a case by display name or slug.
func Lookup(name string) (Case, error) {
	for _, c := range Cases {
		if c.Name == name || c.Slug == name {
			return c, nil
		}
	}
	return Case{}, fmt.Errorf("%w: %q", ErrUnknownCase, name)
}

// Filename returns the output file name for c.
func (c Case) Filename() string {
	return "phase_group_velocity_" + c.Slug + ".html"
}

// Params are the angular frequencies and wavenumbers of both waves.
type Params struct {
	W0, K0 float64
	W1, K1 float64
}

// Params converts the per-2π values of c to angular units.
func (c Case) Params() Params {
	return Params{
		W0: 2 * math.Pi * W0PerTwoPi,
		K0: 2 * math.Pi * K0PerTwoPi,
		W1: 2 * math.Pi * c.W1PerTwoPi,
		K1: 2 * math.Pi * c.K1PerTwoPi,
	}
}

// DeltaW returns (ω0 - ω1) / 2.
func (p Params) DeltaW() float64 { return (p.W0 - p.W1) / 2 }

// DeltaK returns (k0 - k1) / 2.
func (p Params) DeltaK() float64 { return (p.K0 - p.K1) / 2 }

// PhaseVelocity returns the speed of the carrier, mean ω over mean k.
func (p Params) PhaseVelocity() float64 {
	return (p.W0 + p.W1) / (p.K0 + p.K1)
}

// GroupVelocity returns Δω/Δk, the speed of the envelope. Equal wavenumbers
// give an infinite group velocity unless the frequencies are equal too.
func (p Params) GroupVelocity() float64 {
	dw, dk := p.DeltaW(), p.DeltaK()
	if dw == 0 {
		return 0
	}
	return dw / dk
}

// Frame holds every curve at time T sampled at X.
type Frame struct {
	T        float64
	X        []float64
	F0, F1   []float64
	Sum      []float64
	Envelope []float64
}

// Linspace returns n evenly spaced samples over [lo, hi].
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}

// At evaluates both waves, their sum and the positive envelope at time t.
func (p Params) At(x []float64, t float64) Frame {
	f := Frame{
		T:        t,
		X:        x,
		F0:       make([]float64, len(x)),
		F1:       make([]float64, len(x)),
		Sum:      make([]float64, len(x)),
		Envelope: make([]float64, len(x)),
	}
	dw, dk := p.DeltaW(), p.DeltaK()
	for i, xi := range x {
		f.F0[i] = math.Cos(p.W0*t - p.K0*xi)
		f.F1[i] = math.Cos(p.W1*t - p.K1*xi)
		f.Envelope[i] = 2 * math.Cos(dw*t-dk*xi)
	}
	floats.AddTo(f.Sum, f.F0, f.F1)
	return f
}
