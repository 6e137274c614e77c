package lattice

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Reciprocal is the reciprocal basis of a direct lattice, satisfying
// ai·bj = 2π δij.
type Reciprocal struct {
	B1, B2, B3 r3.Vec
}

// ReciprocalOf computes the reciprocal basis of b. It fails with a
// *DegenerateBasisError when the cell volume is zero or indistinguishable from
// zero, or when the cell is so small that the reciprocal vectors overflow.
func ReciprocalOf(b Basis) (Reciprocal, error) {
	if b.degenerate() {
		return Reciprocal{}, &DegenerateBasisError{Volume: b.Volume()}
	}
	f := 2 * math.Pi / b.Volume()
	r := Reciprocal{
		B1: r3.Scale(f, r3.Cross(b.A2, b.A3)),
		B2: r3.Scale(f, r3.Cross(b.A3, b.A1)),
		B3: r3.Scale(f, r3.Cross(b.A1, b.A2)),
	}
	// Subnormal volumes slip past the relative tolerance because the norm
	// product underflows with them.
	if math.IsInf(f, 0) || !isFinite(r.B1) || !isFinite(r.B2) || !isFinite(r.B3) {
		return Reciprocal{}, &DegenerateBasisError{Volume: b.Volume()}
	}
	return r, nil
}

// Direct returns the direct basis whose reciprocal is r. The relation is
// symmetric, so the same formula applies.
func (r Reciprocal) Direct() Basis {
	b := Basis{A1: r.B1, A2: r.B2, A3: r.B3}
	f := 2 * math.Pi / b.Volume()
	return Basis{
		A1: r3.Scale(f, r3.Cross(r.B2, r.B3)),
		A2: r3.Scale(f, r3.Cross(r.B3, r.B1)),
		A3: r3.Scale(f, r3.Cross(r.B1, r.B2)),
	}
}

// Vectors returns the reciprocal basis as an array.
func (r Reciprocal) Vectors() [3]r3.Vec {
	return [3]r3.Vec{r.B1, r.B2, r.B3}
}

// Volume returns the reciprocal cell volume b1·(b2×b3), which equals
// (2π)³ divided by the direct cell volume.
func (r Reciprocal) Volume() float64 {
	return r3.Dot(r.B1, r3.Cross(r.B2, r.B3))
}

// Biorthogonality returns the matrix of products ai·bj. For a reciprocal pair
// it is 2π times the identity.
func Biorthogonality(b Basis, r Reciprocal) *mat.Dense {
	var m mat.Dense
	m.Mul(b.Matrix(), rows(r.Vectors()).T())
	return &m
}
