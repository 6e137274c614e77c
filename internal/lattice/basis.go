// Package lattice computes reciprocal lattices and Brillouin zones from a set
// of direct lattice vectors.
//
// Everything here is a pure function of its input: a Basis is scaled, turned
// into a Reciprocal basis, expanded into a point cloud, and the Voronoi cell
// of the origin is extracted as a triangulated Zone.
package lattice

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// degenerateTolerance is the smallest allowed |a1·(a2×a3)| relative to
// |a1||a2||a3|.
const degenerateTolerance = 1e-10

// Basis is an ordered triple of direct lattice vectors.
type Basis struct {
	A1, A2, A3 r3.Vec
}

var (
	// SimpleCubic is the unit cubic lattice.
	SimpleCubic = Basis{
		A1: r3.Vec{X: 1},
		A2: r3.Vec{Y: 1},
		A3: r3.Vec{Z: 1},
	}

	// FCC is a face-centred cubic primitive basis. Its reciprocal lattice is
	// body-centred cubic and its Brillouin zone a truncated octahedron.
	FCC = Basis{
		A1: r3.Vec{X: 1, Y: 1},
		A2: r3.Vec{Y: 1, Z: 1},
		A3: r3.Vec{X: 1, Z: 1},
	}
)

// NewBasis builds a Basis from three 3-element slices, multiplying every
// component by spacing.
func NewBasis(a1, a2, a3 []float64, spacing float64) (Basis, error) {
	vecs := [3]r3.Vec{}
	for i, a := range [][]float64{a1, a2, a3} {
		field := [...]string{"a1", "a2", "a3"}[i]
		if len(a) != 3 {
			return Basis{}, &InputError{Field: field, Reason: "must have exactly 3 components"}
		}
		v := r3.Vec{X: a[0], Y: a[1], Z: a[2]}
		if !isFinite(v) {
			return Basis{}, &InputError{Field: field, Reason: "components must be finite numbers"}
		}
		vecs[i] = v
	}
	return Basis{A1: vecs[0], A2: vecs[1], A3: vecs[2]}.Scale(spacing), nil
}

// Scale multiplies every basis vector by s.
func (b Basis) Scale(s float64) Basis {
	return Basis{A1: r3.Scale(s, b.A1), A2: r3.Scale(s, b.A2), A3: r3.Scale(s, b.A3)}
}

// Volume returns the signed unit-cell volume a1·(a2×a3).
func (b Basis) Volume() float64 {
	return r3.Dot(b.A1, r3.Cross(b.A2, b.A3))
}

// Vectors returns the basis as an array.
func (b Basis) Vectors() [3]r3.Vec {
	return [3]r3.Vec{b.A1, b.A2, b.A3}
}

// Matrix returns the basis vectors as the rows of a 3×3 matrix.
func (b Basis) Matrix() *mat.Dense {
	return rows(b.Vectors())
}

func (b Basis) degenerate() bool {
	v := b.Volume()
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return true
	}
	scale := r3.Norm(b.A1) * r3.Norm(b.A2) * r3.Norm(b.A3)
	return math.Abs(v) <= degenerateTolerance*scale
}

func rows(vs [3]r3.Vec) *mat.Dense {
	m := mat.NewDense(3, 3, nil)
	for i, v := range vs {
		m.SetRow(i, []float64{v.X, v.Y, v.Z})
	}
	return m
}

func isFinite(v r3.Vec) bool {
	for _, x := range []float64{v.X, v.Y, v.Z} {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
