// Package geometry provides the computational-geometry backend used to build
// Brillouin zones: Voronoi tessellation of a point set and triangulated convex
// hulls.
//
// The lattice code only depends on the Tessellator and HullBuilder interfaces,
// so the backend can be swapped without touching the zone logic. Clipper is the
// default implementation of both.
package geometry

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// Infinity is the sentinel vertex index marking an unbounded Voronoi region.
const Infinity = -1

var (
	// ErrTooFewPoints is returned when the input has fewer points than the
	// operation needs (one site for a tessellation, four points for a hull).
	ErrTooFewPoints = errors.New("too few points")

	// ErrDegenerate is returned for duplicate sites or point sets that do not
	// span three dimensions.
	ErrDegenerate = errors.New("degenerate point set")
)

// Voronoi is a tessellation of a set of sites.
type Voronoi struct {
	// Vertices holds every finite Voronoi vertex, shared between regions.
	Vertices []r3.Vec

	// Regions[i] lists the indices into Vertices of the region around site i.
	// An unbounded region contains Infinity.
	Regions [][]int
}

// Region returns the vertex indices of the region around site i.
func (v *Voronoi) Region(i int) []int {
	if i < 0 || i >= len(v.Regions) {
		return nil
	}
	return v.Regions[i]
}

// Bounded reports whether the region around site i is closed and non-empty.
func (v *Voronoi) Bounded(i int) bool {
	region := v.Region(i)
	if len(region) == 0 {
		return false
	}
	for _, idx := range region {
		if idx == Infinity {
			return false
		}
	}
	return true
}

// Hull is a triangulated convex hull.
type Hull struct {
	// Points are the input points; Simplices index into this slice.
	Points []r3.Vec

	// Simplices are the outward-oriented triangular facets.
	Simplices [][3]int
}

// Volume returns the enclosed volume of the hull.
func (h *Hull) Volume() float64 {
	if len(h.Simplices) == 0 {
		return 0
	}
	ref := centroid(h.Points)
	var vol float64
	for _, s := range h.Simplices {
		a := r3.Sub(h.Points[s[0]], ref)
		b := r3.Sub(h.Points[s[1]], ref)
		c := r3.Sub(h.Points[s[2]], ref)
		vol += r3.Dot(a, r3.Cross(b, c))
	}
	return math.Abs(vol) / 6
}

// Area returns the total surface area of the hull.
func (h *Hull) Area() float64 {
	var area float64
	for _, s := range h.Simplices {
		a, b, c := h.Points[s[0]], h.Points[s[1]], h.Points[s[2]]
		area += r3.Norm(r3.Cross(r3.Sub(b, a), r3.Sub(c, a))) / 2
	}
	return area
}

// Edges returns the edges of the polyhedron, leaving out diagonals that only
// split a planar face into triangles. Each edge is ordered low index first and
// the list is sorted.
func (h *Hull) Edges() [][2]int {
	normals := make(map[[2]int][]r3.Vec)
	for _, s := range h.Simplices {
		a, b, c := h.Points[s[0]], h.Points[s[1]], h.Points[s[2]]
		n := r3.Unit(r3.Cross(r3.Sub(b, a), r3.Sub(c, a)))
		for k := 0; k < 3; k++ {
			i, j := s[k], s[(k+1)%3]
			if i > j {
				i, j = j, i
			}
			normals[[2]int{i, j}] = append(normals[[2]int{i, j}], n)
		}
	}

	const coplanar = 1e-9
	var out [][2]int
	for e, ns := range normals {
		if len(ns) == 2 && 1-r3.Dot(ns[0], ns[1]) <= coplanar {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a][0] != out[b][0] {
			return out[a][0] < out[b][0]
		}
		return out[a][1] < out[b][1]
	})
	return out
}

// Tessellator computes Voronoi diagrams.
type Tessellator interface {
	Voronoi(sites []r3.Vec) (*Voronoi, error)
}

// HullBuilder computes triangulated convex hulls.
type HullBuilder interface {
	ConvexHull(points []r3.Vec) (*Hull, error)
}

// Backend is the full geometry capability required for zone extraction.
type Backend interface {
	Tessellator
	HullBuilder
}

func centroid(points []r3.Vec) r3.Vec {
	var c r3.Vec
	if len(points) == 0 {
		return c
	}
	for _, p := range points {
		c = r3.Add(c, p)
	}
	return r3.Scale(1/float64(len(points)), c)
}

// extent returns the largest distance between any point and the centroid.
func extent(points []r3.Vec) float64 {
	c := centroid(points)
	var ext float64
	for _, p := range points {
		if d := r3.Norm(r3.Sub(p, c)); d > ext {
			ext = d
		}
	}
	return ext
}

func finite(p r3.Vec) bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0) &&
		!math.IsNaN(p.Z) && !math.IsInf(p.Z, 0)
}
