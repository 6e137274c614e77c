package geometry

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

type facet struct {
	v      [3]int
	normal r3.Vec
	offset float64
	alive  bool
}

func newFacet(points []r3.Vec, a, b, c int) facet {
	pa, pb, pc := points[a], points[b], points[c]
	n := r3.Cross(r3.Sub(pb, pa), r3.Sub(pc, pa))
	if l := r3.Norm(n); l > 0 {
		n = r3.Scale(1/l, n)
	}
	return facet{v: [3]int{a, b, c}, normal: n, offset: r3.Dot(n, pa), alive: true}
}

func (f *facet) distance(p r3.Vec) float64 {
	return r3.Dot(f.normal, p) - f.offset
}

type edge struct{ a, b int }

// ConvexHull triangulates the convex hull of points. Points inside the hull
// or on its surface but not at a corner are left out of the simplices.
// Coplanar facets are split into triangles.
func (c *Clipper) ConvexHull(points []r3.Vec) (*Hull, error) {
	if len(points) < 4 {
		return nil, fmt.Errorf("convex hull: %d points: %w", len(points), ErrTooFewPoints)
	}
	for i, p := range points {
		if !finite(p) {
			return nil, fmt.Errorf("convex hull: point %d is not finite: %w", i, ErrDegenerate)
		}
	}

	scale := extent(points)
	if scale == 0 {
		return nil, fmt.Errorf("convex hull: all points coincide: %w", ErrDegenerate)
	}
	eps := c.cfg.Tolerance * scale

	seed, err := initialTetrahedron(points, eps)
	if err != nil {
		return nil, err
	}

	interior := centroid([]r3.Vec{points[seed[0]], points[seed[1]], points[seed[2]], points[seed[3]]})
	facets := make([]facet, 0, 2*len(points))
	for _, tri := range [][3]int{
		{seed[0], seed[1], seed[2]},
		{seed[0], seed[3], seed[1]},
		{seed[1], seed[3], seed[2]},
		{seed[2], seed[3], seed[0]},
	} {
		f := newFacet(points, tri[0], tri[1], tri[2])
		if f.distance(interior) > 0 {
			f = newFacet(points, tri[0], tri[2], tri[1])
		}
		facets = append(facets, f)
	}

	inSeed := map[int]bool{seed[0]: true, seed[1]: true, seed[2]: true, seed[3]: true}
	for i, p := range points {
		if inSeed[i] {
			continue
		}

		var visible []int
		for k := range facets {
			if facets[k].alive && facets[k].distance(p) > eps {
				visible = append(visible, k)
			}
		}
		if len(visible) == 0 {
			continue
		}

		edges := make(map[edge]bool, 3*len(visible))
		for _, k := range visible {
			v := facets[k].v
			edges[edge{v[0], v[1]}] = true
			edges[edge{v[1], v[2]}] = true
			edges[edge{v[2], v[0]}] = true
		}
		var horizon []edge
		for _, k := range visible {
			v := facets[k].v
			for _, e := range []edge{{v[0], v[1]}, {v[1], v[2]}, {v[2], v[0]}} {
				if !edges[edge{e.b, e.a}] {
					horizon = append(horizon, e)
				}
			}
			facets[k].alive = false
		}
		for _, e := range horizon {
			facets = append(facets, newFacet(points, e.a, e.b, i))
		}
	}

	hull := &Hull{Points: points}
	for _, f := range facets {
		if f.alive {
			hull.Simplices = append(hull.Simplices, f.v)
		}
	}
	return hull, nil
}

// initialTetrahedron picks four points spanning a tetrahedron of non-trivial
// volume: the first point, the point farthest from it, the point farthest
// from that line, and the point farthest from that plane.
func initialTetrahedron(points []r3.Vec, eps float64) ([4]int, error) {
	var seed [4]int
	p0 := points[0]

	best := 0.0
	for i, p := range points {
		if d := r3.Norm(r3.Sub(p, p0)); d > best {
			best, seed[1] = d, i
		}
	}
	if best <= eps {
		return seed, fmt.Errorf("convex hull: all points coincide: %w", ErrDegenerate)
	}

	dir := r3.Unit(r3.Sub(points[seed[1]], p0))
	best = 0
	for i, p := range points {
		if d := r3.Norm(r3.Cross(r3.Sub(p, p0), dir)); d > best {
			best, seed[2] = d, i
		}
	}
	if best <= eps {
		return seed, fmt.Errorf("convex hull: points are collinear: %w", ErrDegenerate)
	}

	n := r3.Unit(r3.Cross(r3.Sub(points[seed[1]], p0), r3.Sub(points[seed[2]], p0)))
	best = 0
	for i, p := range points {
		if d := math.Abs(r3.Dot(n, r3.Sub(p, p0))); d > best {
			best, seed[3] = d, i
		}
	}
	if best <= eps {
		return seed, fmt.Errorf("convex hull: points are coplanar: %w", ErrDegenerate)
	}
	return seed, nil
}
