package geometry

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// boxSite marks cell faces that come from the initial bounding box rather than
// from a bisector plane.
const boxSite = -1

// Config holds the numerical parameters of a Clipper.
type Config struct {
	// Tolerance is relative to the extent of the input and is used to merge
	// vertices and to classify points against planes.
	Tolerance float64

	// BoxScale sets the half-width of the initial bounding box around each
	// site as a multiple of the input extent. Cells still touching the box
	// after clipping are reported as unbounded.
	BoxScale float64
}

// DefaultConfig returns the default numerical parameters.
func DefaultConfig() Config {
	return Config{
		Tolerance: 1e-9,
		BoxScale:  1e4,
	}
}

// Clipper builds Voronoi cells by clipping a bounding box with the bisector
// planes of neighbouring sites, and convex hulls by incremental insertion.
// A Clipper has no mutable state and is safe for concurrent use.
type Clipper struct {
	cfg Config
}

// NewClipper creates a Clipper. Zero fields in cfg take their defaults.
func NewClipper(cfg Config) *Clipper {
	def := DefaultConfig()
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = def.Tolerance
	}
	if cfg.BoxScale <= 0 {
		cfg.BoxScale = def.BoxScale
	}
	return &Clipper{cfg: cfg}
}

// face is a convex polygon on the boundary of a cell.
type face struct {
	poly []r3.Vec
	site int
}

// cell is a convex polyhedron stored as its boundary polygons.
type cell struct {
	faces []face
}

// Voronoi computes the Voronoi region of every site.
func (c *Clipper) Voronoi(sites []r3.Vec) (*Voronoi, error) {
	if len(sites) == 0 {
		return nil, fmt.Errorf("voronoi: %w", ErrTooFewPoints)
	}
	for i, s := range sites {
		if !finite(s) {
			return nil, fmt.Errorf("voronoi: site %d is not finite: %w", i, ErrDegenerate)
		}
	}

	scale := extent(sites)
	if scale == 0 {
		scale = 1
	}
	eps := c.cfg.Tolerance * scale

	for i := range sites {
		for j := i + 1; j < len(sites); j++ {
			if r3.Norm(r3.Sub(sites[i], sites[j])) <= eps {
				return nil, fmt.Errorf("voronoi: sites %d and %d coincide: %w", i, j, ErrDegenerate)
			}
		}
	}

	half := c.cfg.BoxScale * scale
	out := &Voronoi{Regions: make([][]int, len(sites))}
	pool := newVertexPool(out, 10*eps)
	for i := range sites {
		cl := c.cellOf(sites, i, half, eps)
		out.Regions[i] = addRegion(pool, cl, sites[i], half)
	}
	return out, nil
}

// cellOf clips the bounding box around sites[i] by the bisector planes of the
// other sites, nearest first.
func (c *Clipper) cellOf(sites []r3.Vec, i int, half, eps float64) *cell {
	p := sites[i]
	cl := newBox(p, half)

	order := make([]int, 0, len(sites)-1)
	for j := range sites {
		if j != i {
			order = append(order, j)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		return r3.Norm2(r3.Sub(sites[order[a]], p)) < r3.Norm2(r3.Sub(sites[order[b]], p))
	})

	maxR := cl.maxDistance(p)
	for _, j := range order {
		q := sites[j]
		dist := r3.Norm(r3.Sub(q, p))
		// No vertex can be closer to q than to p once q is beyond twice the
		// farthest vertex, and the order is by distance.
		if dist > 2*maxR+eps {
			break
		}
		n := r3.Sub(q, p)
		d := r3.Dot(n, r3.Scale(0.5, r3.Add(p, q)))
		if cl.clip(n, d, j, eps) {
			maxR = cl.maxDistance(p)
		}
	}
	return cl
}

// addRegion merges the vertices of cl into the pool and returns the region
// index list for the cell.
func addRegion(pool *vertexPool, cl *cell, site r3.Vec, half float64) []int {
	var region []int
	unbounded := false
	for _, f := range cl.faces {
		if f.site == boxSite {
			unbounded = true
			break
		}
	}
	if unbounded {
		region = append(region, Infinity)
	}

	seen := make(map[int]bool)
	limit := half * (1 - 1e-6)
	for _, f := range cl.faces {
		if f.site == boxSite {
			continue
		}
		for _, v := range f.poly {
			if unbounded && onBox(v, site, limit) {
				continue
			}
			idx := pool.index(v)
			if !seen[idx] {
				seen[idx] = true
				region = append(region, idx)
			}
		}
	}
	return region
}

func onBox(v, site r3.Vec, limit float64) bool {
	d := r3.Sub(v, site)
	return math.Abs(d.X) >= limit || math.Abs(d.Y) >= limit || math.Abs(d.Z) >= limit
}

// vertexPool merges nearly coincident vertices. Vertices are bucketed on a
// grid of side tol so only neighbouring buckets need to be searched.
type vertexPool struct {
	out     *Voronoi
	tol     float64
	buckets map[[3]int64][]int
}

func newVertexPool(out *Voronoi, tol float64) *vertexPool {
	return &vertexPool{out: out, tol: tol, buckets: make(map[[3]int64][]int)}
}

func (vp *vertexPool) key(v r3.Vec) [3]int64 {
	return [3]int64{
		int64(math.Floor(v.X / vp.tol)),
		int64(math.Floor(v.Y / vp.tol)),
		int64(math.Floor(v.Z / vp.tol)),
	}
}

// index returns the index of v in the output vertices, appending it when no
// existing vertex lies within tol.
func (vp *vertexPool) index(v r3.Vec) int {
	k := vp.key(v)
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for dz := int64(-1); dz <= 1; dz++ {
				for _, i := range vp.buckets[[3]int64{k[0] + dx, k[1] + dy, k[2] + dz}] {
					if r3.Norm(r3.Sub(v, vp.out.Vertices[i])) <= vp.tol {
						return i
					}
				}
			}
		}
	}
	vp.out.Vertices = append(vp.out.Vertices, v)
	idx := len(vp.out.Vertices) - 1
	vp.buckets[k] = append(vp.buckets[k], idx)
	return idx
}

func newBox(center r3.Vec, half float64) *cell {
	corner := func(sx, sy, sz float64) r3.Vec {
		return r3.Add(center, r3.Vec{X: sx * half, Y: sy * half, Z: sz * half})
	}
	return &cell{faces: []face{
		{site: boxSite, poly: []r3.Vec{corner(-1, -1, -1), corner(-1, 1, -1), corner(1, 1, -1), corner(1, -1, -1)}},
		{site: boxSite, poly: []r3.Vec{corner(-1, -1, 1), corner(1, -1, 1), corner(1, 1, 1), corner(-1, 1, 1)}},
		{site: boxSite, poly: []r3.Vec{corner(-1, -1, -1), corner(1, -1, -1), corner(1, -1, 1), corner(-1, -1, 1)}},
		{site: boxSite, poly: []r3.Vec{corner(-1, 1, -1), corner(-1, 1, 1), corner(1, 1, 1), corner(1, 1, -1)}},
		{site: boxSite, poly: []r3.Vec{corner(-1, -1, -1), corner(-1, -1, 1), corner(-1, 1, 1), corner(-1, 1, -1)}},
		{site: boxSite, poly: []r3.Vec{corner(1, -1, -1), corner(1, 1, -1), corner(1, 1, 1), corner(1, -1, 1)}},
	}}
}

func (cl *cell) maxDistance(p r3.Vec) float64 {
	var m float64
	for _, f := range cl.faces {
		for _, v := range f.poly {
			if d := r3.Norm(r3.Sub(v, p)); d > m {
				m = d
			}
		}
	}
	return m
}

// clip keeps the part of the cell where n·x <= d and closes the cut with a
// new face owned by site. eps is a length; the plane test scales it by |n|.
// It reports whether the cell changed.
func (cl *cell) clip(n r3.Vec, d float64, site int, eps float64) bool {
	capEps := eps
	eps *= r3.Norm(n)
	cut := false
	for _, f := range cl.faces {
		for _, v := range f.poly {
			if r3.Dot(n, v)-d > eps {
				cut = true
				break
			}
		}
		if cut {
			break
		}
	}
	if !cut {
		return false
	}

	var capPts []r3.Vec
	faces := cl.faces[:0:0]
	for _, f := range cl.faces {
		var poly []r3.Vec
		for k, a := range f.poly {
			b := f.poly[(k+1)%len(f.poly)]
			da := r3.Dot(n, a) - d
			db := r3.Dot(n, b) - d
			if da <= eps {
				poly = append(poly, a)
				if da >= -eps {
					capPts = append(capPts, a)
				}
			}
			if (da < -eps && db > eps) || (da > eps && db < -eps) {
				x := r3.Add(a, r3.Scale(da/(da-db), r3.Sub(b, a)))
				poly = append(poly, x)
				capPts = append(capPts, x)
			}
		}
		if len(poly) >= 3 {
			faces = append(faces, face{poly: poly, site: f.site})
		}
	}

	capPts = dedupe(capPts, capEps)
	if len(capPts) >= 3 {
		faces = append(faces, face{poly: orderAround(capPts, n), site: site})
	}
	cl.faces = faces
	return true
}

func dedupe(points []r3.Vec, eps float64) []r3.Vec {
	var out []r3.Vec
	for _, p := range points {
		dup := false
		for _, q := range out {
			if r3.Norm(r3.Sub(p, q)) <= eps*10 {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, p)
		}
	}
	return out
}

// orderAround sorts coplanar points counter-clockwise around their centroid
// when viewed from the tip of n.
func orderAround(points []r3.Vec, n r3.Vec) []r3.Vec {
	c := centroid(points)
	u := r3.Unit(r3.Sub(points[0], c))
	v := r3.Cross(r3.Unit(n), u)
	angles := make([]float64, len(points))
	for i, p := range points {
		d := r3.Sub(p, c)
		angles[i] = math.Atan2(r3.Dot(d, v), r3.Dot(d, u))
	}
	idx := make([]int, len(points))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return angles[idx[a]] < angles[idx[b]] })
	out := make([]r3.Vec, len(points))
	for i, k := range idx {
		out[i] = points[k]
	}
	return out
}
