package lattice

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/lattice.report/internal/geometry"
	"github.com/banshee-data/lattice.report/internal/monitoring"
)

// originTolerance is relative to the longest reciprocal basis vector.
const originTolerance = 1e-8

var logf = monitoring.Component("Brillouin")

// ExtractorConfig controls the neighbour cloud used to build a zone.
type ExtractorConfig struct {
	// Radius is the initial neighbour radius n of the cubic point cloud.
	Radius int

	// MaxRadius bounds the radius the extractor may grow to while certifying
	// a cell. Values below Radius disable growth.
	MaxRadius int
}

// DefaultExtractorConfig returns the default extractor configuration.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		Radius:    1,
		MaxRadius: 4,
	}
}

// Zone is a Brillouin zone: the Voronoi cell of the origin in the reciprocal
// lattice, triangulated by its convex hull.
type Zone struct {
	Vertices   []r3.Vec
	Simplices  [][3]int
	Reciprocal Reciprocal

	// Radius is the neighbour radius the zone was computed at.
	Radius int
}

// Volume returns the enclosed volume of the zone.
func (z *Zone) Volume() float64 {
	h := geometry.Hull{Points: z.Vertices, Simplices: z.Simplices}
	return h.Volume()
}

// Edges returns the polyhedron edges of the zone as vertex index pairs.
func (z *Zone) Edges() [][2]int {
	h := geometry.Hull{Points: z.Vertices, Simplices: z.Simplices}
	return h.Edges()
}

// Extractor builds Brillouin zones on top of a geometry backend.
// It is immutable and safe for concurrent use.
type Extractor struct {
	cfg     ExtractorConfig
	backend geometry.Backend
}

// NewExtractor creates an Extractor. A nil backend selects the default
// geometry.Clipper.
func NewExtractor(cfg ExtractorConfig, backend geometry.Backend) *Extractor {
	if backend == nil {
		backend = geometry.NewClipper(geometry.DefaultConfig())
	}
	if cfg.Radius < 0 {
		cfg.Radius = 0
	}
	if cfg.MaxRadius < cfg.Radius {
		cfg.MaxRadius = cfg.Radius
	}
	return &Extractor{cfg: cfg, backend: backend}
}

// Config returns the effective configuration.
func (e *Extractor) Config() ExtractorConfig {
	return e.cfg
}

// Extract computes the Brillouin zone of r.
//
// The cell is recomputed on a larger cloud when it is unbounded, or when a
// lattice point outside the cloud could still cut it (any G with
// |G| < 2·max|v|). Growth stops at MaxRadius, after which the request fails
// with an *InvalidZoneError.
func (e *Extractor) Extract(r Reciprocal) (*Zone, error) {
	n := e.cfg.Radius
	for {
		zone, err := e.extractAt(r, n)
		if err != nil {
			if errors.Is(err, ErrInvalidBrillouinZone) && n < e.cfg.MaxRadius {
				logf("%v; retrying at radius %d", err, n+1)
				n++
				continue
			}
			return nil, err
		}

		need := certifiedRadius(r, zone.Vertices)
		if need <= n {
			return zone, nil
		}
		if n >= e.cfg.MaxRadius {
			return nil, &InvalidZoneError{
				Radius: n,
				Reason: fmt.Sprintf("cell needs neighbor radius %d, limit is %d", need, e.cfg.MaxRadius),
			}
		}
		logf("cell at radius %d needs radius %d", n, need)
		n = min(need, e.cfg.MaxRadius)
	}
}

// extractAt computes the origin cell of the cubic cloud of radius n.
func (e *Extractor) extractAt(r Reciprocal, n int) (*Zone, error) {
	cloud := CubicPoints(r.B1, r.B2, r.B3, n)

	scale := math.Max(r3.Norm(r.B1), math.Max(r3.Norm(r.B2), r3.Norm(r.B3)))
	origin := OriginIndex(cloud, originTolerance*scale)
	if origin < 0 {
		return nil, &InvalidZoneError{Radius: n, Reason: "origin missing from point cloud"}
	}

	vor, err := e.backend.Voronoi(cloud)
	if err != nil {
		return nil, fmt.Errorf("voronoi tessellation failed: %w", err)
	}

	region := vor.Region(origin)
	if len(region) == 0 {
		return nil, &InvalidZoneError{Radius: n, Reason: "origin region is empty"}
	}
	if !vor.Bounded(origin) {
		return nil, &InvalidZoneError{Radius: n, Reason: "origin region is unbounded"}
	}

	vertices := make([]r3.Vec, len(region))
	for i, idx := range region {
		vertices[i] = vor.Vertices[idx]
	}

	hull, err := e.backend.ConvexHull(vertices)
	if err != nil {
		return nil, fmt.Errorf("convex hull failed: %w", err)
	}

	return &Zone{
		Vertices:   vertices,
		Simplices:  hull.Simplices,
		Reciprocal: r,
		Radius:     n,
	}, nil
}

// certifiedRadius returns the smallest cubic radius containing every lattice
// point G with |G| < 2R, R being the largest vertex norm. Such a G has
// |index_i| = |G·a_i|/2π < 2R|a_i|/2π.
func certifiedRadius(r Reciprocal, vertices []r3.Vec) int {
	var maxR float64
	for _, v := range vertices {
		maxR = math.Max(maxR, r3.Norm(v))
	}
	need := 0
	for _, a := range r.Direct().Vectors() {
		bound := 2 * maxR * r3.Norm(a) / (2 * math.Pi)
		// Points at exactly 2R only touch the cell.
		need = max(need, int(math.Floor(bound*(1-1e-9))))
	}
	return need
}
