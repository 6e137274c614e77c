package lattice

import "gonum.org/v1/gonum/spatial/r3"

// Vectors is the JSON form of a reciprocal basis.
type Vectors struct {
	B1 []float64 `json:"b1"`
	B2 []float64 `json:"b2"`
	B3 []float64 `json:"b3"`
}

// Columns is a point cloud split into parallel coordinate arrays.
type Columns struct {
	X []float64 `json:"x"`
	Y []float64 `json:"y"`
	Z []float64 `json:"z"`
}

// LatticeResponse is the JSON form of a LatticeResult.
type LatticeResponse struct {
	ReciprocalLattice Columns `json:"reciprocal_lattice"`
	ReciprocalVectors Vectors `json:"reciprocal_vectors"`
}

// ZoneResponse is the JSON form of a Zone.
type ZoneResponse struct {
	Vertices          [][]float64 `json:"vertices"`
	Simplices         [][]int     `json:"simplices"`
	ReciprocalVectors Vectors     `json:"reciprocal_vectors"`
}

func slice(v r3.Vec) []float64 {
	return []float64{v.X, v.Y, v.Z}
}

// JSON returns the wire form of r.
func (r Reciprocal) JSON() Vectors {
	return Vectors{B1: slice(r.B1), B2: slice(r.B2), B3: slice(r.B3)}
}

// Response returns the wire form of the result.
func (res *LatticeResult) Response() LatticeResponse {
	cols := Columns{
		X: make([]float64, len(res.Points)),
		Y: make([]float64, len(res.Points)),
		Z: make([]float64, len(res.Points)),
	}
	for i, p := range res.Points {
		cols.X[i], cols.Y[i], cols.Z[i] = p.X, p.Y, p.Z
	}
	return LatticeResponse{
		ReciprocalLattice: cols,
		ReciprocalVectors: res.Reciprocal.JSON(),
	}
}

// Response returns the wire form of the zone.
func (z *Zone) Response() ZoneResponse {
	out := ZoneResponse{
		Vertices:          make([][]float64, len(z.Vertices)),
		Simplices:         make([][]int, len(z.Simplices)),
		ReciprocalVectors: z.Reciprocal.JSON(),
	}
	for i, v := range z.Vertices {
		out.Vertices[i] = slice(v)
	}
	for i, s := range z.Simplices {
		out.Simplices[i] = []int{s[0], s[1], s[2]}
	}
	return out
}
