package lattice

import (
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

// abs is the integer absolute value.
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func combine(v1, v2, v3 r3.Vec, i, j, k int) r3.Vec {
	return r3.Add(r3.Add(r3.Scale(float64(i), v1), r3.Scale(float64(j), v2)), r3.Scale(float64(k), v3))
}

// CubicPoints returns i*v1 + j*v2 + k*v3 for every i, j, k in [-n, n], in
// nested i, j, k order. The origin is included exactly once for n >= 0.
func CubicPoints(v1, v2, v3 r3.Vec, n int) []r3.Vec {
	if n < 0 {
		return nil
	}
	side := 2*n + 1
	points := make([]r3.Vec, 0, side*side*side)
	for i := -n; i <= n; i++ {
		for j := -n; j <= n; j++ {
			for k := -n; k <= n; k++ {
				points = append(points, combine(v1, v2, v3, i, j, k))
			}
		}
	}
	return points
}

// DiamondPoints is CubicPoints restricted to |i|+|j|+|k| <= n.
func DiamondPoints(v1, v2, v3 r3.Vec, n int) []r3.Vec {
	if n < 0 {
		return nil
	}
	var points []r3.Vec
	for i := -n; i <= n; i++ {
		for j := -n; j <= n; j++ {
			for k := -n; k <= n; k++ {
				if abs(i)+abs(j)+abs(k) <= n {
					points = append(points, combine(v1, v2, v3, i, j, k))
				}
			}
		}
	}
	return points
}

// OriginIndex returns the index of the first point whose coordinates are all
// within tol of zero, or -1.
func OriginIndex(points []r3.Vec, tol float64) int {
	for i, p := range points {
		if scalar.EqualWithinAbs(p.X, 0, tol) &&
			scalar.EqualWithinAbs(p.Y, 0, tol) &&
			scalar.EqualWithinAbs(p.Z, 0, tol) {
			return i
		}
	}
	return -1
}
