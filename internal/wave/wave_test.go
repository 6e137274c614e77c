package wave

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCases_Velocities(t *testing.T) {
	t.Parallel()

	tests := []struct {
		slug  string
		group float64
		phase float64
	}{
		{"vp-pos-vg-neg", -1, 2},
		{"vp-pos-vg-pos", 1, 11.0 / 9},
		{"vp-pos-vg-zero", 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			c, err := Lookup(tt.slug)
			require.NoError(t, err)
			p := c.Params()
			assert.InDelta(t, tt.group, p.GroupVelocity(), 1e-12)
			assert.InDelta(t, tt.phase, p.PhaseVelocity(), 1e-12)
			assert.Positive(t, p.PhaseVelocity())
		})
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	c, err := Lookup("Vp>0, Vg=0")
	require.NoError(t, err)
	assert.Equal(t, "vp-pos-vg-zero", c.Slug)
	assert.Equal(t, "phase_group_velocity_vp-pos-vg-zero.html", c.Filename())

	_, err = Lookup("Vp<0, Vg<0")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownCase))
}

func TestParams_Angular(t *testing.T) {
	t.Parallel()

	p := Cases[0].Params()
	assert.InDelta(t, math.Pi, p.W0, 1e-12)
	assert.InDelta(t, 0.8*math.Pi, p.K0, 1e-12)
	assert.InDelta(t, -0.2*math.Pi, p.DeltaW(), 1e-12)
	assert.InDelta(t, 0.2*math.Pi, p.DeltaK(), 1e-12)
}

func TestLinspace(t *testing.T) {
	t.Parallel()

	x := Linspace(-10, 10, 500)
	require.Len(t, x, 500)
	assert.Equal(t, -10.0, x[0])
	assert.InDelta(t, 10.0, x[499], 1e-12)
	assert.InDelta(t, 20.0/499, x[1]-x[0], 1e-12)

	assert.Equal(t, []float64{3}, Linspace(3, 5, 1))
	assert.Nil(t, Linspace(0, 1, 0))
}

func TestAt_SumBoundedByEnvelope(t *testing.T) {
	t.Parallel()

	x := Linspace(-10, 10, 500)
	for _, c := range Cases {
		p := c.Params()
		for _, tm := range []float64{0, 0.05, 1.3, 7.45} {
			f := p.At(x, tm)
			require.Len(t, f.Sum, len(x))
			for i := range x {
				assert.InDelta(t, f.F0[i]+f.F1[i], f.Sum[i], 1e-12)
				// cos a + cos b = 2 cos((a-b)/2) cos((a+b)/2)
				assert.LessOrEqual(t, math.Abs(f.Sum[i]), math.Abs(f.Envelope[i])+1e-9)
				assert.LessOrEqual(t, math.Abs(f.Sum[i]), 2+1e-12)
			}
		}
	}
}

func TestAt_EnvelopeMovesAtGroupVelocity(t *testing.T) {
	t.Parallel()

	// The envelope at (x + vg*t, t) equals the envelope at (x, 0).
	for _, c := range Cases {
		p := c.Params()
		vg := p.GroupVelocity()
		x := Linspace(-5, 5, 11)
		shifted := make([]float64, len(x))
		const tm = 1.5
		for i, xi := range x {
			shifted[i] = xi + vg*tm
		}
		f0 := p.At(x, 0)
		ft := p.At(shifted, tm)
		for i := range x {
			assert.InDelta(t, f0.Envelope[i], ft.Envelope[i], 1e-9, c.Slug)
		}
	}
}
