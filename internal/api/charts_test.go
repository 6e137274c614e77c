package api

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/lattice.report/internal/httputil"
	"github.com/banshee-data/lattice.report/internal/lattice"
)

func TestRequestFromQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		query   string
		want    lattice.Request
		wantErr string
	}{
		{
			name:  "defaults to fcc",
			query: "",
			want:  lattice.RequestFor(lattice.FCC),
		},
		{
			name:  "explicit basis",
			query: "a1=1,0,0&a2=0,1,0&a3=0,0,2",
			want:  lattice.Request{A1: []float64{1, 0, 0}, A2: []float64{0, 1, 0}, A3: []float64{0, 0, 2}},
		},
		{
			name:  "spaces and spacing",
			query: "a1=1,+0,+0&a2=0,1,0&a3=0,0,1&spacing=2.5",
			want:  lattice.Request{A1: []float64{1, 0, 0}, A2: []float64{0, 1, 0}, A3: []float64{0, 0, 1}, Spacing: ptr(2.5)},
		},
		{
			name:  "preset",
			query: "preset=sc&spacing=2",
			want:  lattice.Request{A1: []float64{1, 0, 0}, A2: []float64{0, 1, 0}, A3: []float64{0, 0, 1}, Spacing: ptr(2.0)},
		},
		{name: "unknown preset", query: "preset=hcp", wantErr: "unknown preset"},
		{name: "missing vector", query: "a1=1,0,0&a2=0,1,0", wantErr: "invalid a3: is required"},
		{name: "short vector", query: "a1=1,0&a2=0,1,0&a3=0,0,1", wantErr: "exactly 3 components"},
		{name: "not a number", query: "a1=1,x,0&a2=0,1,0&a3=0,0,1", wantErr: "component 2"},
		{name: "bad spacing", query: "spacing=wide", wantErr: "invalid spacing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			got, err := requestFromQuery(q)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, lattice.ErrInvalidInput)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAxisBound(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1.0, axisBound(nil))
	assert.InDelta(t, 3*1.05, axisBound([]r3.Vec{{X: 1}, {Y: -3}, {Z: 2}}), 1e-12)
}

func TestLatticeChart(t *testing.T) {
	t.Parallel()
	_, h := newTestServer(nil, nil)

	rec := doJSON(t, h, http.MethodGet, "/charts/lattice", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "Reciprocal Lattice")
	assert.Contains(t, body, "scatter3D")
	assert.Contains(t, body, "points=25")
}

func TestBrillouinChart(t *testing.T) {
	t.Parallel()
	_, h := newTestServer(nil, nil)

	rec := doJSON(t, h, http.MethodGet, "/charts/brillouin?a1=1,0,0&a2=0,1,0&a3=0,0,1", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := rec.Body.String()
	assert.Contains(t, body, "First Brillouin Zone")
	assert.Contains(t, body, "line3D")
	assert.Contains(t, body, "vertices=8 edges=12 faces=12")
}

func TestCharts_Errors(t *testing.T) {
	t.Parallel()
	_, h := newTestServer(nil, nil)

	tests := []struct {
		name string
		path string
		code int
	}{
		{"bad vector", "/charts/lattice?a1=1,0&a2=0,1,0&a3=0,0,1", http.StatusInternalServerError},
		{"degenerate lattice", "/charts/lattice?a1=1,0,0&a2=2,0,0&a3=0,0,1", http.StatusBadRequest},
		{"degenerate zone", "/charts/brillouin?a1=1,0,0&a2=0,1,0&a3=1,1,0", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, h, http.MethodGet, tt.path, nil)
			assert.Equal(t, tt.code, rec.Code)
			var resp httputil.ErrorBody
			decodeBody(t, rec, &resp)
			assert.NotEmpty(t, resp.Error)
		})
	}

	rec := doJSON(t, h, http.MethodPost, "/charts/brillouin", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
