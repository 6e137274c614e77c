package api

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/lattice.report/internal/httputil"
	"github.com/banshee-data/lattice.report/internal/lattice"
)

func TestClient_AgainstServer(t *testing.T) {
	t.Parallel()
	_, h := newTestServer(nil, nil)
	ts := httptest.NewServer(h)
	defer ts.Close()

	c := NewClient(ts.URL+"/", ts.Client())
	ctx := context.Background()

	lat, err := c.ReciprocalLattice(ctx, lattice.RequestFor(lattice.SimpleCubic))
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 0, 2 * math.Pi}, lat.ReciprocalVectors.B3, 1e-12)

	zone, err := c.BrillouinZone(ctx, lattice.RequestFor(lattice.FCC))
	require.NoError(t, err)
	assert.Len(t, zone.Vertices, 24)

	_, err = c.BrillouinZone(ctx, lattice.Request{A1: []float64{1, 0, 0}, A2: []float64{1, 0, 0}, A3: []float64{0, 0, 1}})
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadRequest, se.StatusCode)
	assert.Contains(t, se.Message, "coplanar")
}

func TestClient_WithMock(t *testing.T) {
	t.Parallel()

	mock := httputil.NewMockHTTPClient().
		AddResponse(http.StatusOK, `{"vertices":[[1,2,3]],"simplices":[],"reciprocal_vectors":{"b1":[1,0,0],"b2":[0,1,0],"b3":[0,0,1]}}`).
		AddResponse(http.StatusBadGateway, "upstream down").
		AddResponse(http.StatusOK, `not json`).
		AddErrorResponse(errors.New("connection refused"))
	c := NewClient("http://lattice.test", mock)
	ctx := context.Background()
	req := lattice.RequestFor(lattice.SimpleCubic)

	zone, err := c.BrillouinZone(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 2, 3}}, zone.Vertices)

	sent, body := mock.Request(0)
	require.NotNil(t, sent)
	assert.Equal(t, "http://lattice.test/calculate_brillouin", sent.URL.String())
	assert.Equal(t, "application/json", sent.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"a1":[1,0,0],"a2":[0,1,0],"a3":[0,0,1]}`, string(body))

	_, err = c.BrillouinZone(ctx, req)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "upstream down", se.Message)

	_, err = c.ReciprocalLattice(ctx, req)
	assert.ErrorContains(t, err, "decode response")

	_, err = c.ReciprocalLattice(ctx, req)
	assert.ErrorContains(t, err, "connection refused")
	assert.Equal(t, 4, mock.RequestCount())
}
