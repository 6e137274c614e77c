package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/banshee-data/lattice.report/internal/config"
	"github.com/banshee-data/lattice.report/internal/geometry"
	"github.com/banshee-data/lattice.report/internal/lattice"
)

func newTestServer(cfg *config.ServerConfig, backend geometry.Backend) (*Server, http.Handler) {
	if cfg == nil {
		cfg = config.EmptyServerConfig()
	}
	s := NewServer(lattice.NewCalculator(cfg.CalculatorConfig(), backend), cfg)
	mux := s.ServeMux()
	s.AttachAdminRoutes(mux)
	return s, s.Handler(mux)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), "body: %s", rec.Body.String())
}

// localHostRequest creates a request that passes tsweb's loopback check.
func localHostRequest(method, path string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = "127.0.0.1:12345"
	return req
}

func ptr[T any](v T) *T { return &v }

var (
	fccBody = map[string]interface{}{
		"a1": []float64{1, 1, 0},
		"a2": []float64{0, 1, 1},
		"a3": []float64{1, 0, 1},
	}
	cubicBody = map[string]interface{}{
		"a1": []float64{1, 0, 0},
		"a2": []float64{0, 1, 0},
		"a3": []float64{0, 0, 1},
	}
)
