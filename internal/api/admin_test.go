package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/lattice.report/internal/config"
	"github.com/banshee-data/lattice.report/internal/lattice"
)

func TestAttachAdminRoutes(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(nil, nil)
	mux := http.NewServeMux()
	s.AttachAdminRoutes(mux)

	t.Run("sample zone json", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, localHostRequest(http.MethodGet, "/debug/sample-zone.json"))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp lattice.ZoneResponse
		decodeBody(t, rec, &resp)
		assert.Len(t, resp.Vertices, 24)
		assert.Len(t, resp.Simplices, 44)
	})

	t.Run("sample zone chart", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, localHostRequest(http.MethodGet, "/debug/sample-zone"))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "edges=36")
	})

	t.Run("config", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, localHostRequest(http.MethodGet, "/debug/lattice-config"))
		require.Equal(t, http.StatusOK, rec.Code)

		var got config.ServerConfig
		decodeBody(t, rec, &got)
		assert.Equal(t, config.DefaultServerConfig(), &got)
	})

	t.Run("index lists routes", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, localHostRequest(http.MethodGet, "/debug/"))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "sample-zone")
	})

	t.Run("remote callers denied", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/debug/sample-zone.json", nil)
		req.RemoteAddr = "203.0.113.7:4444"
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		assert.NotEqual(t, http.StatusOK, rec.Code)
	})
}
