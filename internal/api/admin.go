package api

import (
	"net/http"

	"tailscale.com/tsweb"

	"github.com/banshee-data/lattice.report/internal/httputil"
	"github.com/banshee-data/lattice.report/internal/lattice"
	"github.com/banshee-data/lattice.report/internal/version"
)

// AttachAdminRoutes mounts debug pages under /debug/. tsweb restricts them
// to loopback and tailnet callers.
func (s *Server) AttachAdminRoutes(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)

	debug.KV("Version", version.String())
	debug.KVFunc("Neighbor radius", func() any {
		cfg := s.calc.Config().Extractor
		return [2]int{cfg.Radius, cfg.MaxRadius}
	})

	debug.HandleFunc("lattice-config", "Effective server configuration", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSONOK(w, s.cfg.Effective())
	})

	// Sample zone for the default FCC lattice, handy as a smoke test.
	debug.HandleFunc("sample-zone", "Brillouin zone of the FCC lattice", func(w http.ResponseWriter, r *http.Request) {
		zone, err := s.calc.BrillouinZone(lattice.RequestFor(lattice.FCC))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		page, err := renderZoneChart(zone)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		httputil.WriteHTML(w, page)
	})
	debug.HandleSilentFunc("sample-zone.json", func(w http.ResponseWriter, r *http.Request) {
		zone, err := s.calc.BrillouinZone(lattice.RequestFor(lattice.FCC))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		httputil.WriteJSONOK(w, zone.Response())
	})
}
