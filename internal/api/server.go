package api

import (
	"net/http"

	"github.com/banshee-data/lattice.report/internal/config"
	"github.com/banshee-data/lattice.report/internal/lattice"
)

// Server serves the lattice HTTP API.
type Server struct {
	calc *lattice.Calculator
	cfg  *config.ServerConfig
}

// NewServer creates a Server. A nil cfg uses the built-in defaults.
func NewServer(calc *lattice.Calculator, cfg *config.ServerConfig) *Server {
	if cfg == nil {
		cfg = config.EmptyServerConfig()
	}
	return &Server{calc: calc, cfg: cfg}
}

// ServeMux returns a mux with every API route mounted.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/calculate_lattice", s.calculateLattice)
	mux.HandleFunc("/calculate_brillouin", s.calculateBrillouin)
	mux.HandleFunc("/charts/lattice", s.latticeChart)
	mux.HandleFunc("/charts/brillouin", s.brillouinChart)
	mux.HandleFunc("/config", s.showConfig)
	mux.HandleFunc("/version", s.showVersion)
	return mux
}

// Handler wraps mux with the request id, CORS and access log middlewares.
func (s *Server) Handler(mux http.Handler) http.Handler {
	return RequestIDMiddleware(CORSMiddleware(s.cfg.GetAllowedOrigins())(LoggingMiddleware(mux)))
}
