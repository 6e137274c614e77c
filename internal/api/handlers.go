package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/banshee-data/lattice.report/internal/httputil"
	"github.com/banshee-data/lattice.report/internal/lattice"
	"github.com/banshee-data/lattice.report/internal/version"
)

// decodeRequest reads a lattice.Request body. Malformed bodies become an
// *lattice.InputError so they share the input error mapping.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (lattice.Request, bool) {
	var req lattice.Request
	err := httputil.DecodeJSON(w, r, s.cfg.GetMaxBodyBytes(), &req)
	switch {
	case err == nil:
		return req, true
	case errors.Is(err, httputil.ErrBodyTooLarge):
		httputil.WriteJSONError(w, http.StatusRequestEntityTooLarge, err.Error())
	default:
		s.writeError(w, r, &lattice.InputError{Field: "request body", Reason: err.Error()})
	}
	return req, false
}

// statusFor maps a calculation error to an HTTP status and client message.
// Unclassified errors get a generic message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, lattice.ErrDegenerateBasis),
		errors.Is(err, lattice.ErrInvalidBrillouinZone):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, lattice.ErrInvalidInput):
		return http.StatusInternalServerError, err.Error()
	default:
		return http.StatusInternalServerError, "lattice calculation failed"
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("%s %s failed (id=%s): %v", r.Method, r.URL.Path, w.Header().Get(RequestIDHeader), err)
	}
	httputil.WriteJSONError(w, status, msg)
}

func (s *Server) calculateLattice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w, http.MethodPost, http.MethodOptions)
		return
	}
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}
	res, err := s.calc.ReciprocalLattice(req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	httputil.WriteJSONOK(w, res.Response())
}

func (s *Server) calculateBrillouin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w, http.MethodPost, http.MethodOptions)
		return
	}
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}
	zone, err := s.calc.BrillouinZone(req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	httputil.WriteJSONOK(w, zone.Response())
}

func (s *Server) showConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w, http.MethodGet)
		return
	}
	httputil.WriteJSONOK(w, s.cfg.Effective())
}

func (s *Server) showVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w, http.MethodGet)
		return
	}
	httputil.WriteJSONOK(w, version.Get())
}
