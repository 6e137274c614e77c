package api

import (
	"bytes"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/lattice.report/internal/httputil"
	"github.com/banshee-data/lattice.report/internal/lattice"
)

// requestFromQuery builds a request from a1, a2, a3 and spacing query
// params, or from a named preset. Without either it falls back to FCC.
func requestFromQuery(q url.Values) (lattice.Request, error) {
	var req lattice.Request
	if q.Get("a1") == "" && q.Get("a2") == "" && q.Get("a3") == "" {
		b := lattice.FCC
		if name := q.Get("preset"); name != "" {
			var err error
			if b, err = lattice.LookupPreset(name); err != nil {
				return req, err
			}
		}
		req = lattice.RequestFor(b)
	} else {
		for _, f := range []struct {
			name string
			dst  *[]float64
		}{{"a1", &req.A1}, {"a2", &req.A2}, {"a3", &req.A3}} {
			raw := q.Get(f.name)
			if raw == "" {
				return req, &lattice.InputError{Field: f.name, Reason: "is required"}
			}
			v, err := lattice.ParseVector(f.name, raw)
			if err != nil {
				return req, err
			}
			*f.dst = v
		}
	}
	if s := q.Get("spacing"); s != "" {
		sp, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return req, &lattice.InputError{Field: "spacing", Reason: "is not a number"}
		}
		req.Spacing = &sp
	}
	return req, nil
}

func chartPoint(name string, v r3.Vec) opts.Chart3DData {
	return opts.Chart3DData{Name: name, Value: []interface{}{v.X, v.Y, v.Z}}
}

// axisBound returns a symmetric axis limit that keeps every point visible.
func axisBound(points []r3.Vec) float64 {
	var m float64
	for _, p := range points {
		m = math.Max(m, math.Max(math.Abs(p.X), math.Max(math.Abs(p.Y), math.Abs(p.Z))))
	}
	if m == 0 {
		return 1
	}
	return m * 1.05
}

func chart3DOpts(title, subtitle string, bound float64) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxis3DOpts(opts.XAxis3D{Name: "kx", Min: -bound, Max: bound}),
		charts.WithYAxis3DOpts(opts.YAxis3D{Name: "ky", Min: -bound, Max: bound}),
		charts.WithZAxis3DOpts(opts.ZAxis3D{Name: "kz", Min: -bound, Max: bound}),
		charts.WithGrid3DOpts(opts.Grid3D{ViewControl: &opts.ViewControl{AutoRotate: opts.Bool(false)}}),
	}
}

// renderLatticeChart draws the reciprocal lattice cloud and basis tips.
func renderLatticeChart(res *lattice.LatticeResult) ([]byte, error) {
	points := make([]opts.Chart3DData, len(res.Points))
	for i, p := range res.Points {
		points[i] = chartPoint("", p)
	}
	basis := []opts.Chart3DData{
		chartPoint("b1", res.Reciprocal.B1),
		chartPoint("b2", res.Reciprocal.B2),
		chartPoint("b3", res.Reciprocal.B3),
	}

	scatter := charts.NewScatter3D()
	scatter.SetGlobalOptions(chart3DOpts(
		"Reciprocal Lattice",
		fmt.Sprintf("points=%d", len(res.Points)),
		axisBound(res.Points),
	)...)
	scatter.AddSeries("reciprocal lattice", points, charts.WithItemStyleOpts(opts.ItemStyle{Color: "#5470c6"}))
	scatter.AddSeries("basis", basis, charts.WithItemStyleOpts(opts.ItemStyle{Color: "#ee6666"}))

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return buf.Bytes(), nil
}

// renderZoneChart draws the zone as a wireframe, one line series per edge.
func renderZoneChart(zone *lattice.Zone) ([]byte, error) {
	edges := zone.Edges()

	line := charts.NewLine3D()
	line.SetGlobalOptions(chart3DOpts(
		"First Brillouin Zone",
		fmt.Sprintf("vertices=%d edges=%d faces=%d radius=%d", len(zone.Vertices), len(edges), len(zone.Simplices), zone.Radius),
		axisBound(zone.Vertices),
	)...)
	for _, e := range edges {
		line.AddSeries("zone", []opts.Chart3DData{
			chartPoint("", zone.Vertices[e[0]]),
			chartPoint("", zone.Vertices[e[1]]),
		}, charts.WithLineStyleOpts(opts.LineStyle{Color: "#91cc75", Width: 2}))
	}

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return buf.Bytes(), nil
}

// latticeChart renders the reciprocal lattice of the query basis as an
// interactive 3D scatter page.
func (s *Server) latticeChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w, http.MethodGet)
		return
	}
	req, err := requestFromQuery(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.calc.ReciprocalLattice(req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	page, err := renderLatticeChart(res)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	httputil.WriteHTML(w, page)
}

// brillouinChart renders the first Brillouin zone of the query basis as a
// 3D wireframe page.
func (s *Server) brillouinChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w, http.MethodGet)
		return
	}
	req, err := requestFromQuery(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	zone, err := s.calc.BrillouinZone(req)
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
}
