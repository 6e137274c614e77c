package wave

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"image/color"
	"io"
	"runtime"
	"sync"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/banshee-data/lattice.report/internal/monitoring"
)

var logf = monitoring.Component("Wave")

// ErrEmbedLimit is returned when the encoded frames exceed
// RenderConfig.EmbedLimitMB.
var ErrEmbedLimit = errors.New("animation exceeds embed limit")

var (
	colorF0       = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	colorF1       = color.RGBA{R: 44, G: 160, B: 44, A: 255}
	colorSum      = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	colorEnvelope = color.RGBA{R: 255, G: 127, B: 14, A: 255}
)

// RenderConfig controls sampling and the animation output.
type RenderConfig struct {
	Frames  int
	DT      float64
	Samples int

	XMin, XMax float64
	YMin, YMax float64

	Width, Height vg.Length
	DPI           int

	// Interval is the delay between frames in the player.
	Interval time.Duration

	// EmbedLimitMB caps the total size of the base64 frames.
	EmbedLimitMB float64

	// Workers bounds concurrent frame rendering. Zero uses GOMAXPROCS.
	Workers int
}

// DefaultRenderConfig returns 150 frames of a 10x8 inch figure.
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		Frames:       150,
		DT:           0.05,
		Samples:      500,
		XMin:         -10,
		XMax:         10,
		YMin:         -3,
		YMax:         3,
		Width:        10 * vg.Inch,
		Height:       8 * vg.Inch,
		DPI:          80,
		Interval:     50 * time.Millisecond,
		EmbedLimitMB: 50,
	}
}

// Validate reports the first unusable field.
func (c RenderConfig) Validate() error {
	switch {
	case c.Frames <= 0:
		return fmt.Errorf("frames must be positive, got %d", c.Frames)
	case c.Samples < 2:
		return fmt.Errorf("samples must be at least 2, got %d", c.Samples)
	case c.DT <= 0:
		return fmt.Errorf("dt must be positive, got %g", c.DT)
	case c.XMax <= c.XMin:
		return fmt.Errorf("x range [%g, %g] is empty", c.XMin, c.XMax)
	case c.YMax <= c.YMin:
		return fmt.Errorf("y range [%g, %g] is empty", c.YMin, c.YMax)
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("figure size %vx%v is empty", c.Width, c.Height)
	case c.DPI <= 0:
		return fmt.Errorf("dpi must be positive, got %d", c.DPI)
	case c.EmbedLimitMB <= 0:
		return fmt.Errorf("embed limit must be positive, got %g", c.EmbedLimitMB)
	}
	return nil
}

func (c RenderConfig) embedLimitBytes() int {
	return int(c.EmbedLimitMB * 1024 * 1024)
}

// Renderer draws animation frames for a case.
type Renderer struct {
	cfg RenderConfig
}

// NewRenderer validates cfg and returns a Renderer.
func NewRenderer(cfg RenderConfig) (*Renderer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	return &Renderer{cfg: cfg}, nil
}

// Config returns the effective configuration.
func (r *Renderer) Config() RenderConfig {
	return r.cfg
}

// Frames samples every frame of c.
func (r *Renderer) Frames(c Case) []Frame {
	p := c.Params()
	x := Linspace(r.cfg.XMin, r.cfg.XMax, r.cfg.Samples)
	frames := make([]Frame, r.cfg.Frames)
	for i := range frames {
		frames[i] = p.At(x, float64(i)*r.cfg.DT)
	}
	return frames
}

// RenderFrame draws one frame as a PNG image.
func (r *Renderer) RenderFrame(c Case, f Frame) ([]byte, error) {
	top, err := r.componentsPlot(f)
	if err != nil {
		return nil, err
	}
	bottom, err := r.resultantPlot(f)
	if err != nil {
		return nil, err
	}
	top.Title.Text = fmt.Sprintf("Wave Superposition (%s)\nf0 and f1", c.Name)

	img := vgimg.NewWith(vgimg.UseWH(r.cfg.Width, r.cfg.Height), vgimg.UseDPI(r.cfg.DPI))
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      2,
		Cols:      1,
		PadTop:    vg.Points(6),
		PadBottom: vg.Points(6),
		PadLeft:   vg.Points(6),
		PadRight:  vg.Points(12),
		PadY:      vg.Points(18),
	}
	canvases := plot.Align([][]*plot.Plot{{top}, {bottom}}, tiles, dc)
	top.Draw(canvases[0][0])
	bottom.Draw(canvases[1][0])

	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) newPlot(title string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "f"
	p.Legend.Top = true
	p.Add(plotter.NewGrid())
	return p
}

func (r *Renderer) fixRanges(p *plot.Plot) {
	p.X.Min, p.X.Max = r.cfg.XMin, r.cfg.XMax
	p.Y.Min, p.Y.Max = r.cfg.YMin, r.cfg.YMax
}

func (r *Renderer) componentsPlot(f Frame) (*plot.Plot, error) {
	p := r.newPlot("f0 and f1")
	if err := addLine(p, "f0", f.X, f.F0, colorF0, nil); err != nil {
		return nil, err
	}
	if err := addLine(p, "f1", f.X, f.F1, colorF1, nil); err != nil {
		return nil, err
	}
	r.fixRanges(p)
	return p, nil
}

func (r *Renderer) resultantPlot(f Frame) (*plot.Plot, error) {
	p := r.newPlot("Resultant Wave f(x)")
	if err := addLine(p, "f = f0 + f1", f.X, f.Sum, colorSum, nil); err != nil {
		return nil, err
	}
	dashes := []vg.Length{vg.Points(6), vg.Points(4)}
	if err := addLine(p, "envelope", f.X, f.Envelope, colorEnvelope, dashes); err != nil {
		return nil, err
	}
	lower := make([]float64, len(f.Envelope))
	for i, v := range f.Envelope {
		lower[i] = -v
	}
	if err := addLine(p, "", f.X, lower, colorEnvelope, dashes); err != nil {
		return nil, err
	}
	r.fixRanges(p)
	return p, nil
}

// addLine adds a line to p. An empty name keeps it out of the legend.
func addLine(p *plot.Plot, name string, x, y []float64, c color.Color, dashes []vg.Length) error {
	pts := make(plotter.XYs, len(x))
	for i := range x {
		pts[i].X = x[i]
		pts[i].Y = y[i]
	}
	l, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("line %q: %w", name, err)
	}
	l.Color = c
	l.Width = vg.Points(1.5)
	l.Dashes = dashes
	p.Add(l)
	if name != "" {
		p.Legend.Add(name, l)
	}
	return nil
}

// RenderFrames draws every frame of c, spreading the work over
// cfg.Workers goroutines. The result is in frame order.
func (r *Renderer) RenderFrames(ctx context.Context, c Case) ([][]byte, error) {
	frames := r.Frames(c)
	out := make([][]byte, len(frames))

	jobs := make(chan int)
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	setErr := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	for range min(r.cfg.Workers, len(frames)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				png, err := r.RenderFrame(c, frames[i])
				if err != nil {
					setErr(fmt.Errorf("frame %d: %w", i, err))
					continue
				}
				out[i] = png
			}
		}()
	}

feed:
	for i := range frames {
		if err := ctx.Err(); err != nil {
			setErr(err)
			break
		}
		select {
		case <-ctx.Done():
			setErr(ctx.Err())
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

// Render writes a self-contained HTML animation of c to w.
func (r *Renderer) Render(ctx context.Context, c Case, w io.Writer) error {
	start := time.Now()
	pngs, err := r.RenderFrames(ctx, c)
	if err != nil {
		return err
	}

	limit := r.cfg.embedLimitBytes()
	uris := make([]string, len(pngs))
	total := 0
	for i, png := range pngs {
		uris[i] = "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
		total += len(uris[i])
		if total > limit {
			return fmt.Errorf("%w: %d frames use more than %g MB", ErrEmbedLimit, i+1, r.cfg.EmbedLimitMB)
		}
	}

	p := c.Params()
	data := playerData{
		Title:         fmt.Sprintf("Wave Superposition (%s)", c.Name),
		Frames:        uris,
		IntervalMS:    int(r.cfg.Interval / time.Millisecond),
		PhaseVelocity: p.PhaseVelocity(),
		GroupVelocity: p.GroupVelocity(),
	}
	if err := playerTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("write player: %w", err)
	}
	logf("rendered %q: %d frames, %d bytes embedded in %v", c.Slug, len(pngs), total, time.Since(start).Round(time.Millisecond))
	return nil
}

type playerData struct {
	Title         string
	Frames        []string
	IntervalMS    int
	PhaseVelocity float64
	GroupVelocity float64
}

var playerTemplate = template.Must(template.New("player").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 1em; }
#frame { max-width: 100%; border: 1px solid #ddd; }
.controls { margin: 0.5em 0; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p>phase velocity {{printf "%.3f" .PhaseVelocity}}, group velocity {{printf "%.3f" .GroupVelocity}}</p>
<img id="frame" alt="{{.Title}}">
<div class="controls">
<button id="prev">&lt;</button>
<button id="play">Pause</button>
<button id="next">&gt;</button>
<input id="slider" type="range" min="0" value="0">
<span id="counter"></span>
</div>
<script>
(function() {
  var frames = {{.Frames}};
  var interval = {{.IntervalMS}};
  var img = document.getElementById("frame");
  var slider = document.getElementById("slider");
  var counter = document.getElementById("counter");
  var play = document.getElementById("play");
  var idx = 0, timer = null;
  slider.max = frames.length - 1;
  function show(i) {
    idx = (i + frames.length) % frames.length;
    img.src = frames[idx];
    slider.value = idx;
    counter.textContent = (idx + 1) + " / " + frames.length;
  }
  function start() {
    timer = setInterval(function() { show(idx + 1); }, interval);
    play.textContent = "Pause";
  }
  function stop() {
    clearInterval(timer);
    timer = null;
    play.textContent = "Play";
  }
  play.onclick = function() { timer ? stop() : start(); };
  document.getElementById("prev").onclick = function() { stop(); show(idx - 1); };
  document.getElementById("next").onclick = function() { stop(); show(idx + 1); };
  slider.oninput = function() { stop(); show(parseInt(slider.value, 10)); };
  show(0);
  start();
})();
</script>
</body>
</html>
`))
