package wave

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/lattice.report/internal/fsutil"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

func smallConfig() RenderConfig {
	cfg := DefaultRenderConfig()
	cfg.Frames = 3
	cfg.Samples = 40
	cfg.Width = 3 * vg.Inch
	cfg.Height = 2.4 * vg.Inch
	cfg.DPI = 30
	cfg.Workers = 2
	return cfg
}

func newSmallRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer(smallConfig())
	require.NoError(t, err)
	return r
}

func TestDefaultRenderConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultRenderConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 150, cfg.Frames)
	assert.Equal(t, 0.05, cfg.DT)
	assert.Equal(t, 500, cfg.Samples)
	assert.Equal(t, 50.0, cfg.EmbedLimitMB)
	assert.Equal(t, 10*vg.Inch, cfg.Width)
	assert.Equal(t, 8*vg.Inch, cfg.Height)
}

func TestRenderConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*RenderConfig)
		want   string
	}{
		{"frames", func(c *RenderConfig) { c.Frames = 0 }, "frames"},
		{"samples", func(c *RenderConfig) { c.Samples = 1 }, "samples"},
		{"dt", func(c *RenderConfig) { c.DT = 0 }, "dt"},
		{"x range", func(c *RenderConfig) { c.XMax = c.XMin }, "x range"},
		{"y range", func(c *RenderConfig) { c.YMin = 5 }, "y range"},
		{"size", func(c *RenderConfig) { c.Width = 0 }, "figure size"},
		{"dpi", func(c *RenderConfig) { c.DPI = -1 }, "dpi"},
		{"embed", func(c *RenderConfig) { c.EmbedLimitMB = 0 }, "embed limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultRenderConfig()
			tt.mutate(&cfg)
			_, err := NewRenderer(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNewRenderer_DefaultWorkers(t *testing.T) {
	t.Parallel()

	r, err := NewRenderer(DefaultRenderConfig())
	require.NoError(t, err)
	assert.Positive(t, r.Config().Workers)
}

func TestRenderer_Frames(t *testing.T) {
	t.Parallel()

	r := newSmallRenderer(t)
	frames := r.Frames(Cases[1])
	require.Len(t, frames, 3)
	for i, f := range frames {
		assert.InDelta(t, float64(i)*0.05, f.T, 1e-12)
		assert.Len(t, f.X, 40)
	}
}

func TestRenderer_RenderFrame(t *testing.T) {
	t.Parallel()

	r := newSmallRenderer(t)
	c := Cases[0]
	png, err := r.RenderFrame(c, c.Params().At(Linspace(-10, 10, 40), 0))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngSignature))
}

func TestRenderer_RenderFramesInOrder(t *testing.T) {
	t.Parallel()

	r := newSmallRenderer(t)
	pngs, err := r.RenderFrames(context.Background(), Cases[2])
	require.NoError(t, err)
	require.Len(t, pngs, 3)

	frames := r.Frames(Cases[2])
	for i, png := range pngs {
		want, err := r.RenderFrame(Cases[2], frames[i])
		require.NoError(t, err)
		assert.Equal(t, want, png, "frame %d", i)
	}
}

func TestRenderer_Render(t *testing.T) {
	t.Parallel()

	r := newSmallRenderer(t)
	var buf bytes.Buffer
	require.NoError(t, r.Render(context.Background(), Cases[0], &buf))

	html := buf.String()
	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, "Wave Superposition (Vp&gt;0, Vg&lt;0)")
	assert.Equal(t, 3, strings.Count(html, "data:image/png;base64,"))
	assert.Contains(t, html, "group velocity -1.000")
	assert.Regexp(t, `var interval = \s*50\s*;`, html)
}

func TestRenderer_EmbedLimit(t *testing.T) {
	t.Parallel()

	cfg := smallConfig()
	cfg.EmbedLimitMB = 0.0001
	r, err := NewRenderer(cfg)
	require.NoError(t, err)

	var buf bytes.Buffer
	err = r.Render(context.Background(), Cases[0], &buf)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmbedLimit))
	assert.Zero(t, buf.Len())
}

func TestRenderer_Cancelled(t *testing.T) {
	t.Parallel()

	r := newSmallRenderer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.RenderFrames(ctx, Cases[0])
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRenderer_WriteAll(t *testing.T) {
	t.Parallel()

	r := newSmallRenderer(t)
	fsys := fsutil.NewMemoryFileSystem()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	paths, err := r.WriteAll(ctx, fsys, "/reports/waves", Cases)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/reports/waves/phase_group_velocity_vp-pos-vg-neg.html",
		"/reports/waves/phase_group_velocity_vp-pos-vg-pos.html",
		"/reports/waves/phase_group_velocity_vp-pos-vg-zero.html",
	}, paths)
	assert.Equal(t, paths, fsys.Files())

	data, err := fsys.ReadFile(paths[2])
	require.NoError(t, err)
	assert.Contains(t, string(data), "group velocity 0.000")
}

func TestRenderer_WriteCaseEmbedLimitLeavesNoFile(t *testing.T) {
	t.Parallel()

	cfg := smallConfig()
	cfg.EmbedLimitMB = 0.0001
	r, err := NewRenderer(cfg)
	require.NoError(t, err)

	fsys := fsutil.NewMemoryFileSystem()
	_, err = r.WriteCase(context.Background(), fsys, "/out", Cases[1])
	assert.True(t, errors.Is(err, ErrEmbedLimit))
	assert.Empty(t, fsys.Files())
}
