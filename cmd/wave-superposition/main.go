// Command wave-superposition renders the phase and group velocity
// animations as self-contained HTML files.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/lattice.report/internal/fsutil"
	"github.com/banshee-data/lattice.report/internal/wave"
)

type options struct {
	cases  []wave.Case
	outDir string
	cfg    wave.RenderConfig
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	def := wave.DefaultRenderConfig()
	cfg := def
	var (
		caseName string
		out      string
		width    float64
		height   float64
	)

	fs := flag.NewFlagSet("wave-superposition", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&caseName, "case", "all", "Case name or slug, or \"all\"")
	fs.StringVar(&out, "out", ".", "Output directory")
	fs.IntVar(&cfg.Frames, "frames", def.Frames, "Number of frames")
	fs.Float64Var(&cfg.DT, "dt", def.DT, "Time step between frames")
	fs.IntVar(&cfg.Samples, "samples", def.Samples, "Samples along x")
	fs.IntVar(&cfg.DPI, "dpi", def.DPI, "Frame resolution in dots per inch")
	fs.Float64Var(&width, "width", float64(def.Width/vg.Inch), "Figure width in inches")
	fs.Float64Var(&height, "height", float64(def.Height/vg.Inch), "Figure height in inches")
	fs.DurationVar(&cfg.Interval, "interval", def.Interval, "Delay between frames in the player")
	fs.Float64Var(&cfg.EmbedLimitMB, "embed-limit", def.EmbedLimitMB, "Maximum embedded frame data in MB")
	fs.IntVar(&cfg.Workers, "workers", 0, "Concurrent frame renderers (0 uses GOMAXPROCS)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg.Width = vg.Length(width) * vg.Inch
	cfg.Height = vg.Length(height) * vg.Inch

	o := &options{outDir: out, cfg: cfg}
	if caseName == "all" {
		o.cases = wave.Cases
	} else {
		c, err := wave.Lookup(caseName)
		if err != nil {
			names := make([]string, len(wave.Cases))
			for i, c := range wave.Cases {
				names[i] = c.Slug
			}
			return nil, fmt.Errorf("%w (known: %s)", err, strings.Join(names, ", "))
		}
		o.cases = []wave.Case{c}
	}
	return o, nil
}

func run(ctx context.Context, args []string, fsys fsutil.FileSystem, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	r, err := wave.NewRenderer(o.cfg)
	if err != nil {
		return err
	}
	paths, err := r.WriteAll(ctx, fsys, o.outDir, o.cases)
	for _, p := range paths {
		fmt.Fprintln(stdout, p)
	}
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], fsutil.OSFileSystem{}, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatalf("wave-superposition: %v", err)
	}
}
