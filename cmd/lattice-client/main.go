// Command lattice-client queries a running lattice server over HTTP or gRPC
// and prints the JSON response.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/banshee-data/lattice.report/internal/api"
	"github.com/banshee-data/lattice.report/internal/grpcapi"
	"github.com/banshee-data/lattice.report/internal/lattice"
)

type options struct {
	transport string
	addr      string
	op        string
	preset    string
	a1        string
	a2        string
	a3        string
	spacing   float64
	timeout   time.Duration
}

func parseFlags(args []string) (*options, error) {
	o := &options{}
	fs := flag.NewFlagSet("lattice-client", flag.ContinueOnError)
	fs.StringVar(&o.transport, "transport", "http", "Transport: http or grpc")
	fs.StringVar(&o.addr, "addr", "", "Server address (default http://localhost:5000 or localhost:5001)")
	fs.StringVar(&o.op, "op", "brillouin", "Operation: lattice or brillouin")
	fs.StringVar(&o.preset, "preset", "fcc", "Named basis used when -a1, -a2 and -a3 are empty")
	fs.StringVar(&o.a1, "a1", "", "First direct vector, e.g. 1,1,0")
	fs.StringVar(&o.a2, "a2", "", "Second direct vector")
	fs.StringVar(&o.a3, "a3", "", "Third direct vector")
	fs.Float64Var(&o.spacing, "spacing", lattice.DefaultSpacing, "Uniform lattice spacing")
	fs.DurationVar(&o.timeout, "timeout", 10*time.Second, "Request timeout")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	switch o.transport {
	case "http":
		if o.addr == "" {
			o.addr = "http://localhost:5000"
		}
	case "grpc":
		if o.addr == "" {
			o.addr = "localhost:5001"
		}
	default:
		return nil, fmt.Errorf("unknown transport %q", o.transport)
	}
	if o.op != "lattice" && o.op != "brillouin" {
		return nil, fmt.Errorf("unknown operation %q", o.op)
	}
	return o, nil
}

// request builds the lattice request from explicit vectors or the preset.
func (o *options) request() (lattice.Request, error) {
	var req lattice.Request
	if o.a1 == "" && o.a2 == "" && o.a3 == "" {
		b, err := lattice.LookupPreset(o.preset)
		if err != nil {
			return req, err
		}
		req = lattice.RequestFor(b)
	} else {
		for _, f := range []struct {
			name, raw string
			dst       *[]float64
		}{{"a1", o.a1, &req.A1}, {"a2", o.a2, &req.A2}, {"a3", o.a3, &req.A3}} {
			v, err := lattice.ParseVector(f.name, f.raw)
			if err != nil {
				return req, err
			}
			*f.dst = v
		}
	}
	spacing := o.spacing
	req.Spacing = &spacing
	return req, nil
}

// caller is satisfied by both api.Client and grpcapi.Client.
type caller interface {
	ReciprocalLattice(ctx context.Context, req lattice.Request) (*lattice.LatticeResponse, error)
	BrillouinZone(ctx context.Context, req lattice.Request) (*lattice.ZoneResponse, error)
}

type grpcCaller struct{ c *grpcapi.Client }

func (g grpcCaller) ReciprocalLattice(ctx context.Context, req lattice.Request) (*lattice.LatticeResponse, error) {
	return g.c.ReciprocalLattice(ctx, req)
}

func (g grpcCaller) BrillouinZone(ctx context.Context, req lattice.Request) (*lattice.ZoneResponse, error) {
	return g.c.BrillouinZone(ctx, req)
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	o, err := parseFlags(args)
	if err != nil {
		return err
	}
	req, err := o.request()
	if err != nil {
		return err
	}

	var c caller
	switch o.transport {
	case "grpc":
		conn, err := grpc.NewClient(o.addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return fmt.Errorf("dial %s: %w", o.addr, err)
		}
		defer conn.Close()
		c = grpcCaller{grpcapi.NewClient(conn)}
	default:
		c = api.NewClient(o.addr, &http.Client{Timeout: o.timeout})
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	var out any
	switch o.op {
	case "lattice":
		out, err = c.ReciprocalLattice(ctx, req)
	default:
		out, err = c.BrillouinZone(ctx, req)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatalf("lattice-client: %v", err)
	}
}
