package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"

	"github.com/banshee-data/lattice.report/internal/api"
	"github.com/banshee-data/lattice.report/internal/config"
	"github.com/banshee-data/lattice.report/internal/grpcapi"
	"github.com/banshee-data/lattice.report/internal/lattice"
	"github.com/banshee-data/lattice.report/internal/version"
)

var (
	configPath  = flag.String("config", "", "Path to a JSON server config (default: built-in defaults)")
	listen      = flag.String("listen", "", "HTTP listen address, overrides the config file")
	grpcListen  = flag.String("grpc-listen", "", "gRPC listen address, overrides the config file")
	disableGRPC = flag.Bool("disable-grpc", false, "Do not start the gRPC listener")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

// loadConfig reads the config file, applies flag overrides and validates the
// result.
func loadConfig(path, listen, grpcListen string, disableGRPC bool) (*config.ServerConfig, error) {
	cfg := config.DefaultServerConfig()
	if path != "" {
		var err error
		if cfg, err = config.LoadServerConfig(path); err != nil {
			return nil, err
		}
	}
	if listen != "" {
		cfg.Listen = &listen
	}
	if grpcListen != "" {
		cfg.GRPCListen = &grpcListen
	}
	if disableGRPC {
		off := ""
		cfg.GRPCListen = &off
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	cfg, err := loadConfig(*configPath, *listen, *grpcListen, *disableGRPC)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	log.Printf("starting %s", version.String())

	calc := lattice.NewCalculator(cfg.CalculatorConfig(), nil)

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// gRPC routine
	if addr := cfg.GetGRPCListen(); addr != "" {
		publisher := grpcapi.NewPublisher(grpcapi.Config{ListenAddr: addr}, calc)
		if err := publisher.Start(); err != nil {
			log.Fatalf("failed to start gRPC server: %v", err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-ctx.Done()
			log.Println("shutting down gRPC server...")
			publisher.Stop(cfg.GetShutdownTimeout())
			log.Printf("gRPC server routine stopped after %d calls", publisher.Calls())
		}()
	}

	// HTTP server routine
	wg.Add(1)
	go func() {
		defer wg.Done()

		srv := api.NewServer(calc, cfg)
		mux := srv.ServeMux()
		srv.AttachAdminRoutes(mux)

		server := &http.Server{
			Addr:    cfg.GetListen(),
			Handler: srv.Handler(mux),
		}

		go func() {
			log.Printf("HTTP server listening on %s", server.Addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("HTTP server failed: %v", err)
				stop()
			}
		}()

		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GetShutdownTimeout())
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
			if err := server.Close(); err != nil {
				log.Printf("HTTP server force close error: %v", err)
			}
		}
		log.Printf("HTTP server routine stopped")
	}()

	wg.Wait()
	log.Printf("Graceful shutdown complete")
}
