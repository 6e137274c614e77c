package grpcapi

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/banshee-data/lattice.report/internal/lattice"
)

// Config holds configuration for the gRPC listener.
type Config struct {
	// ListenAddr is the address to listen on (e.g., "localhost:5001")
	ListenAddr string

	// MaxMsgSize bounds request and response messages in bytes.
	MaxMsgSize int
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		ListenAddr: "localhost:5001",
		MaxMsgSize: 4 * 1024 * 1024,
	}
}

// Publisher owns a grpc.Server serving the lattice service.
type Publisher struct {
	config Config
	server *grpc.Server

	mu       sync.Mutex
	listener net.Listener

	calls atomic.Uint64

	running atomic.Bool
	wg      sync.WaitGroup
}

// NewPublisher creates a Publisher with the lattice service registered.
func NewPublisher(cfg Config, calc *lattice.Calculator) *Publisher {
	def := DefaultConfig()
	if cfg.MaxMsgSize <= 0 {
		cfg.MaxMsgSize = def.MaxMsgSize
	}
	p := &Publisher{config: cfg}
	p.server = grpc.NewServer(
		grpc.MaxRecvMsgSize(cfg.MaxMsgSize),
		grpc.MaxSendMsgSize(cfg.MaxMsgSize),
		grpc.ChainUnaryInterceptor(p.logCalls),
	)
	RegisterService(p.server, NewServer(calc))
	return p
}

// logCalls counts calls and logs each one with its status code.
func (p *Publisher) logCalls(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	p.calls.Add(1)
	logf("%s %s %vms", info.FullMethod, status.Code(err), float64(time.Since(start).Nanoseconds())/1e6)
	return resp, err
}

// Start listens on the configured address and serves in the background.
func (p *Publisher) Start() error {
	lis, err := net.Listen("tcp", p.config.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return p.Serve(lis)
}

// Serve serves on lis in the background. The Publisher takes ownership of
// lis.
func (p *Publisher) Serve(lis net.Listener) error {
	if !p.running.CompareAndSwap(false, true) {
		return fmt.Errorf("publisher already running")
	}
	p.mu.Lock()
	p.listener = lis
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		logf("server listening on %s", lis.Addr())
		if err := p.server.Serve(lis); err != nil && p.running.Load() {
			logf("server error: %v", err)
		}
	}()
	return nil
}

// Addr returns the listening address, or nil before Start.
func (p *Publisher) Addr() net.Addr {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.listener == nil {
		return nil
	}
	return p.listener.Addr()
}

// Calls returns the number of completed unary calls.
func (p *Publisher) Calls() uint64 {
	return p.calls.Load()
}

// Stop gracefully stops the server, waiting at most timeout for in-flight
// calls before forcing it closed.
func (p *Publisher) Stop(timeout time.Duration) {
	if !p.running.CompareAndSwap(true, false) {
		return
	}

	done := make(chan struct{})
	go func() {
		p.server.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		logf("graceful stop timed out after %s, forcing", timeout)
		p.server.Stop()
		<-done
	}

	p.wg.Wait()
	logf("server stopped")
}
