package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/banshee-data/lattice.report/internal/lattice"
)

// DefaultConfigPath is the path to the canonical server defaults file.
const DefaultConfigPath = "config/server.defaults.json"

// maxFileSize bounds config files read from disk.
const maxFileSize = 1 * 1024 * 1024

// Built-in defaults used when a field is omitted.
const (
	defaultListen            = "localhost:5000"
	defaultGRPCListen        = "localhost:5001"
	defaultDisplayRadius     = 2
	defaultNeighborRadius    = 1
	defaultMaxNeighborRadius = 4
	defaultMaxBodyBytes      = 64 * 1024
	defaultShutdownTimeout   = 5 * time.Second

	// maxRadiusLimit caps neighbour radii; the cloud grows as (2n+1)³.
	maxRadiusLimit = 12
)

// ServerConfig is the lattice server configuration. Fields are pointers so a
// partial file keeps the built-in defaults for everything it omits.
type ServerConfig struct {
	Listen     *string `json:"listen,omitempty"`
	GRPCListen *string `json:"grpc_listen,omitempty"` // empty string disables gRPC

	// Calculation params
	DisplayRadius     *int `json:"display_radius,omitempty"`
	NeighborRadius    *int `json:"neighbor_radius,omitempty"`
	MaxNeighborRadius *int `json:"max_neighbor_radius,omitempty"`

	// HTTP params
	AllowedOrigins  []string `json:"allowed_origins,omitempty"`
	MaxBodyBytes    *int64   `json:"max_body_bytes,omitempty"`
	ShutdownTimeout *string  `json:"shutdown_timeout,omitempty"` // duration string like "5s"
}

func ptrString(v string) *string { return &v }
func ptrInt(v int) *int          { return &v }
func ptrInt64(v int64) *int64    { return &v }

// EmptyServerConfig returns a ServerConfig with every field unset.
func EmptyServerConfig() *ServerConfig {
	return &ServerConfig{}
}

// DefaultServerConfig returns a ServerConfig with every field set to its
// built-in default.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Listen:            ptrString(defaultListen),
		GRPCListen:        ptrString(defaultGRPCListen),
		DisplayRadius:     ptrInt(defaultDisplayRadius),
		NeighborRadius:    ptrInt(defaultNeighborRadius),
		MaxNeighborRadius: ptrInt(defaultMaxNeighborRadius),
		AllowedOrigins:    []string{"*"},
		MaxBodyBytes:      ptrInt64(defaultMaxBodyBytes),
		ShutdownTimeout:   ptrString(defaultShutdownTimeout.String()),
	}
}

// LoadServerConfig loads a ServerConfig from a JSON file.
// The file must have a .json extension and be at most 1 MiB.
func LoadServerConfig(path string) (*ServerConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyServerConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the set values are usable.
func (c *ServerConfig) Validate() error {
	if c.DisplayRadius != nil && (*c.DisplayRadius < 0 || *c.DisplayRadius > maxRadiusLimit) {
		return fmt.Errorf("display_radius must be between 0 and %d, got %d", maxRadiusLimit, *c.DisplayRadius)
	}
	if c.NeighborRadius != nil && (*c.NeighborRadius < 1 || *c.NeighborRadius > maxRadiusLimit) {
		return fmt.Errorf("neighbor_radius must be between 1 and %d, got %d", maxRadiusLimit, *c.NeighborRadius)
	}
	if c.MaxNeighborRadius != nil && *c.MaxNeighborRadius > maxRadiusLimit {
		return fmt.Errorf("max_neighbor_radius must be at most %d, got %d", maxRadiusLimit, *c.MaxNeighborRadius)
	}
	if c.MaxNeighborRadius != nil && *c.MaxNeighborRadius < c.GetNeighborRadius() {
		return fmt.Errorf("max_neighbor_radius (%d) must not be below neighbor_radius (%d)",
			*c.MaxNeighborRadius, c.GetNeighborRadius())
	}
	if c.MaxBodyBytes != nil && *c.MaxBodyBytes <= 0 {
		return fmt.Errorf("max_body_bytes must be positive, got %d", *c.MaxBodyBytes)
	}
	if c.ShutdownTimeout != nil && *c.ShutdownTimeout != "" {
		d, err := time.ParseDuration(*c.ShutdownTimeout)
		if err != nil {
			return fmt.Errorf("invalid shutdown_timeout '%s': %w", *c.ShutdownTimeout, err)
		}
		if d < 0 {
			return fmt.Errorf("shutdown_timeout must not be negative, got %s", d)
		}
	}
	for _, o := range c.AllowedOrigins {
		if o == "" {
			return fmt.Errorf("allowed_origins must not contain empty entries")
		}
	}
	return nil
}

// GetListen returns the HTTP listen address or the default.
func (c *ServerConfig) GetListen() string {
	if c.Listen == nil || *c.Listen == "" {
		return defaultListen
	}
	return *c.Listen
}

// GetGRPCListen returns the gRPC listen address. An explicit empty string
// disables the gRPC server.
func (c *ServerConfig) GetGRPCListen() string {
	if c.GRPCListen == nil {
		return defaultGRPCListen
	}
	return *c.GRPCListen
}

// GetDisplayRadius returns the display_radius value or the default.
func (c *ServerConfig) GetDisplayRadius() int {
	if c.DisplayRadius == nil {
		return defaultDisplayRadius
	}
	return *c.DisplayRadius
}

// GetNeighborRadius returns the neighbor_radius value or the default.
func (c *ServerConfig) GetNeighborRadius() int {
	if c.NeighborRadius == nil {
		return defaultNeighborRadius
	}
	return *c.NeighborRadius
}

// GetMaxNeighborRadius returns the max_neighbor_radius value. When unset it
// defaults to the larger of the built-in default and neighbor_radius.
func (c *ServerConfig) GetMaxNeighborRadius() int {
	if c.MaxNeighborRadius == nil {
		return max(defaultMaxNeighborRadius, c.GetNeighborRadius())
	}
	return *c.MaxNeighborRadius
}

// GetAllowedOrigins returns the CORS origins or ["*"].
func (c *ServerConfig) GetAllowedOrigins() []string {
	if len(c.AllowedOrigins) == 0 {
		return []string{"*"}
	}
	return c.AllowedOrigins
}

// GetMaxBodyBytes returns the request body limit or the default.
func (c *ServerConfig) GetMaxBodyBytes() int64 {
	if c.MaxBodyBytes == nil {
		return defaultMaxBodyBytes
	}
	return *c.MaxBodyBytes
}

// GetShutdownTimeout parses and returns the shutdown timeout.
func (c *ServerConfig) GetShutdownTimeout() time.Duration {
	if c.ShutdownTimeout == nil || *c.ShutdownTimeout == "" {
		return defaultShutdownTimeout
	}
	d, err := time.ParseDuration(*c.ShutdownTimeout)
	if err != nil {
		return defaultShutdownTimeout
	}
	return d
}

// CalculatorConfig converts the calculation params for lattice.NewCalculator.
func (c *ServerConfig) CalculatorConfig() lattice.CalculatorConfig {
	return lattice.CalculatorConfig{
		DisplayRadius: c.GetDisplayRadius(),
		Extractor: lattice.ExtractorConfig{
			Radius:    c.GetNeighborRadius(),
			MaxRadius: c.GetMaxNeighborRadius(),
		},
	}
}

// Effective returns a copy with every field resolved to its effective value.
func (c *ServerConfig) Effective() *ServerConfig {
	return &ServerConfig{
		Listen:            ptrString(c.GetListen()),
		GRPCListen:        ptrString(c.GetGRPCListen()),
		DisplayRadius:     ptrInt(c.GetDisplayRadius()),
		NeighborRadius:    ptrInt(c.GetNeighborRadius()),
		MaxNeighborRadius: ptrInt(c.GetMaxNeighborRadius()),
		AllowedOrigins:    append([]string(nil), c.GetAllowedOrigins()...),
		MaxBodyBytes:      ptrInt64(c.GetMaxBodyBytes()),
		ShutdownTimeout:   ptrString(c.GetShutdownTimeout().String()),
	}
}
