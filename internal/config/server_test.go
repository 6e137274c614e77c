package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/lattice.report/internal/lattice"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestEmptyServerConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg := EmptyServerConfig()
	assert.Equal(t, "localhost:5000", cfg.GetListen())
	assert.Equal(t, "localhost:5001", cfg.GetGRPCListen())
	assert.Equal(t, 2, cfg.GetDisplayRadius())
	assert.Equal(t, 1, cfg.GetNeighborRadius())
	assert.Equal(t, 4, cfg.GetMaxNeighborRadius())
	assert.Equal(t, []string{"*"}, cfg.GetAllowedOrigins())
	assert.Equal(t, int64(65536), cfg.GetMaxBodyBytes())
	assert.Equal(t, 5*time.Second, cfg.GetShutdownTimeout())
	assert.NoError(t, cfg.Validate())
}

func TestDefaultServerConfig_MatchesGetters(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DefaultServerConfig(), EmptyServerConfig().Effective())
}

func TestDefaultsFileMatchesBuiltins(t *testing.T) {
	t.Parallel()

	cfg, err := LoadServerConfig(filepath.Join("..", "..", DefaultConfigPath))
	require.NoError(t, err)
	assert.Equal(t, DefaultServerConfig(), cfg.Effective())
}

func TestLoadServerConfig(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "server.json", `{
  "listen": ":8080",
  "grpc_listen": "",
  "neighbor_radius": 2,
  "allowed_origins": ["http://localhost:3000"],
  "shutdown_timeout": "250ms"
}`)

	cfg, err := LoadServerConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.GetListen())
	assert.Equal(t, "", cfg.GetGRPCListen())
	assert.Equal(t, 2, cfg.GetNeighborRadius())
	assert.Equal(t, 4, cfg.GetMaxNeighborRadius())
	assert.Equal(t, 2, cfg.GetDisplayRadius(), "omitted fields keep defaults")
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.GetAllowedOrigins())
	assert.Equal(t, 250*time.Millisecond, cfg.GetShutdownTimeout())
}

func TestLoadServerConfig_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    string
		body    string
		wantErr string
	}{
		{"wrong extension", "server.yaml", `{}`, ".json extension"},
		{"bad json", "server.json", `{"listen":`, "parse config JSON"},
		{"invalid value", "server.json", `{"display_radius": -1}`, "display_radius"},
		{"too large", "server.json", `{"listen":"` + strings.Repeat("x", maxFileSize) + `"}`, "too large"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadServerConfig(writeConfig(t, tt.file, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	_, err := LoadServerConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "stat config file")
}

func TestServerConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     *ServerConfig
		wantErr string
	}{
		{"empty", &ServerConfig{}, ""},
		{"defaults", DefaultServerConfig(), ""},
		{"display radius zero", &ServerConfig{DisplayRadius: ptrInt(0)}, ""},
		{"display radius negative", &ServerConfig{DisplayRadius: ptrInt(-1)}, "display_radius"},
		{"display radius too large", &ServerConfig{DisplayRadius: ptrInt(13)}, "display_radius"},
		{"neighbor radius zero", &ServerConfig{NeighborRadius: ptrInt(0)}, "neighbor_radius"},
		{"max below neighbor", &ServerConfig{NeighborRadius: ptrInt(3), MaxNeighborRadius: ptrInt(2)}, "max_neighbor_radius"},
		{"neighbor above default max", &ServerConfig{NeighborRadius: ptrInt(6)}, ""},
		{"max too large", &ServerConfig{MaxNeighborRadius: ptrInt(20)}, "max_neighbor_radius"},
		{"body limit zero", &ServerConfig{MaxBodyBytes: ptrInt64(0)}, "max_body_bytes"},
		{"bad timeout", &ServerConfig{ShutdownTimeout: ptrString("soon")}, "shutdown_timeout"},
		{"negative timeout", &ServerConfig{ShutdownTimeout: ptrString("-1s")}, "shutdown_timeout"},
		{"empty origin", &ServerConfig{AllowedOrigins: []string{""}}, "allowed_origins"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestServerConfig_CalculatorConfig(t *testing.T) {
	t.Parallel()

	cfg := &ServerConfig{DisplayRadius: ptrInt(3), NeighborRadius: ptrInt(2), MaxNeighborRadius: ptrInt(5)}
	want := lattice.CalculatorConfig{
		DisplayRadius: 3,
		Extractor:     lattice.ExtractorConfig{Radius: 2, MaxRadius: 5},
	}
	assert.Equal(t, want, cfg.CalculatorConfig())

	assert.Equal(t, lattice.DefaultCalculatorConfig(), EmptyServerConfig().CalculatorConfig())
}

func TestGetMaxNeighborRadius_FollowsNeighborRadius(t *testing.T) {
	t.Parallel()

	cfg := &ServerConfig{NeighborRadius: ptrInt(6)}
	assert.Equal(t, 6, cfg.GetMaxNeighborRadius())
}

func TestGetShutdownTimeout_BadValueFallsBack(t *testing.T) {
	t.Parallel()

	cfg := &ServerConfig{ShutdownTimeout: ptrString("later")}
	assert.Equal(t, 5*time.Second, cfg.GetShutdownTimeout())
}
