package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/banshee-data/lattice.report/internal/httputil"
	"github.com/banshee-data/lattice.report/internal/lattice"
)

// maxResponseBytes bounds responses read by Client.
const maxResponseBytes = 16 << 20

// StatusError is a non-200 response from the server.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Client calls the lattice HTTP API.
type Client struct {
	baseURL string
	hc      httputil.HTTPClient
}

// NewClient creates a Client for the server at baseURL. A nil hc uses
// http.DefaultClient.
func NewClient(baseURL string, hc httputil.HTTPClient) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), hc: hc}
}

// ReciprocalLattice calls POST /calculate_lattice.
func (c *Client) ReciprocalLattice(ctx context.Context, req lattice.Request) (*lattice.LatticeResponse, error) {
	var out lattice.LatticeResponse
	if err := c.post(ctx, "/calculate_lattice", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// BrillouinZone calls POST /calculate_brillouin.
func (c *Client) BrillouinZone(ctx context.Context, req lattice.Request) (*lattice.ZoneResponse, error) {
	var out lattice.ZoneResponse
	if err := c.post(ctx, "/calculate_brillouin", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, path string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(httpReq)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var eb httputil.ErrorBody
		if json.Unmarshal(data, &eb) != nil || eb.Error == "" {
			eb.Error = strings.TrimSpace(string(data))
		}
		return &StatusError{StatusCode: resp.StatusCode, Message: eb.Error}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
