package grpcapi

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/banshee-data/lattice.report/internal/lattice"
)

// Client calls the lattice service over an existing connection.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient creates a Client.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// ReciprocalLattice calls LatticeService.ReciprocalLattice.
func (c *Client) ReciprocalLattice(ctx context.Context, req lattice.Request, opts ...grpc.CallOption) (*lattice.LatticeResponse, error) {
	var out lattice.LatticeResponse
	if err := c.invoke(ctx, reciprocalLatticeMethod, req, &out, opts...); err != nil {
		return nil, err
	}
	return &out, nil
}

// BrillouinZone calls LatticeService.BrillouinZone.
func (c *Client) BrillouinZone(ctx context.Context, req lattice.Request, opts ...grpc.CallOption) (*lattice.ZoneResponse, error) {
	var out lattice.ZoneResponse
	if err := c.invoke(ctx, brillouinZoneMethod, req, &out, opts...); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) invoke(ctx context.Context, method string, req, out interface{}, opts ...grpc.CallOption) error {
	in, err := toStruct(req)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	resp := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, resp, opts...); err != nil {
		return err
	}
	if err := fromStruct(resp, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
