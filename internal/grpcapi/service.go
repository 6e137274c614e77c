// Package grpcapi exposes the lattice calculator over gRPC. Messages are
// google.protobuf.Struct values carrying the same JSON shapes as the HTTP API,
// so no generated code is needed.
package grpcapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/banshee-data/lattice.report/internal/lattice"
	"github.com/banshee-data/lattice.report/internal/monitoring"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "lattice.v1.LatticeService"

const (
	reciprocalLatticeMethod = "/" + ServiceName + "/ReciprocalLattice"
	brillouinZoneMethod     = "/" + ServiceName + "/BrillouinZone"
)

var logf = monitoring.Component("gRPC")

// LatticeServiceServer is the server API for the lattice service.
type LatticeServiceServer interface {
	ReciprocalLattice(context.Context, *structpb.Struct) (*structpb.Struct, error)
	BrillouinZone(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// Server implements LatticeServiceServer on top of a lattice.Calculator.
type Server struct {
	calc *lattice.Calculator
}

// NewServer creates a Server.
func NewServer(calc *lattice.Calculator) *Server {
	return &Server{calc: calc}
}

// ReciprocalLattice computes the reciprocal basis and point cloud.
func (s *Server) ReciprocalLattice(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := decodeRequest(ctx, in)
	if err != nil {
		return nil, err
	}
	res, err := s.calc.ReciprocalLattice(req)
	if err != nil {
		return nil, toStatus(reciprocalLatticeMethod, err)
	}
	return encodeResponse(res.Response())
}

// BrillouinZone computes the first Brillouin zone.
func (s *Server) BrillouinZone(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := decodeRequest(ctx, in)
	if err != nil {
		return nil, err
	}
	zone, err := s.calc.BrillouinZone(req)
	if err != nil {
		return nil, toStatus(brillouinZoneMethod, err)
	}
	return encodeResponse(zone.Response())
}

// decodeRequest converts a Struct into a lattice.Request through its JSON
// form. A cancelled context short-circuits the call.
func decodeRequest(ctx context.Context, in *structpb.Struct) (lattice.Request, error) {
	var req lattice.Request
	if err := ctx.Err(); err != nil {
		return req, status.FromContextError(err).Err()
	}
	if in == nil {
		return req, status.Error(codes.InvalidArgument, "request is required")
	}
	if err := fromStruct(in, &req); err != nil {
		return req, status.Errorf(codes.InvalidArgument, "malformed request: %v", err)
	}
	return req, nil
}

func encodeResponse(v interface{}) (*structpb.Struct, error) {
	out, err := toStruct(v)
	if err != nil {
		logf("failed to encode response: %v", err)
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	return out, nil
}

// toStruct converts a JSON-serialisable value into a Struct.
func toStruct(v interface{}) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("unmarshal struct: %w", err)
	}
	return out, nil
}

// fromStruct converts a Struct into a JSON-deserialisable value.
func fromStruct(in *structpb.Struct, v interface{}) error {
	data, err := protojson.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal struct: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return nil
}

// toStatus maps calculation errors to gRPC status codes. Unclassified
// errors are logged and reported with a generic message.
func toStatus(method string, err error) error {
	switch {
	case errors.Is(err, lattice.ErrDegenerateBasis),
		errors.Is(err, lattice.ErrInvalidBrillouinZone),
		errors.Is(err, lattice.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		logf("%s failed: %v", method, err)
		return status.Error(codes.Internal, "lattice calculation failed")
	}
}

func reciprocalLatticeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LatticeServiceServer).ReciprocalLattice(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: reciprocalLatticeMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(LatticeServiceServer).ReciprocalLattice(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func brillouinZoneHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LatticeServiceServer).BrillouinZone(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: brillouinZoneMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(LatticeServiceServer).BrillouinZone(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// ServiceDesc describes the lattice service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LatticeServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ReciprocalLattice", Handler: reciprocalLatticeHandler},
		{MethodName: "BrillouinZone", Handler: brillouinZoneHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "lattice/v1/lattice.proto",
}

// RegisterService registers the lattice service with the server.
func RegisterService(grpcServer grpc.ServiceRegistrar, server LatticeServiceServer) {
	grpcServer.RegisterService(&ServiceDesc, server)
}
