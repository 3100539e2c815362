// Package grpctransport carries raft.Message traffic between peers over a
// single bidirectional-streaming gRPC method. This file is the service
// definition: it is written by hand in the same shape protoc-gen-go-grpc
// emits (ServiceDesc, wrapped Server/Client stream types) since this tree
// has no protobuf compiler available to generate it from a .proto file.
package grpctransport

import (
	"context"

	"google.golang.org/grpc"

	"github.com/raftlog/raftd/raftpb"
)

// RaftServer is implemented by the peer-facing transport endpoint.
type RaftServer interface {
	Stream(RaftStreamServer) error
}

// RaftStreamServer is the server's view of one peer's duplex stream of
// Envelopes.
type RaftStreamServer interface {
	Send(*raftpb.Envelope) error
	Recv() (*raftpb.Envelope, error)
	grpc.ServerStream
}

type raftStreamServer struct {
	grpc.ServerStream
}

func (x *raftStreamServer) Send(m *raftpb.Envelope) error {
	return x.ServerStream.SendMsg(m)
}

func (x *raftStreamServer) Recv() (*raftpb.Envelope, error) {
	m := new(raftpb.Envelope)
	if err := x.ServerStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func _Raft_Stream_Handler(srv interface{}, stream grpc.ServerStream) error {
	return srv.(RaftServer).Stream(&raftStreamServer{stream})
}

// RaftServiceDesc is registered against a *grpc.Server via
// RegisterRaftServer, same as a generated _ServiceDesc would be.
var RaftServiceDesc = grpc.ServiceDesc{
	ServiceName: "raftd.Raft",
	HandlerType: (*RaftServer)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Stream",
			Handler:       _Raft_Stream_Handler,
			ServerStreams: true,
			ClientStreams: true,
		},
	},
	Metadata: "raftd.proto",
}

// RegisterRaftServer wires srv into s the way generated code would.
func RegisterRaftServer(s grpc.ServiceRegistrar, srv RaftServer) {
	s.RegisterService(&RaftServiceDesc, srv)
}

// RaftClient dials a peer's Stream method.
type RaftClient interface {
	Stream(ctx context.Context, opts ...grpc.CallOption) (RaftStreamClient, error)
}

type raftClient struct {
	cc grpc.ClientConnInterface
}

// NewRaftClient wraps an established connection.
func NewRaftClient(cc grpc.ClientConnInterface) RaftClient {
	return &raftClient{cc: cc}
}

func (c *raftClient) Stream(ctx context.Context, opts ...grpc.CallOption) (RaftStreamClient, error) {
	stream, err := c.cc.NewStream(ctx, &RaftServiceDesc.Streams[0], "/raftd.Raft/Stream", opts...)
	if err != nil {
		return nil, err
	}
	return &raftStreamClient{stream}, nil
}

// RaftStreamClient is the client's view of the duplex stream.
type RaftStreamClient interface {
	Send(*raftpb.Envelope) error
	Recv() (*raftpb.Envelope, error)
	grpc.ClientStream
}

type raftStreamClient struct {
	grpc.ClientStream
}

func (x *raftStreamClient) Send(m *raftpb.Envelope) error {
	return x.ClientStream.SendMsg(m)
}

func (x *raftStreamClient) Recv() (*raftpb.Envelope, error) {
	m := new(raftpb.Envelope)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}
