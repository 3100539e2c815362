package grpctransport

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"

	"github.com/raftlog/raftd/raft"
)

// Transport implements raft.Outbound over gRPC and dispatches inbound peer
// traffic into a channel a raft.Node's Run loop consumes — the networked
// analogue of the in-process channel wiring in raft.Node, grounded on
// leifdb's raftserver package wiring a grpc.Server around the consensus
// core's RPC surface.
type Transport struct {
	self  raft.NodeId
	addrs map[raft.NodeId]string
	inbox chan<- raft.Message

	logger zerolog.Logger

	mu    sync.Mutex
	conns map[raft.NodeId]*peerConn
}

type peerConn struct {
	cc     *grpc.ClientConn
	stream RaftStreamClient
}

// NewTransport builds a Transport that delivers decoded inbound messages
// onto inbox. addrs maps every peer's NodeId to its dial address; self is
// excluded from addrs by convention (it is never dialed or broadcast to).
func NewTransport(self raft.NodeId, addrs map[raft.NodeId]string, inbox chan<- raft.Message, logger zerolog.Logger) *Transport {
	return &Transport{
		self:   self,
		addrs:  addrs,
		inbox:  inbox,
		logger: logger,
		conns:  make(map[raft.NodeId]*peerConn),
	}
}

// Send implements raft.Outbound. Broadcast fans out to every known peer,
// keeps going past a failed peer, and returns the first error. Dial/send
// failures are returned to the caller without being logged here; raft.Node
// logs them and treats them as transient (spec's fatal conditions are
// durability and FSM failure, not transport).
func (t *Transport) Send(msg raft.Message) error {
	switch msg.To.Kind {
	case raft.AddrPeer:
		return t.sendTo(msg.To.Peer, msg.Command)

	case raft.AddrBroadcast:
		var firstErr error
		for id := range t.addrs {
			if err := t.sendTo(id, msg.Command); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr

	default:
		return fmt.Errorf("grpctransport: cannot send to address kind %v", msg.To.Kind)
	}
}

func (t *Transport) sendTo(peer raft.NodeId, cmd raft.Command) error {
	env, err := encode(t.self, peer, cmd)
	if err != nil {
		return err
	}

	conn, err := t.connFor(peer)
	if err != nil {
		return err
	}

	if err := conn.stream.Send(env); err != nil {
		t.mu.Lock()
		delete(t.conns, peer)
		t.mu.Unlock()
		return fmt.Errorf("grpctransport: send to %d: %w", peer, err)
	}
	return nil
}

func (t *Transport) connFor(peer raft.NodeId) (*peerConn, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if conn, ok := t.conns[peer]; ok {
		return conn, nil
	}

	addr, ok := t.addrs[peer]
	if !ok {
		return nil, fmt.Errorf("grpctransport: no address known for peer %d", peer)
	}

	cc, err := grpc.Dial(addr, grpc.WithInsecure())
	if err != nil {
		return nil, fmt.Errorf("grpctransport: dial %s: %w", addr, err)
	}

	stream, err := NewRaftClient(cc).Stream(context.Background())
	if err != nil {
		cc.Close()
		return nil, fmt.Errorf("grpctransport: open stream to %s: %w", addr, err)
	}

	conn := &peerConn{cc: cc, stream: stream}
	t.conns[peer] = conn

	go t.drainInbound(peer, stream)

	return conn, nil
}

// drainInbound reads whatever the peer sends back on a stream this node
// opened and forwards it to inbox, the same as Stream does for streams
// peers open. Transport.Stream never sends on the server side of a stream,
// so between two Transports nothing arrives here: a reply such as a
// follower's AppendResponse travels over the follower's own outbound
// stream to the leader's Stream.
func (t *Transport) drainInbound(peer raft.NodeId, stream RaftStreamClient) {
	for {
		env, err := stream.Recv()
		if err != nil {
			if err != io.EOF {
				t.logger.Warn().Err(err).Uint64("peer", uint64(peer)).Msg("peer stream closed")
			}
			return
		}
		msg, err := decode(peer, env)
		if err != nil {
			t.logger.Warn().Err(err).Msg("failed to decode inbound envelope")
			continue
		}
		t.inbox <- msg
	}
}

// Stream implements RaftServer for inbound connections initiated by peers.
// Every Envelope identifies its sender via its From field and is decoded
// and forwarded.
func (t *Transport) Stream(stream RaftStreamServer) error {
	for {
		env, err := stream.Recv()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		peer := raft.NodeId(env.From)
		msg, err := decode(peer, env)
		if err != nil {
			t.logger.Warn().Err(err).Msg("failed to decode inbound envelope")
			continue
		}
		t.inbox <- msg
	}
}

// Serve registers the transport against s. The caller owns s's lifecycle
// (Serve/GracefulStop).
func (t *Transport) Serve(s *grpc.Server) {
	RegisterRaftServer(s, t)
}

// Close tears down every outbound connection.
func (t *Transport) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, c := range t.conns {
		c.cc.Close()
	}
	t.conns = make(map[raft.NodeId]*peerConn)
}
