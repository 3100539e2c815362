package raft

import (
	"context"

	"github.com/rs/zerolog"
)

// Outbound accepts a single outbound Message. The transport owns how an
// Address resolves to an actual connection and must preserve send order
// per directed pair (spec §6).
type Outbound interface {
	Send(Message) error
}

// Applier receives committed entries one at a time, in strict increasing
// index order, for forwarding to an FSM driver (see package fsm.Driver).
type Applier interface {
	Deliver(Entry) error
}

// TermPersister durably records current_term/voted_for. The persistence
// contract (spec §6) requires this complete before any outbound message
// can reveal the new term or vote, so Node calls it synchronously before
// sending anything a step produces.
type TermPersister interface {
	PersistTerm(term Term, votedFor *NodeId) error
}

// Node is the single goroutine that owns a RaftHandle — the idiomatic Go
// analogue of the design's single-owned-task driver (spec §9 prefers this
// over the actor framework the source experimented with). Every inbound
// Message or Tick runs to completion before the next is read, which is
// what makes the core race-free without any locking inside it (spec §5).
type Node struct {
	handle RaftHandle
	log    Log

	outbound  Outbound
	applier   Applier
	persister TermPersister
	logger    zerolog.Logger
}

// NewNode wires a freshly constructed RaftHandle to its collaborators.
// persister may be nil, in which case term/vote changes are held only in
// memory (fine for tests, not for a durable deployment).
func NewNode(handle RaftHandle, log Log, outbound Outbound, applier Applier, logger zerolog.Logger, persister TermPersister) *Node {
	return &Node{
		handle:    handle,
		log:       log,
		outbound:  outbound,
		applier:   applier,
		persister: persister,
		logger:    logger,
	}
}

// Run consumes inbound until it closes or ctx is cancelled. The host is
// responsible for injecting inbound Messages for real RPCs, for CmdTick at
// roughly the configured cadence (suggested ~100ms), and for closing the
// channel (or cancelling ctx) to request shutdown — matching the
// cancellation contract in spec §5: the in-flight message finishes before
// the loop returns, nothing is forcibly interrupted.
func (n *Node) Run(ctx context.Context, inbound <-chan Message) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-inbound:
			if !ok {
				return nil
			}
			if _, err := n.step(msg.Command); err != nil {
				return err
			}
		}
	}
}

// Submit drives a single command through the state machine directly and
// returns any Local-addressed messages it produced (e.g. a
// CmdClientResponse rejecting a write with ErrNotLeader). It is how the
// host's client-facing write path and tests reach the core without
// standing up a channel.
func (n *Node) Submit(cmd Command) ([]Message, error) {
	return n.step(cmd)
}

// Handle returns the current role snapshot — useful for status endpoints
// and tests.
func (n *Node) Handle() RaftHandle { return n.handle }

// step runs one command through the state machine, routes peer-addressed
// outbound messages to the transport, and returns any Local-addressed
// messages for the caller to inspect. Only Submit's caller synchronously
// waits on these; Run discards them since nothing in the async inbound
// path expects a direct reply.
func (n *Node) step(cmd Command) ([]Message, error) {
	beforeState := StateOf(n.handle)

	handle, msgs, err := Step(n.handle, cmd)
	if err != nil {
		// Fatal per spec §7: durability or FSM failures must not be
		// swallowed, since future-term correctness depends on them.
		n.logger.Error().Err(err).Msg("fatal error applying command, halting node")
		return nil, err
	}
	n.handle = handle

	afterState := StateOf(n.handle)
	if n.persister != nil && (afterState.CurrentTerm != beforeState.CurrentTerm || !sameVote(afterState.VotedFor, beforeState.VotedFor)) {
		// Durability contract (spec §6): persist before any outbound
		// message can reveal the new term/vote.
		if err := n.persister.PersistTerm(afterState.CurrentTerm, afterState.VotedFor); err != nil {
			n.logger.Error().Err(err).Msg("fatal error persisting term, halting node")
			return nil, err
		}
	}
	before := beforeState.CommitIndex

	var local []Message
	for _, m := range msgs {
		if m.To.Kind == AddrLocal {
			local = append(local, m)
			continue
		}
		if sendErr := n.outbound.Send(m); sendErr != nil {
			// Transient transport error (spec §7): log and let the next
			// tick's replication pass retry.
			n.logger.Warn().Err(sendErr).Str("to", m.To.String()).Msg("failed to send outbound message")
		}
	}

	after := StateOf(n.handle).CommitIndex
	if after > before {
		if err := n.deliverCommitted(before, after); err != nil {
			return local, err
		}
	}
	return local, nil
}

func sameVote(a, b *NodeId) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// deliverCommitted forwards every entry newly committed by this step to
// the Applier in strict index order, with no gaps and no duplicates (spec
// §4.5, §5).
func (n *Node) deliverCommitted(from, to LogIndex) error {
	entries, err := n.log.Range(from+1, to+1)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := n.applier.Deliver(e); err != nil {
			n.logger.Error().Err(err).Uint64("index", uint64(e.Index)).Msg("fsm delivery failed, halting node")
			return err
		}
	}
	return nil
}
