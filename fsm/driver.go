package fsm

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/raftlog/raftd/raft"
)

// QueryRequest carries a read-only request into the Driver's single owning
// goroutine, together with where to deliver the result.
type QueryRequest struct {
	Data    []byte
	Respond chan<- QueryResult
}

// QueryResult is the outcome of a Query, delivered back to the caller of
// Driver.Query.
type QueryResult struct {
	Data []byte
	Err  error
}

// Driver owns the FSM and is the only goroutine that ever touches it,
// which is what lets Fsm implementations assume synchronous, single-
// threaded access despite Deliver and Query being called concurrently by
// other goroutines (the raft.Node commit-forwarding path and client read
// handlers, respectively). This mirrors the design's RaftActor-style
// single-owned-task model applied to the FSM side (spec §4.5, §9).
type Driver struct {
	logger zerolog.Logger
	fsm    Fsm

	entries chan raft.Entry
	queries chan QueryRequest

	lastApplied raft.LogIndex
}

// NewDriver constructs a Driver around fsm. The entry channel is buffered
// so a burst of newly committed entries doesn't stall the raft.Node
// goroutine delivering them; a full buffer is itself a legitimate
// suspension point per spec §5.
func NewDriver(f Fsm, logger zerolog.Logger) *Driver {
	return &Driver{
		fsm:     f,
		logger:  logger,
		entries: make(chan raft.Entry, 256),
		queries: make(chan QueryRequest),
	}
}

// Deliver implements raft.Applier. It enqueues a committed entry for
// application in the order delivered; raft.Node only ever calls Deliver in
// strict increasing index order with no gaps, so no reordering happens
// here.
func (d *Driver) Deliver(e raft.Entry) error {
	d.entries <- e
	return nil
}

// Query submits a read-only request and blocks for the result or for ctx
// to be cancelled. Queries are not linearizable: they observe whatever the
// local FSM has applied so far, which may lag the cluster's true commit
// index (spec §4.5, §9 Open Questions).
func (d *Driver) Query(ctx context.Context, data []byte) ([]byte, error) {
	respond := make(chan QueryResult, 1)
	select {
	case d.queries <- QueryRequest{Data: data, Respond: respond}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case res := <-respond:
		return res.Data, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Run drives the apply loop until ctx is cancelled, then yields ownership
// of the FSM back to the caller so final state can be inspected (spec
// §4.5 Lifecycle).
func (d *Driver) Run(ctx context.Context) (Fsm, error) {
	d.logger.Debug().Msg("starting fsm driver")
	for {
		select {
		case <-ctx.Done():
			return d.fsm, nil

		case e := <-d.entries:
			if err := d.apply(e); err != nil {
				return d.fsm, err
			}

		case q := <-d.queries:
			data, err := d.fsm.Query(q.Data)
			q.Respond <- QueryResult{Data: data, Err: err}
		}
	}
}

// apply hands a committed entry's Data payload to the FSM; entries with
// other payload kinds are observed but never applied to user state (spec
// §4.5).
func (d *Driver) apply(e raft.Entry) error {
	if e.Payload.Kind != raft.PayloadData {
		d.lastApplied = e.Index
		return nil
	}
	if _, err := d.fsm.Transition(e.Payload.Data); err != nil {
		d.logger.Error().Err(err).Uint64("index", uint64(e.Index)).Msg("fsm transition failed, halting")
		return err
	}
	d.lastApplied = e.Index
	return nil
}

// LastApplied reports the highest index the Driver has applied so far.
func (d *Driver) LastApplied() raft.LogIndex { return d.lastApplied }
