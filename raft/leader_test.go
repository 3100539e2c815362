package raft

import "testing"

func newLeaderForTest(t *testing.T, id NodeId, peers []NodeId, clock Clock) (LeaderRaft, *MemoryLog) {
	t.Helper()
	log := NewMemoryLog()
	cfg := testConfig(id, peers...)
	core := newCore(cfg, log, clock, testLogger())
	core.currentTerm = 1
	self := id
	core.votedFor = &self
	candidate := CandidateRaft{core: core, election: NewElection(core.currentTerm, self, peers)}
	handle, _, err := candidate.becomeLeader()
	if err != nil {
		t.Fatalf("becomeLeader failed: %v", err)
	}
	return handle.(LeaderRaft), log
}

func TestLeaderOnEntryAppendsNoopEntry(t *testing.T) {
	clock := newFakeClock()
	l, log := newLeaderForTest(t, 1, []NodeId{2, 3}, clock)

	if log.LastIndex() != 1 {
		t.Fatalf("expected no-op entry appended, last index = %d", log.LastIndex())
	}
	e, _ := log.EntryAt(1)
	if e.Payload.Kind != PayloadCommand {
		t.Fatalf("expected a PayloadCommand no-op entry, got %v", e.Payload.Kind)
	}
	p, _ := l.progress.Get(1)
	if p.MatchIndex != 1 {
		t.Fatalf("leader's own match index = %d, want 1", p.MatchIndex)
	}
}

func TestLeaderClientRequestAppendsDataEntry(t *testing.T) {
	clock := newFakeClock()
	l, log := newLeaderForTest(t, 1, []NodeId{2, 3}, clock)

	handle, msgs, err := l.Apply(CmdClientRequest{ID: []byte("req-1"), Op: []byte("set x=1")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msgs != nil {
		t.Fatalf("leader client request should not emit an immediate reply, got %+v", msgs)
	}
	if log.LastIndex() != 2 {
		t.Fatalf("last index = %d, want 2 (noop + new entry)", log.LastIndex())
	}
	e, _ := log.EntryAt(2)
	if e.Payload.Kind != PayloadData || string(e.Payload.Data) != "set x=1" {
		t.Fatalf("unexpected entry payload: %+v", e.Payload)
	}
	newLeader := handle.(LeaderRaft)
	p, _ := newLeader.progress.Get(1)
	if p.MatchIndex != 2 {
		t.Fatalf("self match index = %d, want 2", p.MatchIndex)
	}
}

func TestLeaderTickHeartbeatsAfterDeadline(t *testing.T) {
	clock := newFakeClock()
	l, _ := newLeaderForTest(t, 1, []NodeId{2, 3}, clock)

	clock.Advance(60 * 1e6) // past the 20ms heartbeat interval
	_, msgs, err := l.Apply(CmdTick{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected one AppendEntries per peer, got %d", len(msgs))
	}
	for _, m := range msgs {
		if _, ok := m.Command.(CmdAppendEntries); !ok {
			t.Fatalf("expected CmdAppendEntries, got %T", m.Command)
		}
	}
}

func TestLeaderTickNoHeartbeatBeforeDeadline(t *testing.T) {
	clock := newFakeClock()
	l, _ := newLeaderForTest(t, 1, []NodeId{2, 3}, clock)

	_, msgs, err := l.Apply(CmdTick{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msgs != nil {
		t.Fatalf("expected no heartbeat before deadline, got %+v", msgs)
	}
}

func TestLeaderHandleAppendResponseAdvancesCommitIndex(t *testing.T) {
	clock := newFakeClock()
	l, _ := newLeaderForTest(t, 1, []NodeId{2, 3}, clock)

	// Quorum (self + one peer) on the no-op entry at index 1, term 1 -- this
	// is the leader's current term, so the mandatory term check passes.
	handle, _, err := l.Apply(CmdAppendResponse{Term: 1, From: 2, Index: 1, Success: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	newLeader := handle.(LeaderRaft)
	if newLeader.core.commitIndex != 1 {
		t.Fatalf("commitIndex = %d, want 1", newLeader.core.commitIndex)
	}
}

func TestLeaderHandleAppendResponseFailureBacksOffProgress(t *testing.T) {
	clock := newFakeClock()
	l, _ := newLeaderForTest(t, 1, []NodeId{2, 3}, clock)

	// A fresh leader's peers start at NextIndex 1, already the floor; an
	// acknowledgement of the no-op at index 1 moves peer 2 to NextIndex 2
	// so there is room to back off.
	if _, _, err := l.Apply(CmdAppendResponse{Term: 1, From: 2, Index: 1, Success: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before, _ := l.progress.Get(2)
	handle, _, err := l.Apply(CmdAppendResponse{Term: 1, From: 2, Success: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	after, _ := handle.(LeaderRaft).progress.Get(2)
	if after.NextIndex >= before.NextIndex {
		t.Fatalf("NextIndex should back off on failure: before=%d after=%d", before.NextIndex, after.NextIndex)
	}
}

func TestLeaderIgnoresAppendResponseFromStaleTerm(t *testing.T) {
	clock := newFakeClock()
	l, _ := newLeaderForTest(t, 1, []NodeId{2, 3}, clock)

	handle, msgs, err := l.Apply(CmdAppendResponse{Term: 0, From: 2, Success: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msgs != nil {
		t.Fatalf("expected no messages from a stale-term response")
	}
	newLeader := handle.(LeaderRaft)
	if newLeader.core.commitIndex != 0 {
		t.Fatalf("commitIndex should not move on a stale-term response")
	}
}

func TestLeaderDeniesCompetingVoteRequests(t *testing.T) {
	clock := newFakeClock()
	l, _ := newLeaderForTest(t, 1, []NodeId{2, 3}, clock)

	_, msgs, err := l.Apply(CmdVoteRequest{Term: 1, CandidateID: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp := msgs[0].Command.(CmdVoteResponse)
	if resp.Granted {
		t.Fatalf("a sitting leader should never grant a vote for its own term")
	}
}
