package raft

// Command is the tagged union of inputs the core state machine accepts.
// It is implemented by the Cmd* types below and dispatched with a type
// switch inside each role's Apply, the idiomatic Go stand-in for the
// closed enum the design calls for (see RaftHandle in handle.go).
type Command interface {
	isCommand()
}

// CmdTick is injected periodically (suggested ~100ms) so the core can
// check election and heartbeat deadlines against the clock. No blocking
// sleep happens inside the core; the host owns the timer.
type CmdTick struct{}

// CmdTimeout forces an immediate transition out of Follower, used by tests
// and by a Follower that has independently decided its deadline passed.
type CmdTimeout struct{}

// CmdVoteRequest asks the receiver to vote for CandidateID in Term.
type CmdVoteRequest struct {
	Term        Term
	CandidateID NodeId
	LastTerm    Term
	LastIndex   LogIndex
}

// CmdVoteResponse answers a CmdVoteRequest.
type CmdVoteResponse struct {
	Term    Term
	From    NodeId
	Granted bool
}

// CmdAppendEntries replicates zero or more entries (or carries none, acting
// as a heartbeat with a non-empty prefix check) from the leader.
type CmdAppendEntries struct {
	Term         Term
	LeaderID     NodeId
	PrevIndex    LogIndex
	PrevTerm     Term
	Entries      []Entry
	LeaderCommit LogIndex
}

// CmdAppendResponse answers a CmdAppendEntries.
type CmdAppendResponse struct {
	Term    Term
	From    NodeId
	Index   LogIndex
	Success bool
}

// CmdHeartbeat is an AppendEntries carrying no entries, kept as a distinct
// variant because it is cheaper to construct and easier to trace in logs.
// A Follower records the leader and resets its election deadline as for an
// empty CmdAppendEntries, but a heartbeat carries no prev_index or
// leader_commit, so it never advances commit_index, and one from a stale
// term is dropped without a reply.
type CmdHeartbeat struct {
	Term     Term
	LeaderID NodeId
}

// CmdClientRequest is a write or read submitted by a client of the host.
type CmdClientRequest struct {
	ID []byte
	Op []byte
}

// CmdClientResponse answers a CmdClientRequest. Within this package only a
// non-leader role produces one, rejecting the request with ErrNotLeader; a
// Leader appends the request to its log and returns no response.
type CmdClientResponse struct {
	ID     []byte
	Result []byte
	Err    error
}

// CmdNoop is acknowledged without mutating role state (every role's Apply
// falls through to its default case). It is not what a fresh leader appends
// to its log: that no-op entry is a PayloadCommand entry with no data (see
// leader.go).
type CmdNoop struct{}

func (CmdTick) isCommand()             {}
func (CmdTimeout) isCommand()          {}
func (CmdVoteRequest) isCommand()      {}
func (CmdVoteResponse) isCommand()     {}
func (CmdAppendEntries) isCommand()    {}
func (CmdAppendResponse) isCommand()   {}
func (CmdHeartbeat) isCommand()        {}
func (CmdClientRequest) isCommand()    {}
func (CmdClientResponse) isCommand()   {}
func (CmdNoop) isCommand()             {}

// commandTerm extracts the term carried by commands that carry one, and
// reports whether the command carries a term at all. This backs the single,
// centralized "higher term observed" precondition in handle.go.
func commandTerm(cmd Command) (Term, bool) {
	switch c := cmd.(type) {
	case CmdVoteRequest:
		return c.Term, true
	case CmdVoteResponse:
		return c.Term, true
	case CmdAppendEntries:
		return c.Term, true
	case CmdAppendResponse:
		return c.Term, true
	case CmdHeartbeat:
		return c.Term, true
	default:
		return 0, false
	}
}
