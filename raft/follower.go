package raft

// FollowerRaft is a read-only member of the cluster, tracking a leader hint
// (not authority) and waiting out its election deadline.
type FollowerRaft struct {
	core     raftCore
	leaderID *NodeId
}

func (f FollowerRaft) Role() RaftRole      { return RoleFollower }
func (f FollowerRaft) coreState() raftCore { return f.core }

func (f FollowerRaft) Apply(cmd Command) (RaftHandle, []Message, error) {
	switch c := cmd.(type) {
	case CmdTick:
		if f.core.needsElection(f.core.clock.Now()) {
			return f.becomeCandidate()
		}
		return f, nil, nil

	case CmdTimeout:
		return f.becomeCandidate()

	case CmdHeartbeat:
		return f.handleHeartbeat(c)

	case CmdAppendEntries:
		return f.handleAppendEntries(c)

	case CmdVoteRequest:
		return f.handleVoteRequest(c)

	case CmdClientRequest:
		// Only the Leader role may append client-submitted entries
		// (spec invariant 8).
		msg := Message{
			From:    Local(),
			To:      Local(),
			Command: CmdClientResponse{ID: c.ID, Err: ErrNotLeader},
		}
		return f, []Message{msg}, nil

	default:
		return f, nil, nil
	}
}

func (f FollowerRaft) becomeCandidate() (RaftHandle, []Message, error) {
	return CandidateRaft{core: f.core}.seekElection()
}

func (f FollowerRaft) handleHeartbeat(c CmdHeartbeat) (RaftHandle, []Message, error) {
	if c.Term < f.core.currentTerm {
		return f, nil, nil
	}
	leader := c.LeaderID
	f.leaderID = &leader
	f.core.resetElectionDeadline(f.core.clock.Now())

	msg := Message{
		From: Local(),
		To:   ToPeer(c.LeaderID),
		Command: CmdAppendResponse{
			Term:    f.core.currentTerm,
			From:    f.core.id,
			Index:   f.core.log.LastIndex(),
			Success: true,
		},
	}
	return f, []Message{msg}, nil
}

func (f FollowerRaft) handleAppendEntries(c CmdAppendEntries) (RaftHandle, []Message, error) {
	if c.Term < f.core.currentTerm {
		return f, []Message{f.appendReply(c.LeaderID, false)}, nil
	}

	if c.PrevIndex > 0 {
		entry, ok := f.core.log.EntryAt(c.PrevIndex)
		if !ok || entry.Term != c.PrevTerm {
			return f, []Message{f.appendReply(c.LeaderID, false)}, nil
		}
	}

	for _, e := range c.Entries {
		existing, ok := f.core.log.EntryAt(e.Index)
		if ok && existing.Term != e.Term {
			if err := f.core.log.TruncateFrom(e.Index); err != nil {
				return f, nil, err
			}
		}
	}

	var toAppend []Entry
	for _, e := range c.Entries {
		if _, ok := f.core.log.EntryAt(e.Index); !ok {
			toAppend = append(toAppend, e)
		}
	}
	if len(toAppend) > 0 {
		if err := f.core.log.Append(toAppend...); err != nil {
			return f, nil, err
		}
	}

	if c.LeaderCommit > f.core.commitIndex {
		newCommit := c.LeaderCommit
		if last := f.core.log.LastIndex(); newCommit > last {
			newCommit = last
		}
		if newCommit > f.core.commitIndex {
			f.core.commitIndex = newCommit
			f.core.log.MarkCommitted(newCommit)
		}
	}

	leader := c.LeaderID
	f.leaderID = &leader
	f.core.resetElectionDeadline(f.core.clock.Now())

	reply := Message{
		From: Local(),
		To:   ToPeer(c.LeaderID),
		Command: CmdAppendResponse{
			Term:    f.core.currentTerm,
			From:    f.core.id,
			Index:   f.core.log.LastIndex(),
			Success: true,
		},
	}
	return f, []Message{reply}, nil
}

func (f FollowerRaft) appendReply(leaderID NodeId, success bool) Message {
	return Message{
		From: Local(),
		To:   ToPeer(leaderID),
		Command: CmdAppendResponse{
			Term:    f.core.currentTerm,
			From:    f.core.id,
			Index:   f.core.log.LastIndex(),
			Success: success,
		},
	}
}

func (f FollowerRaft) handleVoteRequest(c CmdVoteRequest) (RaftHandle, []Message, error) {
	grant := c.Term >= f.core.currentTerm &&
		(f.core.votedFor == nil || *f.core.votedFor == c.CandidateID) &&
		logUpToDate(c.LastTerm, c.LastIndex, f.core.log.LastTerm(), f.core.log.LastIndex())

	if grant {
		candidate := c.CandidateID
		f.core.votedFor = &candidate
		f.core.resetElectionDeadline(f.core.clock.Now())
	}

	msg := Message{
		From: Local(),
		To:   ToPeer(c.CandidateID),
		Command: CmdVoteResponse{
			Term:    f.core.currentTerm,
			From:    f.core.id,
			Granted: grant,
		},
	}
	return f, []Message{msg}, nil
}

// logUpToDate implements the up-to-date comparison from the glossary: A is
// at least as up-to-date as B iff A's last term is greater, or the last
// terms are equal and A's last index is >= B's.
func logUpToDate(aTerm Term, aIndex LogIndex, bTerm Term, bIndex LogIndex) bool {
	if aTerm != bTerm {
		return aTerm > bTerm
	}
	return aIndex >= bIndex
}
