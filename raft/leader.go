package raft

import "time"

// LeaderRaft is the single read/write member of the cluster for its term.
type LeaderRaft struct {
	core              raftCore
	progress          *ReplicationProgress
	heartbeatDeadline time.Time
}

func (l LeaderRaft) Role() RaftRole      { return RoleLeader }
func (l LeaderRaft) coreState() raftCore { return l.core }

// onEntry is the Leader-entry behavior: append a no-op entry in the new
// term so prior-term entries can advance commit_index without waiting on
// new client writes (spec §4.4 calls this optional; this repo always does
// it, following the original implementation's intent — see SPEC_FULL.md
// §4), then immediately broadcast AppendEntries to suppress competing
// elections. Replication progress is initialized by the caller before the
// no-op is appended, so that broadcast already carries the no-op to every
// peer.
func (l LeaderRaft) onEntry() (RaftHandle, []Message, error) {
	now := l.core.clock.Now()
	l.heartbeatDeadline = now

	noop := Entry{
		Index: l.core.log.LastIndex() + 1,
		Term:  l.core.currentTerm,
		Payload: EntryPayload{
			Kind: PayloadCommand,
		},
	}
	if err := l.core.log.Append(noop); err != nil {
		return l, nil, err
	}
	l.progress.RecordSuccess(l.core.id, noop.Index)

	msgs := l.broadcastAppend()
	l.heartbeatDeadline = now.Add(l.core.heartbeatInterval)
	return l, msgs, nil
}

func (l LeaderRaft) Apply(cmd Command) (RaftHandle, []Message, error) {
	switch c := cmd.(type) {
	case CmdTick:
		if !l.core.clock.Now().Before(l.heartbeatDeadline) {
			msgs := l.broadcastAppend()
			l.heartbeatDeadline = l.core.clock.Now().Add(l.core.heartbeatInterval)
			return l, msgs, nil
		}
		return l, nil, nil

	case CmdAppendResponse:
		return l.handleAppendResponse(c)

	case CmdVoteRequest:
		msg := Message{
			From: Local(),
			To:   ToPeer(c.CandidateID),
			Command: CmdVoteResponse{
				Term:    l.core.currentTerm,
				From:    l.core.id,
				Granted: false,
			},
		}
		return l, []Message{msg}, nil

	case CmdClientRequest:
		entry := Entry{
			Index: l.core.log.LastIndex() + 1,
			Term:  l.core.currentTerm,
			Payload: EntryPayload{
				Kind: PayloadData,
				Data: c.Op,
			},
		}
		if err := l.core.log.Append(entry); err != nil {
			return l, nil, err
		}
		l.progress.RecordSuccess(l.core.id, entry.Index)
		return l, nil, nil

	default:
		return l, nil, nil
	}
}

// broadcastAppend sends each peer the entries it's missing (possibly none,
// in which case this is a pure heartbeat), carrying prev_index/prev_term
// for the log-matching check on the receiving side.
func (l LeaderRaft) broadcastAppend() []Message {
	msgs := make([]Message, 0, len(l.progress.Peers()))
	for _, peer := range l.progress.Peers() {
		p, ok := l.progress.Get(peer)
		if !ok {
			continue
		}
		entries, err := l.core.log.Range(p.NextIndex, l.core.log.LastIndex()+1)
		if err != nil {
			entries = nil
		}
		prevIndex := p.NextIndex - 1
		prevTerm, _ := l.core.log.TermAt(prevIndex)

		msgs = append(msgs, Message{
			From: Local(),
			To:   ToPeer(peer),
			Command: CmdAppendEntries{
				Term:         l.core.currentTerm,
				LeaderID:     l.core.id,
				PrevIndex:    prevIndex,
				PrevTerm:     prevTerm,
				Entries:      entries,
				LeaderCommit: l.core.commitIndex,
			},
		})
	}
	return msgs
}

func (l LeaderRaft) handleAppendResponse(c CmdAppendResponse) (RaftHandle, []Message, error) {
	if c.Term != l.core.currentTerm {
		return l, nil, nil
	}

	if c.Success {
		l.progress.RecordSuccess(c.From, c.Index)
		newCommit := l.progress.CommitIndex(l.core.log, l.core.currentTerm, l.core.commitIndex)
		if newCommit > l.core.commitIndex {
			l.core.commitIndex = newCommit
			l.core.log.MarkCommitted(newCommit)
		}
		return l, nil, nil
	}

	l.progress.RecordFailure(c.From)
	return l, nil, nil
}
