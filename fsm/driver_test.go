package fsm

import (
	"context"
	"errors"
	"io/ioutil"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/raftlog/raftd/raft"
)

type recordingFsm struct {
	applied  [][]byte
	queried  [][]byte
	transErr error
}

func (f *recordingFsm) Transition(data []byte) ([]byte, error) {
	if f.transErr != nil {
		return nil, f.transErr
	}
	f.applied = append(f.applied, data)
	return data, nil
}

func (f *recordingFsm) Query(data []byte) ([]byte, error) {
	f.queried = append(f.queried, data)
	return data, nil
}

func testLogger() zerolog.Logger {
	return zerolog.New(ioutil.Discard)
}

func TestDriverAppliesDataEntriesInOrder(t *testing.T) {
	f := &recordingFsm{}
	d := NewDriver(f, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	d.Deliver(raft.Entry{Index: 1, Payload: raft.EntryPayload{Kind: raft.PayloadData, Data: []byte("a")}})
	d.Deliver(raft.Entry{Index: 2, Payload: raft.EntryPayload{Kind: raft.PayloadData, Data: []byte("b")}})

	deadline := time.After(time.Second)
	for {
		if d.LastApplied() == 2 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("entries not applied within deadline, lastApplied=%d", d.LastApplied())
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	<-done

	if len(f.applied) != 2 || string(f.applied[0]) != "a" || string(f.applied[1]) != "b" {
		t.Fatalf("unexpected applied order: %+v", f.applied)
	}
}

func TestDriverObservesNonDataEntriesWithoutApplying(t *testing.T) {
	f := &recordingFsm{}
	d := NewDriver(f, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	d.Deliver(raft.Entry{Index: 1, Payload: raft.EntryPayload{Kind: raft.PayloadCommand}})

	deadline := time.After(time.Second)
	for d.LastApplied() != 1 {
		select {
		case <-deadline:
			t.Fatalf("no-op entry was never observed")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()
	<-done

	if len(f.applied) != 0 {
		t.Fatalf("a non-Data entry must never reach Transition, got %+v", f.applied)
	}
}

func TestDriverQueryRoundTrips(t *testing.T) {
	f := &recordingFsm{}
	d := NewDriver(f, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	result, err := d.Query(context.Background(), []byte("get x"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(result) != "get x" {
		t.Fatalf("Query result = %q, want %q", result, "get x")
	}
	cancel()
	<-done
}

func TestDriverQueryCancelledByContext(t *testing.T) {
	f := &recordingFsm{}
	d := NewDriver(f, testLogger())
	// No Run loop started: the query channel has no reader, so Query must
	// return promptly once ctx is cancelled instead of blocking forever.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Query(ctx, []byte("x"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDriverHaltsOnTransitionError(t *testing.T) {
	f := &recordingFsm{transErr: errors.New("corrupt state")}
	d := NewDriver(f, testLogger())

	ctx := context.Background()
	d.Deliver(raft.Entry{Index: 1, Payload: raft.EntryPayload{Kind: raft.PayloadData, Data: []byte("a")}})

	done := make(chan error, 1)
	go func() {
		_, err := d.Run(ctx)
		done <- err
	}()

	select {
	case err := <-done:
		if err == nil {
			t.Fatalf("expected Run to return the transition error")
		}
	case <-time.After(time.Second):
		t.Fatalf("Run did not halt after a transition failure")
	}
}
