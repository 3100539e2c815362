package raft

import (
	"io/ioutil"
	"time"

	"github.com/rs/zerolog"
)

// fakeClock gives tests full control over Now() so election/heartbeat
// deadlines can be driven deterministically without sleeping.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(0, 0)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func testLogger() zerolog.Logger {
	return zerolog.New(ioutil.Discard)
}

func testConfig(id NodeId, peers ...NodeId) RaftConfig {
	peerAddrs := make([]PeerAddr, 0, len(peers))
	for _, p := range peers {
		peerAddrs = append(peerAddrs, PeerAddr{ID: p, Addr: "test"})
	}
	return RaftConfig{
		NodeID:             id,
		Peers:              peerAddrs,
		MinElectionTimeout: 100 * time.Millisecond,
		MaxElectionTimeout: 200 * time.Millisecond,
		HeartbeatInterval:  20 * time.Millisecond,
	}
}

type fakeOutbound struct {
	sent []Message
}

func (f *fakeOutbound) Send(m Message) error {
	f.sent = append(f.sent, m)
	return nil
}

type fakeApplier struct {
	applied []Entry
}

func (f *fakeApplier) Deliver(e Entry) error {
	f.applied = append(f.applied, e)
	return nil
}
