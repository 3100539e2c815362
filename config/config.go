// Package config loads a node's on-disk configuration file into a
// raft.RaftConfig plus the handful of settings the consensus core itself
// doesn't need (data directory, client-facing listen address). YAML is the
// format the rest of this dependency tree already carries gopkg.in/yaml.v2
// for.
package config

import (
	"fmt"
	"io/ioutil"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/raftlog/raftd/raft"
)

// PeerSpec is a single cluster member as written in the config file.
type PeerSpec struct {
	ID   uint64 `yaml:"id"`
	Addr string `yaml:"addr"`
}

// File is the top-level shape of a node's YAML config file.
type File struct {
	NodeID NodeSpec   `yaml:"node"`
	Peers  []PeerSpec `yaml:"peers"`

	DataDir       string `yaml:"data_dir"`
	ListenAddr    string `yaml:"listen_addr"`
	ClientAddr    string `yaml:"client_addr"`

	MinElectionTimeoutMS int `yaml:"min_election_timeout_ms"`
	MaxElectionTimeoutMS int `yaml:"max_election_timeout_ms"`
	HeartbeatIntervalMS  int `yaml:"heartbeat_interval_ms"`
}

// NodeSpec identifies this node within the cluster.
type NodeSpec struct {
	ID   uint64 `yaml:"id"`
	Addr string `yaml:"addr"`
}

// Defaults satisfy raft.RaftConfig.Validate: the heartbeat interval is a
// third of the election timeout floor.
const (
	DefaultMinElectionTimeoutMS = 150
	DefaultMaxElectionTimeoutMS = 300
	DefaultHeartbeatIntervalMS  = 50
)

// Load reads and parses path, filling in timing defaults where the file
// omits them.
func Load(path string) (*File, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if f.MinElectionTimeoutMS == 0 {
		f.MinElectionTimeoutMS = DefaultMinElectionTimeoutMS
	}
	if f.MaxElectionTimeoutMS == 0 {
		f.MaxElectionTimeoutMS = DefaultMaxElectionTimeoutMS
	}
	if f.HeartbeatIntervalMS == 0 {
		f.HeartbeatIntervalMS = DefaultHeartbeatIntervalMS
	}

	return &f, nil
}

// RaftConfig builds the raft.RaftConfig this file describes. Validation is
// left to raft.RaftConfig.Validate rather than duplicated here.
func (f *File) RaftConfig() raft.RaftConfig {
	peers := make([]raft.PeerAddr, 0, len(f.Peers))
	for _, p := range f.Peers {
		peers = append(peers, raft.PeerAddr{ID: raft.NodeId(p.ID), Addr: p.Addr})
	}

	return raft.RaftConfig{
		NodeID:             raft.NodeId(f.NodeID.ID),
		Peers:              peers,
		MinElectionTimeout: time.Duration(f.MinElectionTimeoutMS) * time.Millisecond,
		MaxElectionTimeout:  time.Duration(f.MaxElectionTimeoutMS) * time.Millisecond,
		HeartbeatInterval:   time.Duration(f.HeartbeatIntervalMS) * time.Millisecond,
	}
}
