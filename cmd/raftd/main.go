// Command raftd runs one node of a raftd cluster: the consensus core, a
// replicated key/value FSM, gRPC peer transport, and a gin client API.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"

	"github.com/raftlog/raftd/config"
	"github.com/raftlog/raftd/fsm"
	"github.com/raftlog/raftd/httpapi"
	"github.com/raftlog/raftd/raft"
	"github.com/raftlog/raftd/storage"
	"github.com/raftlog/raftd/store"
	"github.com/raftlog/raftd/transport/grpctransport"
)

func main() {
	configPath := flag.String("config", "raftd.yaml", "path to node config file")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()

	if err := run(*configPath, logger); err != nil {
		logger.Fatal().Err(err).Msg("raftd exited")
	}
}

func run(configPath string, logger zerolog.Logger) error {
	file, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg := file.RaftConfig()

	if err := os.MkdirAll(file.DataDir, 0755); err != nil {
		return err
	}

	logFile := file.DataDir + "/log.pb"
	termFile := file.DataDir + "/term.pb"

	durableLog, err := storage.OpenFileLog(logFile, logger)
	if err != nil {
		return err
	}
	termStore, err := storage.OpenTermStore(termFile)
	if err != nil {
		return err
	}
	persistedTerm, persistedVote, err := termStore.Load()
	if err != nil {
		return err
	}

	handle, err := raft.NewRaftHandle(cfg, durableLog, raft.SystemClock{}, logger)
	if err != nil {
		return err
	}
	handle = raft.RestoreTerm(handle, persistedTerm, persistedVote)

	kv := store.New()
	driver := fsm.NewDriver(kv, logger)

	addrs := make(map[raft.NodeId]string, len(file.Peers))
	for _, p := range file.Peers {
		addrs[raft.NodeId(p.ID)] = p.Addr
	}

	inbox := make(chan raft.Message, 256)
	tr := grpctransport.NewTransport(cfg.NodeID, addrs, inbox, logger)

	node := raft.NewNode(handle, durableLog, tr, driver, logger, termStore)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if _, err := driver.Run(ctx); err != nil {
			logger.Error().Err(err).Msg("fsm driver halted")
			cancel()
		}
	}()

	go func() {
		if err := node.Run(ctx, inbox); err != nil {
			logger.Error().Err(err).Msg("raft node halted")
			cancel()
		}
	}()

	go tickLoop(ctx, inbox, file.HeartbeatIntervalMS)

	grpcServer := grpc.NewServer()
	tr.Serve(grpcServer)
	lis, err := net.Listen("tcp", file.ListenAddr)
	if err != nil {
		return err
	}
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error().Err(err).Msg("grpc server stopped")
		}
	}()

	host := &nodeHost{node: node, driver: driver}
	router := httpapi.NewRouter(host, logger, 2*time.Second)
	httpServer := &http.Server{Addr: file.ClientAddr, Handler: router}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	logger.Info().
		Uint64("node_id", uint64(cfg.NodeID)).
		Str("listen", file.ListenAddr).
		Str("client", file.ClientAddr).
		Msg("raftd started")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	cancel()
	grpcServer.GracefulStop()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	tr.Close()
	return nil
}

func tickLoop(ctx context.Context, inbox chan<- raft.Message, intervalMS int) {
	interval := time.Duration(intervalMS) * time.Millisecond
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			select {
			case inbox <- raft.Message{From: raft.Local(), To: raft.Local(), Command: raft.CmdTick{}}:
			case <-ctx.Done():
				return
			}
		}
	}
}

// nodeHost adapts raft.Node + fsm.Driver to httpapi.Host.
type nodeHost struct {
	node   *raft.Node
	driver *fsm.Driver
}

func (h *nodeHost) Status() raft.SharedStateView { return raft.StateOf(h.node.Handle()) }
func (h *nodeHost) Role() raft.RaftRole          { return h.node.Handle().Role() }

func (h *nodeHost) SubmitKV(ctx context.Context, op store.Op) error {
	data, err := json.Marshal(op)
	if err != nil {
		return err
	}
	id := []byte(strconv.FormatInt(time.Now().UnixNano(), 10))
	msgs, err := h.node.Submit(raft.CmdClientRequest{ID: id, Op: data})
	if err != nil {
		return err
	}
	for _, m := range msgs {
		if resp, ok := m.Command.(raft.CmdClientResponse); ok && resp.Err != nil {
			return resp.Err
		}
	}
	return nil
}

func (h *nodeHost) QueryKV(ctx context.Context, key string) (store.QueryResult, error) {
	data, err := json.Marshal(store.Query{Key: key})
	if err != nil {
		return store.QueryResult{}, err
	}
	raw, err := h.driver.Query(ctx, data)
	if err != nil {
		return store.QueryResult{}, err
	}
	var result store.QueryResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return store.QueryResult{}, err
	}
	return result, nil
}
