package main

import (
	"context"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-hclog"

	"github.com/conuredb/rosterdb/db"
	"github.com/conuredb/rosterdb/pkg/api"
	"github.com/conuredb/rosterdb/pkg/config"
	"github.com/conuredb/rosterdb/pkg/raftnode"
)

func main() {
	cfg, err := LoadEffectiveConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		hclog.Default().Error("load config", "error", err)
		os.Exit(1)
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "rosterdb",
		Level: hclog.LevelFromString(cfg.LogLevel),
	})
	if err := run(cfg, logger); err != nil {
		logger.Error("rosterdb stopped", "error", err)
		os.Exit(1)
	}
}

// run serves until the HTTP server fails or the process is signalled.
func run(cfg config.Config, logger hclog.Logger) error {
	store, err := db.Open(db.Options{
		Order:      cfg.Order,
		SortBy:     cfg.SortBy,
		Descending: cfg.Descending,
		Logger:     logger,
	})
	if err != nil {
		return errors.Wrap(err, "open db")
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			logger.Warn("failed to close database", "error", closeErr)
		}
	}()

	fsm := &raftnode.FSM{DB: store, Logger: logger.Named("fsm")}
	node, err := raftnode.StartNode(raftnode.Config{
		NodeID:    cfg.NodeID,
		RaftAddr:  cfg.RaftAddr,
		Bootstrap: cfg.Bootstrap,
		Logger:    logger,
	}, fsm)
	if err != nil {
		return errors.Wrap(err, "start raft")
	}
	defer func() {
		if err := node.Shutdown(); err != nil {
			logger.Warn("raft shutdown", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !cfg.Bootstrap {
		_, port, err := net.SplitHostPort(cfg.HTTPAddr)
		if err != nil || port == "" {
			port = "8081"
		}
		j := &joiner{
			client:   &http.Client{Timeout: 10 * time.Second},
			seeds:    seeds(cfg),
			nodeID:   cfg.NodeID,
			raftAddr: cfg.RaftAddr,
			httpPort: port,
			logger:   logger.Named("join"),
		}
		go j.run(ctx, 2*time.Second)
	} else {
		logger.Info("node is configured as bootstrap node", "node_id", cfg.NodeID)
	}

	handler := api.New(node, store, logger).
		WithBarrierTimeout(cfg.BarrierTimeout).
		WithApplyTimeout(cfg.ApplyTimeout).
		Handler()
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: handler}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("rosterdb running",
		"http", cfg.HTTPAddr, "raft", cfg.RaftAddr, "id", cfg.NodeID,
		"order", cfg.Order, "sort_by", cfg.SortBy, "descending", cfg.Descending)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "http")
	}
	return nil
}
