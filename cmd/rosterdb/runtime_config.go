package main

import (
	"time"

	"github.com/conuredb/rosterdb/btree"
	"github.com/conuredb/rosterdb/pkg/config"
)

// CLIOverrides carries CLI-provided values. Empty strings mean "not set".
// Pointers detect whether a flag was explicitly set.
type CLIOverrides struct {
	NodeID         string
	RaftAddr       string
	HTTPAddr       string
	LogLevel       string
	SortBy         string
	Bootstrap      *bool
	Descending     *bool
	BarrierTimeout *time.Duration
	ApplyTimeout   *time.Duration
	Order          *int
}

func mergeConfig(fileCfg config.Config, cli CLIOverrides) config.Config {
	cfg := fileCfg

	if cli.NodeID != "" {
		cfg.NodeID = cli.NodeID
	}
	if cli.RaftAddr != "" {
		cfg.RaftAddr = cli.RaftAddr
	}
	if cli.HTTPAddr != "" {
		cfg.HTTPAddr = cli.HTTPAddr
	}
	if cli.LogLevel != "" {
		cfg.LogLevel = cli.LogLevel
	}
	if cli.SortBy != "" {
		cfg.SortBy = cli.SortBy
	}
	if cli.Bootstrap != nil {
		cfg.Bootstrap = *cli.Bootstrap
	}
	if cli.Descending != nil {
		cfg.Descending = *cli.Descending
	}
	if cli.BarrierTimeout != nil {
		cfg.BarrierTimeout = *cli.BarrierTimeout
	}
	if cli.ApplyTimeout != nil {
		cfg.ApplyTimeout = *cli.ApplyTimeout
	}
	if cli.Order != nil {
		cfg.Order = *cli.Order
	}

	// Defaults for any still-empty values
	if cfg.NodeID == "" {
		cfg.NodeID = "node1"
	}
	if cfg.RaftAddr == "" {
		cfg.RaftAddr = "127.0.0.1:7001"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8081"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.BarrierTimeout == 0 {
		cfg.BarrierTimeout = 3 * time.Second
	}
	if cfg.ApplyTimeout == 0 {
		cfg.ApplyTimeout = 5 * time.Second
	}
	if cfg.Order == 0 {
		cfg.Order = btree.DefaultOrder
	}

	return cfg
}
