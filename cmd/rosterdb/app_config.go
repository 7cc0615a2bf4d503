package main

import (
	"flag"

	"github.com/conuredb/rosterdb/pkg/config"
)

// LoadEffectiveConfig defines CLI flags, parses the optional YAML config,
// applies CLI overrides, and returns the effective configuration.
func LoadEffectiveConfig(fs *flag.FlagSet, args []string) (config.Config, error) {
	var (
		configPath string
		cli        CLIOverrides
		bootstrap  settableBool
		descending settableBool
		barrier    settableDuration
		apply      settableDuration
		order      settableInt
	)

	fs.StringVar(&configPath, "config", "", "path to YAML config file")
	fs.StringVar(&cli.NodeID, "node-id", "", "unique node ID")
	fs.StringVar(&cli.RaftAddr, "raft-addr", "", "raft bind/advertise address host:port")
	fs.StringVar(&cli.HTTPAddr, "http-addr", "", "http bind address")
	fs.StringVar(&cli.LogLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	fs.StringVar(&cli.SortBy, "sort-by", "", "roster ordering: redid, name or gpa")
	fs.Var(&bootstrap, "bootstrap", "bootstrap single-node cluster if no existing state")
	fs.Var(&descending, "descending", "reverse the roster ordering")
	fs.Var(&barrier, "barrier-timeout", "raft barrier timeout (e.g., 3s)")
	fs.Var(&apply, "apply-timeout", "raft apply timeout (e.g., 5s)")
	fs.Var(&order, "order", "B-tree order (at least 3)")
	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}

	cfgFile, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}

	if bootstrap.set {
		cli.Bootstrap = &bootstrap.val
	}
	if descending.set {
		cli.Descending = &descending.val
	}
	if barrier.set {
		cli.BarrierTimeout = &barrier.val
	}
	if apply.set {
		cli.ApplyTimeout = &apply.val
	}
	if order.set {
		cli.Order = &order.val
	}

	return mergeConfig(cfgFile, cli), nil
}
