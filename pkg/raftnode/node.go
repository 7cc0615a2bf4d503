package raftnode

import (
	"io"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/raft"
)

type Config struct {
	NodeID    string
	RaftAddr  string
	Bootstrap bool
	Logger    hclog.Logger

	// Transport overrides the TCP transport bound to RaftAddr.
	Transport raft.Transport

	// Zero values keep the raft defaults.
	HeartbeatTimeout time.Duration
	ElectionTimeout  time.Duration
}

// Node is a raft member replicating roster commands into its FSM. The
// log, stable and snapshot stores live in memory: a restarted node
// catches up from the leader.
type Node struct {
	raft      *raft.Raft
	fsm       *FSM
	transport raft.Transport
}

func (n *Node) Raft() *raft.Raft {
	return n.raft
}

func (n *Node) IsLeader() bool {
	return n.raft.State() == raft.Leader
}

// Leader returns the raft address of the current leader, or "" if unknown.
func (n *Node) Leader() string {
	addr, _ := n.raft.LeaderWithID()
	return string(addr)
}

func (n *Node) AddVoter(id, addr string) error {
	future := n.raft.AddVoter(raft.ServerID(id), raft.ServerAddress(addr), 0, 0)
	return future.Error()
}

// Barrier blocks until every preceding log entry is applied to the FSM.
func (n *Node) Barrier(timeout time.Duration) error {
	return n.raft.Barrier(timeout).Error()
}

// Apply replicates cmd and returns the error, if any, the FSM produced
// while applying it.
func (n *Node) Apply(cmd Command, timeout time.Duration) error {
	b, err := EncodeCommand(cmd)
	if err != nil {
		return err
	}
	f := n.raft.Apply(b, timeout)
	if err := f.Error(); err != nil {
		return err
	}
	if err, ok := f.Response().(error); ok {
		return err
	}
	return nil
}

// Servers returns the IDs of the current cluster members.
func (n *Node) Servers() ([]string, error) {
	future := n.raft.GetConfiguration()
	if err := future.Error(); err != nil {
		return nil, err
	}
	var ids []string
	for _, s := range future.Configuration().Servers {
		ids = append(ids, string(s.ID))
	}
	return ids, nil
}

func (n *Node) Shutdown() error {
	if err := n.raft.Shutdown().Error(); err != nil {
		return err
	}
	if c, ok := n.transport.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func StartNode(cfg Config, fsm *FSM) (*Node, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	rcfg := raft.DefaultConfig()
	rcfg.LocalID = raft.ServerID(cfg.NodeID)
	rcfg.Logger = logger.Named("raft")
	rcfg.SnapshotInterval = 30 * time.Second
	rcfg.SnapshotThreshold = 8192
	if cfg.HeartbeatTimeout > 0 {
		rcfg.HeartbeatTimeout = cfg.HeartbeatTimeout
		rcfg.LeaderLeaseTimeout = cfg.HeartbeatTimeout
	}
	if cfg.ElectionTimeout > 0 {
		rcfg.ElectionTimeout = cfg.ElectionTimeout
	}

	// Stores
	store := raft.NewInmemStore()
	snaps := raft.NewInmemSnapshotStore()

	// Transport
	transport := cfg.Transport
	if transport == nil {
		tcp, err := raft.NewTCPTransportWithLogger(cfg.RaftAddr, nil, 3, 10*time.Second, logger.Named("transport"))
		if err != nil {
			return nil, errors.Wrapf(err, "bind raft transport %s", cfg.RaftAddr)
		}
		transport = tcp
	}

	r, err := raft.NewRaft(rcfg, fsm, store, store, snaps, transport)
	if err != nil {
		return nil, err
	}

	n := &Node{raft: r, fsm: fsm, transport: transport}

	// Bootstrap if requested and no existing state
	if cfg.Bootstrap {
		hasState, err := raft.HasExistingState(store, store, snaps)
		if err != nil {
			return nil, err
		}
		if !hasState {
			configuration := raft.Configuration{
				Servers: []raft.Server{{
					ID:      raft.ServerID(cfg.NodeID),
					Address: transport.LocalAddr(),
				}},
			}
			if err := r.BootstrapCluster(configuration).Error(); err != nil {
				return nil, err
			}
			logger.Info("bootstrapped single-node cluster", "node_id", cfg.NodeID)
		}
	}

	return n, nil
}
