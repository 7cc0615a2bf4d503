package raftnode

import (
	"bytes"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/raft"

	"github.com/conuredb/rosterdb/db"
)

var ErrUnknownCommand = errors.New("unknown command")

// FSM applies replicated roster commands to a local database.
type FSM struct {
	DB     *db.DB
	Logger hclog.Logger
}

func (f *FSM) logger() hclog.Logger {
	if f.Logger == nil {
		return hclog.NewNullLogger()
	}
	return f.Logger
}

// Apply returns nil or an error describing why the command was rejected.
func (f *FSM) Apply(l *raft.Log) interface{} {
	cmd, err := DecodeCommand(l.Data)
	if err != nil {
		return errors.Wrapf(err, "decode command at index %d", l.Index)
	}
	switch cmd.Type {
	case CmdInsert:
		return f.DB.Insert(cmd.Student)
	case CmdDelete:
		return f.DB.Delete(cmd.Student)
	default:
		f.logger().Warn("ignoring unknown command", "type", cmd.Type, "index", l.Index)
		return errors.Wrapf(ErrUnknownCommand, "type %d", cmd.Type)
	}
}

// Snapshot captures the roster as it is now; raft persists it while
// later commands keep being applied.
func (f *FSM) Snapshot() (raft.FSMSnapshot, error) {
	var buf bytes.Buffer
	if err := f.DB.SnapshotTo(&buf); err != nil {
		return nil, err
	}
	return &dbSnapshot{data: buf.Bytes()}, nil
}

func (f *FSM) Restore(rc io.ReadCloser) error {
	defer func() {
		if closeErr := rc.Close(); closeErr != nil {
			f.logger().Warn("failed to close snapshot reader", "error", closeErr)
		}
	}()
	return f.DB.RestoreFrom(rc)
}

type dbSnapshot struct {
	data []byte
}

func (s *dbSnapshot) Persist(sink raft.SnapshotSink) error {
	if _, err := sink.Write(s.data); err != nil {
		_ = sink.Cancel()
		return errors.Wrap(err, "write snapshot")
	}
	return sink.Close()
}

func (s *dbSnapshot) Release() {}
