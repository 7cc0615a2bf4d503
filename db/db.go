package db

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-hclog"

	"github.com/conuredb/rosterdb/btree"
	"github.com/conuredb/rosterdb/roster"
	"github.com/conuredb/rosterdb/treeutil"
)

var (
	ErrClosed        = errors.New("database closed")
	ErrAlreadyClosed = errors.New("database already closed")

	// ErrUnsupported is returned for removal requests. The roster tree has
	// no delete operation because it cannot rebalance after one.
	ErrUnsupported = errors.New("unsupported operation: students cannot be removed")
)

// Options configure a roster database.
type Options struct {
	// Order is the tree order; zero selects btree.DefaultOrder.
	Order int
	// SortBy names the roster ordering (see roster.Comparator).
	SortBy     string
	Descending bool
	Logger     hclog.Logger
}

// DB is a roster of students kept in a B-tree.
//
// The tree itself is not safe for concurrent use; DB serialises every
// access with a read-write lock.
//
// Students that compare equal are placed by insertion history, so DB also
// keeps every student in the order it was inserted. Snapshots carry that
// log and a restore replays it, rebuilding the same tree.
type DB struct {
	mu       sync.RWMutex
	tree     *btree.Tree[roster.Student]
	inserted []roster.Student
	order    func(a, b roster.Student) int
	opts     Options
	logger   hclog.Logger
	isClosed bool
}

// Open creates an empty roster database
func Open(opts Options) (*DB, error) {
	if opts.Order == 0 {
		opts.Order = btree.DefaultOrder
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}

	order, err := roster.Comparator(opts.SortBy, opts.Descending)
	if err != nil {
		return nil, err
	}
	tree, err := btree.NewOrderFunc(opts.Order, order)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger.Named("db")
	logger.Debug("opened roster", "order", opts.Order, "sort_by", opts.SortBy, "descending", opts.Descending)
	return &DB{
		tree:   tree,
		order:  order,
		opts:   opts,
		logger: logger,
	}, nil
}

// Close closes the database
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.isClosed {
		return ErrAlreadyClosed
	}

	db.isClosed = true
	db.tree.Clear()
	db.inserted = nil
	return nil
}

// Insert adds a student to the roster
func (db *DB) Insert(s roster.Student) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.isClosed {
		return ErrClosed
	}

	before := db.tree.Stats().Splits
	db.tree.Insert(s)
	db.inserted = append(db.inserted, s)
	if splits := db.tree.Stats().Splits - before; splits > 0 {
		db.logger.Trace("insert split nodes", "red_id", s.RedID, "splits", splits)
	}
	return nil
}

// Contains reports whether a student equal to probe under the roster
// ordering is present.
func (db *DB) Contains(probe roster.Student) (bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if db.isClosed {
		return false, ErrClosed
	}

	return db.tree.Contains(probe), nil
}

// Delete always fails with ErrUnsupported.
func (db *DB) Delete(s roster.Student) error {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if db.isClosed {
		return ErrClosed
	}

	return errors.Wrapf(ErrUnsupported, "red_id %d", s.RedID)
}

// ElementAt returns the student at index in roster order.
func (db *DB) ElementAt(index int) (roster.Student, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if db.isClosed {
		return roster.Student{}, ErrClosed
	}

	return db.tree.ElementAt(index)
}

// Students returns every student in roster order.
func (db *DB) Students() ([]roster.Student, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if db.isClosed {
		return nil, ErrClosed
	}

	return treeutil.ToList(db.tree), nil
}

// Descending returns every student in reverse roster order.
func (db *DB) Descending() ([]roster.Student, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if db.isClosed {
		return nil, ErrClosed
	}

	out := make([]roster.Student, 0, db.tree.Len())
	db.tree.Descend(func(s roster.Student) {
		out = append(out, s)
	})
	return out, nil
}

// Query re-sorts the roster by order, keeps the students matching keep
// and returns them. A nil order keeps roster order.
func (db *DB) Query(order func(a, b roster.Student) int, keep func(roster.Student) bool) ([]roster.Student, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if db.isClosed {
		return nil, ErrClosed
	}

	return treeutil.Query(db.tree, order, keep, func(s roster.Student) roster.Student { return s }), nil
}

// Len returns the number of students.
func (db *DB) Len() int {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.tree.Len()
}

// Stats returns the shape of the underlying tree.
func (db *DB) Stats() btree.Stats {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.tree.Stats()
}

// Render returns the debug rendering of the underlying tree.
func (db *DB) Render() (string, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if db.isClosed {
		return "", ErrClosed
	}

	return db.tree.String(), nil
}

// SnapshotTo writes the roster to w as a JSON array in insertion order.
func (db *DB) SnapshotTo(w io.Writer) error {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if db.isClosed {
		return ErrClosed
	}

	if err := json.NewEncoder(w).Encode(db.inserted); err != nil {
		return errors.Wrap(err, "encode snapshot")
	}
	return nil
}

// RestoreFrom replaces the roster with the students read from r,
// inserting them in the order they appear. The current contents are kept
// if r cannot be decoded.
func (db *DB) RestoreFrom(r io.Reader) error {
	var students []roster.Student
	if err := json.NewDecoder(r).Decode(&students); err != nil {
		return errors.Wrap(err, "decode snapshot")
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if db.isClosed {
		return ErrClosed
	}

	tree, err := btree.NewOrderFunc(db.opts.Order, db.order)
	if err != nil {
		return err
	}
	for _, s := range students {
		tree.Insert(s)
	}
	db.tree = tree
	db.inserted = students
	db.logger.Info("restored roster", "students", len(students))
	return nil
}
