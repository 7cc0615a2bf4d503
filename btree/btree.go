package btree

import (
	"cmp"
	"slices"

	"github.com/cockroachdb/errors"
)

const (
	// DefaultOrder is the order of a tree built without one: a 2-3 tree.
	DefaultOrder = 3

	// MinOrder is the smallest order a tree accepts. With order 2 a split
	// of a two-key leaf would leave its right half without keys.
	MinOrder = 3
)

var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrInvalidOrder    = errors.New("invalid tree order")
	ErrNilComparator   = errors.New("nil comparator")
)

// Tree is an in-memory B-tree of order m: every node holds at most m-1
// keys and internal nodes hold one more child than they have keys.
//
// Duplicates are allowed. There is no removal operation. A Tree is not
// safe for concurrent use; callers that share one must serialise access.
type Tree[T any] struct {
	root    NodeID
	size    int
	order   int
	maxKeys int
	cmp     func(a, b T) int
	pool    *NodePool[T]
	splits  int
}

// New creates an empty 2-3 tree ordered by the natural order of T.
func New[T cmp.Ordered]() *Tree[T] {
	return newTree(DefaultOrder, cmp.Compare[T])
}

// NewFunc creates an empty 2-3 tree ordered by compare. It panics if
// compare is nil.
func NewFunc[T any](compare func(a, b T) int) *Tree[T] {
	if compare == nil {
		panic(ErrNilComparator)
	}
	return newTree(DefaultOrder, compare)
}

// NewOrdered creates an empty tree of the given order ordered by the
// natural order of T. The order must be at least MinOrder; order 2 is
// rejected with ErrInvalidOrder because splitting a two-key node would
// leave its right half without keys.
func NewOrdered[T cmp.Ordered](order int) (*Tree[T], error) {
	return NewOrderFunc(order, cmp.Compare[T])
}

// NewOrderFunc creates an empty tree of the given order ordered by compare.
// Orders below MinOrder, including 2, fail with ErrInvalidOrder.
func NewOrderFunc[T any](order int, compare func(a, b T) int) (*Tree[T], error) {
	if order < MinOrder {
		return nil, errors.Wrapf(ErrInvalidOrder, "order %d is below %d", order, MinOrder)
	}
	if compare == nil {
		return nil, ErrNilComparator
	}
	return newTree(order, compare), nil
}

func newTree[T any](order int, compare func(a, b T) int) *Tree[T] {
	return &Tree[T]{
		root:    EmptyNode,
		order:   order,
		maxKeys: order - 1,
		cmp:     compare,
		pool:    NewNodePool[T](),
	}
}

// Len returns the number of elements inserted into the tree.
func (t *Tree[T]) Len() int {
	return t.size
}

// IsEmpty reports whether the tree has no elements.
func (t *Tree[T]) IsEmpty() bool {
	return t.size == 0
}

// Order returns the maximum number of children per node.
func (t *Tree[T]) Order() int {
	return t.order
}

// Root returns the ID of the root node, EmptyNode for an empty tree.
func (t *Tree[T]) Root() NodeID {
	return t.root
}

// Node returns the node with the given ID, or nil for EmptyNode.
func (t *Tree[T]) Node(id NodeID) *Node[T] {
	return t.pool.Get(id)
}

// Clear drops every element and resets the split count.
func (t *Tree[T]) Clear() {
	t.pool.Reset()
	t.root = EmptyNode
	t.size = 0
	t.splits = 0
}

// Insert adds value to the tree. It always succeeds and returns true.
func (t *Tree[T]) Insert(value T) bool {
	root := t.pool.Get(t.root)
	if root.IsEmpty() {
		root = t.pool.Allocate(EmptyNode)
		root.addKey(value, t.cmp)
		t.root = root.id
		t.size++
		return true
	}

	node := root
	for !node.IsLeaf() {
		node = t.pool.Get(node.ChildAt(t.insertChildPos(node, value)))
	}

	node.addKey(value, t.cmp)
	if len(node.keys) > t.maxKeys {
		t.split(node)
	}
	t.size++
	return true
}

// insertChildPos picks the child of an internal node that an insert of
// value descends into. Values equal to the leftmost key go left, values
// equal to any other key go to the child before it.
func (t *Tree[T]) insertChildPos(node *Node[T], value T) int {
	if t.cmp(value, node.firstKey()) <= 0 {
		return 0
	}
	numberOfKeys := len(node.keys)
	if t.cmp(value, node.lastKey()) > 0 {
		return numberOfKeys
	}
	for i := 1; i < numberOfKeys; i++ {
		if t.cmp(value, node.keys[i-1]) > 0 && t.cmp(value, node.keys[i]) <= 0 {
			return i
		}
	}
	// Unreachable for a consistent comparator.
	return numberOfKeys
}

// Contains reports whether a key equal to value is in the tree.
func (t *Tree[T]) Contains(value T) bool {
	return t.Find(value) != EmptyNode
}

// Find returns the ID of the node holding a key equal to value, or
// EmptyNode when there is none.
func (t *Tree[T]) Find(value T) NodeID {
	return t.locate(t.pool.Get(t.root), value).ID()
}

// locate searches the subtree under node for value.
func (t *Tree[T]) locate(node *Node[T], value T) *Node[T] {
	for !node.IsEmpty() {
		if t.cmp(value, node.firstKey()) < 0 {
			node = t.pool.Get(node.ChildAt(0))
			continue
		}

		numberOfKeys := len(node.keys)
		if t.cmp(value, node.lastKey()) > 0 {
			node = t.pool.Get(node.ChildAt(numberOfKeys))
			continue
		}

		next := node
		for i := 0; i < numberOfKeys && next == node; i++ {
			c := t.cmp(node.keys[i], value)
			if c == 0 {
				return node
			}
			if i+1 < numberOfKeys && c < 0 && t.cmp(node.keys[i+1], value) > 0 {
				// value falls in the gap after key i
				next = t.pool.Get(node.ChildAt(i + 1))
			}
		}
		if next == node {
			return nil
		}
		node = next
	}
	return nil
}

// split breaks an overflowing node around its median key. The median
// moves up into the parent, or into a new root when node is the root,
// and the split repeats for every ancestor that overflows in turn.
func (t *Tree[T]) split(node *Node[T]) {
	for {
		t.splits++
		numberOfKeys := len(node.keys)
		medianIndex := numberOfKeys / 2
		medianValue := node.keys[medianIndex]

		left := t.pool.Allocate(EmptyNode)
		left.keys = append(left.keys, node.keys[:medianIndex]...)
		right := t.pool.Allocate(EmptyNode)
		right.keys = append(right.keys, node.keys[medianIndex+1:]...)
		if !node.IsLeaf() {
			t.adopt(left, 0, node.children[:medianIndex+1]...)
			t.adopt(right, 0, node.children[medianIndex+1:]...)
		}

		parent := t.pool.Get(node.parent)
		if parent.IsEmpty() {
			t.pool.Free(node.id)
			newRoot := t.pool.Allocate(EmptyNode)
			newRoot.addKey(medianValue, t.cmp)
			t.adopt(newRoot, 0, left.id, right.id)
			t.root = newRoot.id
			return
		}

		pos := slices.Index(parent.children, node.id)
		if !parent.detach(node.id) {
			panic(errors.AssertionFailedf("node %d missing from its parent %d", node.id, parent.id))
		}
		t.pool.Free(node.id)
		parent.addKey(medianValue, t.cmp)
		t.adopt(parent, pos, left.id, right.id)
		if len(parent.keys) <= t.maxKeys {
			return
		}
		node = parent
	}
}

// adopt inserts children into parent at position at and points their
// parent links at parent.
func (t *Tree[T]) adopt(parent *Node[T], at int, children ...NodeID) {
	for _, id := range children {
		t.pool.Get(id).parent = parent.id
	}
	parent.children = slices.Insert(parent.children, at, children...)
}

// ElementAt returns the element at index in ascending order.
func (t *Tree[T]) ElementAt(index int) (T, error) {
	if index < 0 || index >= t.size {
		var zero T
		return zero, errors.Wrapf(ErrIndexOutOfRange, "index %d, size %d", index, t.size)
	}
	return t.ToSlice()[index], nil
}

// ToSlice returns every element in ascending order.
func (t *Tree[T]) ToSlice() []T {
	out := make([]T, 0, t.size)
	for it := t.Iter(); it.HasNext(); {
		v, _ := it.Next()
		out = append(out, v)
	}
	return out
}

// Stats describes the shape of a tree.
type Stats struct {
	Size   int
	Height int
	Nodes  int
	Splits int
}

// Stats returns the current shape of the tree.
func (t *Tree[T]) Stats() Stats {
	height := 0
	for node := t.pool.Get(t.root); !node.IsEmpty(); node = t.pool.Get(node.ChildAt(0)) {
		height++
	}
	nodes, _ := t.pool.Stats()
	return Stats{
		Size:   t.size,
		Height: height,
		Nodes:  nodes,
		Splits: t.splits,
	}
}
