package btree

import (
	"slices"
)

// NodeID identifies a node inside a tree's NodePool.
type NodeID uint32

// EmptyNode is the ID of the empty sentinel. It is returned wherever a
// lookup runs past the edge of the tree: out-of-range children, failed
// searches, and the root of a tree that has no elements.
const EmptyNode NodeID = 0

// Node represents a node in the B-tree.
//
// A nil *Node is the empty variant. All read accessors accept a nil
// receiver so callers can walk past missing children without checking.
type Node[T any] struct {
	id       NodeID
	parent   NodeID
	keys     []T
	children []NodeID // Empty for leaves
}

// ID returns the ID of the node, or EmptyNode for the empty variant.
func (n *Node[T]) ID() NodeID {
	if n == nil {
		return EmptyNode
	}
	return n.id
}

// Parent returns the ID of the node's parent. The root's parent is EmptyNode.
func (n *Node[T]) Parent() NodeID {
	if n == nil {
		return EmptyNode
	}
	return n.parent
}

// Keys returns the keys held by the node in ascending order.
func (n *Node[T]) Keys() []T {
	if n == nil {
		return nil
	}
	return n.keys
}

// Children returns the IDs of the node's children.
func (n *Node[T]) Children() []NodeID {
	if n == nil {
		return nil
	}
	return n.children
}

// KeyCount returns the number of keys in the node.
func (n *Node[T]) KeyCount() int {
	if n == nil {
		return 0
	}
	return len(n.keys)
}

// IsEmpty reports whether n is the empty sentinel.
func (n *Node[T]) IsEmpty() bool {
	return n == nil
}

// IsLeaf reports whether the node has no children. The empty sentinel is a leaf.
func (n *Node[T]) IsLeaf() bool {
	return n == nil || len(n.children) == 0
}

// ChildAt returns the ID of the child at index, or EmptyNode if there is none.
func (n *Node[T]) ChildAt(index int) NodeID {
	if n == nil || index < 0 || index >= len(n.children) {
		return EmptyNode
	}
	return n.children[index]
}

func (n *Node[T]) firstKey() T {
	return n.keys[0]
}

func (n *Node[T]) lastKey() T {
	return n.keys[len(n.keys)-1]
}

// addKey inserts value keeping the keys sorted. Equal keys keep their
// insertion order. Capacity is not enforced here.
func (n *Node[T]) addKey(value T, cmp func(a, b T) int) {
	n.keys = append(n.keys, value)
	slices.SortStableFunc(n.keys, cmp)
}

// detach removes child from the node's children and reports whether it was present.
func (n *Node[T]) detach(child NodeID) bool {
	pos := slices.Index(n.children, child)
	if pos < 0 {
		return false
	}
	n.children = slices.Delete(n.children, pos, pos+1)
	return true
}
