package btree

import "testing"

func TestNodePoolReusesFreedIDs(t *testing.T) {
	pool := NewNodePool[int]()

	a := pool.Allocate(EmptyNode)
	b := pool.Allocate(a.ID())
	if a.ID() == EmptyNode || b.ID() == EmptyNode || a.ID() == b.ID() {
		t.Fatalf("unexpected IDs %d, %d", a.ID(), b.ID())
	}
	if b.Parent() != a.ID() {
		t.Fatalf("expected parent %d, got %d", a.ID(), b.Parent())
	}

	pool.Free(a.ID())
	if pool.Get(a.ID()) != nil {
		t.Fatalf("freed node is still reachable")
	}
	if live, free := pool.Stats(); live != 1 || free != 1 {
		t.Fatalf("expected 1 live and 1 free, got %d and %d", live, free)
	}

	// Double frees and the sentinel are ignored.
	pool.Free(a.ID())
	pool.Free(EmptyNode)
	if live, free := pool.Stats(); live != 1 || free != 1 {
		t.Fatalf("expected 1 live and 1 free, got %d and %d", live, free)
	}

	c := pool.Allocate(EmptyNode)
	if c.ID() != a.ID() {
		t.Fatalf("expected ID %d to be reused, got %d", a.ID(), c.ID())
	}
	if c.KeyCount() != 0 || !c.IsLeaf() {
		t.Fatalf("reused node is not fresh: %v", c.Keys())
	}

	pool.Reset()
	if live, free := pool.Stats(); live != 0 || free != 0 {
		t.Fatalf("expected empty pool after Reset, got %d and %d", live, free)
	}
	if pool.Get(b.ID()) != nil {
		t.Fatalf("node survived Reset")
	}
}

func TestEmptyNodeVariant(t *testing.T) {
	var n *Node[string]
	if !n.IsEmpty() || !n.IsLeaf() {
		t.Fatalf("nil node must be empty and a leaf")
	}
	if n.KeyCount() != 0 || len(n.Children()) != 0 || n.ChildAt(0) != EmptyNode {
		t.Fatalf("nil node must have no keys or children")
	}
	if n.ID() != EmptyNode || n.Parent() != EmptyNode {
		t.Fatalf("nil node must report the sentinel ID")
	}
}
