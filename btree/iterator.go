package btree

import "iter"

// iterFrame is a node on the traversal path together with the position
// of the next key to visit in it.
type iterFrame[T any] struct {
	node *Node[T]
	pos  int
}

// Iterator walks a tree in ascending order without recursion. It keeps
// the path from the root to the current key as a stack of frames.
//
// An Iterator reflects the tree at the time it was created and must not
// be used after the tree is modified. Once exhausted it stays exhausted.
type Iterator[T any] struct {
	tree  *Tree[T]
	stack []iterFrame[T]
}

// Iter returns an iterator positioned before the smallest element.
func (t *Tree[T]) Iter() *Iterator[T] {
	it := &Iterator[T]{tree: t}
	if root := t.pool.Get(t.root); root.KeyCount() > 0 {
		it.pushLeftPath(root)
	}
	return it
}

// HasNext reports whether Next has an element to return.
func (it *Iterator[T]) HasNext() bool {
	return len(it.stack) > 0
}

// Next returns the next element in ascending order. The boolean is false
// once the iterator is exhausted.
func (it *Iterator[T]) Next() (T, bool) {
	if !it.HasNext() {
		var zero T
		return zero, false
	}

	top := &it.stack[len(it.stack)-1]
	node := top.node
	key := node.keys[top.pos]
	pos := top.pos + 1
	if pos < len(node.keys) {
		top.pos = pos
	} else {
		it.stack = it.stack[:len(it.stack)-1]
	}
	if !node.IsLeaf() {
		it.pushLeftPath(it.tree.pool.Get(node.children[pos]))
	}
	return key, true
}

func (it *Iterator[T]) pushLeftPath(node *Node[T]) {
	for {
		it.stack = append(it.stack, iterFrame[T]{node: node, pos: 0})
		if node.IsLeaf() {
			return
		}
		node = it.tree.pool.Get(node.children[0])
	}
}

// All returns a sequence over the elements in ascending order.
func (t *Tree[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for it := t.Iter(); it.HasNext(); {
			v, _ := it.Next()
			if !yield(v) {
				return
			}
		}
	}
}

// Descend calls fn once for every element in descending order.
func (t *Tree[T]) Descend(fn func(T)) {
	t.descend(func(v T) bool {
		fn(v)
		return true
	})
}

// Backward returns a sequence over the elements in descending order.
func (t *Tree[T]) Backward() iter.Seq[T] {
	return t.descend
}

// descend walks the tree from the largest key down. It mirrors Iterator:
// frame positions count down and moving past a key on an internal node
// pushes the rightmost path of the child to its left.
func (t *Tree[T]) descend(yield func(T) bool) {
	var stack []iterFrame[T]
	pushRightPath := func(node *Node[T]) {
		for {
			stack = append(stack, iterFrame[T]{node: node, pos: len(node.keys)})
			if node.IsLeaf() {
				return
			}
			node = t.pool.Get(node.children[len(node.children)-1])
		}
	}

	if root := t.pool.Get(t.root); root.KeyCount() > 0 {
		pushRightPath(root)
	}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		node := top.node
		pos := top.pos - 1
		key := node.keys[pos]
		if pos > 0 {
			top.pos = pos
		} else {
			stack = stack[:len(stack)-1]
		}
		if !node.IsLeaf() {
			pushRightPath(t.pool.Get(node.children[pos]))
		}
		if !yield(key) {
			return
		}
	}
}
