package btree

import (
	"fmt"
	"strings"
)

const emptyNodeString = "keys:() parent:() keySize=0 children=0"

// String renders the tree one node per line, children indented four
// spaces below their parent.
func (t *Tree[T]) String() string {
	var b strings.Builder
	t.render(&b, t.pool.Get(t.root), "")
	return b.String()
}

func (t *Tree[T]) render(b *strings.Builder, node *Node[T], prefix string) {
	b.WriteString(prefix)
	b.WriteString("└── ")
	b.WriteString(t.Describe(node.ID()))
	b.WriteString("\n")
	for _, child := range node.Children() {
		t.render(b, t.pool.Get(child), prefix+"    ")
	}
}

// Describe returns a one-line summary of a node: its keys, its parent's
// keys, and how many keys and children it has.
func (t *Tree[T]) Describe(id NodeID) string {
	node := t.pool.Get(id)
	if node.IsEmpty() {
		return emptyNodeString
	}

	var b strings.Builder
	b.WriteString("keys: (")
	writeKeys(&b, node.keys)
	b.WriteString(")\tparent: (")
	writeKeys(&b, t.pool.Get(node.parent).Keys())
	fmt.Fprintf(&b, ")\tkeySize=%d children=%d\t", len(node.keys), len(node.children))
	return b.String()
}

func writeKeys[T any](b *strings.Builder, keys []T) {
	for _, k := range keys {
		fmt.Fprintf(b, "%v,", k)
	}
}
