// Package treeutil turns a tree into plain slices for callers that want
// to re-sort, filter or project its contents.
package treeutil

import (
	"slices"

	"github.com/conuredb/rosterdb/btree"
)

// ToList returns the elements of tree in the tree's ascending order.
func ToList[T any](tree *btree.Tree[T]) []T {
	return tree.ToSlice()
}

// SortedList returns the elements of tree re-sorted by order. Elements
// that order considers equal keep their position from the tree.
func SortedList[T any](tree *btree.Tree[T], order func(a, b T) int) []T {
	list := ToList(tree)
	slices.SortStableFunc(list, order)
	return list
}

// Query sorts the elements of tree by order, keeps those matching keep and
// maps each survivor through project. A nil order keeps the tree's order
// and a nil keep keeps everything.
func Query[T, R any](tree *btree.Tree[T], order func(a, b T) int, keep func(T) bool, project func(T) R) []R {
	var list []T
	if order == nil {
		list = ToList(tree)
	} else {
		list = SortedList(tree, order)
	}

	out := make([]R, 0, len(list))
	for _, v := range list {
		if keep != nil && !keep(v) {
			continue
		}
		out = append(out, project(v))
	}
	return out
}
