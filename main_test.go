package main

import (
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/conuredb/rosterdb/db"
	"github.com/conuredb/rosterdb/roster"
)

func TestRunRejectsBadOptions(t *testing.T) {
	err := run(options{db: db.Options{SortBy: "shoe_size"}})
	if !errors.Is(err, roster.ErrUnknownSortKey) {
		t.Fatalf("expected ErrUnknownSortKey, got %v", err)
	}
}
