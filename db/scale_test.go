package db

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/conuredb/rosterdb/roster"
)

// TestLargeRoster inserts a large shuffled roster and checks it comes back
// in order with every student reachable.
func TestLargeRoster(t *testing.T) {
	database, err := Open(Options{Order: 7})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	const numStudents = 20000
	ids := rand.New(rand.NewSource(42)).Perm(numStudents)

	start := time.Now()
	for _, id := range ids {
		if err := database.Insert(roster.Student{RedID: id, GPA: float32(id%400) / 100}); err != nil {
			t.Fatalf("Failed to insert %d: %v", id, err)
		}
	}
	insertDuration := time.Since(start)
	t.Logf("Inserted %d students in %v (%.2f students/sec)",
		numStudents, insertDuration, float64(numStudents)/insertDuration.Seconds())

	stats := database.Stats()
	t.Logf("Tree shape: height=%d nodes=%d splits=%d", stats.Height, stats.Nodes, stats.Splits)
	if stats.Size != numStudents {
		t.Fatalf("expected %d students, got %d", numStudents, stats.Size)
	}

	start = time.Now()
	for id := 0; id < numStudents; id++ {
		found, err := database.Contains(roster.Student{RedID: id})
		if err != nil || !found {
			t.Fatalf("RedID %d missing: %v", id, err)
		}
	}
	lookupDuration := time.Since(start)
	t.Logf("Looked up %d students in %v (%.2f lookups/sec)",
		numStudents, lookupDuration, float64(numStudents)/lookupDuration.Seconds())

	list, err := database.Students()
	if err != nil {
		t.Fatalf("Students: %v", err)
	}
	for i, s := range list {
		if s.RedID != i {
			t.Fatalf("position %d holds RedID %d", i, s.RedID)
		}
	}
}

// TestConcurrentReads runs lookups, listings and indexed reads from many
// goroutines against a populated roster.
func TestConcurrentReads(t *testing.T) {
	database, err := Open(Options{SortBy: "gpa"})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	const numStudents = 500
	for i := 0; i < numStudents; i++ {
		if err := database.Insert(roster.Student{RedID: i, GPA: float32(i) / 125}); err != nil {
			t.Fatalf("Failed to insert %d: %v", i, err)
		}
	}

	const numReaders = 10
	var wg sync.WaitGroup
	errCh := make(chan error, numReaders)
	for r := 0; r < numReaders; r++ {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(int64(r)))
			for i := 0; i < 200; i++ {
				index := rng.Intn(numStudents)
				s, err := database.ElementAt(index)
				if err != nil {
					errCh <- err
					return
				}
				if s.RedID != index {
					t.Errorf("reader %d: ElementAt(%d) = %v", r, index, s)
					return
				}
				if found, err := database.Contains(s); err != nil || !found {
					t.Errorf("reader %d: %v not found: %v", r, s, err)
					return
				}
			}
			if desc, err := database.Descending(); err != nil {
				errCh <- err
			} else if len(desc) != numStudents {
				t.Errorf("reader %d: Descending returned %d students", r, len(desc))
			}
		}(r)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Fatalf("concurrent read failed: %v", err)
	}
}
