// Package roster holds the student record stored in the roster tree and
// the orderings it can be sorted by.
package roster

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrUnknownSortKey is returned by Comparator for an unrecognised key name.
var ErrUnknownSortKey = errors.New("unknown sort key")

// Sort key names accepted by Comparator.
const (
	SortByRedID = "redid"
	SortByName  = "name"
	SortByGPA   = "gpa"
)

// Student is a single roster entry.
type Student struct {
	Name  string  `json:"name" yaml:"name"`
	RedID int     `json:"red_id" yaml:"red_id"`
	GPA   float32 `json:"gpa" yaml:"gpa"`
}

func (s Student) String() string {
	return fmt.Sprintf("Student{name='%s', redId=%d, gpa=%s}", s.Name, s.RedID, FormatGPA(s.GPA))
}

// FormatGPA renders a GPA with the shortest exact decimal, keeping at
// least one fractional digit: 4.0, 2.85.
func FormatGPA(gpa float32) string {
	s := strconv.FormatFloat(float64(gpa), 'f', -1, 32)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Compare is the natural ordering of students: by RedID.
func Compare(a, b Student) int {
	return cmp.Compare(a.RedID, b.RedID)
}

// ByRedID orders students by RedID, smallest first.
func ByRedID() func(a, b Student) int { return Compare }

// ByName orders students by name, A to Z.
func ByName() func(a, b Student) int {
	return func(a, b Student) int { return strings.Compare(a.Name, b.Name) }
}

// ByNameDesc orders students by name, Z to A.
func ByNameDesc() func(a, b Student) int { return Reverse(ByName()) }

// ByGPA orders students by GPA, lowest first.
func ByGPA() func(a, b Student) int {
	return func(a, b Student) int { return cmp.Compare(a.GPA, b.GPA) }
}

// ByGPADesc orders students by GPA, highest first.
func ByGPADesc() func(a, b Student) int { return Reverse(ByGPA()) }

// Reverse inverts an ordering.
func Reverse(order func(a, b Student) int) func(a, b Student) int {
	return func(a, b Student) int { return order(b, a) }
}

// Then orders by primary and breaks ties with secondary.
func Then(primary, secondary func(a, b Student) int) func(a, b Student) int {
	return func(a, b Student) int {
		if c := primary(a, b); c != 0 {
			return c
		}
		return secondary(a, b)
	}
}

// Comparator resolves a configured sort key and direction to an ordering.
// An empty key selects the natural ordering.
func Comparator(sortBy string, descending bool) (func(a, b Student) int, error) {
	var order func(a, b Student) int
	switch strings.ToLower(strings.TrimSpace(sortBy)) {
	case "", SortByRedID:
		order = ByRedID()
	case SortByName:
		order = ByName()
	case SortByGPA:
		order = ByGPA()
	default:
		return nil, errors.Wrapf(ErrUnknownSortKey, "%q", sortBy)
	}
	if descending {
		order = Reverse(order)
	}
	return order, nil
}
