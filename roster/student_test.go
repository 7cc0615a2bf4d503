package roster

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/d4l3k/messagediff"

	"github.com/conuredb/rosterdb/btree"
)

func names(students []Student) []string {
	out := make([]string, 0, len(students))
	for _, s := range students {
		out = append(out, s.Name)
	}
	return out
}

func TestGPADescThenNameOrdering(t *testing.T) {
	tree := btree.NewFunc(Then(ByGPADesc(), ByName()))
	for _, s := range []Student{
		{Name: "Alex", RedID: 3, GPA: 4.0},
		{Name: "Andrea", RedID: 5, GPA: 4.0},
		{Name: "Jorge", RedID: 4, GPA: 2.5},
		{Name: "Karolina", RedID: 2, GPA: 2.7},
		{Name: "Megan", RedID: 1, GPA: 2.85},
	} {
		tree.Insert(s)
	}

	expected := []string{"Alex", "Andrea", "Megan", "Karolina", "Jorge"}
	if diff, equal := messagediff.PrettyDiff(expected, names(tree.ToSlice())); !equal {
		t.Fatalf("order mismatch:\n%s", diff)
	}
}

func TestGPADescOrdering(t *testing.T) {
	tree := btree.NewFunc(ByGPADesc())
	for _, s := range []Student{
		{Name: "Megan", RedID: 1, GPA: 2.85},
		{Name: "Karolina", RedID: 2, GPA: 2.7},
		{Name: "Alex", RedID: 3, GPA: 4.0},
		{Name: "Jorge", RedID: 4, GPA: 2.5},
	} {
		tree.Insert(s)
	}

	var got []string
	for s := range tree.All() {
		got = append(got, s.Name+","+FormatGPA(s.GPA))
	}
	expected := []string{"Alex,4.0", "Megan,2.85", "Karolina,2.7", "Jorge,2.5"}
	if diff, equal := messagediff.PrettyDiff(expected, got); !equal {
		t.Fatalf("order mismatch:\n%s", diff)
	}
}

func TestElementAtByName(t *testing.T) {
	tree := btree.NewFunc(ByName())
	for i, name := range []string{"Megan", "Karolina", "Alex", "Jorge", "Andrea", "Xavier", "Simona", "Sachin"} {
		tree.Insert(Student{Name: name, RedID: i + 1})
	}

	s, err := tree.ElementAt(2)
	if err != nil {
		t.Fatalf("ElementAt(2): %v", err)
	}
	if s.Name != "Jorge" {
		t.Fatalf("expected Jorge, got %s", s.Name)
	}
	if _, err := tree.ElementAt(11); !errors.Is(err, btree.ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestNaturalOrderingByRedID(t *testing.T) {
	tree := btree.NewFunc(Compare)
	for _, id := range []int{30, 10, 20} {
		tree.Insert(Student{Name: "s", RedID: id})
	}
	if !tree.Contains(Student{RedID: 20}) {
		t.Fatalf("expected RedID 20 to be found by natural ordering")
	}
	first, _ := tree.ElementAt(0)
	if first.RedID != 10 {
		t.Fatalf("expected RedID 10 first, got %d", first.RedID)
	}
}

func TestComparator(t *testing.T) {
	a := Student{Name: "Alex", RedID: 2, GPA: 3.0}
	b := Student{Name: "Bea", RedID: 1, GPA: 3.5}

	cases := []struct {
		sortBy     string
		descending bool
		sign       int
	}{
		{"", false, 1},
		{"redid", false, 1},
		{"redid", true, -1},
		{"name", false, -1},
		{"NAME", true, 1},
		{"gpa", false, -1},
		{"gpa", true, 1},
	}
	for _, tc := range cases {
		order, err := Comparator(tc.sortBy, tc.descending)
		if err != nil {
			t.Fatalf("Comparator(%q, %v): %v", tc.sortBy, tc.descending, err)
		}
		got := order(a, b)
		if (got > 0) != (tc.sign > 0) || got == 0 {
			t.Fatalf("Comparator(%q, %v)(a, b) = %d, expected sign %d", tc.sortBy, tc.descending, got, tc.sign)
		}
	}

	if _, err := Comparator("height", false); !errors.Is(err, ErrUnknownSortKey) {
		t.Fatalf("expected ErrUnknownSortKey, got %v", err)
	}
}

func TestStudentString(t *testing.T) {
	s := Student{Name: "Megan", RedID: 1, GPA: 2.85}
	expected := "Student{name='Megan', redId=1, gpa=2.85}"
	if s.String() != expected {
		t.Fatalf("expected %q, got %q", expected, s.String())
	}
	if got := FormatGPA(4); got != "4.0" {
		t.Fatalf("expected 4.0, got %q", got)
	}
}
