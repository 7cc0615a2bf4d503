package repl

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/chzyer/readline"
	"github.com/d4l3k/messagediff"

	"github.com/conuredb/rosterdb/db"
)

type scriptReader struct {
	lines []string
	end   error
}

func (r *scriptReader) Readline() (string, error) {
	if len(r.lines) == 0 {
		return "", r.end
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	return line, nil
}

func newShell(t *testing.T) (*Shell, *bytes.Buffer) {
	t.Helper()
	database, err := db.Open(db.Options{SortBy: "name"})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	var out bytes.Buffer
	return New(Local{DB: database}, &out), &out
}

func outputLines(out *bytes.Buffer) []string {
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	out.Reset()
	return lines
}

func TestShellCommands(t *testing.T) {
	sh, out := newShell(t)

	for _, line := range []string{
		"add 1 2.85 Megan",
		"add 2 2.7 Karolina",
		"add 3 4.0 Alex",
		"add 6 3.1 Mary Ann",
	} {
		if sh.Execute(line) {
			t.Fatalf("%q stopped the shell", line)
		}
	}
	if diff, equal := messagediff.PrettyDiff([]string{"OK", "OK", "OK", "OK"}, outputLines(out)); !equal {
		t.Fatalf("add output mismatch:\n%s", diff)
	}

	cases := []struct {
		line string
		want []string
	}{
		{"list", []string{
			"Student{name='Alex', redId=3, gpa=4.0}",
			"Student{name='Karolina', redId=2, gpa=2.7}",
			"Student{name='Mary Ann', redId=6, gpa=3.1}",
			"Student{name='Megan', redId=1, gpa=2.85}",
			"(4 students)",
		}},
		{"list desc", []string{
			"Student{name='Megan', redId=1, gpa=2.85}",
			"Student{name='Mary Ann', redId=6, gpa=3.1}",
			"Student{name='Karolina', redId=2, gpa=2.7}",
			"Student{name='Alex', redId=3, gpa=4.0}",
			"(4 students)",
		}},
		{"has 0 0 Mary Ann", []string{"true"}},
		{"has 0 0 Zed", []string{"false"}},
		{"at 1", []string{"Student{name='Karolina', redId=2, gpa=2.7}"}},
		{"at 4", []string{"Error: index 4, size 4: index out of range"}},
		{"add x 1.0 Bob", []string{"Usage: add <redid> <gpa> <name...>"}},
		{"list sideways", []string{"Usage: list [asc|desc]"}},
	}
	for _, tc := range cases {
		t.Run(tc.line, func(t *testing.T) {
			sh.Execute(tc.line)
			if diff, equal := messagediff.PrettyDiff(tc.want, outputLines(out)); !equal {
				t.Fatalf("output mismatch:\n%s", diff)
			}
		})
	}
}

func TestShellDeleteUnsupported(t *testing.T) {
	sh, out := newShell(t)
	sh.Execute("add 1 2.85 Megan")
	out.Reset()

	sh.Execute("delete 1 2.85 Megan")
	if got := out.String(); !strings.HasPrefix(got, "Error: ") || !strings.Contains(got, "cannot be removed") {
		t.Fatalf("unexpected delete output: %q", got)
	}
}

func TestShellTree(t *testing.T) {
	sh, out := newShell(t)
	sh.Execute("tree")
	if got := out.String(); got != "└── keys:() parent:() keySize=0 children=0\n" {
		t.Fatalf("unexpected empty tree: %q", got)
	}
}

func TestRunStops(t *testing.T) {
	cases := []struct {
		name   string
		reader *scriptReader
		last   string
	}{
		{"exit", &scriptReader{lines: []string{"help", "exit", "add 1 1 Never"}, end: io.EOF}, "Goodbye!"},
		{"eof", &scriptReader{lines: []string{"bogus"}, end: io.EOF}, "  exit, quit                      - Exit the program"},
		{"interrupt", &scriptReader{end: readline.ErrInterrupt}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sh, out := newShell(t)
			if err := sh.Run(tc.reader); err != nil {
				t.Fatalf("Run: %v", err)
			}
			lines := outputLines(out)
			if got := lines[len(lines)-1]; got != tc.last {
				t.Fatalf("last line %q, want %q", got, tc.last)
			}
			if tc.name == "exit" && len(tc.reader.lines) != 1 {
				t.Fatalf("shell kept reading after exit")
			}
		})
	}
}
