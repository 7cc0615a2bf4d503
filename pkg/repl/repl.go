// Package repl is the line-oriented roster shell shared by the local and
// remote command-line tools.
package repl

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/cockroachdb/errors"

	"github.com/conuredb/rosterdb/roster"
)

// Backend is the roster the shell operates on.
type Backend interface {
	Insert(s roster.Student) error
	Contains(probe roster.Student) (bool, error)
	List(descending bool) ([]roster.Student, error)
	ElementAt(index int) (roster.Student, error)
	Delete(s roster.Student) error
	Tree() (string, error)
}

// LineReader yields one input line per call. *readline.Instance satisfies it.
type LineReader interface {
	Readline() (string, error)
}

type Shell struct {
	backend Backend
	out     io.Writer
}

func New(backend Backend, out io.Writer) *Shell {
	return &Shell{backend: backend, out: out}
}

// Run executes lines from r until EOF, an interrupt or an exit command.
func (sh *Shell) Run(r LineReader) error {
	for {
		line, err := r.Readline()
		if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
			return nil
		}
		if err != nil {
			return err
		}
		if quit := sh.Execute(line); quit {
			return nil
		}
	}
}

// Execute runs a single command line and reports whether the shell
// should stop.
func (sh *Shell) Execute(line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}

	switch cmd := parts[0]; cmd {
	case "help":
		sh.printHelp()
	case "add":
		s, err := parseStudent(parts[1:])
		if err != nil {
			sh.println("Usage: add <redid> <gpa> <name...>")
			return false
		}
		if err := sh.backend.Insert(s); err != nil {
			sh.printErr(err)
			return false
		}
		sh.println("OK")
	case "has":
		s, err := parseStudent(parts[1:])
		if err != nil {
			sh.println("Usage: has <redid> <gpa> <name...>")
			return false
		}
		found, err := sh.backend.Contains(s)
		if err != nil {
			sh.printErr(err)
			return false
		}
		sh.println(strconv.FormatBool(found))
	case "list":
		descending := false
		if len(parts) > 1 {
			switch parts[1] {
			case "asc":
			case "desc":
				descending = true
			default:
				sh.println("Usage: list [asc|desc]")
				return false
			}
		}
		students, err := sh.backend.List(descending)
		if err != nil {
			sh.printErr(err)
			return false
		}
		for _, s := range students {
			sh.println(s.String())
		}
		sh.println(fmt.Sprintf("(%d students)", len(students)))
	case "at":
		if len(parts) != 2 {
			sh.println("Usage: at <index>")
			return false
		}
		index, err := strconv.Atoi(parts[1])
		if err != nil {
			sh.println("Usage: at <index>")
			return false
		}
		s, err := sh.backend.ElementAt(index)
		if err != nil {
			sh.printErr(err)
			return false
		}
		sh.println(s.String())
	case "delete":
		s, err := parseStudent(parts[1:])
		if err != nil {
			sh.println("Usage: delete <redid> <gpa> <name...>")
			return false
		}
		if err := sh.backend.Delete(s); err != nil {
			sh.printErr(err)
			return false
		}
		sh.println("OK")
	case "tree":
		out, err := sh.backend.Tree()
		if err != nil {
			sh.printErr(err)
			return false
		}
		_, _ = io.WriteString(sh.out, out)
	case "exit", "quit":
		sh.println("Goodbye!")
		return true
	default:
		sh.println("Unknown command: " + cmd)
		sh.printHelp()
	}
	return false
}

func parseStudent(args []string) (roster.Student, error) {
	if len(args) < 3 {
		return roster.Student{}, errors.New("missing fields")
	}
	redID, err := strconv.Atoi(args[0])
	if err != nil {
		return roster.Student{}, errors.Wrap(err, "redid")
	}
	gpa, err := strconv.ParseFloat(args[1], 32)
	if err != nil {
		return roster.Student{}, errors.Wrap(err, "gpa")
	}
	return roster.Student{
		Name:  strings.Join(args[2:], " "),
		RedID: redID,
		GPA:   float32(gpa),
	}, nil
}

func (sh *Shell) println(s string) {
	_, _ = fmt.Fprintln(sh.out, s)
}

func (sh *Shell) printErr(err error) {
	_, _ = fmt.Fprintf(sh.out, "Error: %v\n", err)
}

func (sh *Shell) printHelp() {
	sh.println("Available commands:")
	sh.println("  add <redid> <gpa> <name...>     - Add a student")
	sh.println("  has <redid> <gpa> <name...>     - Report whether a matching student exists")
	sh.println("  list [asc|desc]                 - List students in roster order")
	sh.println("  at <index>                      - Show the student at a position")
	sh.println("  delete <redid> <gpa> <name...>  - Remove a student (not supported)")
	sh.println("  tree                            - Print the tree layout")
	sh.println("  help                            - Show this help message")
	sh.println("  exit, quit                      - Exit the program")
}

// Completer completes command names.
func Completer() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("add"),
		readline.PcItem("has"),
		readline.PcItem("list", readline.PcItem("asc"), readline.PcItem("desc")),
		readline.PcItem("at"),
		readline.PcItem("delete"),
		readline.PcItem("tree"),
		readline.PcItem("help"),
		readline.PcItem("exit"),
		readline.PcItem("quit"),
	)
}

// NewReader opens a readline prompt with command completion. An empty
// historyFile disables history.
func NewReader(historyFile string) (*readline.Instance, error) {
	return readline.NewEx(&readline.Config{
		Prompt:          "> ",
		HistoryFile:     historyFile,
		AutoComplete:    Completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
}
