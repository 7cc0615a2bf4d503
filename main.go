package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-hclog"

	"github.com/conuredb/rosterdb/db"
	"github.com/conuredb/rosterdb/pkg/repl"
)

type options struct {
	db      db.Options
	history string
}

func main() {
	order := flag.Int("order", 0, "B-tree order (at least 3; 0 selects the default)")
	sortBy := flag.String("sort-by", "", "roster ordering: redid, name or gpa")
	descending := flag.Bool("descending", false, "reverse the roster ordering")
	history := flag.String("history", "", "readline history file")
	logLevel := flag.String("log-level", "warn", "log level")
	flag.Parse()

	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "rosterdb",
		Level:  hclog.LevelFromString(*logLevel),
		Output: os.Stderr,
	})

	err := run(options{
		db: db.Options{
			Order:      *order,
			SortBy:     *sortBy,
			Descending: *descending,
			Logger:     logger,
		},
		history: *history,
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	database, err := db.Open(opts.db)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer database.Close()

	rl, err := repl.NewReader(opts.history)
	if err != nil {
		return errors.Wrap(err, "starting readline")
	}
	defer rl.Close()

	fmt.Println("RosterDB - in-memory student roster on a B-tree")
	fmt.Println("Type 'help' for available commands")
	return repl.New(repl.Local{DB: database}, rl.Stdout()).Run(rl)
}
