package repl

import (
	"github.com/conuredb/rosterdb/db"
	"github.com/conuredb/rosterdb/roster"
)

// Local runs shell commands against an in-process database.
type Local struct {
	DB *db.DB
}

func (l Local) Insert(s roster.Student) error { return l.DB.Insert(s) }
func (l Local) Contains(probe roster.Student) (bool, error) { return l.DB.Contains(probe) }
func (l Local) ElementAt(index int) (roster.Student, error) { return l.DB.ElementAt(index) }
func (l Local) Delete(s roster.Student) error { return l.DB.Delete(s) }
func (l Local) Tree() (string, error) { return l.DB.Render() }

func (l Local) List(descending bool) ([]roster.Student, error) {
	if descending {
		return l.DB.Descending()
	}
	return l.DB.Students()
}
