package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/conuredb/rosterdb/roster"
)

// listQuery is the parsed form of GET /students parameters:
//
//	order=asc|desc     direction of the result
//	sort=name|gpa|redid  re-sort before filtering
//	min_gpa=F          keep students with GPA >= F
//	below_gpa=F        keep students with GPA < F
type listQuery struct {
	descending bool
	order      func(a, b roster.Student) int
	keep       func(roster.Student) bool
}

func parseListQuery(r *http.Request) (listQuery, error) {
	var q listQuery
	values := r.URL.Query()

	switch strings.ToLower(values.Get("order")) {
	case "", "asc":
	case "desc":
		q.descending = true
	default:
		return q, errors.Newf("order must be asc or desc, got %q", values.Get("order"))
	}

	if sortBy := values.Get("sort"); sortBy != "" {
		order, err := roster.Comparator(sortBy, false)
		if err != nil {
			return q, err
		}
		q.order = order
	}

	var filters []func(roster.Student) bool
	if v := values.Get("min_gpa"); v != "" {
		lo, err := parseGPA(v)
		if err != nil {
			return q, errors.Wrap(err, "min_gpa")
		}
		filters = append(filters, func(s roster.Student) bool { return s.GPA >= lo })
	}
	if v := values.Get("below_gpa"); v != "" {
		below, err := parseGPA(v)
		if err != nil {
			return q, errors.Wrap(err, "below_gpa")
		}
		filters = append(filters, func(s roster.Student) bool { return s.GPA < below })
	}
	if len(filters) > 0 {
		q.keep = func(s roster.Student) bool {
			for _, f := range filters {
				if !f(s) {
					return false
				}
			}
			return true
		}
	}
	return q, nil
}

func parseGPA(v string) (float32, error) {
	f, err := strconv.ParseFloat(v, 32)
	return float32(f), err
}

// probeFromQuery builds the student a contains lookup compares against.
// Only the fields the roster ordering looks at matter.
func probeFromQuery(r *http.Request) (roster.Student, error) {
	values := r.URL.Query()
	probe := roster.Student{Name: values.Get("name")}
	if v := values.Get("redid"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return probe, errors.Wrap(err, "redid")
		}
		probe.RedID = id
	}
	if v := values.Get("gpa"); v != "" {
		gpa, err := parseGPA(v)
		if err != nil {
			return probe, errors.Wrap(err, "gpa")
		}
		probe.GPA = gpa
	}
	return probe, nil
}
