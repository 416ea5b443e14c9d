// Package filter selects the records of a single day and of the month-to-date
// window.
package filter

import (
	"slices"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/samber/lo"

	"github.com/nconklindev/qareport/internal/dates"
	"github.com/nconklindev/qareport/internal/types"
)

// Index parses the date column of every record once. Records whose date does
// not parse are never returned by Exact or MonthToDate.
type Index struct {
	column  string
	records []types.Record
	parsed  []civil.Date
	ok      []bool
}

// NewIndex builds an index over records keyed on column.
func NewIndex(records []types.Record, column string) *Index {
	idx := &Index{
		column:  column,
		records: records,
		parsed:  make([]civil.Date, len(records)),
		ok:      make([]bool, len(records)),
	}
	for i, r := range records {
		idx.parsed[i], idx.ok[i] = dates.Parse(r.Lookup(column))
	}
	return idx
}

// Column is the date column the index was built on.
func (idx *Index) Column() string {
	return idx.column
}

// Len is the number of indexed records.
func (idx *Index) Len() int {
	return len(idx.records)
}

// Parsed is the number of records with a usable date.
func (idx *Index) Parsed() int {
	return lo.Count(idx.ok, true)
}

// Failures counts records whose date cell holds something that did not parse.
// Empty cells are not failures.
func (idx *Index) Failures() int {
	n := 0
	for i, r := range idx.records {
		if !idx.ok[i] && !blank(r.Lookup(idx.column)) {
			n++
		}
	}
	return n
}

func blank(v any) bool {
	switch strings.TrimSpace(types.Stringify(v)) {
	case "", "nan", "NaN":
		return true
	}
	return false
}

// Earliest returns the smallest parsed date.
func (idx *Index) Earliest() (civil.Date, bool) {
	var min civil.Date
	found := false
	for i, d := range idx.parsed {
		if !idx.ok[i] {
			continue
		}
		if !found || d.Before(min) {
			min, found = d, true
		}
	}
	return min, found
}

// UniqueDates returns the distinct parsed dates in ascending order.
func (idx *Index) UniqueDates() []civil.Date {
	var out []civil.Date
	for i, d := range idx.parsed {
		if idx.ok[i] {
			out = append(out, d)
		}
	}
	slices.SortFunc(out, compare)
	return slices.Compact(out)
}

// Exact returns the records dated d, in input order.
func (idx *Index) Exact(d civil.Date) []types.Record {
	return idx.between(d, d)
}

// MonthToDate returns the records dated from the first day of the month of
// the earliest date in the set through d inclusive. It is empty when no date
// parses or d is before that first day.
func (idx *Index) MonthToDate(d civil.Date) []types.Record {
	start, end, ok := idx.Window(d)
	if !ok {
		return nil
	}
	return idx.between(start, end)
}

// Window returns the inclusive month-to-date bounds for d.
func (idx *Index) Window(d civil.Date) (start, end civil.Date, ok bool) {
	earliest, ok := idx.Earliest()
	if !ok {
		return civil.Date{}, civil.Date{}, false
	}
	return dates.FirstOfMonth(earliest), d, true
}

func (idx *Index) between(start, end civil.Date) []types.Record {
	var out []types.Record
	for i, r := range idx.records {
		if !idx.ok[i] {
			continue
		}
		d := idx.parsed[i]
		if d.Before(start) || d.After(end) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func compare(a, b civil.Date) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}

// Exact returns the records of records whose column parses to d.
func Exact(records []types.Record, column string, d civil.Date) []types.Record {
	return NewIndex(records, column).Exact(d)
}

// MonthToDate returns the records of records inside the month-to-date window
// ending on d.
func MonthToDate(records []types.Record, column string, d civil.Date) []types.Record {
	return NewIndex(records, column).MonthToDate(d)
}
