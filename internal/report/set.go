package report

import (
	"github.com/nconklindev/qareport/internal/types"
)

// Input carries the three record sets the reports are built from.
type Input struct {
	Date []types.Record // selected day
	MTD  []types.Record // month-to-date window
	All  []types.Record // every cleaned record, for the tag reports

	Segments bool
	Personas bool
}

// Set holds generated tables by title.
type Set struct {
	tables map[string]types.ReportTable
}

// Generate builds the core tables and any optional ones requested.
func Generate(in Input) *Set {
	s := &Set{tables: map[string]types.ReportTable{
		TitleCombined: Combined(in.Date, in.MTD),
		TitleAgents:   Agents(in.Date),
		TitleReasons:  DQReasons(in.Date),
	}}
	if in.Segments {
		s.tables[TitleSegments] = Segments(in.All)
	}
	if in.Personas {
		s.tables[TitlePersonas] = Personas(in.All)
	}
	return s
}

// Get returns the table with title.
func (s *Set) Get(title string) (types.ReportTable, bool) {
	t, ok := s.tables[title]
	return t, ok
}

// Len is the number of tables in the set.
func (s *Set) Len() int {
	return len(s.tables)
}

// Ordered returns the tables in workbook order: summary, optional tag
// reports, then the agent and reason breakdowns.
func (s *Set) Ordered() []types.ReportTable {
	var out []types.ReportTable
	for _, title := range []string{TitleCombined, TitleSegments, TitlePersonas, TitleAgents, TitleReasons} {
		if t, ok := s.tables[title]; ok {
			out = append(out, t)
		}
	}
	return out
}
