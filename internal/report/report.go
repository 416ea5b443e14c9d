// Package report turns filtered record sets into the QA summary tables.
// Every function is pure; rows with equal sort keys keep the order in which
// their group first appeared.
package report

import (
	"cmp"
	"slices"

	"github.com/nconklindev/qareport/internal/clean"
	"github.com/nconklindev/qareport/internal/types"
)

// Table titles, also used as keys in a Set.
const (
	TitleCombined = "Combined QA Report"
	TitleAgents   = "Agent Wise Summary"
	TitleReasons  = "Primary Reason Disqualified"
	TitleSegments = "Segment Wise Qualified Count"
	TitlePersonas = "JT Persona Wise Qualified Count"
)

const (
	statusQualified    = "qualified"
	statusDisqualified = "disqualified"
)

// Combined is the one-row MTD and daily PRE QA / POST QA summary.
func Combined(dateRecords, mtdRecords []types.Record) types.ReportTable {
	return types.ReportTable{
		Title: TitleCombined,
		Rows: [][]any{
			{"MTD PRE QA", "MTD POST QA", "PRE QA", "POST QA"},
			{len(mtdRecords), countStatus(mtdRecords, statusQualified), len(dateRecords), countStatus(dateRecords, statusQualified)},
		},
	}
}

func countStatus(records []types.Record, status string) int {
	n := 0
	for _, r := range records {
		if clean.Status(r) == status {
			n++
		}
	}
	return n
}

// groups counts keyed values while remembering first-seen order.
type groups[V any] struct {
	order []string
	data  map[string]*V
}

func newGroups[V any]() *groups[V] {
	return &groups[V]{data: make(map[string]*V)}
}

func (g *groups[V]) get(key string) *V {
	v, ok := g.data[key]
	if !ok {
		v = new(V)
		g.data[key] = v
		g.order = append(g.order, key)
	}
	return v
}

type agentCounts struct {
	qualified, disqualified int
}

type agentRow struct {
	name                           string
	disqualified, qualified, total int
	rate                           types.Percent
}

// Agents breaks the day's records down by agent. Records with a status other
// than Qualified or Disqualified are not counted; an agent with none of
// either is left out. Rows sort by error rate, highest first.
func Agents(records []types.Record) types.ReportTable {
	g := newGroups[agentCounts]()
	for _, r := range records {
		switch clean.Status(r) {
		case statusQualified:
			g.get(agentName(r)).qualified++
		case statusDisqualified:
			g.get(agentName(r)).disqualified++
		}
	}

	rows := make([]agentRow, 0, len(g.order))
	for _, name := range g.order {
		c := g.data[name]
		total := c.qualified + c.disqualified
		rows = append(rows, agentRow{
			name:         name,
			disqualified: c.disqualified,
			qualified:    c.qualified,
			total:        total,
			rate:         types.Ratio(c.disqualified, total),
		})
	}
	slices.SortStableFunc(rows, func(a, b agentRow) int {
		return b.rate.Value.Cmp(a.rate.Value)
	})

	t := types.ReportTable{
		Title: TitleAgents,
		Rows:  [][]any{{"Agent Name", "Disqualified", "Qualified", "Grand Total", "Error%"}},
	}
	var sumDQ, sumQ, sumTotal int
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.name, r.disqualified, r.qualified, r.total, r.rate})
		sumDQ += r.disqualified
		sumQ += r.qualified
		sumTotal += r.total
	}
	if len(rows) > 0 {
		t.Rows = append(t.Rows, []any{types.GrandTotal, sumDQ, sumQ, sumTotal, types.Ratio(sumDQ, sumTotal)})
	}
	return t
}

func agentName(r types.Record) string {
	if !r.Has(types.ColAgentName) {
		return types.Blank
	}
	return r.String(types.ColAgentName)
}

type reasonRow struct {
	reason string
	count  int
	rate   types.Percent
}

// DQReasons counts the day's disqualified records by DQ Reason. The error
// rate is over all records of the day, whatever their status.
func DQReasons(records []types.Record) types.ReportTable {
	g := newGroups[int]()
	for _, r := range records {
		if clean.Status(r) != statusDisqualified {
			continue
		}
		reason := types.Blank
		if r.Has(types.ColDQReason) {
			reason = r.String(types.ColDQReason)
		}
		*g.get(reason)++
	}

	total := len(records)
	rows := make([]reasonRow, 0, len(g.order))
	for _, reason := range g.order {
		n := *g.data[reason]
		rows = append(rows, reasonRow{reason: reason, count: n, rate: types.Ratio(n, total)})
	}
	slices.SortStableFunc(rows, func(a, b reasonRow) int {
		return b.rate.Value.Cmp(a.rate.Value)
	})

	t := types.ReportTable{
		Title: TitleReasons,
		Rows:  [][]any{{"DQ Reason", "Disqualified", "Error%"}},
	}
	sum := 0
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.reason, r.count, r.rate})
		sum += r.count
	}
	if len(rows) > 0 {
		t.Rows = append(t.Rows, []any{types.GrandTotal, sum, types.Ratio(sum, total)})
	}
	return t
}

// Segments counts every qualified record by Segment Tagging.
func Segments(records []types.Record) types.ReportTable {
	return tagCounts(records, types.ColSegment, TitleSegments, "Segment Wise")
}

// Personas counts every qualified record by JT Persona Tagging.
func Personas(records []types.Record) types.ReportTable {
	return tagCounts(records, types.ColPersona, TitlePersonas, "JT Persona Tagging")
}

type tagRow struct {
	tag   string
	count int
}

func tagCounts(records []types.Record, column, title, label string) types.ReportTable {
	g := newGroups[int]()
	for _, r := range records {
		if clean.Status(r) == statusQualified {
			*g.get(clean.Tag(r, column))++
		}
	}

	rows := make([]tagRow, 0, len(g.order))
	for _, tag := range g.order {
		rows = append(rows, tagRow{tag: tag, count: *g.data[tag]})
	}
	slices.SortStableFunc(rows, func(a, b tagRow) int {
		return cmp.Compare(b.count, a.count)
	})

	t := types.ReportTable{
		Title: title,
		Rows:  [][]any{{label, "Qualified Count"}},
	}
	sum := 0
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.tag, r.count})
		sum += r.count
	}
	if len(rows) > 0 {
		t.Rows = append(t.Rows, []any{types.GrandTotal, sum})
	}
	return t
}
