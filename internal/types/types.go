package types

import (
	"maps"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// Well-known column names.
const (
	ColLeadStatus = "Lead Status"
	ColAgentName  = "Agent Name"
	ColDQReason   = "DQ Reason"
	ColSegment    = "Segment Tagging"
	ColPersona    = "JT Persona Tagging"
	ColAuditDate  = "Audit Date"
)

const (
	Blank      = "(Blank)"
	GrandTotal = "Grand Total"
)

// Sheet identifies which workbook sheet a record came from.
type Sheet string

const (
	SheetQualified    Sheet = "Qualified"
	SheetDisqualified Sheet = "Disqualified"
)

// Record is one data row. Cells are keyed by the header as typed in the
// workbook; values are nil, string, float64, int, time.Time or civil.Date.
// A Record is never modified in place: With returns a copy.
type Record struct {
	Sheet Sheet
	Row   int
	cells map[string]any
}

// NewRecord copies cells so the caller keeps no handle on the record's state.
func NewRecord(sheet Sheet, row int, cells map[string]any) Record {
	return Record{Sheet: sheet, Row: row, cells: maps.Clone(cells)}
}

// Has reports whether the record carries the column (exact or case-insensitive).
func (r Record) Has(col string) bool {
	_, ok := r.key(col)
	return ok
}

// Get returns the value stored under exactly col.
func (r Record) Get(col string) (any, bool) {
	v, ok := r.cells[col]
	return v, ok
}

// Lookup is Get with a case-insensitive fallback on the column name.
func (r Record) Lookup(col string) any {
	k, ok := r.key(col)
	if !ok {
		return nil
	}
	return r.cells[k]
}

// String returns the looked-up value as a string, "" when absent.
func (r Record) String(col string) string {
	v := r.Lookup(col)
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return Stringify(v)
}

// With returns a copy of r with col set to v. When r already holds the column
// under a different case, that key is replaced.
func (r Record) With(col string, v any) Record {
	out := Record{Sheet: r.Sheet, Row: r.Row, cells: maps.Clone(r.cells)}
	if out.cells == nil {
		out.cells = make(map[string]any, 1)
	}
	if k, ok := r.key(col); ok {
		col = k
	}
	out.cells[col] = v
	return out
}

// Clone returns a record sharing no state with r.
func (r Record) Clone() Record {
	return Record{Sheet: r.Sheet, Row: r.Row, cells: maps.Clone(r.cells)}
}

// Columns lists the record's column names in sorted order.
func (r Record) Columns() []string {
	return slices.Sorted(maps.Keys(r.cells))
}

func (r Record) key(col string) (string, bool) {
	if _, ok := r.cells[col]; ok {
		return col, true
	}
	for k := range r.cells {
		if strings.EqualFold(k, col) {
			return k, true
		}
	}
	return "", false
}

// Headers is the ordered, case-insensitively unique list of column names.
type Headers []string

// Contains reports a case-insensitive match.
func (h Headers) Contains(col string) bool {
	_, ok := h.Find(col)
	return ok
}

// Find returns the header as typed that matches col case-insensitively.
func (h Headers) Find(col string) (string, bool) {
	for _, name := range h {
		if strings.EqualFold(name, col) {
			return name, true
		}
	}
	return "", false
}

// CorrectionMap maps an exact original status to its accepted replacement.
type CorrectionMap map[string]string

// Issue describes one invalid Lead Status value and how it could be fixed.
type Issue struct {
	Original       string
	Count          int
	AutoSuggestion string
	FuzzyMatches   []string
	ValidOptions   []string
}

// Percent is an unrounded fraction that renders as a whole percentage.
type Percent struct {
	Value decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// Ratio builds num/den, zero when den is zero.
func Ratio(num, den int) Percent {
	if den == 0 {
		return Percent{Value: decimal.Zero}
	}
	return Percent{Value: decimal.NewFromInt(int64(num)).Div(decimal.NewFromInt(int64(den)))}
}

func (p Percent) String() string {
	return p.Value.Mul(hundred).RoundBank(0).String() + "%"
}

// ReportTable is a header row, data rows and, for breakdown tables, a final
// Grand Total row. Cells are int, string or Percent.
type ReportTable struct {
	Title string
	Rows  [][]any
}

// Header returns row 0.
func (t ReportTable) Header() []any {
	if len(t.Rows) == 0 {
		return nil
	}
	return t.Rows[0]
}

// Body returns the rows between the header and the Grand Total row.
func (t ReportTable) Body() [][]any {
	if len(t.Rows) < 2 {
		return nil
	}
	if _, ok := t.GrandTotal(); ok {
		return t.Rows[1 : len(t.Rows)-1]
	}
	return t.Rows[1:]
}

// GrandTotal returns the last row when it is labelled Grand Total.
func (t ReportTable) GrandTotal() ([]any, bool) {
	if len(t.Rows) < 2 {
		return nil, false
	}
	last := t.Rows[len(t.Rows)-1]
	if len(last) > 0 {
		if s, ok := last[0].(string); ok && s == GrandTotal {
			return last, true
		}
	}
	return nil, false
}

// Strings renders every cell for display.
func (t ReportTable) Strings() [][]string {
	out := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = make([]string, len(row))
		for j, c := range row {
			out[i][j] = Stringify(c)
		}
	}
	return out
}
