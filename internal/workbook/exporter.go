package workbook

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/nconklindev/qareport/internal/types"

	"github.com/xuri/excelize/v2"
)

// Hint is the only styling decision the report tables make about a row.
type Hint int

const (
	HintBody Hint = iota
	HintHeader
	HintGrandTotal
)

// RowHints marks the header row and the Grand Total row of t. A table with
// more than one data row also has its last row styled as a total.
func RowHints(t types.ReportTable) []Hint {
	hints := make([]Hint, len(t.Rows))
	for i, row := range t.Rows {
		switch {
		case i == 0:
			hints[i] = HintHeader
		case isGrandTotal(row), i == len(t.Rows)-1 && len(t.Rows) > 2:
			hints[i] = HintGrandTotal
		}
	}
	return hints
}

func isGrandTotal(row []any) bool {
	if len(row) == 0 {
		return false
	}
	s, ok := row[0].(string)
	return ok && strings.EqualFold(strings.TrimSpace(s), types.GrandTotal)
}

// Meta is the text wrapped around the tables. With an empty Heading the
// workbook holds the tables only.
type Meta struct {
	Heading string
}

const (
	SheetName      = "QA_Report"
	highlightColor = "BDD7EE"
	maxColWidth    = 50
)

// Exporter writes report tables into a single styled sheet.
type Exporter struct {
	f      *excelize.File
	styles map[Hint]int
	plain  int
	title  int
	widths map[int]int
}

func NewExporter() *Exporter {
	return &Exporter{}
}

// Export renders tables top to bottom with a blank row after each and
// returns the .xlsx bytes.
func (e *Exporter) Export(tables []types.ReportTable, meta Meta) ([]byte, error) {
	e.f = excelize.NewFile()
	defer e.f.Close()
	e.widths = make(map[int]int)

	if err := e.f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, err
	}
	if err := e.buildStyles(); err != nil {
		return nil, fmt.Errorf("create styles: %w", err)
	}

	row := 1
	if meta.Heading != "" {
		if err := e.text(row, "Hi Team,", e.plain); err != nil {
			return nil, err
		}
		row += 2
		if err := e.text(row, "PFB "+meta.Heading, e.title); err != nil {
			return nil, err
		}
		row += 2
	}

	for _, t := range tables {
		next, err := e.table(t, row)
		if err != nil {
			return nil, fmt.Errorf("write %s: %w", t.Title, err)
		}
		row = next + 1
	}

	if meta.Heading != "" {
		if err := e.text(row, "Best regards,", e.plain); err != nil {
			return nil, err
		}
	}

	if err := e.fitColumns(); err != nil {
		return nil, err
	}

	buf, err := e.f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *Exporter) buildStyles() error {
	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	center := &excelize.Alignment{Horizontal: "center", Vertical: "center"}
	highlight := &excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{highlightColor}, Pattern: 1},
		Alignment: center,
		Border:    border,
	}

	body, err := e.f.NewStyle(&excelize.Style{Alignment: center, Border: border})
	if err != nil {
		return err
	}
	hl, err := e.f.NewStyle(highlight)
	if err != nil {
		return err
	}
	e.styles = map[Hint]int{HintBody: body, HintHeader: hl, HintGrandTotal: hl}

	if e.plain, err = e.f.NewStyle(&excelize.Style{Font: &excelize.Font{Size: 11}}); err != nil {
		return err
	}
	e.title, err = e.f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 12}})
	return err
}

func (e *Exporter) text(row int, value string, style int) error {
	cell, _ := excelize.CoordinatesToCellName(1, row)
	if err := e.f.SetCellValue(SheetName, cell, value); err != nil {
		return err
	}
	e.track(1, value)
	return e.f.SetCellStyle(SheetName, cell, cell, style)
}

// table writes t starting at row and returns the row after it.
func (e *Exporter) table(t types.ReportTable, row int) (int, error) {
	hints := RowHints(t)
	for i, cells := range t.Rows {
		for j, v := range cells {
			cell, err := excelize.CoordinatesToCellName(j+1, row)
			if err != nil {
				return 0, err
			}
			if p, ok := v.(types.Percent); ok {
				v = p.String()
			}
			if err := e.f.SetCellValue(SheetName, cell, v); err != nil {
				return 0, err
			}
			if err := e.f.SetCellStyle(SheetName, cell, cell, e.styles[hints[i]]); err != nil {
				return 0, err
			}
			e.track(j+1, types.Stringify(v))
		}
		row++
	}
	return row, nil
}

func (e *Exporter) track(col int, s string) {
	e.widths[col] = max(e.widths[col], utf8.RuneCountInString(s))
}

func (e *Exporter) fitColumns() error {
	for col, w := range e.widths {
		name, err := excelize.ColumnNumberToName(col)
		if err != nil {
			return err
		}
		if err := e.f.SetColWidth(SheetName, name, name, float64(min(w+3, maxColWidth))); err != nil {
			return err
		}
	}
	return nil
}
