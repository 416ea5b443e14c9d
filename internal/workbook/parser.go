// Package workbook reads lead workbooks into records and writes the finished
// report workbook.
package workbook

import (
	"fmt"
	"strings"

	"github.com/nconklindev/qareport/internal/types"

	"github.com/samber/lo"
)

// sheetOrder is the order sheets are parsed and their headers merged.
var sheetOrder = []types.Sheet{types.SheetQualified, types.SheetDisqualified}

// Parse turns the found sheets into one header list and one record list.
// It fails when neither sheet exists or neither holds a data row.
func Parse(sheets Sheets) (types.Headers, []types.Record, error) {
	if len(sheets) == 0 {
		return nil, nil, types.Invalid(types.ErrNoSheets,
			`Required sheets not found. File must contain at least one sheet named "Qualified" or "Disqualified" (case-insensitive)`)
	}

	var all []string
	var records []types.Record
	for _, kind := range sheetOrder {
		rows, ok := sheets[kind]
		if !ok {
			continue
		}
		headers, recs := parseSheet(kind, rows)
		all = append(all, headers...)
		records = append(records, recs...)
	}

	if len(records) == 0 {
		return nil, nil, types.Invalid(types.ErrNoData, "No valid data records found in any sheet")
	}

	unique := lo.UniqBy(all, strings.ToLower)
	return types.Headers(unique), records, nil
}

// parseSheet uses the first non-blank row as headers. Row numbers are the
// 1-based positions in the sheet.
func parseSheet(kind types.Sheet, rows [][]string) ([]string, []types.Record) {
	headerIdx := findHeaderRow(rows)
	if headerIdx == -1 {
		return nil, nil
	}

	width := 0
	for _, row := range rows[headerIdx:] {
		width = max(width, len(row))
	}

	headers := make([]string, width)
	for i := range headers {
		h := ""
		if i < len(rows[headerIdx]) {
			h = strings.TrimSpace(rows[headerIdx][i])
		}
		if h == "" {
			h = fmt.Sprintf("Column_%d", i+1)
		}
		headers[i] = h
	}

	// Rows count non-blank lines only: the header is row 1, data starts at 2.
	var records []types.Record
	n := 1
	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		if isBlankRow(row) {
			continue
		}
		n++
		cells := make(map[string]any, width)
		for col, h := range headers {
			var v any
			if col < len(row) && row[col] != "" {
				v = row[col]
			}
			cells[h] = v
		}
		records = append(records, types.NewRecord(kind, n, cells))
	}
	return headers, records
}

// findHeaderRow returns the index of the first row with any content.
func findHeaderRow(rows [][]string) int {
	for i, row := range rows {
		if !isBlankRow(row) {
			return i
		}
	}
	return -1
}

func isBlankRow(row []string) bool {
	return lo.EveryBy(row, func(cell string) bool {
		return strings.TrimSpace(cell) == ""
	})
}
