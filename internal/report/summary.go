package report

import (
	"fmt"

	"github.com/nconklindev/qareport/internal/types"
)

// Counts are the headline figures for one window.
type Counts struct {
	Total        int
	Qualified    int
	Disqualified int
}

// QualRate is the qualified share as a percentage with one decimal, "0.0%"
// for an empty window.
func (c Counts) QualRate() string {
	if c.Total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(c.Qualified)/float64(c.Total)*100)
}

// Summary compares the selected day with the month-to-date window.
type Summary struct {
	Daily Counts
	MTD   Counts
}

// Summarize counts both windows.
func Summarize(dateRecords, mtdRecords []types.Record) Summary {
	return Summary{Daily: count(dateRecords), MTD: count(mtdRecords)}
}

func count(records []types.Record) Counts {
	return Counts{
		Total:        len(records),
		Qualified:    countStatus(records, statusQualified),
		Disqualified: countStatus(records, statusDisqualified),
	}
}
