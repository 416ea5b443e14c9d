// Package clean normalizes the categorical columns the reports group by.
package clean

import (
	"strings"

	"github.com/nconklindev/qareport/internal/types"

	"github.com/samber/lo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Normalize is the comparison key for categorical values: trimmed and lower
// cased, "" for nil. Never shown to the user.
func Normalize(v any) string {
	if v == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(types.Stringify(v)))
}

// Status is the normalized Lead Status of r.
func Status(r types.Record) string {
	return Normalize(r.Lookup(types.ColLeadStatus))
}

// IsBlank reports absent, whitespace-only and "-" values.
func IsBlank(v any) bool {
	if v == nil {
		return true
	}
	s := strings.TrimSpace(types.Stringify(v))
	return s == "" || s == "-"
}

// TitleCase upper-cases the first letter of each word and lower-cases the rest.
func TitleCase(s string) string {
	return cases.Title(language.Und).String(s)
}

// Record returns a cleaned copy of r. Lead Status becomes "" when blank so
// that it counts as unknown; Agent Name and DQ Reason become "(Blank)".
func Record(r types.Record) types.Record {
	out := r.Clone()
	for _, col := range []string{types.ColLeadStatus, types.ColAgentName, types.ColDQReason} {
		v := out.Lookup(col)
		if IsBlank(v) {
			if col == types.ColLeadStatus {
				out = out.With(col, "")
			} else {
				out = out.With(col, types.Blank)
			}
			continue
		}
		s := strings.TrimSpace(types.Stringify(v))
		if col == types.ColDQReason {
			s = TitleCase(s)
		}
		out = out.With(col, s)
	}
	return out
}

// Records cleans every record.
func Records(records []types.Record) []types.Record {
	return lo.Map(records, func(r types.Record, _ int) types.Record {
		return Record(r)
	})
}

// Tag is the grouping label for an optional tag column: trimmed, or "(Blank)".
func Tag(r types.Record, col string) string {
	v := r.Lookup(col)
	if v == nil {
		return types.Blank
	}
	s := strings.TrimSpace(types.Stringify(v))
	if s == "" {
		return types.Blank
	}
	return s
}

// OptionalColumns reports which of cols exist in headers.
func OptionalColumns(headers types.Headers, cols []string) map[string]bool {
	return lo.SliceToMap(cols, func(c string) (string, bool) {
		return c, headers.Contains(c)
	})
}
