package validate

import (
	"sort"
	"strings"

	"github.com/nconklindev/qareport/internal/types"

	"github.com/samber/lo"
)

// Columns fails when any required column is missing from headers.
func Columns(headers types.Headers, required []string) error {
	missing := lo.Reject(required, func(col string, _ int) bool {
		return headers.Contains(col)
	})
	if len(missing) > 0 {
		return types.Invalid(types.ErrMissingColumns, "Missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Statuses fails when any non-empty normalized Lead Status is outside the
// accepted set. It runs after the correction step: anything still wrong was
// declined by the user.
func (v *Validator) Statuses(records []types.Record) error {
	accepted := lo.Map(v.Accepted, func(s string, _ int) string {
		return strings.ToLower(strings.TrimSpace(s))
	})

	var bad []string
	seen := make(map[string]bool)
	for _, r := range records {
		raw := r.Lookup(types.ColLeadStatus)
		if raw == nil {
			continue
		}
		s := strings.ToLower(strings.TrimSpace(types.Stringify(raw)))
		if s == "" || seen[s] || lo.Contains(accepted, s) {
			continue
		}
		seen[s] = true
		bad = append(bad, s)
	}
	if len(bad) == 0 {
		return nil
	}
	sort.Strings(bad)
	return types.Invalid(types.ErrInvalidStatus, "Invalid Lead Status values: %s. Allowed values: %s",
		strings.Join(bad, ", "), strings.Join(v.Accepted, ", "))
}

// DQReasons counts distinct DQ reasons among disqualified records.
func DQReasons(records []types.Record) int {
	reasons := make(map[string]struct{})
	for _, r := range records {
		if strings.ToLower(strings.TrimSpace(r.String(types.ColLeadStatus))) != "disqualified" {
			continue
		}
		reason := strings.TrimSpace(r.String(types.ColDQReason))
		if reason == "" || reason == "-" || reason == types.Blank {
			continue
		}
		reasons[reason] = struct{}{}
	}
	return len(reasons)
}
