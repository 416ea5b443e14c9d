// Package validate finds Lead Status values outside the accepted set,
// suggests fixes and applies the fixes a user picked.
package validate

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/nconklindev/qareport/internal/types"

	"github.com/samber/lo"
)

const (
	Qualified    = "Qualified"
	Disqualified = "Disqualified"
)

// The prefix lists are matched literally: "Disposed" starts with "dis" and is
// therefore suggested as Disqualified.
var (
	qualifiedPatterns    = []string{"qualified", "qualify", "qual", "q"}
	disqualifiedPatterns = []string{"disqualified", "disqualify", "disqual", "dq", "dis"}
)

// Validator checks Lead Status values against Accepted.
type Validator struct {
	Accepted []string
	Scorer   Scorer
	Cutoff   float64
	MaxFuzzy int
}

// New returns a Validator using the sequence ratio with a 0.6 cutoff and at
// most two fuzzy suggestions.
func New(accepted []string) *Validator {
	return &Validator{
		Accepted: slices.Clone(accepted),
		Scorer:   SequenceRatio{},
		Cutoff:   0.6,
		MaxFuzzy: 2,
	}
}

// AutoSuggest applies the prefix rule. It reports false when no rule matches
// or the suggestion would not change the value.
func (v *Validator) AutoSuggest(value string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(value))
	if s == "" {
		return "", false
	}

	suggestion := ""
	switch {
	case matchesAny(s, qualifiedPatterns):
		suggestion = Qualified
	case matchesAny(s, disqualifiedPatterns):
		suggestion = Disqualified
	default:
		return "", false
	}
	if suggestion == value || !slices.Contains(v.Accepted, suggestion) {
		return "", false
	}
	return suggestion, true
}

func matchesAny(s string, patterns []string) bool {
	return lo.SomeBy(patterns, func(p string) bool {
		return s == p || strings.HasPrefix(s, p)
	})
}

// CloseMatches returns the accepted values most similar to value.
func (v *Validator) CloseMatches(value string) []string {
	return closeMatches(v.Scorer, value, v.Accepted, v.MaxFuzzy, v.Cutoff)
}

// FindIssues groups records by their exact Lead Status and reports every
// value not in the accepted set, in first-seen order. Records without a
// Lead Status cell are not counted. The second result maps each value that
// has an auto-suggestion to it.
func (v *Validator) FindIssues(records []types.Record) ([]types.Issue, types.CorrectionMap) {
	var order []string
	counts := make(map[string]int)
	for _, r := range records {
		raw := r.Lookup(types.ColLeadStatus)
		if raw == nil {
			continue
		}
		status := types.Stringify(raw)
		if _, seen := counts[status]; !seen {
			order = append(order, status)
		}
		counts[status]++
	}

	var issues []types.Issue
	suggestions := make(types.CorrectionMap)
	for _, status := range order {
		if slices.Contains(v.Accepted, status) {
			continue
		}
		auto, _ := v.AutoSuggest(status)
		issues = append(issues, types.Issue{
			Original:       status,
			Count:          counts[status],
			AutoSuggestion: auto,
			FuzzyMatches:   v.CloseMatches(status),
			ValidOptions:   slices.Clone(v.Accepted),
		})
		if auto != "" {
			suggestions[status] = auto
		}
	}
	return issues, suggestions
}

// ApplyCorrections returns new records with Lead Status replaced wherever the
// exact original value is a key of corrections, and how many changed. An
// empty map returns the input untouched.
func ApplyCorrections(records []types.Record, corrections types.CorrectionMap) ([]types.Record, int) {
	if len(corrections) == 0 {
		return records, 0
	}

	out := make([]types.Record, len(records))
	changed := 0
	for i, r := range records {
		raw := r.Lookup(types.ColLeadStatus)
		if raw != nil {
			if repl, ok := corrections[types.Stringify(raw)]; ok {
				out[i] = r.With(types.ColLeadStatus, repl)
				changed++
				continue
			}
		}
		out[i] = r.Clone()
	}
	return out, changed
}

// Summary describes applied corrections, one per line, sorted by original.
func Summary(corrections types.CorrectionMap) string {
	if len(corrections) == 0 {
		return "No corrections were applied."
	}
	keys := lo.Keys(corrections)
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("Lead Status Corrections Applied:\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "  • '%s' → '%s'\n", k, corrections[k])
	}
	return b.String()
}
