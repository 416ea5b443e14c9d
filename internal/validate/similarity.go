package validate

import (
	"cmp"
	"slices"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Scorer rates how alike two strings are, from 0 (nothing shared) to 1.
type Scorer interface {
	Score(a, b string) float64
}

// SequenceRatio is the Ratcliff/Obershelp ratio 2*M/T over characters.
type SequenceRatio struct{}

func (SequenceRatio) Score(a, b string) float64 {
	return difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, "")).Ratio()
}

type scored struct {
	value string
	score float64
}

// closeMatches returns up to n candidates scoring at least cutoff against
// word, best first; equal scores order by candidate descending.
func closeMatches(s Scorer, word string, candidates []string, n int, cutoff float64) []string {
	if n <= 0 {
		return nil
	}
	var hits []scored
	for _, c := range candidates {
		if sc := s.Score(c, word); sc >= cutoff {
			hits = append(hits, scored{value: c, score: sc})
		}
	}
	slices.SortFunc(hits, func(a, b scored) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		return cmp.Compare(b.value, a.value)
	})
	if len(hits) > n {
		hits = hits[:n]
	}
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.value
	}
	return out
}
