// Package ranking orders match results and pages through them.
package ranking

import (
	"cmp"
	"errors"
	"slices"

	"github.com/spigell/jobrank/internal/scoring"
)

// ErrInvalidPage is returned for page sizes or indexes below 1.
var ErrInvalidPage = errors.New("invalid page")

// Rank returns results sorted by final score, highest first, cut to topK.
// Ties keep their input order. topK <= 0 keeps everything. The input is not
// modified.
func Rank(results []scoring.MatchResult, topK int) []scoring.MatchResult {
	ranked := slices.Clone(results)
	slices.SortStableFunc(ranked, func(a, b scoring.MatchResult) int {
		return cmp.Compare(b.FinalScore, a.FinalScore)
	})
	if topK > 0 && topK < len(ranked) {
		ranked = ranked[:topK]
	}
	return ranked
}

// FilterMinScore keeps results scoring at least minScore, in order.
func FilterMinScore(results []scoring.MatchResult, minScore float64) []scoring.MatchResult {
	kept := make([]scoring.MatchResult, 0, len(results))
	for _, r := range results {
		if r.FinalScore >= minScore {
			kept = append(kept, r)
		}
	}
	return kept
}

// Ranked is an immutable ranked and filtered result list. Reads are
// idempotent and safe for concurrent use.
type Ranked struct {
	items []scoring.MatchResult
}

func New(results []scoring.MatchResult, minScore float64) *Ranked {
	return &Ranked{items: FilterMinScore(Rank(results, 0), minScore)}
}

func (r *Ranked) Len() int {
	if r == nil {
		return 0
	}
	return len(r.items)
}

// All returns a copy of the full ranked list.
func (r *Ranked) All() []scoring.MatchResult {
	if r == nil {
		return nil
	}
	return slices.Clone(r.items)
}

// Top returns the first k results. k <= 0 returns all.
func (r *Ranked) Top(k int) []scoring.MatchResult {
	if r == nil {
		return nil
	}
	if k <= 0 || k > len(r.items) {
		k = len(r.items)
	}
	return slices.Clone(r.items[:k])
}

// Pages is the number of pages of the given size.
func (r *Ranked) Pages(size int) int {
	if size < 1 || r.Len() == 0 {
		return 0
	}
	return (r.Len() + size - 1) / size
}

// Page returns the 1-based page index of the given size. A page past the end
// is empty.
func (r *Ranked) Page(index, size int) ([]scoring.MatchResult, error) {
	if index < 1 || size < 1 {
		return nil, ErrInvalidPage
	}
	start := (index - 1) * size
	if start >= r.Len() {
		return []scoring.MatchResult{}, nil
	}
	end := min(start+size, r.Len())
	return slices.Clone(r.items[start:end]), nil
}
