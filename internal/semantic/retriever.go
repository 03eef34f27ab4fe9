// Package semantic scores postings by embedding similarity to a candidate
// profile. An index lives for one search and is never shared between searches.
package semantic

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/jobrank/internal/extract"
	"github.com/spigell/jobrank/internal/jobs"
)

const (
	// NeutralScore is used for every posting when no semantic signal exists.
	NeutralScore = 0.5
	// MaxQueryRunes bounds the profile text sent to the encoder.
	MaxQueryRunes = 2000
)

// ErrUnavailable means no encoder is configured or the index could not be
// built or queried. Callers substitute NeutralScore.
var ErrUnavailable = errors.New("semantic retrieval unavailable")

// Encoder turns texts into embedding vectors, one per input, in input order.
type Encoder interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
	Version() string
}

// Retriever builds per-search indexes. A Retriever without an encoder is
// valid and reports Available() == false.
type Retriever struct {
	encoder Encoder
	logger  *zap.Logger
}

func NewRetriever(encoder Encoder, logger *zap.Logger) *Retriever {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retriever{encoder: encoder, logger: logger}
}

// Available is the capability flag resolved at construction.
func (r *Retriever) Available() bool {
	return r != nil && r.encoder != nil
}

// Version names the encoder model, or "" when unavailable.
func (r *Retriever) Version() string {
	if !r.Available() {
		return ""
	}
	return r.encoder.Version()
}

// Index embeds one document per posting.
func (r *Retriever) Index(ctx context.Context, postings []jobs.Posting) (*Index, error) {
	if !r.Available() {
		return nil, ErrUnavailable
	}

	idx := &Index{encoder: r.encoder, logger: r.logger}
	if len(postings) == 0 {
		return idx, nil
	}

	docs := make([]string, len(postings))
	idx.ids = make([]string, len(postings))
	for i, p := range postings {
		docs[i] = Document(p)
		idx.ids[i] = p.ID
	}

	start := time.Now()
	vectors, err := r.encoder.Encode(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("%w: encode documents: %w", ErrUnavailable, err)
	}
	if len(vectors) != len(docs) {
		return nil, fmt.Errorf("%w: encoder returned %d vectors for %d documents", ErrUnavailable, len(vectors), len(docs))
	}
	idx.vectors = vectors

	r.logger.Debug("semantic index built",
		zap.Int("documents", len(docs)),
		zap.String("model", r.encoder.Version()),
		zap.Duration("elapsed", time.Since(start)),
	)

	return idx, nil
}

// Index holds the document vectors of one search.
type Index struct {
	encoder Encoder
	logger  *zap.Logger
	ids     []string
	vectors [][]float32
}

func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.ids)
}

// Score returns similarities to query for the topN closest postings, divided
// by the best similarity so the top match is 1.0. topN <= 0 means all.
// Negative similarities count as 0.
func (ix *Index) Score(ctx context.Context, query string, topN int) (map[string]float64, error) {
	if ix == nil {
		return nil, ErrUnavailable
	}
	if ix.Len() == 0 {
		return map[string]float64{}, nil
	}

	query = extract.Truncate(strings.TrimSpace(query), MaxQueryRunes)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", ErrUnavailable)
	}

	vectors, err := ix.encoder.Encode(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("%w: encode query: %w", ErrUnavailable, err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("%w: encoder returned %d vectors for the query", ErrUnavailable, len(vectors))
	}

	type hit struct {
		id    string
		score float64
	}
	hits := make([]hit, 0, len(ix.ids))
	for i, id := range ix.ids {
		hits = append(hits, hit{id: id, score: max(Cosine(vectors[0], ix.vectors[i]), 0)})
	}
	slices.SortStableFunc(hits, func(a, b hit) int {
		return cmp.Compare(b.score, a.score)
	})
	if topN > 0 && topN < len(hits) {
		hits = hits[:topN]
	}

	best := hits[0].score
	if best <= 0 {
		return nil, fmt.Errorf("%w: no positive similarity", ErrUnavailable)
	}

	scores := make(map[string]float64, len(hits))
	for _, h := range hits {
		scores[h.id] = h.score / best
	}

	return scores, nil
}

// Cosine returns the cosine similarity of a and b. Mismatched or zero-length
// vectors yield 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Document renders the text embedded for a posting.
func Document(p jobs.Posting) string {
	salary := p.Salary
	if salary == "" {
		salary = jobs.NotSpecified
	}
	lines := []string{
		"Job Title: " + p.Title,
		"Company: " + p.Company,
		"Location: " + p.Location,
		"Description: " + p.Description,
		"Required Skills: " + strings.Join(p.RequiredSkills, ", "),
		"Experience Required: " + strconv.Itoa(p.ExperienceYears) + " years",
		"Salary: " + salary,
	}
	return strings.Join(lines, "\n")
}
