// Package matching wires aggregation, enrichment, filtering, semantic
// retrieval, scoring and ranking into one search pipeline.
package matching

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/jobrank/internal/aggregator"
	"github.com/spigell/jobrank/internal/extract"
	"github.com/spigell/jobrank/internal/filtering"
	"github.com/spigell/jobrank/internal/jobs"
	"github.com/spigell/jobrank/internal/logger"
	"github.com/spigell/jobrank/internal/metrics"
	"github.com/spigell/jobrank/internal/ranking"
	"github.com/spigell/jobrank/internal/scoring"
	"github.com/spigell/jobrank/internal/semantic"
)

// Searcher is the aggregation step. *aggregator.Aggregator implements it.
type Searcher interface {
	Search(ctx context.Context, q aggregator.Query) ([]jobs.Posting, *aggregator.Report, error)
}

// Request is one search as issued by a caller.
type Request struct {
	Query    string
	Location string
	Limit    int
	// MinScore drops results below it before paging.
	MinScore float64
	// TopK bounds Result.Top. Zero or less means unbounded.
	TopK int
}

// Result is the outcome of one search.
type Result struct {
	SearchID string
	Ranked   *ranking.Ranked
	// Report is nil when postings were supplied by the caller.
	Report       *aggregator.Report
	SemanticUsed bool
	Fetched      int
	Filtered     int
	// Filters records each filter step applied before scoring.
	Filters filtering.Trace
	topK    int
}

// Top returns the best results, at most TopK of them.
func (r *Result) Top() []scoring.MatchResult {
	return r.Ranked.Top(r.topK)
}

// Engine runs searches. It keeps no per-search state.
type Engine struct {
	searcher  Searcher
	retriever *semantic.Retriever
	filters   []filtering.Filter
	filterCfg filtering.Config
	logger    *zap.Logger
}

func New(searcher Searcher, retriever *semantic.Retriever, filters []filtering.Filter, filterCfg filtering.Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if retriever == nil {
		retriever = semantic.NewRetriever(nil, logger)
	}
	return &Engine{
		searcher:  searcher,
		retriever: retriever,
		filters:   filters,
		filterCfg: filterCfg,
		logger:    logger,
	}
}

// Search fetches postings for the profile and ranks them. When no provider
// finds anything it returns aggregator.ErrNoResults together with a Result
// carrying the report.
func (e *Engine) Search(ctx context.Context, profile jobs.Profile, req Request) (*Result, error) {
	if e.searcher == nil {
		return nil, aggregator.ErrNoProviders
	}

	searchID := uuid.NewString()
	log := logger.WithSearchFields(e.logger, searchID, "")

	postings, report, err := e.searcher.Search(ctx, aggregator.Query{
		Text:     req.Query,
		Location: req.Location,
		Limit:    req.Limit,
		Skills:   profile.Skills,
	})
	if err != nil {
		if errors.Is(err, aggregator.ErrNoResults) {
			metrics.SearchesTotal.WithLabelValues("no_results").Inc()
			log.Info("no postings found", zap.Int("failed_providers", len(report.Failures())))
			return &Result{SearchID: searchID, Ranked: ranking.New(nil, 0), Report: report}, err
		}
		metrics.SearchesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("aggregate postings: %w", err)
	}

	result, err := e.rank(ctx, log, profile, postings, req)
	if err != nil {
		return nil, err
	}
	result.SearchID = searchID
	result.Report = report
	return result, nil
}

// Rank scores caller-supplied postings, such as the fallback dataset.
func (e *Engine) Rank(ctx context.Context, profile jobs.Profile, postings []jobs.Posting, req Request) (*Result, error) {
	searchID := uuid.NewString()
	result, err := e.rank(ctx, logger.WithSearchFields(e.logger, searchID, ""), profile, postings, req)
	if err != nil {
		return nil, err
	}
	result.SearchID = searchID
	return result, nil
}

func (e *Engine) rank(ctx context.Context, log *zap.Logger, profile jobs.Profile, postings []jobs.Posting, req Request) (*Result, error) {
	start := time.Now()

	vocab := extract.ForSkills(profile.Skills)
	enriched := make([]jobs.Posting, 0, len(postings))
	for _, p := range postings {
		enriched = append(enriched, Enrich(p, vocab))
	}

	cfg := e.filterCfg
	if cfg.Location == "" {
		cfg.Location = req.Location
	}
	filtered, trace, err := filtering.Run(ctx, &cfg, e.filters, jobs.NewPostings(enriched), log)
	if err != nil {
		metrics.SearchesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("filter postings: %w", err)
	}

	scores, used := e.semanticScores(ctx, log, profile, filtered.Items)
	scorer := scoring.NewScorer(scores, used)

	results := make([]scoring.MatchResult, 0, filtered.Len())
	for _, p := range filtered.Items {
		results = append(results, scorer.Score(profile, p))
	}
	ranked := ranking.New(results, req.MinScore)

	metrics.SearchesTotal.WithLabelValues("ok").Inc()
	log.Info("postings ranked",
		zap.Int("fetched", len(postings)),
		zap.Int("filtered", filtered.Len()),
		zap.Int("ranked", ranked.Len()),
		zap.Bool("semantic", used),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &Result{
		Ranked:       ranked,
		SemanticUsed: used,
		Fetched:      len(postings),
		Filtered:     filtered.Len(),
		Filters:      trace,
		topK:         req.TopK,
	}, nil
}

// semanticScores builds the per-search index. Any failure falls back to the
// neutral score and is only logged and counted.
func (e *Engine) semanticScores(ctx context.Context, log *zap.Logger, profile jobs.Profile, postings []jobs.Posting) (map[string]float64, bool) {
	if len(postings) == 0 {
		return nil, false
	}
	if !e.retriever.Available() {
		metrics.SemanticFallbacksTotal.WithLabelValues("not_configured").Inc()
		return nil, false
	}

	query := profile.Text()
	if query == "" {
		metrics.SemanticFallbacksTotal.WithLabelValues("empty_profile").Inc()
		log.Info("profile has no text, semantic scoring skipped")
		return nil, false
	}

	idx, err := e.retriever.Index(ctx, postings)
	if err != nil {
		metrics.SemanticFallbacksTotal.WithLabelValues("index_failed").Inc()
		log.Warn("semantic index unavailable, using neutral scores",
			zap.String(logger.FieldSource, e.retriever.Version()),
			zap.Error(err),
		)
		return nil, false
	}

	scores, err := idx.Score(ctx, query, 0)
	if err != nil {
		metrics.SemanticFallbacksTotal.WithLabelValues("score_failed").Inc()
		log.Warn("semantic scoring failed, using neutral scores",
			zap.String(logger.FieldSource, e.retriever.Version()),
			zap.Error(err),
		)
		return nil, false
	}

	return scores, true
}

// Enrich fills in skills and required years a provider left empty. Skills are
// matched against vocab.
func Enrich(p jobs.Posting, vocab *extract.Vocabulary) jobs.Posting {
	if len(p.RequiredSkills) == 0 {
		p = p.WithSkills(vocab.Extract(p.Title + " " + p.Description))
	}
	if p.ExperienceYears == 0 {
		if years := extract.ExtractRequiredYears(p.Description); years > 0 {
			p = p.WithExperience(years)
		}
	}
	return p
}
