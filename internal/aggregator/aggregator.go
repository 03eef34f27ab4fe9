// Package aggregator queries source providers in prioritized tiers and merges
// their postings into one deduplicated list.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/jobrank/internal/extract"
	"github.com/spigell/jobrank/internal/jobs"
	"github.com/spigell/jobrank/internal/logger"
	"github.com/spigell/jobrank/internal/metrics"
)

const DefaultTimeout = 15 * time.Second

// Query is the provider-facing search request. Skills seed the search text
// when Text is empty.
type Query struct {
	Text     string
	Location string
	Limit    int
	Skills   []string
}

// Provider fetches postings from one external origin. Implementations return
// normalized postings or a *ProviderError.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, q Query) ([]jobs.Posting, error)
}

// Mode selects how providers inside a tier are combined.
type Mode int

const (
	// CombineAll queries every provider in parallel and unions the results.
	CombineAll Mode = iota
	// FirstSuccess tries providers one after another until one returns postings.
	FirstSuccess
)

func (m Mode) String() string {
	switch m {
	case CombineAll:
		return "combine-all"
	case FirstSuccess:
		return "first-success"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Tier is a group of providers. Tiers are tried in order and the first tier
// that yields postings wins.
type Tier struct {
	Name      string
	Mode      Mode
	Providers []Provider
}

// Aggregator orchestrates providers. It holds no per-search state and can be
// shared by concurrent searches.
type Aggregator struct {
	tiers   []Tier
	timeout time.Duration
	logger  *zap.Logger
}

// New validates the tiers and returns an Aggregator. A non-positive timeout
// falls back to DefaultTimeout.
func New(tiers []Tier, timeout time.Duration, logger *zap.Logger) (*Aggregator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	kept := make([]Tier, 0, len(tiers))
	for _, tier := range tiers {
		if len(tier.Providers) == 0 {
			continue
		}
		kept = append(kept, Tier{
			Name:      tier.Name,
			Mode:      tier.Mode,
			Providers: append([]Provider{}, tier.Providers...),
		})
	}
	if len(kept) == 0 {
		return nil, ErrNoProviders
	}

	return &Aggregator{tiers: kept, timeout: timeout, logger: logger}, nil
}

// Tiers returns the configured tiers.
func (a *Aggregator) Tiers() []Tier {
	return append([]Tier{}, a.tiers...)
}

// Search runs the tiers in order. It returns ErrNoResults when every tier
// comes back empty; provider failures are only recorded in the report.
func (a *Aggregator) Search(ctx context.Context, q Query) ([]jobs.Posting, *Report, error) {
	q.Text = extract.BuildQuery(q.Text, q.Skills)
	q.Location = strings.TrimSpace(q.Location)
	report := &Report{Query: q}

	for _, tier := range a.tiers {
		if err := ctx.Err(); err != nil {
			return nil, report, fmt.Errorf("search: %w", err)
		}

		var fetched []jobs.Posting
		switch tier.Mode {
		case FirstSuccess:
			fetched = a.runChain(ctx, tier, q, report)
		default:
			fetched = a.runCombined(ctx, tier, q, report)
		}

		unique, duplicates := Deduplicate(fetched)
		report.Duplicates += duplicates
		metrics.DuplicatesTotal.Add(float64(duplicates))

		if len(unique) == 0 {
			a.logger.Info("tier produced no postings", zap.String("tier", tier.Name))
			continue
		}

		if q.Limit > 0 && len(unique) > q.Limit {
			unique = unique[:q.Limit]
		}

		report.Tier = tier.Name
		a.logger.Info("tier produced postings",
			zap.String("tier", tier.Name),
			zap.Int("fetched", len(fetched)),
			zap.Int("duplicates", duplicates),
			zap.Int("returned", len(unique)),
		)
		return unique, report, nil
	}

	return nil, report, ErrNoResults
}

// runCombined queries every provider of the tier concurrently. Results are
// merged in declared provider order regardless of completion order.
func (a *Aggregator) runCombined(ctx context.Context, tier Tier, q Query, report *Report) []jobs.Posting {
	results := make([][]jobs.Posting, len(tier.Providers))
	outcomes := make([]Outcome, len(tier.Providers))

	// Goroutines never return errors so one failure cannot cancel the others.
	var g errgroup.Group
	g.SetLimit(len(tier.Providers))
	for i, provider := range tier.Providers {
		g.Go(func() error {
			results[i], outcomes[i] = a.fetch(ctx, tier.Name, provider, q)
			return nil
		})
	}
	_ = g.Wait()

	var merged []jobs.Posting
	for i := range tier.Providers {
		report.add(outcomes[i])
		merged = append(merged, results[i]...)
	}
	return merged
}

// runChain tries the providers sequentially and stops at the first one that
// returns postings.
func (a *Aggregator) runChain(ctx context.Context, tier Tier, q Query, report *Report) []jobs.Posting {
	for _, provider := range tier.Providers {
		if ctx.Err() != nil {
			return nil
		}
		postings, outcome := a.fetch(ctx, tier.Name, provider, q)
		report.add(outcome)
		if len(postings) > 0 {
			return postings
		}
	}
	return nil
}

type fetchResult struct {
	postings []jobs.Posting
	err      error
}

// fetch calls one provider under its own deadline. When the deadline passes
// the call is abandoned and its late result discarded.
func (a *Aggregator) fetch(ctx context.Context, tier string, provider Provider, q Query) ([]jobs.Posting, Outcome) {
	name := provider.Name()
	log := logger.WithProviderFields(a.logger, tier, name)
	outcome := Outcome{Tier: tier, Provider: name}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	done := make(chan fetchResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fetchResult{err: Unavailable(name, fmt.Errorf("provider panicked: %v", r))}
			}
		}()
		postings, err := provider.Fetch(ctx, q)
		done <- fetchResult{postings: postings, err: err}
	}()

	var res fetchResult
	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			res.err = Timeout(name, fmt.Errorf("no response within %s", a.timeout))
		} else {
			res.err = Unavailable(name, ctx.Err())
		}
	case res = <-done:
	}

	outcome.Duration = time.Since(start)
	metrics.ProviderFetchDuration.WithLabelValues(name).Observe(outcome.Duration.Seconds())

	if res.err != nil {
		perr := Classify(name, res.err)
		outcome.Kind = perr.Kind
		outcome.Err = perr
		metrics.ProviderFetchesTotal.WithLabelValues(name, string(perr.Kind)).Inc()
		log.Warn("provider failed",
			zap.String("kind", string(perr.Kind)),
			zap.Duration("elapsed", outcome.Duration),
			zap.Error(perr.Err),
		)
		return nil, outcome
	}

	postings := make([]jobs.Posting, 0, len(res.postings))
	for _, posting := range res.postings {
		posting = jobs.Normalize(posting)
		if posting.ID == "" || posting.Title == "" {
			outcome.Skipped++
			continue
		}
		if posting.Source == "" {
			posting.Source = name
		}
		postings = append(postings, posting)
	}
	if outcome.Skipped > 0 {
		metrics.MalformedItemsTotal.WithLabelValues(name).Add(float64(outcome.Skipped))
	}

	outcome.Count = len(postings)
	status := "ok"
	if len(postings) == 0 {
		status = "empty"
	}
	metrics.ProviderFetchesTotal.WithLabelValues(name, status).Inc()
	metrics.PostingsFetchedTotal.WithLabelValues(name).Add(float64(len(postings)))

	log.Debug("provider returned postings",
		zap.Int("count", len(postings)),
		zap.Int("skipped", outcome.Skipped),
		zap.Duration("elapsed", outcome.Duration),
	)

	return postings, outcome
}

// Deduplicate collapses postings sharing a fingerprint or an id, keeping the
// first one seen. It returns the unique postings and the number dropped.
func Deduplicate(postings []jobs.Posting) ([]jobs.Posting, int) {
	seenFingerprints := make(map[string]struct{}, len(postings))
	seenIDs := make(map[string]struct{}, len(postings))
	unique := make([]jobs.Posting, 0, len(postings))

	for _, posting := range postings {
		fp := jobs.Fingerprint(posting)
		if _, ok := seenFingerprints[fp]; ok {
			continue
		}
		if _, ok := seenIDs[posting.ID]; ok {
			continue
		}
		seenFingerprints[fp] = struct{}{}
		seenIDs[posting.ID] = struct{}{}
		unique = append(unique, posting)
	}

	return unique, len(postings) - len(unique)
}
