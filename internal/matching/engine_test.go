package matching

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/jobrank/internal/aggregator"
	"github.com/spigell/jobrank/internal/extract"
	"github.com/spigell/jobrank/internal/filtering"
	"github.com/spigell/jobrank/internal/jobs"
	"github.com/spigell/jobrank/internal/semantic"
)

type stubSearcher struct {
	postings []jobs.Posting
	report   *aggregator.Report
	err      error
	queries  []aggregator.Query
}

func (s *stubSearcher) Search(_ context.Context, q aggregator.Query) ([]jobs.Posting, *aggregator.Report, error) {
	s.queries = append(s.queries, q)
	return s.postings, s.report, s.err
}

// keywordEncoder counts a few fixed words per text.
type keywordEncoder struct {
	err error
}

var keywords = []string{"go", "python", "kubernetes"}

func (k keywordEncoder) Encode(_ context.Context, texts []string) ([][]float32, error) {
	if k.err != nil {
		return nil, k.err
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, len(keywords))
		for _, word := range strings.Fields(strings.ToLower(text)) {
			word = strings.Trim(word, ".,:;()")
			for j, kw := range keywords {
				if word == kw {
					vec[j]++
				}
			}
		}
		vectors[i] = vec
	}
	return vectors, nil
}

func (keywordEncoder) Version() string { return "keyword-test" }

func testProfile() jobs.Profile {
	return jobs.NewProfile([]string{"Go", "Kubernetes"}, 5, "go kubernetes backend engineer")
}

func testPostings() []jobs.Posting {
	return []jobs.Posting{
		{
			ID:              "remotive_1",
			Title:           "Python Developer",
			Company:         "Globex",
			Location:        "Berlin, Germany",
			Description:     "Python web work",
			RequiredSkills:  []string{"Python", "Django"},
			ExperienceYears: 2,
			Source:          "remotive",
		},
		{
			ID:          "arbeitnow_2",
			Title:       "Go Engineer",
			Company:     "Acme",
			Location:    "Remote",
			Description: "Go and Kubernetes. 3+ years of experience",
			Source:      "arbeitnow",
		},
		{
			ID:       "findwork_3",
			Title:    "Go Engineer",
			Company:  "Blocked Corp",
			Location: "Remote",
			Source:   "findwork",
		},
	}
}

func newEngine(t *testing.T, searcher Searcher, enc semantic.Encoder, logger *zap.Logger) *Engine {
	t.Helper()
	var retriever *semantic.Retriever
	if enc != nil {
		retriever = semantic.NewRetriever(enc, logger)
	}
	cfg := filtering.Config{ExcludedCompanies: []string{"blocked corp"}}
	return New(searcher, retriever, filtering.Default(), cfg, logger)
}

func TestSearchRanksPostings(t *testing.T) {
	report := &aggregator.Report{Tier: "primary"}
	searcher := &stubSearcher{postings: testPostings(), report: report}
	engine := newEngine(t, searcher, keywordEncoder{}, zap.NewNop())

	result, err := engine.Search(context.Background(), testProfile(), Request{Query: "backend", Location: "Remote", Limit: 10})
	require.NoError(t, err)

	_, err = uuid.Parse(result.SearchID)
	assert.NoError(t, err)
	assert.Same(t, report, result.Report)
	assert.True(t, result.SemanticUsed)
	assert.Equal(t, 3, result.Fetched)
	assert.Equal(t, 2, result.Filtered)
	assert.Equal(t, 1, result.Filters.Dropped())

	require.Len(t, searcher.queries, 1)
	assert.Equal(t, aggregator.Query{Text: "backend", Location: "Remote", Limit: 10, Skills: []string{"Go", "Kubernetes"}}, searcher.queries[0])

	all := result.Ranked.All()
	require.Len(t, all, 2)

	best := all[0]
	assert.Equal(t, "arbeitnow_2", best.Posting.ID)
	assert.ElementsMatch(t, []string{"Go", "Kubernetes"}, best.Posting.RequiredSkills)
	assert.Equal(t, 3, best.Posting.ExperienceYears)
	assert.InDelta(t, 1.0, best.SkillsScore, 1e-9)
	assert.InDelta(t, 1.0, best.ExperienceScore, 1e-9)
	assert.InDelta(t, 1.0, best.SemanticScore, 1e-9)
	assert.InDelta(t, 1.0, best.FinalScore, 1e-9)

	other := all[1]
	assert.Equal(t, "remotive_1", other.Posting.ID)
	assert.InDelta(t, 0.0, other.SemanticScore, 1e-9)
	assert.InDelta(t, 0.3, other.FinalScore, 1e-9)
}

func TestSearchFallsBackToNeutralSemanticScore(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)
	searcher := &stubSearcher{postings: testPostings(), report: &aggregator.Report{}}
	engine := newEngine(t, searcher, keywordEncoder{err: errors.New("model offline")}, zap.New(core))

	result, err := engine.Search(context.Background(), testProfile(), Request{})
	require.NoError(t, err)

	assert.False(t, result.SemanticUsed)
	for _, r := range result.Ranked.All() {
		assert.Equal(t, semantic.NeutralScore, r.SemanticScore, r.Posting.ID)
		assert.Contains(t, r.Explanation, "Semantic similarity: not available")
	}

	warnings := observed.FilterMessage("semantic index unavailable, using neutral scores").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "keyword-test", warnings[0].ContextMap()["source"])
}

func TestSearchWithoutEncoder(t *testing.T) {
	searcher := &stubSearcher{postings: testPostings(), report: &aggregator.Report{}}
	engine := newEngine(t, searcher, nil, nil)

	result, err := engine.Search(context.Background(), testProfile(), Request{})
	require.NoError(t, err)

	assert.False(t, result.SemanticUsed)
	require.Equal(t, 2, result.Ranked.Len())
	top := result.Ranked.All()[0]
	assert.Equal(t, "arbeitnow_2", top.Posting.ID)
	assert.InDelta(t, 0.5+0.3+0.2*semantic.NeutralScore, top.FinalScore, 1e-9)
}

func TestSearchNoResults(t *testing.T) {
	report := &aggregator.Report{Outcomes: []aggregator.Outcome{{Provider: "remotive", Err: errors.New("down")}}}
	searcher := &stubSearcher{report: report, err: aggregator.ErrNoResults}
	engine := newEngine(t, searcher, keywordEncoder{}, nil)

	result, err := engine.Search(context.Background(), testProfile(), Request{})
	require.ErrorIs(t, err, aggregator.ErrNoResults)
	require.NotNil(t, result)
	assert.Same(t, report, result.Report)
	assert.Equal(t, 0, result.Ranked.Len())
	assert.Empty(t, result.Top())
}

func TestSearchAggregationError(t *testing.T) {
	searcher := &stubSearcher{err: context.Canceled}
	engine := newEngine(t, searcher, nil, nil)

	result, err := engine.Search(context.Background(), testProfile(), Request{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
}

func TestSearchWithoutSearcher(t *testing.T) {
	engine := New(nil, nil, nil, filtering.Config{}, nil)

	_, err := engine.Search(context.Background(), testProfile(), Request{})
	require.ErrorIs(t, err, aggregator.ErrNoProviders)
}

func TestSearchThroughAggregator(t *testing.T) {
	agg, err := aggregator.New([]aggregator.Tier{{
		Name:      "primary",
		Providers: []aggregator.Provider{providerFunc(testPostings)},
	}}, 0, nil)
	require.NoError(t, err)

	engine := newEngine(t, agg, nil, nil)
	result, err := engine.Search(context.Background(), testProfile(), Request{Query: "go"})
	require.NoError(t, err)

	assert.Equal(t, "primary", result.Report.Tier)
	assert.Equal(t, []string{"stub"}, result.Report.Contributed())
	assert.Equal(t, 2, result.Ranked.Len())
}

type providerFunc func() []jobs.Posting

func (providerFunc) Name() string { return "stub" }

func (f providerFunc) Fetch(context.Context, aggregator.Query) ([]jobs.Posting, error) {
	return f(), nil
}

func TestRankAppliesMinScoreAndTopK(t *testing.T) {
	engine := newEngine(t, nil, keywordEncoder{}, nil)

	result, err := engine.Rank(context.Background(), testProfile(), testPostings(), Request{MinScore: 0.5, TopK: 1})
	require.NoError(t, err)

	assert.Nil(t, result.Report)
	assert.NotEmpty(t, result.SearchID)
	require.Equal(t, 1, result.Ranked.Len())
	top := result.Top()
	require.Len(t, top, 1)
	assert.Equal(t, "arbeitnow_2", top[0].Posting.ID)
}

func TestRankUsesRequestLocationForStrictFilter(t *testing.T) {
	engine := New(nil, nil, filtering.Default(), filtering.Config{StrictLocation: true}, nil)

	result, err := engine.Rank(context.Background(), testProfile(), testPostings(), Request{Location: "berlin"})
	require.NoError(t, err)

	require.Equal(t, 1, result.Ranked.Len())
	assert.Equal(t, "remotive_1", result.Ranked.All()[0].Posting.ID)
}

func TestRankReturnsFilterErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exclude.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))
	cfg := filtering.Config{ExcludeFile: path}
	engine := New(nil, nil, filtering.Default(), cfg, nil)

	_, err := engine.Rank(context.Background(), testProfile(), testPostings(), Request{})
	require.Error(t, err)
}

func TestSemanticSkippedForEmptyProfile(t *testing.T) {
	engine := newEngine(t, nil, keywordEncoder{}, nil)

	result, err := engine.Rank(context.Background(), jobs.Profile{}, testPostings(), Request{})
	require.NoError(t, err)
	assert.False(t, result.SemanticUsed)
}

func TestEnrich(t *testing.T) {
	given := jobs.Posting{ID: "a", RequiredSkills: []string{"Scala"}, ExperienceYears: 7, Description: "Go, 2 years of experience"}
	assert.Equal(t, given, Enrich(given, extract.DefaultVocabulary()))

	bare := jobs.Posting{ID: "b", Title: "Data Engineer", Description: "Python, SQL and Snowflake, 4+ yrs experience"}
	enriched := Enrich(bare, extract.DefaultVocabulary())
	assert.ElementsMatch(t, []string{"Python", "SQL"}, enriched.RequiredSkills)
	assert.Equal(t, 4, enriched.ExperienceYears)
	assert.Nil(t, bare.RequiredSkills)

	withProfile := Enrich(bare, extract.ForSkills([]string{"Snowflake"}))
	assert.ElementsMatch(t, []string{"Snowflake", "Python", "SQL"}, withProfile.RequiredSkills)
}
