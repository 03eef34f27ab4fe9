package sources

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/spigell/jobrank/internal/aggregator"
	"github.com/spigell/jobrank/internal/extract"
	"github.com/spigell/jobrank/internal/jobs"
)

const (
	NameSerper = "serper"
	serperURL  = "https://google.serper.dev/search"
)

type serperRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num"`
}

type serperResponse struct {
	Organic []map[string]any `json:"organic"`
}

type searchResult struct {
	Title   string `mapstructure:"title"`
	Link    string `mapstructure:"link"`
	Snippet string `mapstructure:"snippet"`
}

// Serper runs a Google search restricted to job boards through serper.dev.
type Serper struct {
	c        *client
	endpoint string
	apiKey   string
}

func NewSerper(apiKey string, opts Options) (*Serper, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("serper api key is required")
	}
	endpoint := serperURL
	if opts.BaseURL != "" {
		endpoint = opts.BaseURL
	}
	return &Serper{
		c:        newClient(NameSerper, opts, rate.Every(200*time.Millisecond), 1),
		endpoint: endpoint,
		apiKey:   apiKey,
	}, nil
}

func (s *Serper) Name() string { return NameSerper }

func (s *Serper) Fetch(ctx context.Context, q aggregator.Query) ([]jobs.Posting, error) {
	num := q.Limit
	if num <= 0 {
		num = 20
	}

	var resp serperResponse
	req := serperRequest{Q: webSearchQuery(q), Num: num}
	if err := s.c.postJSON(ctx, s.endpoint, req, map[string]string{"X-API-KEY": s.apiKey}, &resp); err != nil {
		return nil, err
	}

	results := decodeItems[searchResult](s.c, resp.Organic)
	return listingsToPostings(NameSerper, extract.ForSkills(q.Skills), results, q.Limit), nil
}

// webSearchQuery narrows a general web search to job boards.
func webSearchQuery(q aggregator.Query) string {
	parts := []string{q.Text, "jobs"}
	if q.Location != "" {
		parts = append(parts, q.Location)
	}
	parts = append(parts, "site:linkedin.com/jobs OR site:indeed.com")
	return strings.Join(parts, " ")
}

func listingsToPostings(source string, vocab *extract.Vocabulary, results []searchResult, limit int) []jobs.Posting {
	postings := make([]jobs.Posting, 0, len(results))
	for _, result := range results {
		if strings.TrimSpace(result.Title) == "" || strings.TrimSpace(result.Link) == "" {
			continue
		}
		listing := extract.ParseListing(result.Title, result.Snippet)
		postings = append(postings, finalize(vocab, jobs.Posting{
			ID:          hashID(source, result.Link),
			Title:       listing.Title,
			Company:     listing.Company,
			Location:    listing.Location,
			Salary:      listing.Salary,
			Description: result.Snippet,
			ApplyURL:    result.Link,
			Source:      source,
		}))
		if limit > 0 && len(postings) >= limit {
			break
		}
	}
	return postings
}
