package sources

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/spigell/jobrank/internal/aggregator"
	"github.com/spigell/jobrank/internal/extract"
	"github.com/spigell/jobrank/internal/jobs"
)

const (
	NameRemotive        = "remotive"
	remotiveURL         = "https://remotive.com/api/remote-jobs"
	remotiveDefaultCat  = "software-dev"
	remotiveDefaultArea = "Remote"
)

// remotiveCategories maps query terms onto Remotive categories. Entries are
// checked in order and terms may be phrases, so "python data engineer" stays
// in software-dev.
var remotiveCategories = []struct {
	category string
	terms    []string
}{
	{category: "software-dev", terms: []string{"developer", "engineer", "programming", "software", "backend", "frontend", "full stack", "python", "java", "javascript"}},
	{category: "data", terms: []string{"data", "machine learning", "ml", "ai", "analytics", "scientist"}},
	{category: "devops", terms: []string{"devops", "sre", "infrastructure", "cloud", "aws", "kubernetes"}},
	{category: "design", terms: []string{"designer", "ux", "ui", "product design"}},
	{category: "marketing", terms: []string{"marketing", "seo", "growth"}},
	{category: "product", terms: []string{"product manager", "product owner"}},
}

type remotiveResponse struct {
	Jobs []map[string]any `json:"jobs"`
}

type remotiveJob struct {
	ID              string   `mapstructure:"id"`
	Title           string   `mapstructure:"title"`
	CompanyName     string   `mapstructure:"company_name"`
	Description     string   `mapstructure:"description"`
	Location        string   `mapstructure:"candidate_required_location"`
	Salary          string   `mapstructure:"salary"`
	URL             string   `mapstructure:"url"`
	PublicationDate string   `mapstructure:"publication_date"`
	JobType         string   `mapstructure:"job_type"`
	Tags            []string `mapstructure:"tags"`
}

// Remotive reads the Remotive remote jobs API. It has no full-text search, so
// the relevance pre-filter applies.
type Remotive struct {
	c        *client
	endpoint string
}

func NewRemotive(opts Options) *Remotive {
	endpoint := remotiveURL
	if opts.BaseURL != "" {
		endpoint = opts.BaseURL
	}
	// Remotive asks clients to stay within a couple of calls per minute.
	return &Remotive{
		c:        newClient(NameRemotive, opts, rate.Every(30*time.Second), 2),
		endpoint: endpoint,
	}
}

func (r *Remotive) Name() string { return NameRemotive }

func (r *Remotive) Fetch(ctx context.Context, q aggregator.Query) ([]jobs.Posting, error) {
	params := url.Values{}
	params.Set("category", remotiveCategory(q.Text))
	params.Set("limit", strconv.Itoa(scanLimit(q.Limit)))

	var resp remotiveResponse
	if err := r.c.getJSON(ctx, r.endpoint, params, nil, &resp); err != nil {
		return nil, err
	}

	keywords := extract.QueryKeywords(q.Text)
	vocab := extract.ForSkills(q.Skills)
	postings := make([]jobs.Posting, 0)
	for _, job := range decodeItems[remotiveJob](r.c, resp.Jobs) {
		if !extract.MatchesQuery(keywords, job.Title, job.Description) {
			continue
		}

		location := strings.TrimSpace(job.Location)
		if location == "" {
			location = remotiveDefaultArea
		}

		postings = append(postings, finalize(vocab, jobs.Posting{
			ID:             qualifiedID(NameRemotive, job.ID),
			Title:          job.Title,
			Company:        job.CompanyName,
			Location:       location,
			Salary:         job.Salary,
			Description:    job.Description,
			RequiredSkills: vocab.Extract(strings.Join(job.Tags, ", ") + " " + job.Title + " " + extract.CleanHTML(job.Description)),
			ApplyURL:       job.URL,
			Source:         NameRemotive,
			PostedDate:     isoDate(job.PublicationDate),
			JobType:        job.JobType,
		}))
		if q.Limit > 0 && len(postings) >= q.Limit {
			break
		}
	}

	return postings, nil
}

func remotiveCategory(query string) string {
	for _, entry := range remotiveCategories {
		for _, term := range entry.terms {
			if extract.ContainsToken(query, term) {
				return entry.category
			}
		}
	}
	return remotiveDefaultCat
}

// scanLimit is how many items to request from sources that are filtered
// client-side.
func scanLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	return max(limit*2, 20)
}
