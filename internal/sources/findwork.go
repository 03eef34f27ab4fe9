package sources

import (
	"context"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/spigell/jobrank/internal/aggregator"
	"github.com/spigell/jobrank/internal/extract"
	"github.com/spigell/jobrank/internal/jobs"
)

const (
	NameFindwork = "findwork"
	findworkURL  = "https://findwork.dev/api/jobs/"
)

type findworkResponse struct {
	Results []map[string]any `json:"results"`
}

type findworkJob struct {
	ID             string   `mapstructure:"id"`
	Role           string   `mapstructure:"role"`
	CompanyName    string   `mapstructure:"company_name"`
	Location       string   `mapstructure:"location"`
	Remote         bool     `mapstructure:"remote"`
	Text           string   `mapstructure:"text"`
	URL            string   `mapstructure:"url"`
	DatePosted     string   `mapstructure:"date_posted"`
	EmploymentType string   `mapstructure:"employment_type"`
	Keywords       []string `mapstructure:"keywords"`
}

// Findwork queries findwork.dev, which searches server-side. The token is
// optional; anonymous requests get a smaller quota.
type Findwork struct {
	c        *client
	endpoint string
	token    string
}

func NewFindwork(token string, opts Options) *Findwork {
	endpoint := findworkURL
	if opts.BaseURL != "" {
		endpoint = opts.BaseURL
	}
	return &Findwork{
		c:        newClient(NameFindwork, opts, rate.Every(time.Second), 1),
		endpoint: endpoint,
		token:    strings.TrimSpace(token),
	}
}

func (f *Findwork) Name() string { return NameFindwork }

func (f *Findwork) Fetch(ctx context.Context, q aggregator.Query) ([]jobs.Posting, error) {
	params := url.Values{}
	params.Set("search", q.Text)
	if q.Location != "" {
		params.Set("location", q.Location)
	}

	var headers map[string]string
	if f.token != "" {
		headers = map[string]string{"Authorization": "Token " + f.token}
	}

	var resp findworkResponse
	if err := f.c.getJSON(ctx, f.endpoint, params, headers, &resp); err != nil {
		return nil, err
	}

	vocab := extract.ForSkills(q.Skills)
	postings := make([]jobs.Posting, 0)
	for _, job := range decodeItems[findworkJob](f.c, resp.Results) {
		location := job.Location
		if job.Remote && location == "" {
			location = "Remote"
		}

		postings = append(postings, finalize(vocab, jobs.Posting{
			ID:             qualifiedID(NameFindwork, job.ID),
			Title:          job.Role,
			Company:        job.CompanyName,
			Location:       location,
			Description:    job.Text,
			RequiredSkills: vocab.Extract(strings.Join(job.Keywords, ", ")),
			ApplyURL:       job.URL,
			Source:         NameFindwork,
			PostedDate:     isoDate(job.DatePosted),
			JobType:        job.EmploymentType,
		}))
		if q.Limit > 0 && len(postings) >= q.Limit {
			break
		}
	}

	return postings, nil
}
