package sources

import (
	"context"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/spigell/jobrank/internal/aggregator"
	"github.com/spigell/jobrank/internal/extract"
	"github.com/spigell/jobrank/internal/jobs"
)

const (
	NameArbeitnow = "arbeitnow"
	arbeitnowURL  = "https://www.arbeitnow.com/api/job-board-api"
)

type arbeitnowResponse struct {
	Data []map[string]any `json:"data"`
}

type arbeitnowJob struct {
	Slug        string   `mapstructure:"slug"`
	Title       string   `mapstructure:"title"`
	CompanyName string   `mapstructure:"company_name"`
	Description string   `mapstructure:"description"`
	Location    string   `mapstructure:"location"`
	Remote      bool     `mapstructure:"remote"`
	URL         string   `mapstructure:"url"`
	CreatedAt   int64    `mapstructure:"created_at"`
	Tags        []string `mapstructure:"tags"`
	JobTypes    []string `mapstructure:"job_types"`
}

// Arbeitnow reads the Arbeitnow job board feed and filters it locally by
// query keywords and location.
type Arbeitnow struct {
	c        *client
	endpoint string
}

func NewArbeitnow(opts Options) *Arbeitnow {
	endpoint := arbeitnowURL
	if opts.BaseURL != "" {
		endpoint = opts.BaseURL
	}
	return &Arbeitnow{
		c:        newClient(NameArbeitnow, opts, rate.Every(time.Second), 1),
		endpoint: endpoint,
	}
}

func (a *Arbeitnow) Name() string { return NameArbeitnow }

func (a *Arbeitnow) Fetch(ctx context.Context, q aggregator.Query) ([]jobs.Posting, error) {
	var resp arbeitnowResponse
	if err := a.c.getJSON(ctx, a.endpoint, nil, nil, &resp); err != nil {
		return nil, err
	}

	keywords := extract.QueryKeywords(q.Text)
	vocab := extract.ForSkills(q.Skills)
	location := strings.ToLower(strings.TrimSpace(q.Location))
	scan := scanLimit(q.Limit)

	postings := make([]jobs.Posting, 0)
	for i, job := range decodeItems[arbeitnowJob](a.c, resp.Data) {
		if i >= scan {
			break
		}
		if !extract.MatchesQuery(keywords, job.Title, job.Description) {
			continue
		}
		if location != "" && !job.Remote && !strings.Contains(strings.ToLower(job.Location), location) {
			continue
		}

		where := job.Location
		if job.Remote {
			where = strings.TrimSpace(job.Location + " (Remote)")
		}

		skills := vocab.Extract(strings.Join(job.Tags, ", "))
		if len(skills) == 0 {
			skills = vocab.Extract(job.Title + " " + extract.CleanHTML(job.Description))
		}

		postings = append(postings, finalize(vocab, jobs.Posting{
			ID:             qualifiedID(NameArbeitnow, job.Slug),
			Title:          job.Title,
			Company:        job.CompanyName,
			Location:       where,
			Description:    job.Description,
			RequiredSkills: skills,
			ApplyURL:       job.URL,
			Source:         NameArbeitnow,
			PostedDate:     unixDate(job.CreatedAt),
			JobType:        strings.Join(job.JobTypes, ", "),
		}))
		if q.Limit > 0 && len(postings) >= q.Limit {
			break
		}
	}

	return postings, nil
}
