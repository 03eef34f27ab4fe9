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
	NameHimalayas = "himalayas"
	himalayasURL  = "https://himalayas.app/jobs/api"
)

type himalayasResponse struct {
	Jobs []map[string]any `json:"jobs"`
}

type himalayasJob struct {
	ID                   string   `mapstructure:"id"`
	GUID                 string   `mapstructure:"guid"`
	Title                string   `mapstructure:"title"`
	CompanyName          string   `mapstructure:"companyName"`
	Description          string   `mapstructure:"description"`
	Excerpt              string   `mapstructure:"excerpt"`
	MinSalary            float64  `mapstructure:"minSalary"`
	MaxSalary            float64  `mapstructure:"maxSalary"`
	ApplicationLink      string   `mapstructure:"applicationLink"`
	URL                  string   `mapstructure:"url"`
	PubDate              int64    `mapstructure:"pubDate"`
	EmploymentType       string   `mapstructure:"employmentType"`
	Categories           []string `mapstructure:"categories"`
	LocationRestrictions []string `mapstructure:"locationRestrictions"`
}

// Himalayas reads the Himalayas remote jobs API and filters it locally.
type Himalayas struct {
	c        *client
	endpoint string
}

func NewHimalayas(opts Options) *Himalayas {
	endpoint := himalayasURL
	if opts.BaseURL != "" {
		endpoint = opts.BaseURL
	}
	return &Himalayas{
		c:        newClient(NameHimalayas, opts, rate.Every(time.Second), 1),
		endpoint: endpoint,
	}
}

func (h *Himalayas) Name() string { return NameHimalayas }

func (h *Himalayas) Fetch(ctx context.Context, q aggregator.Query) ([]jobs.Posting, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(scanLimit(q.Limit)))

	var resp himalayasResponse
	if err := h.c.getJSON(ctx, h.endpoint, params, nil, &resp); err != nil {
		return nil, err
	}

	keywords := extract.QueryKeywords(q.Text)
	vocab := extract.ForSkills(q.Skills)
	postings := make([]jobs.Posting, 0)
	for _, job := range decodeItems[himalayasJob](h.c, resp.Jobs) {
		description := job.Description
		if description == "" {
			description = job.Excerpt
		}
		if !extract.MatchesQuery(keywords, job.Title, description) {
			continue
		}

		id := job.ID
		if id == "" {
			id = job.GUID
		}
		link := job.ApplicationLink
		if link == "" {
			link = job.URL
		}
		location := "Remote"
		if len(job.LocationRestrictions) > 0 {
			location = "Remote (" + strings.Join(job.LocationRestrictions, ", ") + ")"
		}

		skills := vocab.Extract(strings.Join(job.Categories, ", "))
		if len(skills) == 0 {
			skills = vocab.Extract(job.Title + " " + extract.CleanHTML(description))
		}

		postings = append(postings, finalize(vocab, jobs.Posting{
			ID:             qualifiedID(NameHimalayas, id),
			Title:          job.Title,
			Company:        job.CompanyName,
			Location:       location,
			Salary:         extract.FormatSalary(job.MinSalary, job.MaxSalary),
			Description:    description,
			RequiredSkills: skills,
			ApplyURL:       link,
			Source:         NameHimalayas,
			PostedDate:     unixDate(job.PubDate),
			JobType:        job.EmploymentType,
		}))
		if q.Limit > 0 && len(postings) >= q.Limit {
			break
		}
	}

	return postings, nil
}
