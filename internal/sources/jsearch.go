package sources

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/spigell/jobrank/internal/aggregator"
	"github.com/spigell/jobrank/internal/extract"
	"github.com/spigell/jobrank/internal/jobs"
)

const (
	NameJSearch = "jsearch"
	jsearchHost = "jsearch.p.rapidapi.com"
	jsearchURL  = "https://" + jsearchHost + "/search"
)

type jsearchResponse struct {
	Data []map[string]any `json:"data"`
}

type jsearchJob struct {
	ID             string   `mapstructure:"job_id"`
	Title          string   `mapstructure:"job_title"`
	EmployerName   string   `mapstructure:"employer_name"`
	City           string   `mapstructure:"job_city"`
	State          string   `mapstructure:"job_state"`
	Country        string   `mapstructure:"job_country"`
	IsRemote       bool     `mapstructure:"job_is_remote"`
	Description    string   `mapstructure:"job_description"`
	MinSalary      float64  `mapstructure:"job_min_salary"`
	MaxSalary      float64  `mapstructure:"job_max_salary"`
	ApplyLink      string   `mapstructure:"job_apply_link"`
	GoogleLink     string   `mapstructure:"job_google_link"`
	PostedAt       string   `mapstructure:"job_posted_at_datetime_utc"`
	EmploymentType string   `mapstructure:"job_employment_type"`
	RequiredSkills []string `mapstructure:"job_required_skills"`
	Experience     struct {
		Months float64 `mapstructure:"required_experience_in_months"`
	} `mapstructure:"job_required_experience"`
}

// JSearch is the paid backup aggregator behind RapidAPI. It needs the backup
// API key and searches server-side.
type JSearch struct {
	c        *client
	endpoint string
	apiKey   string
}

func NewJSearch(apiKey string, opts Options) (*JSearch, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("jsearch api key is required")
	}
	endpoint := jsearchURL
	if opts.BaseURL != "" {
		endpoint = opts.BaseURL
	}
	return &JSearch{
		c:        newClient(NameJSearch, opts, rate.Every(time.Second), 1),
		endpoint: endpoint,
		apiKey:   apiKey,
	}, nil
}

func (j *JSearch) Name() string { return NameJSearch }

func (j *JSearch) Fetch(ctx context.Context, q aggregator.Query) ([]jobs.Posting, error) {
	query := q.Text
	if q.Location != "" {
		query += " in " + q.Location
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("page", "1")
	params.Set("num_pages", "1")

	headers := map[string]string{
		"X-RapidAPI-Key":  j.apiKey,
		"X-RapidAPI-Host": jsearchHost,
	}

	var resp jsearchResponse
	if err := j.c.getJSON(ctx, j.endpoint, params, headers, &resp); err != nil {
		return nil, err
	}

	vocab := extract.ForSkills(q.Skills)
	postings := make([]jobs.Posting, 0)
	for _, job := range decodeItems[jsearchJob](j.c, resp.Data) {
		link := job.ApplyLink
		if link == "" {
			link = job.GoogleLink
		}

		skills := make([]string, 0, len(job.RequiredSkills))
		for _, skill := range job.RequiredSkills {
			skills = append(skills, vocab.Canonical(skill))
		}

		postings = append(postings, finalize(vocab, jobs.Posting{
			ID:              qualifiedID(NameJSearch, job.ID),
			Title:           job.Title,
			Company:         job.EmployerName,
			Location:        jsearchLocation(job),
			Salary:          extract.FormatSalary(job.MinSalary, job.MaxSalary),
			Description:     job.Description,
			RequiredSkills:  jobs.DedupSkills(skills),
			ExperienceYears: int(job.Experience.Months / 12),
			ApplyURL:        link,
			Source:          NameJSearch,
			PostedDate:      isoDate(job.PostedAt),
			JobType:         job.EmploymentType,
		}))
		if q.Limit > 0 && len(postings) >= q.Limit {
			break
		}
	}

	return postings, nil
}

func jsearchLocation(job jsearchJob) string {
	parts := make([]string, 0, 2)
	for _, part := range []string{job.City, job.State} {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	location := strings.Join(parts, ", ")
	if location == "" {
		location = strings.TrimSpace(job.Country)
	}
	if job.IsRemote {
		if location == "" {
			return "Remote"
		}
		return location + " (Remote)"
	}
	return location
}
