package jobs

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

const (
	// NotSpecified fills posting fields the origin did not provide.
	NotSpecified   = "Not specified"
	UnknownCompany = "Unknown"

	PostingIDField      = "ID"
	PostingCompanyField = "Company"
)

// Posting is one normalized job record. Values are treated as immutable:
// enrichment goes through the With* helpers which return a copy.
type Posting struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Company         string   `json:"company"`
	Location        string   `json:"location"`
	Salary          string   `json:"salary"`
	Description     string   `json:"description"`
	RequiredSkills  []string `json:"required_skills"`
	ExperienceYears int      `json:"experience_years"`
	ApplyURL        string   `json:"apply_url"`
	Source          string   `json:"source"`
	PostedDate      string   `json:"posted_date,omitempty"`
	JobType         string   `json:"job_type,omitempty"`
}

// Normalize returns a copy of p with explicit defaults for unknown fields.
func Normalize(p Posting) Posting {
	out := p.clone()
	out.ID = strings.TrimSpace(out.ID)
	out.Title = strings.TrimSpace(out.Title)
	out.Company = strings.TrimSpace(out.Company)
	out.Location = strings.TrimSpace(out.Location)
	out.Salary = strings.TrimSpace(out.Salary)

	if out.Company == "" {
		out.Company = UnknownCompany
	}
	if out.Location == "" {
		out.Location = NotSpecified
	}
	if out.Salary == "" {
		out.Salary = NotSpecified
	}
	if out.ExperienceYears < 0 {
		out.ExperienceYears = 0
	}
	if out.RequiredSkills == nil {
		out.RequiredSkills = []string{}
	}

	return out
}

// Fingerprint is the deduplication key of a posting.
func Fingerprint(p Posting) string {
	return strings.ToLower(strings.TrimSpace(p.Title)) + "|" + strings.ToLower(strings.TrimSpace(p.Company))
}

// WithSkills returns a copy of p carrying the provided required skills.
func (p Posting) WithSkills(skills []string) Posting {
	out := p.clone()
	out.RequiredSkills = append([]string{}, skills...)
	return out
}

// WithExperience returns a copy of p carrying the provided required years.
func (p Posting) WithExperience(years int) Posting {
	out := p.clone()
	if years < 0 {
		years = 0
	}
	out.ExperienceYears = years
	return out
}

func (p Posting) clone() Posting {
	out := p
	if p.RequiredSkills != nil {
		out.RequiredSkills = append([]string{}, p.RequiredSkills...)
	}
	return out
}

// GetStringField returns the value of the named field used by filters.
func (p Posting) GetStringField(name string) string {
	switch name {
	case PostingIDField:
		return p.ID
	case PostingCompanyField:
		return p.Company
	default:
		return ""
	}
}

// Postings is an ordered list of postings.
type Postings struct {
	Items []Posting
}

func NewPostings(items []Posting) *Postings {
	return &Postings{Items: append([]Posting{}, items...)}
}

func (p *Postings) Len() int {
	return len(p.Items)
}

func (p *Postings) FindByID(id string) *Posting {
	for i := range p.Items {
		if p.Items[i].ID == id {
			out := p.Items[i].clone()
			return &out
		}
	}
	return nil
}

// Exclude removes postings whose named field matches one of targets
// (case-insensitively) and returns the ids of the removed postings. Order of
// the remaining postings is preserved.
func (p *Postings) Exclude(name string, targets []string) []string {
	if len(targets) == 0 {
		return nil
	}

	set := make(map[string]struct{}, len(targets))
	for _, target := range targets {
		target = strings.ToLower(strings.TrimSpace(target))
		if target != "" {
			set[target] = struct{}{}
		}
	}

	var excluded []string
	kept := p.Items[:0:0]
	for _, posting := range p.Items {
		if _, ok := set[strings.ToLower(posting.GetStringField(name))]; ok {
			excluded = append(excluded, posting.ID)
			continue
		}
		kept = append(kept, posting)
	}
	p.Items = kept

	return excluded
}

// Keep retains only the postings accepted by fn and returns the ids of the dropped ones.
func (p *Postings) Keep(fn func(Posting) bool) []string {
	var dropped []string
	kept := p.Items[:0:0]
	for _, posting := range p.Items {
		if fn(posting) {
			kept = append(kept, posting)
			continue
		}
		dropped = append(dropped, posting.ID)
	}
	p.Items = kept

	return dropped
}

func (p *Postings) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "postings_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// ReportByCompany groups postings by company name.
func (p *Postings) ReportByCompany() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, posting := range p.Items {
		key := fmt.Sprintf("%s (%s)", posting.Company, posting.Source)
		report[key] = append(report[key], map[string]string{
			"title":    posting.Title,
			"url":      posting.ApplyURL,
			"location": posting.Location,
			"salary":   posting.Salary,
			"skills":   strings.Join(posting.RequiredSkills, ", "),
		})
	}
	return report
}
