package filtering

import (
	"context"
	"strings"

	"github.com/spigell/jobrank/internal/jobs"
)

type excludedCompaniesFilter struct {
	toggle
	companies []string
}

// NewExcludedCompanies drops postings of the companies listed in the config.
func NewExcludedCompanies() Filter {
	return &excludedCompaniesFilter{}
}

func (f *excludedCompaniesFilter) Name() string { return "excluded_companies" }

func (f *excludedCompaniesFilter) Validate(cfg *Config) error {
	f.companies = nil
	if cfg == nil {
		return nil
	}
	for _, company := range cfg.ExcludedCompanies {
		if company = strings.TrimSpace(company); company != "" {
			f.companies = append(f.companies, company)
		}
	}
	return nil
}

func (f *excludedCompaniesFilter) Apply(_ context.Context, p *jobs.Postings) ([]string, error) {
	if len(f.companies) == 0 {
		return nil, nil
	}
	return p.Exclude(jobs.PostingCompanyField, f.companies), nil
}

func (f *excludedCompaniesFilter) Status() Status {
	details := map[string]string{}
	if len(f.companies) > 0 {
		details["companies"] = strings.Join(f.companies, ",")
	}
	return f.status(f.Name(), details)
}
