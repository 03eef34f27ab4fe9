package filtering

import (
	"context"
	"strconv"
	"strings"

	"github.com/spigell/jobrank/internal/jobs"
)

type locationFilter struct {
	toggle
	location string
	strict   bool
}

// NewLocation keeps only postings whose location mentions the requested one.
// It does nothing unless strict matching is on.
func NewLocation() Filter {
	return &locationFilter{}
}

func (f *locationFilter) Name() string { return "location" }

func (f *locationFilter) Validate(cfg *Config) error {
	f.location, f.strict = "", false
	if cfg != nil {
		f.location = strings.ToLower(strings.TrimSpace(cfg.Location))
		f.strict = cfg.StrictLocation
	}
	return nil
}

func (f *locationFilter) Apply(_ context.Context, p *jobs.Postings) ([]string, error) {
	if !f.strict || f.location == "" {
		return nil, nil
	}
	return p.Keep(func(posting jobs.Posting) bool {
		return strings.Contains(strings.ToLower(posting.Location), f.location)
	}), nil
}

func (f *locationFilter) Status() Status {
	details := map[string]string{"strict": strconv.FormatBool(f.strict)}
	if f.location != "" {
		details["location"] = f.location
	}
	return f.status(f.Name(), details)
}
