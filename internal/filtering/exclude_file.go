package filtering

import (
	"context"
	"fmt"
	"strings"

	"github.com/spigell/jobrank/internal/jobs"
)

type excludeFileFilter struct {
	toggle
	path string
}

// NewExcludeFile drops postings whose ids were saved to the exclude file by
// earlier runs. A missing file excludes nothing.
func NewExcludeFile() Filter {
	return &excludeFileFilter{}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Validate(cfg *Config) error {
	f.path = ""
	if cfg != nil {
		f.path = strings.TrimSpace(cfg.ExcludeFile)
	}
	return nil
}

func (f *excludeFileFilter) Apply(_ context.Context, p *jobs.Postings) ([]string, error) {
	if f.path == "" {
		return nil, nil
	}

	saved, err := jobs.GetExcludedPostingsFromFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read exclude file %s: %w", f.path, err)
	}
	return p.Exclude(jobs.PostingIDField, saved.PostingIDs()), nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return f.status(f.Name(), details)
}
