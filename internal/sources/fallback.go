package sources

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/spigell/jobrank/internal/jobs"
)

const NameFallback = "fallback-dataset"

//go:embed fallback.json
var fallbackData []byte

// FallbackPostings returns the static dataset callers may show when every
// provider came back empty.
func FallbackPostings() ([]jobs.Posting, error) {
	var postings []jobs.Posting
	if err := json.Unmarshal(fallbackData, &postings); err != nil {
		return nil, fmt.Errorf("decode fallback dataset: %w", err)
	}
	for i := range postings {
		postings[i].Source = NameFallback
		postings[i] = jobs.Normalize(postings[i])
	}
	return postings, nil
}
