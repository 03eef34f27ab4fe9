package aggregator

import (
	"time"
)

// Outcome records what one provider did during a search.
type Outcome struct {
	Tier     string
	Provider string
	Count    int
	Skipped  int
	Kind     ErrorKind
	Err      error
	Duration time.Duration
}

func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Report describes a finished aggregation.
type Report struct {
	Query      Query
	Tier       string
	Outcomes   []Outcome
	Duplicates int
}

func (r *Report) add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
}

// Failures returns the outcomes of providers that failed.
func (r *Report) Failures() []Outcome {
	if r == nil {
		return nil
	}
	var failed []Outcome
	for _, o := range r.Outcomes {
		if o.Failed() {
			failed = append(failed, o)
		}
	}
	return failed
}

// Contributed returns provider names that returned at least one posting.
func (r *Report) Contributed() []string {
	if r == nil {
		return nil
	}
	var names []string
	for _, o := range r.Outcomes {
		if o.Count > 0 {
			names = append(names, o.Provider)
		}
	}
	return names
}
