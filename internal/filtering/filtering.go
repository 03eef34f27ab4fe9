// Package filtering runs the sequential posting filters applied between
// aggregation and scoring.
package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/jobrank/internal/jobs"
	"github.com/spigell/jobrank/internal/metrics"
)

// Filter is one step of the chain. Validate reads the config before any step
// runs. Apply narrows the postings in place and returns the dropped ids.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, p *jobs.Postings) ([]string, error)
}

// Config contains configuration settings consumed by the filters.
type Config struct {
	// ExcludedCompanies are matched case-insensitively against company names.
	ExcludedCompanies []string
	// ExcludeFile holds ids of postings excluded earlier.
	ExcludeFile string
	// Location is matched as a substring of the posting location when
	// StrictLocation is set.
	Location       string
	StrictLocation bool
}

// Step records what one filter did.
type Step struct {
	Name    string `json:"name"`
	Initial int    `json:"initial"`
	Dropped int    `json:"dropped"`
	Left    int    `json:"left"`
}

// Trace lists executed steps in order.
type Trace []Step

// Dropped sums the postings removed by all steps.
func (t Trace) Dropped() int {
	total := 0
	for _, step := range t {
		total += step.Dropped
	}
	return total
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

type statusProvider interface {
	Status() Status
}

// Default returns the standard filter chain in execution order.
func Default() []Filter {
	return []Filter{NewExcludedCompanies(), NewExcludeFile(), NewLocation()}
}

// DisableByName marks the named filter disabled while keeping it in the chain.
func DisableByName(steps []Filter, name, reason string) {
	for _, f := range steps {
		if f.Name() == name {
			f.Disable(reason)
		}
	}
}

// Run validates every enabled filter and only then applies them in order.
func Run(ctx context.Context, cfg *Config, steps []Filter, p *jobs.Postings, logger *zap.Logger) (*jobs.Postings, Trace, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	active := make([]Filter, 0, len(steps))
	for _, f := range steps {
		if !f.IsEnabled() {
			logger.Debug("filter disabled", zap.String("name", f.Name()))
			continue
		}
		if err := f.Validate(cfg); err != nil {
			return nil, nil, fmt.Errorf("validate %s: %w", f.Name(), err)
		}
		active = append(active, f)
	}

	trace := make(Trace, 0, len(active))
	for _, f := range active {
		if err := ctx.Err(); err != nil {
			return nil, trace, err
		}

		initial := p.Len()
		dropped, err := f.Apply(ctx, p)
		if err != nil {
			return nil, trace, fmt.Errorf("apply %s: %w", f.Name(), err)
		}

		step := Step{Name: f.Name(), Initial: initial, Dropped: len(dropped), Left: p.Len()}
		trace = append(trace, step)
		metrics.PostingsFilteredTotal.WithLabelValues(step.Name).Add(float64(step.Dropped))

		logger.Info("filter step",
			zap.String("name", step.Name),
			zap.Int("initial", step.Initial),
			zap.Int("dropped", step.Dropped),
			zap.Int("left", step.Left),
		)
		if len(dropped) > 0 {
			logger.Debug("postings dropped", zap.String("name", step.Name), zap.Strings("ids", dropped))
		}
	}

	return p, trace, nil
}

// Describe reports the state of each filter, falling back to name and
// enablement for filters without details.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, len(steps))
	for i, f := range steps {
		if reporter, ok := f.(statusProvider); ok {
			statuses[i] = reporter.Status()
			continue
		}
		statuses[i] = Status{Name: f.Name(), Enabled: f.IsEnabled()}
	}
	return statuses
}

// toggle carries the enable state shared by all filters.
type toggle struct {
	disabled bool
	reason   string
}

func (t *toggle) Disable(reason string) {
	t.disabled = true
	t.reason = reason
}

func (t *toggle) IsEnabled() bool { return !t.disabled }

func (t *toggle) status(name string, details map[string]string) Status {
	return Status{Name: name, Enabled: !t.disabled, Reason: t.reason, Details: details}
}
