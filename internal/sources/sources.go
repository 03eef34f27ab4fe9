// Package sources implements the job source providers and assembles them into
// aggregation tiers.
package sources

import (
	"fmt"
	"strings"

	"github.com/spigell/jobrank/internal/aggregator"
)

const (
	TierFree     = "free"
	TierFallback = "fallback"
)

// DefaultFree lists the keyless providers in priority order.
var DefaultFree = []string{NameRemotive, NameArbeitnow, NameFindwork, NameHimalayas, NameWeWorkRemotely}

// Config enumerates the recognized provider options. Absent credentials
// disable the providers that need them.
type Config struct {
	FreeProvidersEnabled bool
	// Free selects and orders keyless providers. Empty means DefaultFree.
	Free []string
	// BackupAPIKey enables the paid JSearch backup.
	BackupAPIKey  string
	SerperAPIKey  string
	FindworkToken string
	// WebSearchEnabled adds the keyless DuckDuckGo scraper at the end of the chain.
	WebSearchEnabled bool
}

// Tiers builds the free combine-all tier followed by the first-success
// fallback chain.
func Tiers(cfg Config, opts Options) ([]aggregator.Tier, error) {
	opts.BaseURL = ""

	var tiers []aggregator.Tier

	if cfg.FreeProvidersEnabled {
		names := cfg.Free
		if len(names) == 0 {
			names = DefaultFree
		}

		free := aggregator.Tier{Name: TierFree, Mode: aggregator.CombineAll}
		seen := make(map[string]struct{}, len(names))
		for _, name := range names {
			name = strings.ToLower(strings.TrimSpace(name))
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}

			provider, err := newFreeProvider(name, cfg, opts)
			if err != nil {
				return nil, err
			}
			free.Providers = append(free.Providers, provider)
		}
		tiers = append(tiers, free)
	}

	fallback := aggregator.Tier{Name: TierFallback, Mode: aggregator.FirstSuccess}
	if cfg.BackupAPIKey != "" {
		provider, err := NewJSearch(cfg.BackupAPIKey, opts)
		if err != nil {
			return nil, err
		}
		fallback.Providers = append(fallback.Providers, provider)
	}
	if cfg.SerperAPIKey != "" {
		provider, err := NewSerper(cfg.SerperAPIKey, opts)
		if err != nil {
			return nil, err
		}
		fallback.Providers = append(fallback.Providers, provider)
	}
	if cfg.WebSearchEnabled {
		fallback.Providers = append(fallback.Providers, NewDuckDuckGo(opts))
	}
	if len(fallback.Providers) > 0 {
		tiers = append(tiers, fallback)
	}

	if len(tiers) == 0 {
		return nil, aggregator.ErrNoProviders
	}

	return tiers, nil
}

func newFreeProvider(name string, cfg Config, opts Options) (aggregator.Provider, error) {
	switch name {
	case NameRemotive:
		return NewRemotive(opts), nil
	case NameArbeitnow:
		return NewArbeitnow(opts), nil
	case NameFindwork:
		return NewFindwork(cfg.FindworkToken, opts), nil
	case NameHimalayas:
		return NewHimalayas(opts), nil
	case NameWeWorkRemotely:
		return NewWeWorkRemotely(opts), nil
	default:
		return nil, fmt.Errorf("unknown free provider %q (known: %s)", name, strings.Join(DefaultFree, ", "))
	}
}
