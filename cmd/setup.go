package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/jobrank/internal/aggregator"
	"github.com/spigell/jobrank/internal/extract"
	"github.com/spigell/jobrank/internal/filtering"
	"github.com/spigell/jobrank/internal/jobs"
	"github.com/spigell/jobrank/internal/logger"
	"github.com/spigell/jobrank/internal/matching"
	"github.com/spigell/jobrank/internal/secrets"
	"github.com/spigell/jobrank/internal/semantic"
	"github.com/spigell/jobrank/internal/sources"
)

func newLogger() *zap.Logger {
	l, err := logger.New(logger.Options{
		JSON:   viper.GetBool("json"),
		Debug:  viper.GetBool("debug"),
		Output: viper.GetString("log-file"),
	})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return l
}

// buildProfile reads the resume text, if any, and merges it with the
// explicitly configured skills and years.
func buildProfile(cfg *ProfileConfig) (jobs.Profile, error) {
	text := cfg.Text
	if path := strings.TrimSpace(cfg.File); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return jobs.Profile{}, fmt.Errorf("reading profile file: %w", err)
		}
		text = string(data)
	}

	return extract.BuildProfile(text, cfg.Skills, cfg.ExperienceYears), nil
}

func sourcesConfig(cfg *ProvidersConfig) (sources.Config, error) {
	backup, err := loadSecret("backup api key", "JOBRANK_BACKUP_API_KEY", cfg.Backup)
	if err != nil {
		return sources.Config{}, err
	}
	serper, err := loadSecret("serper api key", "JOBRANK_SERPER_API_KEY", cfg.Serper)
	if err != nil {
		return sources.Config{}, err
	}
	findwork, err := loadSecret("findwork token", "JOBRANK_FINDWORK_TOKEN", cfg.Findwork)
	if err != nil {
		return sources.Config{}, err
	}

	return sources.Config{
		FreeProvidersEnabled: cfg.FreeEnabled,
		Free:                 cfg.Free,
		BackupAPIKey:         backup,
		SerperAPIKey:         serper,
		FindworkToken:        findwork,
		WebSearchEnabled:     cfg.WebSearch,
	}, nil
}

func loadSecret(name, env string, cfg *SecretConfig) (string, error) {
	src := secrets.Source{Name: name, Env: env}
	if cfg != nil {
		src.Value = cfg.APIKey
		src.File = cfg.APIKeyFile
	}
	return secrets.LoadOptional(src)
}

func newAggregator(config *Config, logger *zap.Logger) (*aggregator.Aggregator, error) {
	cfg, err := sourcesConfig(config.Providers)
	if err != nil {
		return nil, fmt.Errorf("loading provider credentials: %w", err)
	}

	tiers, err := sources.Tiers(cfg, sources.Options{
		UserAgent: config.UserAgent,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("building provider tiers: %w", err)
	}

	return aggregator.New(tiers, config.Providers.Timeout, logger)
}

// newRetriever resolves the semantic capability once. A misconfigured
// backend disables semantic scoring instead of failing the search.
func newRetriever(ctx context.Context, cfg *SemanticConfig, logger *zap.Logger) *semantic.Retriever {
	apiKey, err := secrets.LoadOptional(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.APIKey,
		File:  cfg.APIKeyFile,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		logger.Warn("semantic scoring disabled", zap.Error(err))
		return semantic.NewRetriever(nil, logger)
	}

	encoder, err := semantic.NewEncoder(ctx, semantic.Config{
		Backend: cfg.Backend,
		Model:   cfg.Model,
		APIKey:  apiKey,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
	}, logger.With(zap.String("backend", cfg.Backend)))
	if err != nil {
		logger.Warn("semantic scoring disabled",
			zap.Error(err),
			zap.String("hint", "set semantic.api-key-file or GEMINI_API_KEY for the gemini backend"),
		)
		return semantic.NewRetriever(nil, logger)
	}

	retriever := semantic.NewRetriever(encoder, logger)
	if retriever.Available() {
		logger.Info("semantic scoring enabled",
			zap.String("backend", cfg.Backend),
			zap.String("model", retriever.Version()),
		)
	}
	return retriever
}

func filterConfig(config *Config) filtering.Config {
	return filtering.Config{
		ExcludedCompanies: config.Filters.ExcludedCompanies,
		ExcludeFile:       config.ExcludeFile,
		StrictLocation:    config.Filters.StrictLocation,
	}
}

func newEngine(ctx context.Context, config *Config, logger *zap.Logger) (*matching.Engine, error) {
	agg, err := newAggregator(config, logger)
	if err != nil {
		return nil, err
	}

	return matching.New(agg, newRetriever(ctx, config.Semantic, logger), filtering.Default(), filterConfig(config), logger), nil
}

func searchRequest(cfg *SearchConfig) matching.Request {
	return matching.Request{
		Query:    cfg.Query,
		Location: cfg.Location,
		Limit:    cfg.Limit,
		MinScore: cfg.MinScore,
		TopK:     cfg.TopK,
	}
}
