package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/jobrank/internal/aggregator"
	"github.com/spigell/jobrank/internal/jobs"
	"github.com/spigell/jobrank/internal/matching"
	"github.com/spigell/jobrank/internal/metrics"
	"github.com/spigell/jobrank/internal/output"
	"github.com/spigell/jobrank/internal/sources"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search job sources and rank postings against the profile",
	PreRun: func(cmd *cobra.Command, _ []string) {
		bindFlags(cmd, searchFlagKeys)
	},
	Run: func(cmd *cobra.Command, _ []string) {
		search(cmd)
	},
}

// searchFlagKeys maps config keys onto the search flags overriding them.
var searchFlagKeys = map[string]string{
	"search.query":             "query",
	"search.location":          "location",
	"search.limit":             "limit",
	"search.min-score":         "min-score",
	"search.top-k":             "top-k",
	"search.page-size":         "page-size",
	"profile.skills":           "skills",
	"profile.experience-years": "experience",
	"profile.file":             "profile-file",
	"exclude-file":             "exclude-file",
}

func init() {
	rootCmd.AddCommand(searchCmd)

	flags := searchCmd.Flags()
	flags.StringP("query", "q", "", "search query (default is built from the profile skills)")
	flags.StringP("location", "l", "", "preferred location")
	flags.Int("limit", 20, "maximum number of postings to rank")
	flags.Float64("min-score", 0, "drop results scoring below this value (0..1)")
	flags.Int("top-k", 10, "number of results printed with --yes or --output json")
	flags.Int("page-size", 10, "results per page in the interactive browser")
	flags.StringSlice("skills", nil, "profile skills, merged with the skills found in the profile file")
	flags.Int("experience", 0, "profile years of experience")
	flags.StringP("profile-file", "p", "", "plain text resume used as the profile")
	flags.StringP("exclude-file", "e", "", "special file with postings to exclude. Default is unset.")
	flags.Bool("no-fallback", false, "do not rank the built-in dataset when no provider returns postings")
	flags.String("metrics-file", "", "write prometheus metrics to this file before exiting")
	flags.StringP("output", "o", outputTable, "output format: table or json")
	flags.BoolP("yes", "y", false, "print the top results and exit without prompting")
}

// search is the main command for the cli.
func search(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := newLogger()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the jobrank", zap.String("version", version))

	if config.Search.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.Search.Timeout)
		defer cancel()
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	format := cmd.Flag("output").Value.String()
	if format != outputTable && format != outputJSON {
		logger.Fatal("unsupported output format", zap.String("output", format))
	}

	profile, err := buildProfile(config.Profile)
	if err != nil {
		logger.Fatal("building the profile", zap.Error(err))
	}
	logger.Info("using profile",
		zap.Strings("skills", profile.Skills),
		zap.Int("experience_years", profile.ExperienceYears),
	)

	engine, err := newEngine(ctx, config, logger)
	if err != nil {
		logger.Fatal("preparing the search", zap.Error(err))
	}

	noFallback := cmd.Flag("no-fallback").Value.String() == "true"
	result, err := runSearch(ctx, engine, profile, searchRequest(config.Search), noFallback, logger)
	writeMetrics(cmd.Flag("metrics-file").Value.String(), logger)
	if err != nil {
		if errors.Is(err, aggregator.ErrNoResults) {
			logger.Info("exiting", zap.String("reason", "no postings found"))
			return
		}
		logger.Fatal("searching postings", zap.Error(err))
	}

	if result.Ranked.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no postings left after filters"))
		return
	}

	if format == outputJSON {
		if err := output.WriteJSON(os.Stdout, topPage(result)); err != nil {
			logger.Fatal("writing results", zap.Error(err))
		}
		return
	}

	if cmd.Flag("yes").Value.String() == "true" {
		if err := output.WriteResults(os.Stdout, result.Top(), 0); err != nil {
			logger.Fatal("writing results", zap.Error(err))
		}
		return
	}

	b := newBrowser(result, config.Search.PageSize, config.ExcludeFile, os.Stdout, logger)
	if err := b.run(); err != nil {
		logger.Fatal("exiting", zap.Error(err))
	}
}

// runSearch ranks the built-in dataset when every provider comes back empty,
// unless noFallback is set.
func runSearch(ctx context.Context, engine *matching.Engine, profile jobs.Profile, req matching.Request, noFallback bool, logger *zap.Logger) (*matching.Result, error) {
	result, err := engine.Search(ctx, profile, req)
	if err == nil || !errors.Is(err, aggregator.ErrNoResults) || noFallback {
		return result, err
	}

	postings, ferr := sources.FallbackPostings()
	if ferr != nil {
		return nil, fmt.Errorf("loading the fallback dataset: %w", ferr)
	}

	logger.Warn("no provider returned postings, ranking the fallback dataset",
		zap.Int("postings", len(postings)),
		zap.Int("failed_providers", len(result.Report.Failures())),
	)

	fallback, err := engine.Rank(ctx, profile, postings, req)
	if err != nil {
		return nil, err
	}
	fallback.Report = result.Report

	return fallback, nil
}

func topPage(result *matching.Result) output.Page {
	top := result.Top()
	return output.Page{
		SearchID:     result.SearchID,
		Page:         1,
		Pages:        1,
		Total:        result.Ranked.Len(),
		SemanticUsed: result.SemanticUsed,
		Filters:      result.Filters,
		Results:      top,
	}
}

func writeMetrics(path string, logger *zap.Logger) {
	if path == "" {
		return
	}
	if err := metrics.WriteToFile(path); err != nil {
		logger.Warn("writing metrics", zap.String("filename", path), zap.Error(err))
		return
	}
	logger.Debug("metrics written", zap.String("filename", path))
}
