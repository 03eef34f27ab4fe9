package cmd

import (
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/jobrank/internal/aggregator"
	"github.com/spigell/jobrank/internal/filtering"
	"github.com/spigell/jobrank/internal/output"
	"github.com/spigell/jobrank/internal/sources"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Print the configured provider tiers and posting filters",
	Run: func(_ *cobra.Command, _ []string) {
		logger := newLogger()

		config, err := getConfig()
		if err != nil {
			logger.Fatal("getting a config", zap.Error(err))
		}

		agg, err := newAggregator(config, logger)
		if err != nil {
			logger.Fatal("building provider tiers", zap.Error(err))
		}

		if err := writeTiers(os.Stdout, agg.Tiers()); err != nil {
			logger.Fatal("writing tiers", zap.Error(err))
		}

		if err := writeFilters(os.Stdout, filtering.Default(), filterConfig(config)); err != nil {
			logger.Fatal("writing filters", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func writeTiers(w io.Writer, tiers []aggregator.Tier) error {
	table := output.NewTable(w, []string{"Order", "Tier", "Mode", "Provider"})
	for i, tier := range tiers {
		for _, provider := range tier.Providers {
			table.AddRow(strconv.Itoa(i+1), tier.Name, tier.Mode.String(), provider.Name())
		}
	}
	table.AddRow("-", "dataset", "on no results", sources.NameFallback)
	return table.Render()
}

func writeFilters(w io.Writer, steps []filtering.Filter, cfg filtering.Config) error {
	for _, step := range steps {
		if err := step.Validate(&cfg); err != nil {
			return err
		}
	}

	table := output.NewTable(w, []string{"Filter", "Enabled", "Details"})
	for _, status := range filtering.Describe(steps) {
		details := make([]string, 0, len(status.Details))
		for k, v := range status.Details {
			details = append(details, k+"="+v)
		}
		sort.Strings(details)
		table.AddRow(status.Name, strconv.FormatBool(status.Enabled), strings.Join(details, " "))
	}
	return table.Render()
}
