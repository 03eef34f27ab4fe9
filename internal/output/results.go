package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/spigell/jobrank/internal/aggregator"
	"github.com/spigell/jobrank/internal/extract"
	"github.com/spigell/jobrank/internal/filtering"
	"github.com/spigell/jobrank/internal/scoring"
)

const (
	maxTitleRunes    = 48
	maxCompanyRunes  = 28
	maxLocationRunes = 28
)

// Page is the serialized form of one page of ranked results.
type Page struct {
	SearchID     string                `json:"search_id,omitempty"`
	Page         int                   `json:"page"`
	Pages        int                   `json:"pages"`
	Total        int                   `json:"total"`
	SemanticUsed bool                  `json:"semantic_used"`
	Filters      filtering.Trace       `json:"filters,omitempty"`
	Results      []scoring.MatchResult `json:"results"`
}

// WriteResults prints results as a table. offset is the rank of the first
// result minus one.
func WriteResults(w io.Writer, results []scoring.MatchResult, offset int) error {
	table := NewTable(w, []string{"#", "Score", "Title", "Company", "Location", "Source"})
	for i, r := range results {
		table.AddRow(
			strconv.Itoa(offset+i+1),
			Percent(r.FinalScore),
			shorten(r.Posting.Title, maxTitleRunes),
			shorten(r.Posting.Company, maxCompanyRunes),
			shorten(r.Posting.Location, maxLocationRunes),
			r.Posting.Source,
		)
	}
	return table.Render()
}

// WriteDetails prints the sub-scores and explanation of one result.
func WriteDetails(w io.Writer, r scoring.MatchResult) error {
	verdict := verdictColor(r.FinalScore).SprintFunc()
	p := r.Posting

	lines := []string{
		fmt.Sprintf("%s at %s", p.Title, p.Company),
		fmt.Sprintf("Location:   %s", p.Location),
		fmt.Sprintf("Salary:     %s", p.Salary),
		fmt.Sprintf("Source:     %s", p.Source),
		fmt.Sprintf("Apply:      %s", p.ApplyURL),
		fmt.Sprintf("Score:      %s", verdict(Percent(r.FinalScore))),
		fmt.Sprintf("Skills:     %s", Percent(r.SkillsScore)),
		fmt.Sprintf("Experience: %s", Percent(r.ExperienceScore)),
		fmt.Sprintf("Semantic:   %s", Percent(r.SemanticScore)),
		"",
		r.Explanation,
	}

	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}

// WriteProviders prints what every provider did during the search.
func WriteProviders(w io.Writer, report *aggregator.Report) error {
	table := NewTable(w, []string{"Tier", "Provider", "Postings", "Skipped", "Status", "Elapsed"})
	if report == nil {
		return table.Render()
	}

	for _, o := range report.Outcomes {
		status := "ok"
		if o.Failed() {
			status = string(o.Kind)
		}
		table.AddRow(
			o.Tier,
			o.Provider,
			strconv.Itoa(o.Count),
			strconv.Itoa(o.Skipped),
			status,
			o.Duration.Round(time.Millisecond).String(),
		)
	}
	return table.Render()
}

func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// DumpToTmpFile writes v as indented JSON to a new temporary file and returns
// its name.
func DumpToTmpFile(v any) (string, error) {
	file, err := os.CreateTemp("", "jobrank_results_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := WriteJSON(file, v); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// Percent renders a score in [0, 1] as a whole percentage.
func Percent(score float64) string {
	return fmt.Sprintf("%.0f%%", score*100)
}

func verdictColor(score float64) *color.Color {
	switch {
	case score >= 0.8:
		return color.New(color.FgGreen, color.Bold)
	case score >= 0.6:
		return color.New(color.FgGreen)
	case score >= 0.4:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}

func shorten(s string, limit int) string {
	cut := extract.Truncate(s, limit)
	if cut == s {
		return s
	}
	return extract.Truncate(s, limit-3) + "..."
}
