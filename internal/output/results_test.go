package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/spigell/jobrank/internal/aggregator"
	"github.com/spigell/jobrank/internal/jobs"
	"github.com/spigell/jobrank/internal/scoring"
)

func disableColor(t *testing.T) {
	t.Helper()
	orig := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = orig })
}

func sampleResults() []scoring.MatchResult {
	return []scoring.MatchResult{
		{
			Posting: jobs.Posting{
				ID:       "remotive_1",
				Title:    "Senior Go Engineer",
				Company:  "Acme",
				Location: "Remote",
				Salary:   "$90,000 - $120,000",
				ApplyURL: "https://example.com/1",
				Source:   "remotive",
			},
			FinalScore:      0.9,
			SkillsScore:     1,
			ExperienceScore: 1,
			SemanticScore:   0.5,
			Explanation:     "Excellent match (90%)\nMatching skills: Go",
		},
		{
			Posting:    jobs.Posting{ID: "arbeitnow_2", Title: "Data Analyst", Company: "Globex", Location: "Berlin", Source: "arbeitnow"},
			FinalScore: 0.42,
		},
	}
}

func TestWriteResults(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteResults(&buf, sampleResults(), 10); err != nil {
		t.Fatalf("write results: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"SCORE", "11", "90%", "Senior Go Engineer", "12", "42%", "Globex", "arbeitnow"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestWriteDetails(t *testing.T) {
	disableColor(t)

	var buf bytes.Buffer
	if err := WriteDetails(&buf, sampleResults()[0]); err != nil {
		t.Fatalf("write details: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Senior Go Engineer at Acme",
		"Salary:     $90,000 - $120,000",
		"Score:      90%",
		"Semantic:   50%",
		"Excellent match (90%)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestWriteProviders(t *testing.T) {
	report := &aggregator.Report{Outcomes: []aggregator.Outcome{
		{Tier: "primary", Provider: "remotive", Count: 12, Duration: 1500 * time.Microsecond},
		{Tier: "primary", Provider: "jsearch", Kind: aggregator.KindTimeout, Err: errors.New("slow")},
	}}

	var buf bytes.Buffer
	if err := WriteProviders(&buf, report); err != nil {
		t.Fatalf("write providers: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"remotive", "12", "ok", "2ms", "jsearch", string(aggregator.KindTimeout)} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestDumpToTmpFile(t *testing.T) {
	page := Page{SearchID: "abc", Page: 1, Pages: 1, Total: 2, Results: sampleResults()}

	name, err := DumpToTmpFile(page)
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	t.Cleanup(func() { os.Remove(name) })

	raw, err := os.ReadFile(name)
	if err != nil {
		t.Fatalf("read dump: %v", err)
	}

	var got Page
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("decode dump: %v", err)
	}
	if got.SearchID != "abc" || len(got.Results) != 2 || got.Results[0].Posting.ID != "remotive_1" {
		t.Fatalf("unexpected dump: %+v", got)
	}
}

func TestShorten(t *testing.T) {
	if got := shorten("short", 10); got != "short" {
		t.Fatalf("unexpected %q", got)
	}
	if got := shorten("Principal Platform Engineer", 12); got != "Principal..." {
		t.Fatalf("unexpected %q", got)
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(0.906); got != "91%" {
		t.Fatalf("unexpected %q", got)
	}
}
