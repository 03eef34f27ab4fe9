package jobs

import (
	"path/filepath"
	"testing"
)

func TestNormalizeFillsDefaults(t *testing.T) {
	p := Normalize(Posting{ID: " remotive_1 ", Title: " Go Developer "})

	if p.ID != "remotive_1" {
		t.Fatalf("expected trimmed id, got %q", p.ID)
	}
	if p.Company != UnknownCompany {
		t.Fatalf("expected unknown company, got %q", p.Company)
	}
	if p.Salary != NotSpecified || p.Location != NotSpecified {
		t.Fatalf("expected not specified defaults, got salary=%q location=%q", p.Salary, p.Location)
	}
	if p.RequiredSkills == nil {
		t.Fatalf("expected empty skills slice, got nil")
	}
}

func TestFingerprintIsCaseInsensitive(t *testing.T) {
	a := Fingerprint(Posting{Title: "Backend Engineer", Company: "Acme"})
	b := Fingerprint(Posting{Title: " backend engineer", Company: "ACME "})

	if a != b {
		t.Fatalf("expected equal fingerprints, got %q and %q", a, b)
	}
	if a != "backend engineer|acme" {
		t.Fatalf("unexpected fingerprint %q", a)
	}
}

func TestWithSkillsDoesNotMutateOriginal(t *testing.T) {
	original := Posting{ID: "1", RequiredSkills: []string{"Go"}}
	enriched := original.WithSkills([]string{"Python", "SQL"})
	enriched.RequiredSkills[0] = "Rust"

	if len(original.RequiredSkills) != 1 || original.RequiredSkills[0] != "Go" {
		t.Fatalf("original posting was mutated: %+v", original.RequiredSkills)
	}

	withYears := original.WithExperience(-3)
	if withYears.ExperienceYears != 0 {
		t.Fatalf("expected negative years to clamp to 0, got %d", withYears.ExperienceYears)
	}
}

func TestExcludePreservesOrder(t *testing.T) {
	postings := NewPostings([]Posting{
		{ID: "1", Company: "Acme"},
		{ID: "2", Company: "Globex"},
		{ID: "3", Company: "acme"},
		{ID: "4", Company: "Initech"},
	})

	excluded := postings.Exclude(PostingCompanyField, []string{"ACME"})

	if len(excluded) != 2 || excluded[0] != "1" || excluded[1] != "3" {
		t.Fatalf("unexpected excluded ids: %v", excluded)
	}
	if postings.Len() != 2 || postings.Items[0].ID != "2" || postings.Items[1].ID != "4" {
		t.Fatalf("unexpected remaining postings: %+v", postings.Items)
	}
}

func TestReportByCompany(t *testing.T) {
	postings := NewPostings([]Posting{
		{ID: "1", Title: "Go Developer", Company: "Acme", Source: "remotive", ApplyURL: "https://example.com", RequiredSkills: []string{"Go", "SQL"}},
		{ID: "2", Title: "SRE", Company: "Acme", Source: "remotive"},
	})

	report := postings.ReportByCompany()

	entries, ok := report["Acme (remotive)"]
	if !ok {
		t.Fatalf("expected company key in report")
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0]["skills"] != "Go, SQL" {
		t.Fatalf("unexpected skills entry: %q", entries[0]["skills"])
	}
}

func TestExcludedPostingsRoundTripThroughFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exclude.json")

	empty, err := GetExcludedPostingsFromFile(path)
	if err != nil {
		t.Fatalf("missing file should not fail: %v", err)
	}
	if len(empty.Items) != 0 {
		t.Fatalf("expected no entries, got %d", len(empty.Items))
	}

	postings := NewPostings([]Posting{{ID: "a"}, {ID: "b"}})
	empty.Append(postings.ToExcluded())
	empty.Append(NewPostings([]Posting{{ID: "b"}, {ID: "c"}}).ToExcluded())

	if err := empty.ToFile(path); err != nil {
		t.Fatalf("write exclude file: %v", err)
	}

	loaded, err := GetExcludedPostingsFromFile(path)
	if err != nil {
		t.Fatalf("read exclude file: %v", err)
	}

	ids := loaded.PostingIDs()
	if len(ids) != 3 || ids[0] != "a" || ids[1] != "b" || ids[2] != "c" {
		t.Fatalf("unexpected ids: %v", ids)
	}
}

func TestNewProfileDedupsSkills(t *testing.T) {
	profile := NewProfile([]string{"Python", " python ", "SQL", "", "sql", "Go"}, -1, "  text ")

	if len(profile.Skills) != 3 {
		t.Fatalf("expected 3 skills, got %v", profile.Skills)
	}
	if profile.Skills[0] != "Python" || profile.Skills[1] != "SQL" || profile.Skills[2] != "Go" {
		t.Fatalf("unexpected skills order: %v", profile.Skills)
	}
	if profile.ExperienceYears != 0 {
		t.Fatalf("expected years clamped to 0, got %d", profile.ExperienceYears)
	}
	if profile.Text() != "text" {
		t.Fatalf("unexpected profile text %q", profile.Text())
	}
}
