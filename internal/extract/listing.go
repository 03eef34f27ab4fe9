package extract

import (
	"regexp"
	"strings"
)

var (
	boardSuffix = regexp.MustCompile(`(?i)\s*[|-]\s*(LinkedIn|Indeed|Glassdoor)\b.*$`)
	atSplit     = regexp.MustCompile(`(?i)\s+at\s+`)

	locationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(Remote|Hybrid|On-site)\b`),
		regexp.MustCompile(`\b(?:in|at|located in)\s+([A-Z][a-z]+(?:\s*,\s*[A-Z]{2})?)`),
		regexp.MustCompile(`\b([A-Z][a-z]+,\s*[A-Z]{2})\b`),
	}

	salaryPattern = regexp.MustCompile(`(?i)\$[\d,]+(?:\s*-\s*\$[\d,]+)?(?:\s*(?:per|a)\s*(?:year|hour|month))?|[\d,]+k\s*-\s*[\d,]+k`)
)

// Listing is what can be recovered from a web search result about a job.
type Listing struct {
	Title    string
	Company  string
	Location string
	Salary   string
}

// ParseListing reads "Title - Company | Board" or "Title at Company" search
// result titles and scans the snippet for location and salary hints.
func ParseListing(title, snippet string) Listing {
	listing := Listing{Location: "Remote", Salary: "Not specified"}

	title = strings.TrimSpace(boardSuffix.ReplaceAllString(title, ""))
	switch {
	case strings.Contains(title, " - "):
		parts := strings.SplitN(title, " - ", 2)
		listing.Title = strings.TrimSpace(parts[0])
		listing.Company = strings.TrimSpace(parts[1])
	case atSplit.MatchString(title):
		parts := atSplit.Split(title, 2)
		listing.Title = strings.TrimSpace(parts[0])
		listing.Company = strings.TrimSpace(parts[1])
	default:
		listing.Title = title
	}

	for _, pattern := range locationPatterns {
		if match := pattern.FindStringSubmatch(snippet); match != nil {
			listing.Location = match[1]
			break
		}
	}

	if salary := salaryPattern.FindString(snippet); salary != "" {
		listing.Salary = salary
	}

	return listing
}
