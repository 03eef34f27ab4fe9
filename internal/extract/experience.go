package extract

import (
	"regexp"
	"strconv"
)

const maxYearSpan = 30

var experiencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+)\+?\s*(?:years?|yrs?)\s*(?:of)?\s*(?:experience|exp)`),
	regexp.MustCompile(`(?i)experience[:\s]+(\d+)\+?\s*(?:years?|yrs?)`),
	regexp.MustCompile(`(?i)(\d+)\+?\s*(?:years?|yrs?)\s*(?:in|of|working)`),
}

var yearPattern = regexp.MustCompile(`\b(20\d{2}|19\d{2})\b`)

// ExtractExperienceYears estimates years of experience from text. Explicit
// phrases win: patterns are tried from strictest to loosest and the largest N
// of the first pattern that matches is used. Otherwise the span between the earliest and latest four-digit year is used,
// capped at 30. Zero means unspecified.
func ExtractExperienceYears(text string) int {
	if years, ok := explicitYears(text); ok {
		return years
	}
	return yearSpan(text)
}

// ExtractRequiredYears reads only explicit experience phrases. Posting text
// often mentions founding or copyright years, so the span heuristic is not
// applied to it.
func ExtractRequiredYears(text string) int {
	years, _ := explicitYears(text)
	return years
}

func explicitYears(text string) (int, bool) {
	for _, pattern := range experiencePatterns {
		best, found := 0, false
		for _, match := range pattern.FindAllStringSubmatch(text, -1) {
			n, err := strconv.Atoi(match[1])
			if err != nil {
				continue
			}
			found = true
			best = max(best, n)
		}
		if found {
			return best, true
		}
	}
	return 0, false
}

func yearSpan(text string) int {
	matches := yearPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return 0
	}

	earliest, latest := 0, 0
	for i, match := range matches {
		year, err := strconv.Atoi(match)
		if err != nil {
			continue
		}
		if i == 0 || year < earliest {
			earliest = year
		}
		if i == 0 || year > latest {
			latest = year
		}
	}

	return min(latest-earliest, maxYearSpan)
}
