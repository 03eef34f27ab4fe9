package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spigell/jobrank/internal/jobs"
)

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?\d{1,3}[-.\s]?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
)

const maxEducation = 5

// educationPatterns match degrees with the word that follows them, then well
// known fields of study.
var educationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:bachelor'?s?|b\.?s\.?|b\.?a\.?)\s+(?:of\s+|in\s+)?\w+`),
	regexp.MustCompile(`(?i)\b(?:master'?s?|m\.?s\.?|m\.?a\.?|mba)\s+(?:of\s+|in\s+)?\w+`),
	regexp.MustCompile(`(?i)\b(?:ph\.?d\.?|doctorate)\s+(?:of\s+|in\s+)?\w+`),
	regexp.MustCompile(`(?i)\b(?:computer science|data science|engineering|business|mathematics)\b`),
}

// BuildProfile derives a profile from raw resume text. Explicit skills and a
// positive years value take precedence over what the text yields.
func BuildProfile(text string, skills []string, years int) jobs.Profile {
	found := ExtractSkills(text)
	merged := make([]string, 0, len(skills)+len(found))
	for _, skill := range skills {
		merged = append(merged, Canonical(skill))
	}
	merged = append(merged, found...)

	if years <= 0 {
		years = ExtractExperienceYears(text)
	}

	profile := jobs.NewProfile(merged, years, text)
	profile.Email = emailPattern.FindString(text)
	profile.Phone = strings.TrimSpace(phonePattern.FindString(text))
	profile.Education = ExtractEducation(text)
	profile.Summary = Summary(profile)

	return profile
}

// ExtractEducation lists degree and field-of-study mentions in the order the
// patterns find them, without case-insensitive duplicates and at most five.
func ExtractEducation(text string) []string {
	var found []string
	seen := make(map[string]struct{})
	for _, pattern := range educationPatterns {
		for _, match := range pattern.FindAllString(text, -1) {
			match = strings.Join(strings.Fields(match), " ")
			key := strings.ToLower(match)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			found = append(found, match)
			if len(found) == maxEducation {
				return found
			}
		}
	}
	return found
}

// Summary renders a one-line description of a profile.
func Summary(p jobs.Profile) string {
	top := p.Skills
	if len(top) > 5 {
		top = top[:5]
	}
	skills := "various technologies"
	if len(top) > 0 {
		skills = strings.Join(top, ", ")
	}
	if p.ExperienceYears > 0 {
		return fmt.Sprintf("Professional with %d+ years of experience in %s.", p.ExperienceYears, skills)
	}
	return fmt.Sprintf("Professional with experience in %s.", skills)
}
