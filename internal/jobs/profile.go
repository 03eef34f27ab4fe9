package jobs

import (
	"strings"
)

// Profile is the candidate side of a match. It is built once per search.
type Profile struct {
	Skills          []string `json:"skills"`
	ExperienceYears int      `json:"experience_years"`
	RawText         string   `json:"raw_text,omitempty"`
	Summary         string   `json:"summary,omitempty"`
	Email           string   `json:"email,omitempty"`
	Phone           string   `json:"phone,omitempty"`
	Education       []string `json:"education,omitempty"`
}

// NewProfile trims and deduplicates skills case-insensitively, keeping the
// first spelling seen.
func NewProfile(skills []string, years int, rawText string) Profile {
	if years < 0 {
		years = 0
	}
	return Profile{
		Skills:          DedupSkills(skills),
		ExperienceYears: years,
		RawText:         strings.TrimSpace(rawText),
	}
}

// DedupSkills removes empty and case-insensitively repeated entries.
func DedupSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		if skill == "" {
			continue
		}
		key := strings.ToLower(skill)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, skill)
	}
	return out
}

// Text is the free text used as the semantic query for this profile.
func (p Profile) Text() string {
	if p.RawText != "" {
		return p.RawText
	}
	if p.Summary != "" {
		return p.Summary
	}
	return strings.Join(p.Skills, " ")
}
