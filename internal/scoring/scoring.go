// Package scoring computes the hybrid match score of a posting for a profile.
package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spigell/jobrank/internal/extract"
	"github.com/spigell/jobrank/internal/jobs"
	"github.com/spigell/jobrank/internal/semantic"
)

// Fixed weights of the three sub-scores.
const (
	SkillsWeight     = 0.50
	ExperienceWeight = 0.30
	SemanticWeight   = 0.20
)

const (
	// NeutralSkillsScore is used when a posting lists no required skills.
	NeutralSkillsScore = 0.5
	// UnspecifiedExperienceScore is used when a posting states no required years.
	UnspecifiedExperienceScore = 0.8
	minExperienceScore         = 0.2

	maxMatchedShown = 5
	maxMissingShown = 3
)

// MatchResult is the scored view of one posting. It is never modified after
// Score returns it.
type MatchResult struct {
	Posting         jobs.Posting `json:"posting"`
	FinalScore      float64      `json:"final_score"`
	SkillsScore     float64      `json:"skills_score"`
	ExperienceScore float64      `json:"experience_score"`
	SemanticScore   float64      `json:"semantic_score"`
	MatchedSkills   []string     `json:"matched_skills"`
	MissingSkills   []string     `json:"missing_skills"`
	Explanation     string       `json:"explanation"`
}

// Scorer combines skills, experience and semantic sub-scores.
type Scorer struct {
	semantic  map[string]float64
	available bool
}

// NewScorer takes normalized semantic scores keyed by posting id. available
// false means every posting gets semantic.NeutralScore.
func NewScorer(semanticScores map[string]float64, available bool) *Scorer {
	return &Scorer{semantic: semanticScores, available: available && semanticScores != nil}
}

func (s *Scorer) Score(profile jobs.Profile, p jobs.Posting) MatchResult {
	skills, matched, missing := SkillsScore(profile.Skills, p)
	experience := ExperienceScore(profile.ExperienceYears, p.ExperienceYears)
	sem := s.SemanticScore(p.ID)

	final := clamp(SkillsWeight*skills + ExperienceWeight*experience + SemanticWeight*sem)

	return MatchResult{
		Posting:         p,
		FinalScore:      final,
		SkillsScore:     skills,
		ExperienceScore: experience,
		SemanticScore:   sem,
		MatchedSkills:   matched,
		MissingSkills:   missing,
		Explanation:     explain(final, experience, sem, s.available, p.ExperienceYears, matched, missing),
	}
}

// SemanticScore returns the posting's normalized similarity, or the neutral
// score when none is known.
func (s *Scorer) SemanticScore(id string) float64 {
	if s == nil || !s.available {
		return semantic.NeutralScore
	}
	score, ok := s.semantic[id]
	if !ok {
		return semantic.NeutralScore
	}
	return clamp(score)
}

// SkillsScore is the share of required skills the profile covers, with the
// matched and missing required skills sorted by name.
//
// A required skill counts as matched when the profile has it, or when the
// posting description mentions it and some profile skill contains it (or is
// contained by it) as a whole token. The larger of that count and the plain
// case-insensitive intersection is used.
func SkillsScore(profileSkills []string, p jobs.Posting) (float64, []string, []string) {
	required := jobs.DedupSkills(p.RequiredSkills)
	if len(required) == 0 {
		return NeutralSkillsScore, []string{}, []string{}
	}

	have := make(map[string]string, len(profileSkills))
	for _, skill := range profileSkills {
		if key := skillKey(skill); key != "" {
			have[key] = skill
		}
	}

	matched := make([]string, 0, len(required))
	missing := make([]string, 0, len(required))
	exact := 0
	for _, req := range required {
		key := skillKey(req)
		_, direct := have[key]
		if direct {
			exact++
		}

		if (direct || extract.ContainsToken(p.Description, key)) && overlaps(key, have) {
			matched = append(matched, req)
			continue
		}
		missing = append(missing, req)
	}

	count := max(len(matched), exact)
	sortSkills(matched)
	sortSkills(missing)

	return min(float64(count)/float64(len(required)), 1.0), matched, missing
}

// ExperienceScore grades candidate years against required years.
func ExperienceScore(candidate, required int) float64 {
	if required <= 0 {
		return UnspecifiedExperienceScore
	}

	have := float64(max(candidate, 0))
	need := float64(required)
	switch {
	case have >= need:
		return 1.0
	case have >= 0.75*need:
		return 0.8
	case have >= 0.5*need:
		return 0.5
	default:
		return max(minExperienceScore, have/need)
	}
}

// Verdict labels a final score.
func Verdict(final float64) string {
	switch {
	case final >= 0.8:
		return "Excellent match"
	case final >= 0.6:
		return "Good match"
	case final >= 0.4:
		return "Partial match"
	default:
		return "Low match"
	}
}

func explain(final, experience, sem float64, semAvailable bool, required int, matched, missing []string) string {
	lines := []string{fmt.Sprintf("%s (%.0f%%)", Verdict(final), final*100)}

	if len(matched) > 0 {
		lines = append(lines, "Matching skills: "+strings.Join(head(matched, maxMatchedShown), ", "))
	}
	if len(missing) > 0 {
		lines = append(lines, "Skills to develop: "+strings.Join(head(missing, maxMissingShown), ", "))
	}

	switch {
	case required <= 0:
		lines = append(lines, "Experience: no stated requirement")
	case experience >= 0.8:
		lines = append(lines, fmt.Sprintf("Experience: meets %d+ year requirement", required))
	default:
		lines = append(lines, fmt.Sprintf("Experience: may need more experience (requires %d+ years)", required))
	}

	if semAvailable {
		lines = append(lines, fmt.Sprintf("Semantic similarity: %.2f", sem))
	} else {
		lines = append(lines, "Semantic similarity: not available")
	}

	return strings.Join(lines, "\n")
}

func overlaps(key string, have map[string]string) bool {
	for own := range have {
		if own == key || extract.ContainsToken(own, key) || extract.ContainsToken(key, own) {
			return true
		}
	}
	return false
}

func skillKey(skill string) string {
	return strings.ToLower(extract.Canonical(skill))
}

func sortSkills(skills []string) {
	sort.SliceStable(skills, func(i, j int) bool {
		return strings.ToLower(skills[i]) < strings.ToLower(skills[j])
	})
}

func head(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
