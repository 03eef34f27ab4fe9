package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/jobrank/internal/jobs"
	"github.com/spigell/jobrank/internal/semantic"
)

func TestScoreDataScientistScenario(t *testing.T) {
	skills := []string{"Python", "SQL", "Machine Learning", "TensorFlow"}
	profile := jobs.NewProfile(skills, 3, "")
	posting := jobs.Posting{ID: "ds", Title: "Data Scientist", RequiredSkills: skills, ExperienceYears: 2}

	result := NewScorer(nil, false).Score(profile, posting)

	assert.Equal(t, 1.0, result.SkillsScore)
	assert.Equal(t, 1.0, result.ExperienceScore)
	assert.Equal(t, semantic.NeutralScore, result.SemanticScore)
	assert.InDelta(t, 0.90, result.FinalScore, 1e-9)
	assert.Contains(t, result.Explanation, "Excellent match")
	assert.Contains(t, result.Explanation, "Semantic similarity: not available")
	assert.Empty(t, result.MissingSkills)
}

func TestSkillsScore(t *testing.T) {
	tests := []struct {
		name    string
		profile []string
		posting jobs.Posting
		expect  float64
		matched []string
		missing []string
	}{
		{
			name:    "no required skills is neutral",
			profile: []string{"Go"},
			posting: jobs.Posting{},
			expect:  NeutralSkillsScore,
			matched: []string{},
			missing: []string{},
		},
		{
			name:    "superset of required is 1",
			profile: []string{"go", "Docker", "Kubernetes", "SQL"},
			posting: jobs.Posting{RequiredSkills: []string{"Go", "Kubernetes"}},
			expect:  1.0,
			matched: []string{"Go", "Kubernetes"},
			missing: []string{},
		},
		{
			name:    "alias counts as the same skill",
			profile: []string{"Golang", "k8s"},
			posting: jobs.Posting{RequiredSkills: []string{"Go", "Kubernetes", "Terraform", "AWS"}},
			expect:  0.5,
			matched: []string{"Go", "Kubernetes"},
			missing: []string{"AWS", "Terraform"},
		},
		{
			name:    "broader profile skill matches when the description mentions it",
			profile: []string{"React"},
			posting: jobs.Posting{
				RequiredSkills: []string{"React Native", "TypeScript"},
				Description:    "We build our apps with React Native.",
			},
			expect:  0.5,
			matched: []string{"React Native"},
			missing: []string{"TypeScript"},
		},
		{
			name:    "containment without a description mention does not count",
			profile: []string{"React"},
			posting: jobs.Posting{RequiredSkills: []string{"React Native"}},
			expect:  0,
			matched: []string{},
			missing: []string{"React Native"},
		},
		{
			name:    "short skill does not match inside other words",
			profile: []string{"R"},
			posting: jobs.Posting{
				RequiredSkills: []string{"Rust", "Ruby"},
				Description:    "rust and ruby for our runtime",
			},
			expect:  0,
			matched: []string{},
			missing: []string{"Ruby", "Rust"},
		},
		{
			name:    "duplicate required skills count once",
			profile: []string{"SQL"},
			posting: jobs.Posting{RequiredSkills: []string{"SQL", "sql", "Spark"}},
			expect:  0.5,
			matched: []string{"SQL"},
			missing: []string{"Spark"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, matched, missing := SkillsScore(tt.profile, tt.posting)
			assert.InDelta(t, tt.expect, score, 1e-9)
			assert.Equal(t, tt.matched, matched)
			assert.Equal(t, tt.missing, missing)
		})
	}
}

func TestExperienceScore(t *testing.T) {
	tests := []struct {
		candidate int
		required  int
		expect    float64
	}{
		{candidate: 0, required: 0, expect: 0.8},
		{candidate: 25, required: 0, expect: 0.8},
		{candidate: 5, required: 5, expect: 1.0},
		{candidate: 9, required: 5, expect: 1.0},
		{candidate: 3, required: 4, expect: 0.8},
		{candidate: 2, required: 4, expect: 0.5},
		{candidate: 3, required: 10, expect: 0.3},
		{candidate: 1, required: 10, expect: 0.2},
		{candidate: -2, required: 10, expect: 0.2},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.expect, ExperienceScore(tt.candidate, tt.required), 1e-9, "candidate=%d required=%d", tt.candidate, tt.required)
	}
}

func TestScoreUsesSemanticScores(t *testing.T) {
	scorer := NewScorer(map[string]float64{"a": 1.0, "b": 0.25, "c": 1.7}, true)
	profile := jobs.NewProfile([]string{"Go"}, 1, "")

	a := scorer.Score(profile, jobs.Posting{ID: "a", RequiredSkills: []string{"Go"}, ExperienceYears: 4})
	assert.Equal(t, 1.0, a.SemanticScore)
	assert.InDelta(t, 0.5+0.3*0.25+0.2, a.FinalScore, 1e-9)
	assert.Contains(t, a.Explanation, "requires 4+ years")
	assert.Contains(t, a.Explanation, "Semantic similarity: 1.00")

	assert.Equal(t, 0.25, scorer.SemanticScore("b"))
	assert.Equal(t, 1.0, scorer.SemanticScore("c"))
	assert.Equal(t, semantic.NeutralScore, scorer.SemanticScore("unknown"))
}

func TestScoresStayInRange(t *testing.T) {
	scorer := NewScorer(map[string]float64{"x": -3}, true)
	profiles := []jobs.Profile{
		jobs.NewProfile(nil, 0, ""),
		jobs.NewProfile([]string{"Python", "SQL"}, 40, ""),
	}
	postings := []jobs.Posting{
		{ID: "x", RequiredSkills: []string{"Python"}, ExperienceYears: 50},
		{ID: "y", ExperienceYears: 0},
		{ID: "z", RequiredSkills: []string{"Python", "python", "SQL"}, Description: "python sql"},
	}

	for _, profile := range profiles {
		for _, posting := range postings {
			result := scorer.Score(profile, posting)
			for _, v := range []float64{result.FinalScore, result.SkillsScore, result.ExperienceScore, result.SemanticScore} {
				require.GreaterOrEqual(t, v, 0.0)
				require.LessOrEqual(t, v, 1.0)
			}
		}
	}
}

func TestExplanationLimitsSkillLists(t *testing.T) {
	profile := jobs.NewProfile([]string{"A1", "A2", "A3", "A4", "A5", "A6"}, 0, "")
	posting := jobs.Posting{RequiredSkills: []string{"A1", "A2", "A3", "A4", "A5", "A6", "B1", "B2", "B3", "B4"}}

	result := NewScorer(nil, false).Score(profile, posting)

	assert.Len(t, result.MatchedSkills, 6)
	assert.Len(t, result.MissingSkills, 4)
	assert.Contains(t, result.Explanation, "Matching skills: A1, A2, A3, A4, A5\n")
	assert.Contains(t, result.Explanation, "Skills to develop: B1, B2, B3\n")
	assert.Contains(t, result.Explanation, "Experience: no stated requirement")
}

func TestVerdict(t *testing.T) {
	assert.Equal(t, "Excellent match", Verdict(0.8))
	assert.Equal(t, "Good match", Verdict(0.6))
	assert.Equal(t, "Partial match", Verdict(0.4))
	assert.Equal(t, "Low match", Verdict(0.39))
}
