package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSkillsUsesWordBoundaries(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		expect []string
	}{
		{
			name:   "javascript does not yield java",
			text:   "We build frontends in JavaScript and TypeScript.",
			expect: []string{"JavaScript", "TypeScript"},
		},
		{
			name:   "java and javascript both present",
			text:   "Backend in Java, frontend in JavaScript",
			expect: []string{"Java", "JavaScript"},
		},
		{
			name:   "symbols in names",
			text:   "Experience with C++ and C# is a plus; CI/CD pipelines.",
			expect: []string{"C++", "C#", "CI/CD"},
		},
		{
			name:   "multi word terms across whitespace",
			text:   "Strong Machine\n  Learning background with TensorFlow.",
			expect: []string{"Machine Learning", "TensorFlow"},
		},
		{
			name:   "longer term masks shorter overlap",
			text:   "Services written with Spring Boot",
			expect: []string{"Spring Boot"},
		},
		{
			name:   "aliases map to canonical names",
			text:   "golang services on k8s backed by postgres",
			expect: []string{"Go", "PostgreSQL", "Kubernetes"},
		},
		{
			name:   "no go inside google",
			text:   "Google Cloud experience",
			expect: []string{"GCP"},
		},
		{
			name:   "empty text",
			text:   "   ",
			expect: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, ExtractSkills(tt.text))
		})
	}
}

func TestCanonical(t *testing.T) {
	assert.Equal(t, "Go", Canonical("golang"))
	assert.Equal(t, "Machine Learning", Canonical("machine   learning"))
	assert.Equal(t, "Erlang", Canonical(" Erlang "))
}

func TestForSkills(t *testing.T) {
	assert.Same(t, DefaultVocabulary(), ForSkills(nil))
	assert.Same(t, DefaultVocabulary(), ForSkills([]string{" ", ""}))

	vocab := ForSkills([]string{"Looker", "golang", "Snowflake"})
	assert.Equal(t, []string{"Looker", "Go", "Snowflake", "Docker"},
		vocab.Extract("Snowflake and Looker dashboards, services in Go, shipped with Docker"))
	assert.Equal(t, "Looker", vocab.Canonical("looker"))
}

func TestContainsToken(t *testing.T) {
	assert.True(t, ContainsToken("We use Python daily.", "python"))
	assert.False(t, ContainsToken("We use Pythonic idioms", "python"))
	assert.False(t, ContainsToken("anything", " "))
}

func TestExtractExperienceYears(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		expect int
	}{
		{name: "explicit phrase", text: "5+ years of experience with Go", expect: 5},
		{name: "experience phrase beats looser mention", text: "3 years experience in SQL and 7 yrs in Python", expect: 3},
		{name: "maximum within one pattern", text: "2 years of experience with SQL, 6 years experience with Go", expect: 6},
		{name: "looser mention alone", text: "7 yrs in Python", expect: 7},
		{name: "experience colon form", text: "Experience: 4 years", expect: 4},
		{name: "explicit wins over year span", text: "2 years of experience. Worked 2001-2020.", expect: 2},
		{name: "year span", text: "Acme 2015 - 2019, Globex 2019 - 2023", expect: 8},
		{name: "year span capped", text: "Since 1980 until 2024", expect: 30},
		{name: "single year", text: "Graduated 2020", expect: 0},
		{name: "nothing", text: "Enthusiastic engineer", expect: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, ExtractExperienceYears(tt.text))
		})
	}
}

func TestExtractRequiredYearsIgnoresYearSpan(t *testing.T) {
	assert.Equal(t, 0, ExtractRequiredYears("Founded in 1999, hiring in 2024"))
	assert.Equal(t, 3, ExtractRequiredYears("Requires 3 years of experience"))
}

func TestQueryKeywords(t *testing.T) {
	keywords := QueryKeywords("Remote Python, ML jobs for the data team python")
	assert.Equal(t, []string{"python", "data", "team"}, keywords)

	assert.True(t, MatchesQuery(keywords, "Senior Python Engineer", ""))
	assert.True(t, MatchesQuery(keywords, "", "Build data pipelines"))
	assert.False(t, MatchesQuery(keywords, "Accountant", "Bookkeeping"))
	assert.True(t, MatchesQuery(nil, "anything"))
}

func TestBuildQuery(t *testing.T) {
	assert.Equal(t, "go developer", BuildQuery(" go developer ", []string{"Python"}))
	assert.Equal(t, "Python SQL Go jobs", BuildQuery("", []string{"Python", "SQL", "Go", "Rust"}))
	assert.Equal(t, DefaultQuery, BuildQuery("", nil))
}

func TestCleanDescription(t *testing.T) {
	raw := "<p>We&#39;re hiring <b>Go</b> engineers</p><ul><li>Docker</li><li>AWS</li></ul>"
	assert.Equal(t, "We're hiring Go engineers Docker AWS", CleanHTML(raw))

	long := make([]rune, 0, 600)
	for range 600 {
		long = append(long, 'a')
	}
	assert.Len(t, []rune(CleanDescription(string(long))), MaxDescriptionRunes)
}

func TestFormatSalary(t *testing.T) {
	assert.Equal(t, "$120,000 - $160,000", FormatSalary(120000, 160000))
	assert.Equal(t, "$90,000+", FormatSalary(90000, 0))
	assert.Equal(t, "Up to $70,000", FormatSalary(0, 70000))
	assert.Equal(t, "Not specified", FormatSalary(0, 0))
}

func TestParseListing(t *testing.T) {
	listing := ParseListing("Senior Go Engineer - Acme Corp | LinkedIn", "Hybrid role in Berlin. $120,000 - $150,000 a year")
	assert.Equal(t, "Senior Go Engineer", listing.Title)
	assert.Equal(t, "Acme Corp", listing.Company)
	assert.Equal(t, "Hybrid", listing.Location)
	assert.Equal(t, "$120,000 - $150,000 a year", listing.Salary)

	listing = ParseListing("Data Scientist at Globex", "Join us in Austin, TX")
	assert.Equal(t, "Data Scientist", listing.Title)
	assert.Equal(t, "Globex", listing.Company)
	assert.Equal(t, "Austin, TX", listing.Location)
	assert.Equal(t, "Not specified", listing.Salary)
}

func TestBuildProfile(t *testing.T) {
	text := `Jane Doe - jane.doe@example.com - +1 555-123-4567
Data engineer with 6 years of experience in Python, SQL and Apache Spark.`

	profile := BuildProfile(text, []string{"golang"}, 0)

	require.Equal(t, []string{"Go", "Python", "SQL", "Spark"}, profile.Skills)
	assert.Equal(t, 6, profile.ExperienceYears)
	assert.Equal(t, "jane.doe@example.com", profile.Email)
	assert.Equal(t, "+1 555-123-4567", profile.Phone)
	assert.Equal(t, "Professional with 6+ years of experience in Go, Python, SQL, Spark.", profile.Summary)

	assert.Empty(t, profile.Education)

	explicit := BuildProfile(text, nil, 2)
	assert.Equal(t, 2, explicit.ExperienceYears)

	educated := BuildProfile(text+"\nMBA in Finance, 2019.", nil, 0)
	assert.Equal(t, []string{"MBA in Finance"}, educated.Education)
}

func TestExtractEducation(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		expect []string
	}{
		{
			name:   "degrees then fields",
			text:   "B.S. in Computer Science, 2014. MBA in Finance. Bachelor of Arts.",
			expect: []string{"B.S. in Computer", "Bachelor of Arts", "MBA in Finance", "Computer Science"},
		},
		{
			name:   "duplicates and cap",
			text:   "PhD in Physics. Engineering, Business, Mathematics, Data Science, Computer Science, engineering.",
			expect: []string{"PhD in Physics", "Engineering", "Business", "Mathematics", "Data Science"},
		},
		{name: "degree letters inside words", text: "Built jobs in Go for a mass market", expect: nil},
		{name: "nothing", text: "Backend engineer", expect: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, ExtractEducation(tt.text))
		})
	}
}
