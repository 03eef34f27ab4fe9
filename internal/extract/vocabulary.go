// Package extract derives structured signals (skills, experience, salary,
// location) from unstructured posting and resume text.
package extract

import (
	"sort"
	"strings"
)

// commonSkills is the controlled vocabulary. Overlapping terms are listed
// separately; matching checks longer terms first and masks what they cover.
var commonSkills = []string{
	// languages
	"Python", "Java", "JavaScript", "TypeScript", "C++", "C#", "Go", "Rust",
	"Ruby", "PHP", "Swift", "Kotlin", "Scala", "R", "MATLAB",
	// web
	"React", "Vue.js", "Angular", "Node.js", "Express", "Django", "Flask",
	"FastAPI", "Spring", "Spring Boot", "Next.js", "HTML", "CSS", "SASS", "GraphQL",
	// data and ml
	"SQL", "PostgreSQL", "MySQL", "MongoDB", "Redis", "Elasticsearch",
	"Machine Learning", "Deep Learning", "TensorFlow", "PyTorch", "Keras",
	"NLP", "Computer Vision", "Pandas", "NumPy", "Scikit-learn", "Data Analysis",
	// cloud and ops
	"AWS", "Azure", "GCP", "Docker", "Kubernetes", "Terraform",
	"CI/CD", "Jenkins", "GitHub Actions", "Linux", "Bash", "DevOps",
	// tools
	"Git", "Jira", "Agile", "Scrum", "REST API", "Microservices",
	"Kafka", "RabbitMQ", "Spark", "Hadoop", "Airflow", "dbt", "MLOps",
	// soft skills
	"Leadership", "Communication", "Problem Solving", "Team Management",
	"Project Management", "Agile Methodologies", "Product Management",
}

// aliases map alternative spellings onto vocabulary entries.
var aliases = map[string]string{
	"golang":              "Go",
	"k8s":                 "Kubernetes",
	"postgres":            "PostgreSQL",
	"nodejs":              "Node.js",
	"reactjs":             "React",
	"react.js":            "React",
	"vue":                 "Vue.js",
	"vuejs":               "Vue.js",
	"nextjs":              "Next.js",
	"sklearn":             "Scikit-learn",
	"scikit learn":        "Scikit-learn",
	"restful api":         "REST API",
	"rest apis":           "REST API",
	"google cloud":        "GCP",
	"amazon web services": "AWS",
	"ci / cd":             "CI/CD",
	"ml ops":              "MLOps",
}

type term struct {
	match string
	name  string
	order int
}

// Vocabulary matches a fixed list of skill names against text. It is
// read-only after construction and safe for concurrent use.
type Vocabulary struct {
	terms     []term
	canonical map[string]string
}

// NewVocabulary builds a vocabulary from names and alias spellings.
func NewVocabulary(names []string, alias map[string]string) *Vocabulary {
	v := &Vocabulary{canonical: make(map[string]string, len(names)+len(alias))}

	order := make(map[string]int, len(names))
	for i, name := range names {
		key := normalizeText(name)
		if key == "" {
			continue
		}
		if _, ok := v.canonical[key]; ok {
			continue
		}
		order[name] = i
		v.canonical[key] = name
		v.terms = append(v.terms, term{match: key, name: name, order: i})
	}

	for spelling, name := range alias {
		key := normalizeText(spelling)
		idx, ok := order[name]
		if key == "" || !ok {
			continue
		}
		if _, exists := v.canonical[key]; exists {
			continue
		}
		v.canonical[key] = name
		v.terms = append(v.terms, term{match: key, name: name, order: idx})
	}

	sort.SliceStable(v.terms, func(i, j int) bool {
		if len(v.terms[i].match) != len(v.terms[j].match) {
			return len(v.terms[i].match) > len(v.terms[j].match)
		}
		return v.terms[i].match < v.terms[j].match
	})

	return v
}

var defaultVocabulary = NewVocabulary(commonSkills, aliases)

// DefaultVocabulary returns the built-in skill vocabulary.
func DefaultVocabulary() *Vocabulary {
	return defaultVocabulary
}

// ForSkills returns a vocabulary that lists skills ahead of the built-in
// entries, so profile skills outside the built-in list are still found.
// Known skills keep their canonical spelling.
func ForSkills(skills []string) *Vocabulary {
	names := make([]string, 0, len(skills)+len(commonSkills))
	for _, skill := range skills {
		if skill = strings.TrimSpace(skill); skill != "" {
			names = append(names, defaultVocabulary.Canonical(skill))
		}
	}
	if len(names) == 0 {
		return defaultVocabulary
	}
	return NewVocabulary(append(names, commonSkills...), aliases)
}

// Extract returns the vocabulary entries found in text as whole tokens, in
// vocabulary order. Longer entries win over shorter entries they overlap.
func (v *Vocabulary) Extract(text string) []string {
	masked := []byte(normalizeText(text))
	if len(masked) == 0 {
		return []string{}
	}

	found := make(map[string]int)
	for _, t := range v.terms {
		spans := findTokens(string(masked), t.match)
		if len(spans) == 0 {
			continue
		}
		if _, ok := found[t.name]; !ok {
			found[t.name] = t.order
		}
		for _, span := range spans {
			for i := span[0]; i < span[1]; i++ {
				masked[i] = ' '
			}
		}
	}

	skills := make([]string, 0, len(found))
	for name := range found {
		skills = append(skills, name)
	}
	sort.Slice(skills, func(i, j int) bool {
		return found[skills[i]] < found[skills[j]]
	})

	return skills
}

// Canonical maps a skill spelling to its vocabulary name. Unknown skills are
// returned trimmed.
func (v *Vocabulary) Canonical(skill string) string {
	if name, ok := v.canonical[normalizeText(skill)]; ok {
		return name
	}
	return strings.TrimSpace(skill)
}

// ExtractSkills matches the default vocabulary against text.
func ExtractSkills(text string) []string {
	return defaultVocabulary.Extract(text)
}

// Canonical maps a skill spelling onto the default vocabulary.
func Canonical(skill string) string {
	return defaultVocabulary.Canonical(skill)
}

// ContainsToken reports whether needle occurs in text as a whole token.
func ContainsToken(text, needle string) bool {
	needle = normalizeText(needle)
	if needle == "" {
		return false
	}
	return len(findTokens(normalizeText(text), needle)) > 0
}

// findTokens returns spans of needle within haystack that are bounded by
// non-token characters on both sides.
func findTokens(haystack, needle string) [][2]int {
	var spans [][2]int
	start := 0
	for start <= len(haystack)-len(needle) {
		idx := strings.Index(haystack[start:], needle)
		if idx < 0 {
			break
		}
		idx += start
		end := idx + len(needle)
		if isBoundary(haystack, idx-1) && isBoundary(haystack, end) {
			spans = append(spans, [2]int{idx, end})
		}
		start = idx + 1
	}
	return spans
}

func isBoundary(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return true
	}
	return !isTokenByte(s[i])
}

func isTokenByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		return true
	case c == '+', c == '#':
		return true
	case c >= 0x80:
		return true
	default:
		return false
	}
}

// normalizeText lower-cases text and collapses whitespace runs.
func normalizeText(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
