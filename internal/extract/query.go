package extract

import (
	"regexp"
	"strings"
)

const DefaultQuery = "Software Developer"

var querySplit = regexp.MustCompile(`[,\s]+`)

var queryStopwords = map[string]struct{}{
	"jobs":   {},
	"job":    {},
	"remote": {},
	"and":    {},
	"the":    {},
	"for":    {},
}

// QueryKeywords splits a search query into lower-case keywords longer than
// two characters with stopwords removed.
func QueryKeywords(query string) []string {
	seen := make(map[string]struct{})
	keywords := make([]string, 0)
	for _, token := range querySplit.Split(strings.ToLower(query), -1) {
		token = strings.TrimSpace(token)
		if len(token) <= 2 {
			continue
		}
		if _, stop := queryStopwords[token]; stop {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		keywords = append(keywords, token)
	}
	return keywords
}

// MatchesQuery reports whether any keyword appears in one of texts. An empty
// keyword list matches everything.
func MatchesQuery(keywords []string, texts ...string) bool {
	if len(keywords) == 0 {
		return true
	}
	for _, text := range texts {
		lower := strings.ToLower(text)
		for _, keyword := range keywords {
			if strings.Contains(lower, keyword) {
				return true
			}
		}
	}
	return false
}

// BuildQuery turns profile skills into a search query when the caller did
// not provide one.
func BuildQuery(query string, skills []string) string {
	if query = strings.TrimSpace(query); query != "" {
		return query
	}
	if len(skills) == 0 {
		return DefaultQuery
	}
	top := skills
	if len(top) > 3 {
		top = top[:3]
	}
	return strings.Join(top, " ") + " jobs"
}
