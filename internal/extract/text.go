package extract

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const MaxDescriptionRunes = 500

var (
	stripPolicy = bluemonday.StrictPolicy()
	numbers     = message.NewPrinter(language.English)
)

// CleanHTML strips markup and entities and collapses whitespace.
func CleanHTML(s string) string {
	if s == "" {
		return ""
	}
	// block-level tags would otherwise glue words together
	replacer := strings.NewReplacer("<br>", " ", "<br/>", " ", "<br />", " ", "</p>", " ", "</li>", " ", "</div>", " ")
	text := stripPolicy.Sanitize(replacer.Replace(s))
	text = html.UnescapeString(text)
	return strings.Join(strings.Fields(text), " ")
}

// Truncate cuts s to at most limit runes.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// CleanDescription normalizes a raw description for storage on a posting.
func CleanDescription(s string) string {
	return Truncate(CleanHTML(s), MaxDescriptionRunes)
}

// FormatSalary renders a salary range. Non-positive bounds count as unknown.
func FormatSalary(minSalary, maxSalary float64) string {
	switch {
	case minSalary > 0 && maxSalary > 0:
		return numbers.Sprintf("$%d - $%d", int64(minSalary), int64(maxSalary))
	case minSalary > 0:
		return numbers.Sprintf("$%d+", int64(minSalary))
	case maxSalary > 0:
		return numbers.Sprintf("Up to $%d", int64(maxSalary))
	default:
		return "Not specified"
	}
}
