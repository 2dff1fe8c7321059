package teams

import (
	"regexp"
	"strings"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// slugify derives a database name from a team name: lowercase, runs of
// anything else collapsed to single hyphens. "BK Höllviken 2" becomes
// "bk-h-llviken-2".
func slugify(name string) string {
	slug := strings.ToLower(name)
	slug = nonSlugChars.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > 48 {
		slug = strings.Trim(slug[:48], "-")
	}
	if slug == "" {
		slug = "team"
	}
	return slug
}
