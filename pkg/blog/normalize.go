package blog

import (
	"strings"

	"github.com/gosimple/slug"
)

// CategorySlug derives the URL-safe slug of a category name.
func CategorySlug(name string) string {
	return slug.Make(name)
}

func normalizePostFields(title, postSlug, intro *string) {
	*title = strings.TrimSpace(*title)
	*postSlug = strings.ToLower(strings.TrimSpace(*postSlug))
	*intro = strings.TrimSpace(*intro)
}
