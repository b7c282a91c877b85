package reconcile

import (
	"fmt"
	"unicode/utf8"
)

const (
	titleTemplate = `Answers for "%s" (/u/%s)`
	titleFixed    = len(`Answers for "" (/u/)`)
	ellipsis      = "..."

	// DefaultTitleLimit is the destination forum's title limit
	DefaultTitleLimit = 300
)

// DestinationTitle renders the destination post title for a source post.
// Titles over limit characters have the source title trimmed and marked
// with "..." so the author mention survives.
func DestinationTitle(title, author string, limit int) string {
	if limit <= 0 {
		limit = DefaultTitleLimit
	}

	full := fmt.Sprintf(titleTemplate, title, author)
	if utf8.RuneCountInString(full) <= limit {
		return full
	}

	room := limit - titleFixed - utf8.RuneCountInString(author) - len(ellipsis)
	if room < 0 {
		// Author alone does not fit
		if limit <= len(ellipsis) {
			return truncateRunes(full, limit)
		}
		return truncateRunes(full, limit-len(ellipsis)) + ellipsis
	}

	return fmt.Sprintf(titleTemplate, truncateRunes(title, room)+ellipsis, author)
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
