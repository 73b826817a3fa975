package services

import (
	"fmt"
	"strings"
)

// Slugify lowercases a name and collapses every non-alphanumeric run into a
// single hyphen.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// resolveSlug disambiguates a computed slug against the rows already using
// the same prefix: when the base is taken, the count of prefix matches is
// appended. Two concurrent creations can still race to the same suffix; the
// unique index on the slug column turns that into an insert error rather
// than a silent collision.
func resolveSlug(base string, existing []string) string {
	for _, s := range existing {
		if s == base {
			return fmt.Sprintf("%s-%d", base, len(existing))
		}
	}
	return base
}
