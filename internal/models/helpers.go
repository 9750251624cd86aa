package models

import "strings"

// maxSlugLen bounds slugs used in exported note filenames.
const maxSlugLen = 60

// Slugify turns a note title into a filename fragment: lowercase [a-z0-9]
// runs joined by single dashes, no leading or trailing dash, at most
// maxSlugLen bytes.
func Slugify(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		case r == ' ', r == '_', r == '-':
			pendingDash = true
		}
	}
	slug := b.String()
	if len(slug) > maxSlugLen {
		slug = strings.TrimRight(slug[:maxSlugLen], "-")
	}
	return slug
}
