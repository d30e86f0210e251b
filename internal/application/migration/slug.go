package migrationapp

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxSlugLength bounds generated slugs to the platform's URL limits
const maxSlugLength = 80

var asciiFold = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// DeriveSlug produces a URL-safe slug from a display name: accents are
// folded to ASCII, everything outside [a-z0-9] becomes a hyphen, runs of
// hyphens collapse, and the result is bounded. Names with no usable
// characters get a deterministic fallback built from the source ID.
func DeriveSlug(name, sourceID string) string {
	folded, _, err := transform.String(asciiFold, name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case r == '\'', r == '’':
			// Apostrophes vanish rather than splitting the word
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	slug := strings.Trim(b.String(), "-")
	if len(slug) > maxSlugLength {
		slug = strings.Trim(slug[:maxSlugLength], "-")
	}
	if slug == "" {
		if sourceID == "" {
			return "item"
		}
		slug = "item-" + sanitizeToken(sourceID)
		if len(slug) > maxSlugLength {
			slug = slug[:maxSlugLength]
		}
	}
	return slug
}

func sanitizeToken(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SlugRegistry tracks slugs already used on one destination account during a
// run and suffixes collisions deterministically. It is owned by a single run
// and is not safe for concurrent use.
type SlugRegistry struct {
	used map[string]int
}

// NewSlugRegistry creates a registry, optionally pre-seeded with slugs that
// already exist on the destination.
func NewSlugRegistry(existing ...string) *SlugRegistry {
	r := &SlugRegistry{used: make(map[string]int, len(existing))}
	for _, slug := range existing {
		r.used[slug] = 1
	}
	return r
}

// Reserve returns the slug itself if free, otherwise the first suffixed
// variant not yet taken. The returned value is recorded as used.
func (r *SlugRegistry) Reserve(slug string) string {
	if _, taken := r.used[slug]; !taken {
		r.used[slug] = 1
		return slug
	}

	for n := r.used[slug]; ; n++ {
		candidate := fmt.Sprintf("%s-%d", slug, n)
		if len(candidate) > maxSlugLength {
			overflow := len(candidate) - maxSlugLength
			candidate = fmt.Sprintf("%s-%d", slug[:len(slug)-overflow], n)
		}
		if _, taken := r.used[candidate]; !taken {
			r.used[slug] = n + 1
			r.used[candidate] = 1
			return candidate
		}
	}
}
