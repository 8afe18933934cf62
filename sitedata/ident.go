package sitedata

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify converts a title to a URL-safe slug: accents are folded to ASCII,
// whitespace becomes a hyphen, other non-word characters are dropped and
// repeated hyphens collapse.
func Slugify(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(strings.TrimSpace(folded))

	var b strings.Builder
	prevHyphen := false
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
			prevHyphen = false
		case r == '-' || unicode.IsSpace(r):
			if !prevHyphen {
				b.WriteByte('-')
				prevHyphen = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// uniqueSlug derives a slug from title that is not in taken, appending -2,
// -3, ... on collision.
func uniqueSlug(title string, taken func(string) bool) string {
	base := Slugify(title)
	if base == "" {
		base = "post"
	}
	candidate := base
	for n := 2; taken(candidate); n++ {
		candidate = base + "-" + strconv.Itoa(n)
	}
	return candidate
}

// timestampID returns prefix-<unix millis>, bumping the number until it is
// not in taken.
func timestampID(prefix string, now time.Time, taken func(string) bool) string {
	ms := now.UnixMilli()
	for {
		id := prefix + "-" + strconv.FormatInt(ms, 10)
		if !taken(id) {
			return id
		}
		ms++
	}
}
