package schema

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify lower-cases name, strips accents and collapses every run of
// non-alphanumeric characters into a single dash.
func Slugify(name string) string {
	return joinWords(name, '-')
}

// SnakeCase converts name to snake_case, used for default relation field names.
func SnakeCase(name string) string {
	var b strings.Builder
	prevLower := false
	for _, r := range stripAccents(name) {
		if unicode.IsUpper(r) && prevLower {
			b.WriteRune(' ')
		}
		prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
		b.WriteRune(r)
	}
	return joinWords(b.String(), '_')
}

// CreateUID derives a content-type uid from its display name.
func CreateUID(displayName string) string {
	slug := Slugify(displayName)
	return "api::" + slug + "." + slug
}

// CreateComponentUID derives a component uid from its display name and category.
func CreateComponentUID(displayName, category string) string {
	return Slugify(category) + "." + Slugify(displayName)
}

// SplitComponentUID returns the category and name parts of a component uid.
func SplitComponentUID(uid string) (category, name string) {
	i := strings.LastIndex(uid, ".")
	if i < 0 {
		return "", uid
	}
	return uid[:i], uid[i+1:]
}

func joinWords(name string, sep rune) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(stripAccents(name)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pending && b.Len() > 0 {
				b.WriteRune(sep)
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	return b.String()
}

func stripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
