package utils

import (
	"fmt"
	"strings"
	"unicode"
)

// Slugify converts a tour title into a URL-safe slug: lower-cased,
// accents stripped for the letters common in Italian titles, any other
// non-alphanumeric run collapsed into a single hyphen.
func Slugify(title string) string {
	var b strings.Builder
	lastHyphen := true // suppress leading hyphen
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		if repl, ok := accentMap[r]; ok {
			r = repl
		}
		if unicode.IsLetter(r) && r < 128 || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}

// accentMap folds the accented vowels that show up in tour titles.
var accentMap = map[rune]rune{
	'à': 'a', 'á': 'a', 'â': 'a', 'ä': 'a',
	'è': 'e', 'é': 'e', 'ê': 'e', 'ë': 'e',
	'ì': 'i', 'í': 'i', 'î': 'i', 'ï': 'i',
	'ò': 'o', 'ó': 'o', 'ô': 'o', 'ö': 'o',
	'ù': 'u', 'ú': 'u', 'û': 'u', 'ü': 'u',
	'ç': 'c', 'ñ': 'n',
}

// DisambiguateSlug appends a numeric suffix to base ("base-2", "base-3",
// ...) choosing the first candidate for which taken returns false.  The
// base itself is tried first.
func DisambiguateSlug(base string, taken func(string) bool) string {
	if !taken(base) {
		return base
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		if !taken(candidate) {
			return candidate
		}
	}
}
