package match

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	punctuationPattern = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	whitespacePattern  = regexp.MustCompile(`\s+`)
)

// NormalizeSlug reduces a listing identifier to its canonical lookup key:
// the last non-empty path segment, lowercased. Inputs that do not parse as
// URLs get the same segment extraction applied to the raw string; when no
// segment can be extracted the whole input is lowercased. Never fails, and
// is idempotent.
func NormalizeSlug(identifier string) string {
	candidate := identifier
	if parsed, err := url.Parse(identifier); err == nil && parsed.IsAbs() {
		candidate = parsed.Path
	}
	if segment := lastPathSegment(candidate); segment != "" {
		return strings.ToLower(segment)
	}
	return strings.ToLower(identifier)
}

func lastPathSegment(path string) string {
	parts := strings.Split(path, "/")
	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] != "" {
			return parts[i]
		}
	}
	return ""
}

// NormalizeTitle prepares a title for similarity comparison: lowercase,
// diacritics folded to their base letters, punctuation stripped, whitespace
// collapsed. The result is never persisted.
func NormalizeTitle(text string) string {
	folded, _, err := transform.String(foldTransformer(), text)
	if err != nil {
		folded = text
	}
	lowered := strings.ToLower(folded)
	stripped := punctuationPattern.ReplaceAllString(lowered, "")
	collapsed := whitespacePattern.ReplaceAllString(stripped, " ")
	return strings.TrimSpace(collapsed)
}

func foldTransformer() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}
