package resolver

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTransformer decomposes Unicode text and drops combining marks, so
// "San José St." and "San Jose St." normalize to the same key.
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize produces the canonical matching key for a raw team string:
// Unicode-folded, lowercased, punctuation stripped except ampersand, and
// whitespace collapsed. The ampersand survives because "Texas A&M" and
// "William & Mary" are distinct identities from their stripped forms.
func Normalize(raw string) string {
	folded, _, err := transform.String(foldTransformer, raw)
	if err != nil {
		folded = raw
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range strings.ToLower(folded) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '&':
			b.WriteRune(r)
		case unicode.IsSpace(r), r == '-', r == '.', r == '\'':
			b.WriteRune(' ')
		default:
			// Remaining punctuation disappears without leaving a gap.
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
