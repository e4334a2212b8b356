package services

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// combiningDiacriticals is the Combining Diacritical Marks block, U+0300..U+036F.
var combiningDiacriticals = &unicode.RangeTable{
	R16: []unicode.Range16{{Lo: 0x0300, Hi: 0x036f, Stride: 1}},
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// GenerateSlug turns a title into a lowercase, hyphen separated URL token.
// Accents are removed through canonical decomposition, so letters without a
// decomposition (Turkish dotless "ı", non-Latin scripts) become hyphens:
// "Türkçe başlık" gives "turkce-basl-k". Existing slugs depend on this.
func GenerateSlug(title string) string {
	lower := strings.ToLower(title)

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(combiningDiacriticals)))
	stripped, _, err := transform.String(t, lower)
	if err != nil {
		stripped = lower
	}

	return strings.Trim(nonSlugChars.ReplaceAllString(stripped, "-"), "-")
}
