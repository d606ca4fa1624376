// Package enrich resolves lead email addresses through a tiered
// waterfall: free pattern guessing first, then a paid lookup API.
package enrich

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Guess is a pattern-derived email candidate.
type Guess struct {
	Email      string
	Confidence float64
}

// asciiFold strips diacritics so "José Muñoz" yields "jose" and "munoz".
var asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func foldName(s string) string {
	folded, _, err := transform.String(asciiFold, s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// GuessEmail derives the most likely email pattern from a full name and
// domain. US law firms overwhelmingly use first.last, so that pattern
// carries the highest confidence. Returns a zero Guess when the name or
// domain cannot support a guess.
func GuessEmail(fullName, domain string) Guess {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" || !strings.Contains(domain, ".") {
		return Guess{}
	}

	parts := strings.Fields(strings.TrimSpace(fullName))
	if len(parts) == 0 {
		return Guess{}
	}

	first := foldName(parts[0])
	if first == "" {
		return Guess{}
	}

	if len(parts) == 1 {
		return Guess{Email: first + "@" + domain, Confidence: 0.2}
	}

	last := foldName(parts[len(parts)-1])
	if last == "" {
		return Guess{Email: first + "@" + domain, Confidence: 0.2}
	}

	return Guess{Email: first + "." + last + "@" + domain, Confidence: 0.35}
}
