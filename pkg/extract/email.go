package extract

import (
	"regexp"
	"strings"
)

// EmailMatch is one validated email found in a document, with the pattern
// family that matched and a bounded snippet of surrounding text for human
// review.
type EmailMatch struct {
	Email   string `json:"email"`
	Pattern string `json:"pattern"`
	Context string `json:"context,omitempty"`
}

// emailPattern is one pattern family. Families are tried in descending
// confidence order; a dedup keeps the highest-confidence hit per address.
type emailPattern struct {
	name string
	re   *regexp.Regexp
}

var emailPatterns = []emailPattern{
	// Plain addresses.
	{"standard", regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)},
	// Addresses with whitespace around the @.
	{"spaced", regexp.MustCompile(`[a-zA-Z0-9._%+\-]+\s+@\s+[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)},
	// "[at]" / "[dot]" obfuscation, with optional whitespace and either
	// bracket style.
	{"obfuscated", regexp.MustCompile(`(?i)[a-zA-Z0-9._%+\-]+\s*[\[(]\s*at\s*[\])]\s*[a-zA-Z0-9\-]+(?:\s*[\[(]\s*dot\s*[\])]\s*[a-zA-Z0-9\-]+)+`)},
}

var (
	atToken  = regexp.MustCompile(`(?i)\s*[\[(]\s*at\s*[\])]\s*`)
	dotToken = regexp.MustCompile(`(?i)\s*[\[(]\s*dot\s*[\])]\s*`)
	hexLocal = regexp.MustCompile(`^[0-9a-f]{16,}$`)
)

// roleLocalParts are local parts that address a function rather than a
// person. The tool wants personally-attributable contacts only.
var roleLocalParts = map[string]bool{
	"info": true, "support": true, "admin": true, "administrator": true,
	"sales": true, "contact": true, "help": true, "hello": true,
	"noreply": true, "no-reply": true, "donotreply": true,
	"webmaster": true, "postmaster": true, "abuse": true,
	"office": true, "service": true, "customerservice": true,
	"marketing": true, "press": true, "media": true, "careers": true,
	"hr": true, "jobs": true, "billing": true, "legal": true,
	"privacy": true, "team": true, "feedback": true, "newsletter": true,
}

// fileExtensions catch image/asset references that look like addresses,
// e.g. "logo@2x.png".
var fileExtensions = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "gif": true, "svg": true,
	"webp": true, "ico": true, "css": true, "js": true, "pdf": true,
	"woff": true, "woff2": true, "ttf": true, "mp4": true,
}

// suspiciousTLDs are reserved or non-routable top-level domains.
var suspiciousTLDs = map[string]bool{
	"local": true, "localhost": true, "test": true, "invalid": true,
	"example": true, "internal": true, "lan": true,
}

// testDomains are sandbox domains that never hold real contacts.
var testDomains = map[string]bool{
	"example.com": true, "example.org": true, "example.net": true,
	"test.com": true, "email.com": true, "domain.com": true,
	"yourdomain.com": true, "sentry.io": true, "sentry.wixpress.com": true,
}

// DefaultExcludedDomains lists the direct-sales organizations whose
// corporate addresses are excluded; the tool prefers personally-attributable
// addresses over corporate ones.
var DefaultExcludedDomains = []string{
	"marykay.com",
	"avon.com",
	"pamperedchef.com",
	"scentsy.com",
	"scentsy.us",
	"tupperware.com",
	"youngliving.com",
	"herbalife.com",
}

const contextRadius = 60

// Emails extracts validated, deduplicated email addresses from raw text or
// HTML. excludedDomains extends DefaultExcludedDomains; pass nil for the
// defaults alone. Results keep first-seen order of the normalized address.
func Emails(text string, excludedDomains []string) []EmailMatch {
	excluded := make(map[string]bool, len(DefaultExcludedDomains)+len(excludedDomains))
	for _, d := range DefaultExcludedDomains {
		excluded[strings.ToLower(d)] = true
	}
	for _, d := range excludedDomains {
		excluded[strings.ToLower(d)] = true
	}

	seen := make(map[string]int) // normalized email -> index in matches
	var matches []EmailMatch

	for _, pattern := range emailPatterns {
		for _, loc := range pattern.re.FindAllStringIndex(text, -1) {
			raw := text[loc[0]:loc[1]]
			email := NormalizeEmail(raw)
			if !ValidEmail(email, excluded) {
				continue
			}
			// Earlier pattern families are higher confidence; first
			// writer wins.
			if _, ok := seen[email]; ok {
				continue
			}
			seen[email] = len(matches)
			matches = append(matches, EmailMatch{
				Email:   email,
				Pattern: pattern.name,
				Context: snippet(text, loc[0], loc[1]),
			})
		}
	}

	return matches
}

// NormalizeEmail lowercases a raw match and resolves [at]/[dot] obfuscation
// and stray whitespace.
func NormalizeEmail(raw string) string {
	s := atToken.ReplaceAllString(raw, "@")
	s = dotToken.ReplaceAllString(s, ".")
	s = strings.Join(strings.Fields(s), "")
	return strings.ToLower(s)
}

// IsValidEmail reports whether a single raw address passes normalization
// and the validation rules. excludedDomains extends the default exclusions.
func IsValidEmail(raw string, excludedDomains []string) bool {
	excluded := make(map[string]bool, len(DefaultExcludedDomains)+len(excludedDomains))
	for _, d := range DefaultExcludedDomains {
		excluded[strings.ToLower(d)] = true
	}
	for _, d := range excludedDomains {
		excluded[strings.ToLower(d)] = true
	}
	return ValidEmail(NormalizeEmail(raw), excluded)
}

// ValidEmail applies the precision-over-recall validation rules to an
// already-normalized address.
func ValidEmail(email string, excludedDomains map[string]bool) bool {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || domain == "" {
		return false
	}
	if strings.Contains(domain, "@") || !strings.Contains(domain, ".") {
		return false
	}

	if roleLocalParts[local] {
		return false
	}
	if hexLocal.MatchString(local) {
		return false
	}

	tld := domain[strings.LastIndex(domain, ".")+1:]
	if fileExtensions[tld] || suspiciousTLDs[tld] {
		return false
	}
	if testDomains[domain] || excludedDomains[domain] {
		return false
	}

	return true
}

// snippet returns a bounded window of text around a match.
func snippet(text string, start, end int) string {
	from := start - contextRadius
	if from < 0 {
		from = 0
	}
	to := end + contextRadius
	if to > len(text) {
		to = len(text)
	}
	return strings.TrimSpace(text[from:to])
}
