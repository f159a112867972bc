package scraper

import (
	"errors"
	"regexp"
	"strings"

	errs "repscout/pkg/errors"
	"repscout/pkg/extract"
	"repscout/pkg/models"
)

var (
	nameSeparators = regexp.MustCompile(`[._\-+]+`)
	trailingDigits = regexp.MustCompile(`\d+$`)
	// cityStateZip matches "Dallas, TX 75201" and "Dallas, TX".
	cityStateZip = regexp.MustCompile(`([A-Za-z .'\-]+),\s*([A-Z]{2})(?:\s+(\d{5}))?`)
)

// splitName divides a display name into first and last parts. Everything
// after the first word goes to the last name.
func splitName(full string) (string, string) {
	fields := strings.Fields(strings.TrimSpace(full))
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return fields[0], ""
	default:
		return fields[0], strings.Join(fields[1:], " ")
	}
}

// nameFromEmailLocal guesses a person's name from the local part of an
// address, e.g. "jane.doe" -> ("Jane", "Doe"). Best effort only.
func nameFromEmailLocal(email string) (string, string) {
	local, _, _ := strings.Cut(email, "@")
	local = trailingDigits.ReplaceAllString(local, "")
	parts := nameSeparators.Split(local, -1)

	var words []string
	for _, p := range parts {
		if p == "" {
			continue
		}
		words = append(words, capitalize(strings.ToLower(p)))
	}
	return splitName(strings.Join(words, " "))
}

// capitalize uppercases the first byte of an ASCII word.
func capitalize(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// parseLocation extracts city, state and zip from free text like
// "Dallas, TX 75201". Returns empty strings when nothing matches.
func parseLocation(text string) (city, state, zip string) {
	m := cityStateZip.FindStringSubmatch(text)
	if m == nil {
		return "", "", ""
	}
	return strings.TrimSpace(m[1]), m[2], m[3]
}

// repFromEmail synthesizes a record from an extracted email, guessing the
// name from the local part.
func repFromEmail(match extract.EmailMatch, company models.CompanyConfig, source string) *models.SalesRep {
	first, last := nameFromEmailLocal(match.Email)
	rep := models.NewSalesRep(first, last, company.Name, source)
	rep.Email = match.Email
	return rep
}

// retryTransient reports whether a fetch failure is worth retrying. Typed
// failures consult their classification; anything untyped gets the benefit
// of the doubt.
func retryTransient(err error) bool {
	var typed *errs.Error
	if errors.As(err, &typed) {
		return typed.Retryable()
	}
	return true
}

// enrichFromText fills phone and social links from a document's text when
// the record does not have them yet.
func enrichFromText(rep *models.SalesRep, text string) {
	if rep.Phone == "" {
		if phones := extract.Phones(text); len(phones) > 0 {
			rep.Phone = phones[0]
		}
	}
	for platform, url := range extract.SocialLinks(text) {
		rep.SetSocialLink(platform, url)
	}
}
