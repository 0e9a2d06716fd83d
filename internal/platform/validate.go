package platform

import "regexp"

var (
	emailRe  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	slugRe   = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	domainRe = regexp.MustCompile(`^(?i)(?:[a-z0-9](?:[a-z0-9-]*[a-z0-9])?\.)+[a-z0-9](?:[a-z0-9-]*[a-z0-9])?$`)
)

func validEmail(s string) bool {
	return emailRe.MatchString(s)
}

// validPassword requires at least 8 characters with one lowercase, one
// uppercase and one digit.
func validPassword(s string) bool {
	if len(s) < 8 {
		return false
	}
	var lower, upper, digit bool
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z':
			lower = true
		case c >= 'A' && c <= 'Z':
			upper = true
		case c >= '0' && c <= '9':
			digit = true
		}
	}
	return lower && upper && digit
}

// validSlug accepts lowercase alphanumerics with single hyphens, 3-50 chars.
func validSlug(s string) bool {
	return len(s) >= 3 && len(s) <= 50 && slugRe.MatchString(s)
}

func validDomain(s string) bool {
	return domainRe.MatchString(s)
}
