package platform

import "strings"

// CookieDomain decides the Domain attribute for the auth cookie. Local
// development and custom-domain tenants get a host-only cookie. On the
// platform's own domain the cookie is scoped to the hostname (www prefix
// stripped) with a leading dot, so a session created on the root domain is
// visible on every tenant subdomain beneath it. The second return is false
// when no Domain attribute should be set.
func CookieDomain(isLocalDev, tenantHasCustomDomain bool, hostname string) (string, bool) {
	if isLocalDev || tenantHasCustomDomain {
		return "", false
	}
	hostname = strings.TrimPrefix(hostname, "www.")
	if !strings.Contains(hostname, ".") {
		return "", false
	}
	return "." + hostname, true
}
