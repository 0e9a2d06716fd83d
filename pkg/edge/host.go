// pkg/edge/host.go
package edge

import (
	"net/http"
	"strings"
)

// ResolvedHost is the request-scoped result of host header inspection.
// Subdomain is empty until the resolver detects one.
type ResolvedHost struct {
	Hostname  string
	Subdomain string
}

// ParseHost picks the effective hostname for a request. A proxy-forwarded
// host wins over the direct host; when multiple proxies appended values the
// first comma-separated element is authoritative. The trailing :port is
// stripped and the result is lowercased. Never fails; empty when no source
// header was present.
func ParseHost(forwarded, direct string) string {
	host := forwarded
	if strings.TrimSpace(host) == "" {
		host = direct
	}
	if i := strings.Index(host, ","); i >= 0 {
		host = host[:i]
	}
	host = strings.TrimSpace(host)
	if i := strings.Index(host, ":"); i >= 0 {
		host = host[:i]
	}
	return strings.ToLower(host)
}

// HostFromRequest applies ParseHost to an incoming request. net/http moves
// the Host header onto r.Host, so it is passed explicitly as the fallback.
func HostFromRequest(r *http.Request) string {
	return ParseHost(r.Header.Get("X-Forwarded-Host"), r.Host)
}

// plausibleHostname rejects degenerate input before any directory lookup:
// empty strings, stray whitespace, or characters that cannot occur in a
// domain name.
func plausibleHostname(h string) bool {
	if h == "" || len(h) > 253 {
		return false
	}
	for i := 0; i < len(h); i++ {
		c := h[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '.':
		default:
			return false
		}
	}
	return !strings.HasPrefix(h, ".") && !strings.HasSuffix(h, ".")
}
