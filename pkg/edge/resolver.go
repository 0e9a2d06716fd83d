// pkg/edge/resolver.go
package edge

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"canopy/pkg/metrics"
	"canopy/pkg/tenants"
)

// DecisionKind classifies what the rewriter should do with a request.
type DecisionKind int

const (
	// PassThrough forwards the request unchanged.
	PassThrough DecisionKind = iota
	// Rewrite substitutes the request path with Decision.TargetPath.
	Rewrite
	// Unresolved means the host looked like a tenant candidate but nothing
	// matched. The rewriter treats it like PassThrough; it exists so
	// diagnostics and metrics can tell the two apart.
	Unresolved
)

func (k DecisionKind) String() string {
	switch k {
	case Rewrite:
		return "rewrite"
	case Unresolved:
		return "unresolved"
	default:
		return "pass"
	}
}

// Decision is the resolver's verdict for one request.
type Decision struct {
	Kind       DecisionKind
	Slug       string
	TargetPath string
}

const (
	defaultLocalMarker   = "localhost"
	defaultLookupTimeout = 1500 * time.Millisecond
	tenantPathPrefix     = "/tenant/"
)

var defaultExcludedPrefixes = []string{"/api", "/assets", "/favicon.ico"}

// Resolver decides, per request, whether a host maps to a tenant and what
// path the request should be rewritten to. It holds no per-request state;
// one value serves the whole process.
type Resolver struct {
	BaseDomain       string
	LocalMarker      string        // defaults to "localhost"
	ExcludedPrefixes []string      // defaults to /api, /assets, /favicon.ico
	Directory        tenants.Directory
	LookupTimeout    time.Duration // bound on the custom-domain lookup
	Log              *zap.SugaredLogger
}

func (rv *Resolver) marker() string {
	if rv.LocalMarker != "" {
		return rv.LocalMarker
	}
	return defaultLocalMarker
}

func (rv *Resolver) excluded() []string {
	if len(rv.ExcludedPrefixes) > 0 {
		return rv.ExcludedPrefixes
	}
	return defaultExcludedPrefixes
}

// ExcludedPath reports whether path may never be rewritten (platform API,
// internal assets). Rewriting these would make the edge intercept its own
// directory lookup calls.
func (rv *Resolver) ExcludedPath(path string) bool {
	for _, p := range rv.excluded() {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// Inspect fills the request-scoped host view: the normalized hostname plus
// the tenant subdomain detected in it, if any.
func (rv *Resolver) Inspect(hostname string) ResolvedHost {
	return ResolvedHost{Hostname: hostname, Subdomain: rv.Subdomain(hostname)}
}

// Subdomain returns the tenant subdomain encoded in hostname, or "" when the
// host is the bare platform domain, its www variant, a local marker without a
// label in front, or anything else that does not match the subdomain rules.
func (rv *Resolver) Subdomain(hostname string) string {
	m := rv.marker()
	if hostname == m || strings.HasSuffix(hostname, "."+m) {
		parts := strings.Split(hostname, ".")
		if len(parts) > 1 && parts[0] != m {
			return parts[0]
		}
		return ""
	}
	base := rv.BaseDomain
	if base == "" || hostname == base || hostname == "www."+base {
		return ""
	}
	if strings.HasSuffix(hostname, "."+base) {
		return strings.TrimSuffix(hostname, "."+base)
	}
	return ""
}

// Resolve runs the decision algorithm for one request. First match wins:
// excluded path, local or production subdomain (with the loop guard), then
// the custom-domain directory fallback. Directory failures never escape;
// they degrade to Unresolved so the request falls through to platform
// routing.
func (rv *Resolver) Resolve(ctx context.Context, hostname, path string) Decision {
	if rv.ExcludedPath(path) {
		return Decision{Kind: PassThrough}
	}

	if !plausibleHostname(hostname) {
		return Decision{Kind: PassThrough}
	}

	if sub := rv.Subdomain(hostname); sub != "" {
		if scopedPath(path, sub) {
			return Decision{Kind: PassThrough}
		}
		return Decision{Kind: Rewrite, Slug: sub, TargetPath: targetFor(sub, path)}
	}

	if rv.Directory == nil {
		return Decision{Kind: PassThrough}
	}

	timeout := rv.LookupTimeout
	if timeout <= 0 {
		timeout = defaultLookupTimeout
	}
	lctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	t, err := rv.Directory.FindByHostCandidate(lctx, hostname)
	metrics.DirectoryLookupSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		if !errors.Is(err, tenants.ErrNotFound) && rv.Log != nil {
			rv.Log.Debugw("directory lookup failed", "host", hostname, "err", err)
		}
		return Decision{Kind: Unresolved}
	}
	if t.Slug == "" {
		return Decision{Kind: Unresolved}
	}
	if scopedPath(path, t.Slug) {
		return Decision{Kind: PassThrough}
	}
	return Decision{Kind: Rewrite, Slug: t.Slug, TargetPath: targetFor(t.Slug, path)}
}

// scopedPath reports whether path is already inside the tenant scope for
// slug. The check is segment-aware: /tenant/acme and /tenant/acme/x guard
// slug "acme", /tenant/acmeco does not.
func scopedPath(path, slug string) bool {
	p := tenantPathPrefix + slug
	return path == p || strings.HasPrefix(path, p+"/")
}

func targetFor(slug, path string) string {
	if path == "/" {
		return tenantPathPrefix + slug + "/dashboard"
	}
	return tenantPathPrefix + slug + path
}
