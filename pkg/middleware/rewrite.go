// pkg/middleware/rewrite.go
package middleware

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"canopy/pkg/edge"
	"canopy/pkg/metrics"
)

// Rewrite is the edge-layer orchestrator: it parses the host, asks the
// resolver for a decision, and either forwards the request unchanged or
// substitutes the tenant-scoped path in place. The substitution is a
// server-side rewrite, invisible to the client; query string and method are
// untouched. A ?__debug=1 request returns a diagnostic payload instead.
func Rewrite(rv *edge.Resolver, log *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Operational endpoints bypass resolution entirely.
			switch r.URL.Path {
			case "/healthz", "/metrics":
				next.ServeHTTP(w, r)
				return
			}
			if rv.ExcludedPath(r.URL.Path) {
				metrics.RewriteDecisions.WithLabelValues("pass").Inc()
				next.ServeHTTP(w, r)
				return
			}

			hostname := edge.HostFromRequest(r)

			if r.URL.Query().Get("__debug") == "1" {
				metrics.RewriteDecisions.WithLabelValues("debug").Inc()
				writeDebug(w, r, rv, hostname)
				return
			}

			dec := rv.Resolve(r.Context(), hostname, r.URL.Path)
			metrics.RewriteDecisions.WithLabelValues(dec.Kind.String()).Inc()
			if dec.Kind == edge.Rewrite {
				if log != nil {
					log.Debugw("tenant rewrite", "host", hostname, "from", r.URL.Path, "to", dec.TargetPath)
				}
				r.URL.Path = dec.TargetPath
				r.URL.RawPath = ""
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeDebug(w http.ResponseWriter, r *http.Request, rv *edge.Resolver, hostname string) {
	rh := rv.Inspect(hostname)
	var sub any
	if rh.Subdomain != "" {
		sub = rh.Subdomain
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"hostname":       rh.Hostname,
		"forwardedHost":  r.Header.Get("X-Forwarded-Host"),
		"forwardedProto": r.Header.Get("X-Forwarded-Proto"),
		"pathname":       r.URL.Path,
		"subdomain":      sub,
	})
}
