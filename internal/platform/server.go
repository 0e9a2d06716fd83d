package platform

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"canopy/pkg/metrics"
)

// Handler builds the HTTP handler with routes. Edge middleware (request id,
// recovery, tracing, tenant rewrite) is mounted by the caller so the same
// routes can be tested without it.
func (a *App) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	r.Get("/metrics", metrics.Handler().ServeHTTP)

	r.Route("/api", func(ar chi.Router) {
		ar.Post("/auth/signup", a.signup)
		ar.Post("/auth/signin", a.signin)
		ar.Post("/auth/logout", a.logout)
		ar.Get("/auth/me", a.me)

		ar.Get("/tenants/current", a.currentTenant)
		ar.Get("/tenants/slug/{slug}", a.tenantBySlug)
		ar.Get("/tenants/{id}", a.tenantByID)
		ar.Put("/tenants/{id}", a.updateTenant)
	})

	// Downstream handlers key off the /tenant/{slug}/ prefix the rewriter
	// produces; that contract scopes their data access.
	r.Route("/tenant/{slug}", func(tr chi.Router) {
		tr.Get("/dashboard", a.tenantDashboard)
		tr.Get("/settings", a.tenantSettings)
	})

	r.Get("/", a.root)

	return r
}

func (a *App) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"platform": "canopy", "ok": true}, http.StatusOK)
}
