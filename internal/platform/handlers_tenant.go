package platform

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"canopy/pkg/edge"
	"canopy/pkg/tenants"
)

// currentTenant resolves a tenant from the request's host headers. This is
// the internal lookup endpoint the edge layer queries for custom domains,
// which is why it must live under the never-rewritten /api prefix.
func (a *App) currentTenant(w http.ResponseWriter, r *http.Request) {
	hostname := edge.HostFromRequest(r)
	if hostname == "" {
		writeError(w, "tenant not found", http.StatusNotFound)
		return
	}
	t, err := a.store.FindByHostCandidate(r.Context(), hostname)
	if err != nil {
		if errors.Is(err, tenants.ErrNotFound) {
			writeError(w, "tenant not found", http.StatusNotFound)
			return
		}
		a.log.Errorw("host lookup", "host", hostname, "err", err)
		writeError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"tenant": tenantView(t)}, http.StatusOK)
}

func (a *App) tenantBySlug(w http.ResponseWriter, r *http.Request) {
	t, err := a.store.FindBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, tenants.ErrNotFound) {
			writeError(w, "tenant not found", http.StatusNotFound)
			return
		}
		a.log.Errorw("slug lookup", "err", err)
		writeError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"tenant": tenantView(t)}, http.StatusOK)
}

func (a *App) tenantByID(w http.ResponseWriter, r *http.Request) {
	t, err := a.store.GetTenantByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, tenants.ErrNotFound) {
			writeError(w, "tenant not found", http.StatusNotFound)
			return
		}
		a.log.Errorw("id lookup", "err", err)
		writeError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"tenant": tenantView(t)}, http.StatusOK)
}

type tenantUpdateBody struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	CustomDomain *string `json:"customDomain"`
}

// updateTenant applies an authenticated settings update. Absent fields stay
// unchanged; an explicit empty customDomain clears the mapping.
func (a *App) updateTenant(w http.ResponseWriter, r *http.Request) {
	if _, _, err := a.authedUser(r); err != nil {
		writeError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var b tenantUpdateBody
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if b.CustomDomain != nil && *b.CustomDomain != "" && !validDomain(*b.CustomDomain) {
		writeError(w, "invalid domain format", http.StatusBadRequest)
		return
	}

	t, err := a.store.UpdateTenant(r.Context(), chi.URLParam(r, "id"), tenants.TenantUpdate{
		Name:         b.Name,
		Description:  b.Description,
		CustomDomain: b.CustomDomain,
	})
	if err != nil {
		switch {
		case errors.Is(err, tenants.ErrNotFound):
			writeError(w, "tenant not found", http.StatusNotFound)
		case errors.Is(err, tenants.ErrDomainTaken):
			writeError(w, "domain already in use", http.StatusBadRequest)
		default:
			a.log.Errorw("update tenant", "err", err)
			writeError(w, "internal server error", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, map[string]any{"tenant": tenantView(t)}, http.StatusOK)
}

// tenantDashboard and tenantSettings are the tenant-scoped targets the
// rewriter points at. They key off the /tenant/{slug}/ prefix only.
func (a *App) tenantDashboard(w http.ResponseWriter, r *http.Request) {
	t, err := a.store.FindBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, "tenant not found", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{"page": "dashboard", "tenant": tenantView(t)}, http.StatusOK)
}

func (a *App) tenantSettings(w http.ResponseWriter, r *http.Request) {
	t, err := a.store.FindBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, "tenant not found", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{"page": "settings", "tenant": tenantView(t)}, http.StatusOK)
}
