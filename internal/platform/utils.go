package platform

import (
	"encoding/json"
	"net/http"

	"canopy/pkg/tenants"
)

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, map[string]string{"error": msg}, status)
}

func tenantView(t tenants.Tenant) map[string]any {
	var domain any
	if t.CustomDomain != "" {
		domain = t.CustomDomain
	}
	return map[string]any{
		"id":           t.ID,
		"slug":         t.Slug,
		"name":         t.Name,
		"description":  t.Description,
		"customDomain": domain,
	}
}

func userView(u tenants.User) map[string]any {
	return map[string]any{
		"id":    u.ID,
		"email": u.Email,
		"name":  u.Name,
	}
}
