package platform

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"canopy/pkg/edge"
	"canopy/pkg/tenants"
)

const bcryptCost = 12

type signupBody struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Name            string `json:"name"`
	TenantName      string `json:"tenantName"`
	TenantSlug      string `json:"tenantSlug"`
}

// signup creates the user and its tenant atomically and issues the auth
// cookie. One tenant per signup.
func (a *App) signup(w http.ResponseWriter, r *http.Request) {
	var b signupBody
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if !validEmail(b.Email) {
		writeError(w, "invalid email", http.StatusBadRequest)
		return
	}
	if !validPassword(b.Password) {
		writeError(w, "password must be at least 8 characters with upper, lower and digit", http.StatusBadRequest)
		return
	}
	if b.Password != b.ConfirmPassword {
		writeError(w, "passwords do not match", http.StatusBadRequest)
		return
	}
	if len(strings.TrimSpace(b.Name)) < 2 {
		writeError(w, "name too short", http.StatusBadRequest)
		return
	}
	if len(strings.TrimSpace(b.TenantName)) < 2 {
		writeError(w, "tenant name too short", http.StatusBadRequest)
		return
	}
	if !validSlug(b.TenantSlug) {
		writeError(w, "invalid tenant slug", http.StatusBadRequest)
		return
	}

	if _, err := a.store.FindUserByEmail(r.Context(), b.Email); err == nil {
		writeError(w, "email already registered", http.StatusBadRequest)
		return
	}
	if _, err := a.store.FindBySlug(r.Context(), b.TenantSlug); err == nil {
		writeError(w, "tenant slug taken", http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(b.Password), bcryptCost)
	if err != nil {
		a.log.Errorw("hash password", "err", err)
		writeError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	user, tenant, err := a.store.CreateUserWithTenant(r.Context(),
		tenants.NewUser{Email: b.Email, Name: strings.TrimSpace(b.Name), PasswordHash: string(hash)},
		tenants.NewTenant{Slug: b.TenantSlug, Name: strings.TrimSpace(b.TenantName)},
	)
	if err != nil {
		if errors.Is(err, tenants.ErrConflict) {
			writeError(w, "email or slug already taken", http.StatusBadRequest)
			return
		}
		a.log.Errorw("signup create", "err", err)
		writeError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	token, err := a.newToken(user.ID, tenant.ID)
	if err != nil {
		a.log.Errorw("sign token", "err", err)
		writeError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	a.setAuthCookie(w, token, edge.HostFromRequest(r), tenant.CustomDomain != "")

	writeJSON(w, map[string]any{
		"message": "account created",
		"user":    userView(user),
		"tenant":  map[string]any{"id": tenant.ID, "slug": tenant.Slug},
	}, http.StatusCreated)
}

type signinBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *App) signin(w http.ResponseWriter, r *http.Request) {
	var b signinBody
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil || b.Email == "" || b.Password == "" {
		writeError(w, "email and password required", http.StatusBadRequest)
		return
	}

	user, err := a.store.FindUserByEmail(r.Context(), b.Email)
	if err != nil {
		writeError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(b.Password)) != nil {
		writeError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	_, userTenants, err := a.store.GetUserWithTenants(r.Context(), user.ID)
	if err != nil || len(userTenants) == 0 {
		writeError(w, "no tenant found", http.StatusUnauthorized)
		return
	}
	tenant := userTenants[0]

	token, err := a.newToken(user.ID, tenant.ID)
	if err != nil {
		a.log.Errorw("sign token", "err", err)
		writeError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	a.setAuthCookie(w, token, edge.HostFromRequest(r), tenant.CustomDomain != "")

	writeJSON(w, map[string]any{
		"message": "signed in",
		"user":    userView(user),
		"tenant":  map[string]any{"id": tenant.ID, "slug": tenant.Slug},
	}, http.StatusOK)
}

func (a *App) logout(w http.ResponseWriter, r *http.Request) {
	a.clearAuthCookie(w, edge.HostFromRequest(r))
	writeJSON(w, map[string]any{"message": "logged out"}, http.StatusOK)
}

func (a *App) me(w http.ResponseWriter, r *http.Request) {
	userID, _, err := a.authedUser(r)
	if err != nil {
		writeError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	user, userTenants, err := a.store.GetUserWithTenants(r.Context(), userID)
	if err != nil {
		if errors.Is(err, tenants.ErrNotFound) {
			writeError(w, "user not found", http.StatusNotFound)
			return
		}
		a.log.Errorw("load user", "err", err)
		writeError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	views := make([]map[string]any, 0, len(userTenants))
	for _, t := range userTenants {
		views = append(views, tenantView(t))
	}
	writeJSON(w, map[string]any{"user": userView(user), "tenants": views}, http.StatusOK)
}
