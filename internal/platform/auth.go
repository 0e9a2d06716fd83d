package platform

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	authCookie = "auth-token"
	tokenTTL   = 30 * 24 * time.Hour
)

var errUnauthorized = errors.New("unauthorized")

// newToken issues an HS256 token carrying the user and tenant identity.
func (a *App) newToken(userID, tenantID string) (string, error) {
	now := time.Now()
	tok, err := jwt.NewBuilder().
		Claim("userId", userID).
		Claim("tenantId", tenantID).
		IssuedAt(now).
		Expiration(now.Add(tokenTTL)).
		Build()
	if err != nil {
		return "", err
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, a.cfg.JWTSecret))
	if err != nil {
		return "", err
	}
	return string(signed), nil
}

func (a *App) parseToken(raw string) (userID, tenantID string, err error) {
	tok, err := jwt.Parse([]byte(raw), jwt.WithKey(jwa.HS256, a.cfg.JWTSecret), jwt.WithValidate(true))
	if err != nil {
		return "", "", errUnauthorized
	}
	uid, ok := tok.Get("userId")
	if !ok {
		return "", "", errUnauthorized
	}
	tid, ok := tok.Get("tenantId")
	if !ok {
		return "", "", errUnauthorized
	}
	u, uok := uid.(string)
	t, tok2 := tid.(string)
	if !uok || !tok2 || u == "" || t == "" {
		return "", "", errUnauthorized
	}
	return u, t, nil
}

// authedUser resolves the authenticated identity from the request cookie.
func (a *App) authedUser(r *http.Request) (userID, tenantID string, err error) {
	c, err := r.Cookie(authCookie)
	if err != nil || c.Value == "" {
		return "", "", errUnauthorized
	}
	return a.parseToken(c.Value)
}

// isLocalHost reports whether the hostname is the development marker or a
// subdomain of it.
func (a *App) isLocalHost(hostname string) bool {
	return hostname == a.cfg.LocalMarker || strings.HasSuffix(hostname, "."+a.cfg.LocalMarker)
}

func (a *App) setAuthCookie(w http.ResponseWriter, token, hostname string, hasCustomDomain bool) {
	c := &http.Cookie{
		Name:     authCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(tokenTTL / time.Second),
		Secure:   a.cfg.Env == "prod",
	}
	if d, ok := CookieDomain(a.isLocalHost(hostname), hasCustomDomain, hostname); ok {
		c.Domain = d
	}
	http.SetCookie(w, c)
}

// clearAuthCookie expires both scope variants of the auth cookie. Browsers
// key cookies by name+domain+path, so a host-only clear would leave a
// domain-scoped session cookie from setAuthCookie intact. At logout the
// tenant's custom-domain status is unknown, so both clears are always sent;
// expiring a variant that was never set is a no-op.
func (a *App) clearAuthCookie(w http.ResponseWriter, hostname string) {
	base := http.Cookie{
		Name:     authCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	}
	http.SetCookie(w, &base)
	if d, ok := CookieDomain(a.isLocalHost(hostname), false, hostname); ok {
		scoped := base
		scoped.Domain = d
		http.SetCookie(w, &scoped)
	}
}
