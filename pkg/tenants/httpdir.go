// pkg/tenants/httpdir.go
package tenants

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// httpDirectory implements Directory against the platform's internal lookup
// endpoints. It lets the edge layer run in a separate process from the
// store. Every failure (network, timeout, non-2xx, bad body) is reported as
// ErrNotFound so the resolver fails open.
type httpDirectory struct {
	base string
	hc   *http.Client
	log  *zap.SugaredLogger
}

// NewHTTPDirectory builds a Directory that queries base (e.g.
// http://127.0.0.1:8080) over HTTP with the given per-request timeout.
func NewHTTPDirectory(base string, timeout time.Duration, log *zap.SugaredLogger) Directory {
	if timeout <= 0 {
		timeout = 1500 * time.Millisecond
	}
	return &httpDirectory{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: timeout},
		log:  log,
	}
}

type tenantEnvelope struct {
	Tenant struct {
		ID           string `json:"id"`
		Slug         string `json:"slug"`
		Name         string `json:"name"`
		Description  string `json:"description"`
		CustomDomain string `json:"customDomain"`
	} `json:"tenant"`
}

func (d *httpDirectory) FindBySlug(ctx context.Context, slug string) (Tenant, error) {
	return d.get(ctx, d.base+"/api/tenants/slug/"+url.PathEscape(slug), "")
}

func (d *httpDirectory) FindByHostCandidate(ctx context.Context, host string) (Tenant, error) {
	return d.get(ctx, d.base+"/api/tenants/current", host)
}

func (d *httpDirectory) get(ctx context.Context, u, hostHint string) (Tenant, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Tenant{}, ErrNotFound
	}
	if hostHint != "" {
		// The current-tenant endpoint resolves from the host headers.
		req.Host = hostHint
		req.Header.Set("X-Forwarded-Host", hostHint)
	}
	resp, err := d.hc.Do(req)
	if err != nil {
		if d.log != nil {
			d.log.Debugw("directory request failed", "url", u, "err", err)
		}
		return Tenant{}, ErrNotFound
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Tenant{}, ErrNotFound
	}
	var env tenantEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil || env.Tenant.Slug == "" {
		return Tenant{}, ErrNotFound
	}
	return Tenant{
		ID:           env.Tenant.ID,
		Slug:         env.Tenant.Slug,
		Name:         env.Tenant.Name,
		Description:  env.Tenant.Description,
		CustomDomain: env.Tenant.CustomDomain,
	}, nil
}
