package edge

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canopy/pkg/tenants"
)

type stubDirectory struct {
	byHost map[string]tenants.Tenant
	err    error
	delay  time.Duration
	calls  int
}

func (s *stubDirectory) FindBySlug(ctx context.Context, slug string) (tenants.Tenant, error) {
	for _, t := range s.byHost {
		if t.Slug == slug {
			return t, nil
		}
	}
	return tenants.Tenant{}, tenants.ErrNotFound
}

func (s *stubDirectory) FindByHostCandidate(ctx context.Context, host string) (tenants.Tenant, error) {
	s.calls++
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return tenants.Tenant{}, ctx.Err()
		case <-time.After(s.delay):
		}
	}
	if s.err != nil {
		return tenants.Tenant{}, s.err
	}
	if t, ok := s.byHost[host]; ok {
		return t, nil
	}
	return tenants.Tenant{}, tenants.ErrNotFound
}

func newResolver(dir tenants.Directory) *Resolver {
	return &Resolver{BaseDomain: "tenant.example.net", Directory: dir}
}

func TestSubdomainDetection(t *testing.T) {
	rv := newResolver(nil)

	cases := []struct {
		host string
		want string
	}{
		{"acme.localhost", "acme"},
		{"localhost", ""},
		{"localhost.localhost", ""},
		{"acme.tenant.example.net", "acme"},
		{"tenant.example.net", ""},
		{"www.tenant.example.net", ""},
		{"custom.biz", ""},
		{"deep.acme.tenant.example.net", "deep.acme"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, rv.Subdomain(tc.host), "host %q", tc.host)
	}
}

func TestResolveSubdomainRewrite(t *testing.T) {
	rv := newResolver(nil)

	dec := rv.Resolve(context.Background(), "acme.tenant.example.net", "/")
	require.Equal(t, Rewrite, dec.Kind)
	assert.Equal(t, "acme", dec.Slug)
	assert.Equal(t, "/tenant/acme/dashboard", dec.TargetPath)

	dec = rv.Resolve(context.Background(), "acme.tenant.example.net", "/settings")
	require.Equal(t, Rewrite, dec.Kind)
	assert.Equal(t, "/tenant/acme/settings", dec.TargetPath)

	dec = rv.Resolve(context.Background(), "acme.localhost", "/")
	require.Equal(t, Rewrite, dec.Kind)
	assert.Equal(t, "/tenant/acme/dashboard", dec.TargetPath)
}

func TestResolveLoopGuard(t *testing.T) {
	rv := newResolver(nil)

	dec := rv.Resolve(context.Background(), "acme.tenant.example.net", "/tenant/acme/settings")
	assert.Equal(t, PassThrough, dec.Kind)

	dec = rv.Resolve(context.Background(), "acme.tenant.example.net", "/tenant/acme")
	assert.Equal(t, PassThrough, dec.Kind)

	// Guard is per-slug with a segment boundary: a different tenant's scope
	// does not disarm the rewrite.
	dec = rv.Resolve(context.Background(), "acme.tenant.example.net", "/tenant/acmeco/dashboard")
	require.Equal(t, Rewrite, dec.Kind)
	assert.Equal(t, "/tenant/acme/tenant/acmeco/dashboard", dec.TargetPath)
}

func TestResolveIdempotent(t *testing.T) {
	rv := newResolver(nil)

	first := rv.Resolve(context.Background(), "acme.tenant.example.net", "/")
	require.Equal(t, Rewrite, first.Kind)

	second := rv.Resolve(context.Background(), "acme.tenant.example.net", first.TargetPath)
	assert.Equal(t, PassThrough, second.Kind)
}

func TestResolveExcludedPaths(t *testing.T) {
	dir := &stubDirectory{}
	rv := newResolver(dir)

	for _, p := range []string{"/api/tenants/current", "/api/anything", "/assets/app.js", "/favicon.ico"} {
		dec := rv.Resolve(context.Background(), "acme.tenant.example.net", p)
		assert.Equal(t, PassThrough, dec.Kind, "path %q", p)
	}
	assert.Zero(t, dir.calls)
}

func TestResolveBaseAndWWW(t *testing.T) {
	dir := &stubDirectory{}
	rv := newResolver(dir)

	dec := rv.Resolve(context.Background(), "tenant.example.net", "/")
	assert.NotEqual(t, Rewrite, dec.Kind)

	dec = rv.Resolve(context.Background(), "www.tenant.example.net", "/")
	assert.NotEqual(t, Rewrite, dec.Kind)
}

func TestResolveCustomDomain(t *testing.T) {
	dir := &stubDirectory{byHost: map[string]tenants.Tenant{
		"custom.biz": {ID: "t1", Slug: "acme"},
	}}
	rv := newResolver(dir)

	dec := rv.Resolve(context.Background(), "custom.biz", "/")
	require.Equal(t, Rewrite, dec.Kind)
	assert.Equal(t, "acme", dec.Slug)
	assert.Equal(t, "/tenant/acme/dashboard", dec.TargetPath)

	dec = rv.Resolve(context.Background(), "custom.biz", "/orders")
	require.Equal(t, Rewrite, dec.Kind)
	assert.Equal(t, "/tenant/acme/orders", dec.TargetPath)

	// Already-scoped path resolved via the directory is loop-guarded too.
	dec = rv.Resolve(context.Background(), "custom.biz", "/tenant/acme/dashboard")
	assert.Equal(t, PassThrough, dec.Kind)
}

func TestResolveCustomDomainFailuresFailOpen(t *testing.T) {
	dec := newResolver(&stubDirectory{}).Resolve(context.Background(), "unknown.biz", "/")
	assert.Equal(t, Unresolved, dec.Kind)

	dec = newResolver(&stubDirectory{err: context.DeadlineExceeded}).Resolve(context.Background(), "custom.biz", "/")
	assert.Equal(t, Unresolved, dec.Kind)

	slow := &stubDirectory{delay: 100 * time.Millisecond, byHost: map[string]tenants.Tenant{"custom.biz": {Slug: "acme"}}}
	rv := newResolver(slow)
	rv.LookupTimeout = 10 * time.Millisecond
	dec = rv.Resolve(context.Background(), "custom.biz", "/")
	assert.Equal(t, Unresolved, dec.Kind)
}

func TestResolveDegenerateHost(t *testing.T) {
	dir := &stubDirectory{}
	rv := newResolver(dir)

	for _, h := range []string{"", "bad host", "under_score.biz"} {
		dec := rv.Resolve(context.Background(), h, "/")
		assert.Equal(t, PassThrough, dec.Kind, "host %q", h)
	}
	assert.Zero(t, dir.calls, "degenerate hosts must not trigger lookups")
}

func TestInspect(t *testing.T) {
	rv := newResolver(nil)

	assert.Equal(t, ResolvedHost{Hostname: "acme.tenant.example.net", Subdomain: "acme"},
		rv.Inspect("acme.tenant.example.net"))
	assert.Equal(t, ResolvedHost{Hostname: "acme.localhost", Subdomain: "acme"},
		rv.Inspect("acme.localhost"))
	assert.Equal(t, ResolvedHost{Hostname: "tenant.example.net"},
		rv.Inspect("tenant.example.net"))
	assert.Equal(t, ResolvedHost{Hostname: "custom.biz"},
		rv.Inspect("custom.biz"))
}
