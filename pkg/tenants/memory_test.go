package tenants

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canopy/pkg/logger"
)

func seededStore() Store {
	return NewMemoryStore(logger.Nop(),
		Tenant{ID: "t1", Slug: "acme", Name: "Acme", CustomDomain: "custom.biz"},
		Tenant{ID: "t2", Slug: "globex", Name: "Globex"},
	)
}

func TestFindByHostCandidateDomainFirst(t *testing.T) {
	s := seededStore()
	ctx := context.Background()

	// Custom domain wins.
	got, err := s.FindByHostCandidate(ctx, "custom.biz")
	require.NoError(t, err)
	assert.Equal(t, "acme", got.Slug)

	// More than two labels: first label tried as slug.
	got, err = s.FindByHostCandidate(ctx, "globex.tenant.example.net")
	require.NoError(t, err)
	assert.Equal(t, "globex", got.Slug)

	// Two labels and no custom domain match: not found, no slug guess.
	_, err = s.FindByHostCandidate(ctx, "globex.net")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.FindByHostCandidate(ctx, "nobody.tenant.example.net")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateUserWithTenant(t *testing.T) {
	s := seededStore()
	ctx := context.Background()

	u, tn, err := s.CreateUserWithTenant(ctx,
		NewUser{Email: "Jo@Example.com", Name: "Jo", PasswordHash: "x"},
		NewTenant{Slug: "initech", Name: "Initech"},
	)
	require.NoError(t, err)
	assert.Equal(t, "jo@example.com", u.Email, "emails are stored lowercased")
	assert.Equal(t, "initech", tn.Slug)

	// Membership is recorded.
	got, ts, err := s.GetUserWithTenants(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	require.Len(t, ts, 1)
	assert.Equal(t, "initech", ts[0].Slug)

	// Duplicate email or slug is rejected.
	_, _, err = s.CreateUserWithTenant(ctx, NewUser{Email: "jo@example.com"}, NewTenant{Slug: "other"})
	assert.ErrorIs(t, err, ErrConflict)
	_, _, err = s.CreateUserWithTenant(ctx, NewUser{Email: "new@example.com"}, NewTenant{Slug: "initech"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUpdateTenant(t *testing.T) {
	s := seededStore()
	ctx := context.Background()

	name := "Acme Corp"
	desc := "widgets"
	got, err := s.UpdateTenant(ctx, "t1", TenantUpdate{Name: &name, Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", got.Name)
	assert.Equal(t, "widgets", got.Description)
	assert.Equal(t, "custom.biz", got.CustomDomain, "absent field stays unchanged")

	// A domain mapped to another tenant is rejected.
	taken := "custom.biz"
	_, err = s.UpdateTenant(ctx, "t2", TenantUpdate{CustomDomain: &taken})
	assert.ErrorIs(t, err, ErrDomainTaken)

	// Explicit empty clears the mapping.
	empty := ""
	got, err = s.UpdateTenant(ctx, "t1", TenantUpdate{CustomDomain: &empty})
	require.NoError(t, err)
	assert.Empty(t, got.CustomDomain)

	_, err = s.UpdateTenant(ctx, "missing", TenantUpdate{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindUserByEmail(t *testing.T) {
	s := seededStore()
	ctx := context.Background()
	_, _, err := s.CreateUserWithTenant(ctx, NewUser{Email: "a@b.co", Name: "A", PasswordHash: "h"}, NewTenant{Slug: "aaa", Name: "A"})
	require.NoError(t, err)

	u, err := s.FindUserByEmail(ctx, "A@B.CO")
	require.NoError(t, err)
	assert.Equal(t, "h", u.PasswordHash)

	_, err = s.FindUserByEmail(ctx, "missing@b.co")
	assert.ErrorIs(t, err, ErrNotFound)
}
