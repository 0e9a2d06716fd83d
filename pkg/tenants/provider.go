package tenants

import (
	"context"
	"errors"
)

// ErrNotFound is returned by lookups that match no tenant or user.
var ErrNotFound = errors.New("tenant not found")

// ErrDomainTaken is returned when a custom domain is already mapped to
// another tenant.
var ErrDomainTaken = errors.New("domain already in use")

// ErrConflict is returned when a unique field (email, slug) is taken.
var ErrConflict = errors.New("already exists")

// Directory answers the lookups the edge resolution layer needs. It may be
// backed by the store directly, by the internal HTTP lookup endpoint, or by
// a caching wrapper; the resolver does not care which.
type Directory interface {
	// FindBySlug resolves a tenant from its slug.
	FindBySlug(ctx context.Context, slug string) (Tenant, error)
	// FindByHostCandidate resolves a tenant from a raw hostname. Custom
	// domains match first; when the candidate has more than two labels the
	// first label is tried as a slug.
	FindByHostCandidate(ctx context.Context, host string) (Tenant, error)
}

// Store is the full persistence surface for the platform API.
type Store interface {
	Directory

	GetTenantByID(ctx context.Context, id string) (Tenant, error)
	// UpdateTenant applies a partial settings update, enforcing
	// custom-domain uniqueness atomically.
	UpdateTenant(ctx context.Context, id string, upd TenantUpdate) (Tenant, error)

	// CreateUserWithTenant creates the user, its tenant, and the membership
	// row in one transaction. Exactly one tenant per signup.
	CreateUserWithTenant(ctx context.Context, u NewUser, t NewTenant) (User, Tenant, error)
	FindUserByEmail(ctx context.Context, email string) (User, error)
	GetUserWithTenants(ctx context.Context, id string) (User, []Tenant, error)
}
