package tenants

import "time"

// Tenant represents an isolated workspace, addressed by subdomain
// (slug.basedomain) or by an optional custom domain.
type Tenant struct {
	ID           string // uuid
	Slug         string // unique short name (acme)
	Name         string
	Description  string
	CustomDomain string // empty when unset; unique when set
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// User is a platform account. A user may belong to several tenants.
type User struct {
	ID           string // uuid
	Email        string // unique
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

// NewTenant carries the fields needed to create a tenant at signup.
type NewTenant struct {
	Slug string
	Name string
}

// NewUser carries the fields needed to create a user at signup.
// PasswordHash is already hashed; stores never see plaintext.
type NewUser struct {
	Email        string
	Name         string
	PasswordHash string
}

// TenantUpdate is a partial settings update. Nil fields stay unchanged;
// a non-nil empty CustomDomain clears the mapping.
type TenantUpdate struct {
	Name         *string
	Description  *string
	CustomDomain *string
}
