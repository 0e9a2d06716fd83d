// pkg/tenants/postgres.go
package tenants

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"canopy/pkg/db"
)

// pgStore implements Store backed by PostgreSQL.
type pgStore struct {
	dbPool *pgxpool.Pool
	log    *zap.SugaredLogger
}

// NewPostgresStore constructs a PostgreSQL-backed tenant store.
func NewPostgresStore(dbPool *pgxpool.Pool, log *zap.SugaredLogger) Store {
	return &pgStore{dbPool: dbPool, log: log}
}

// EnsureSchema creates required tables if they do not already exist.
// Safe to call repeatedly (idempotent).
func EnsureSchema(ctx context.Context, dbPool *pgxpool.Pool) error {
	_, err := dbPool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS users (
  id uuid PRIMARY KEY,
  email text UNIQUE NOT NULL,
  name text NOT NULL,
  password_hash text NOT NULL,
  created_at timestamptz NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS tenants (
  id uuid PRIMARY KEY,
  slug text UNIQUE NOT NULL,
  name text NOT NULL,
  description text NOT NULL DEFAULT '',
  custom_domain text UNIQUE,
  created_at timestamptz NOT NULL DEFAULT NOW(),
  updated_at timestamptz NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS user_tenants (
  user_id uuid REFERENCES users(id) ON DELETE CASCADE,
  tenant_id uuid REFERENCES tenants(id) ON DELETE CASCADE,
  PRIMARY KEY (user_id, tenant_id)
);
-- Backfill / ensure columns exist (for upgrades)
ALTER TABLE tenants ADD COLUMN IF NOT EXISTS description text NOT NULL DEFAULT '';
ALTER TABLE tenants ADD COLUMN IF NOT EXISTS custom_domain text;
ALTER TABLE tenants ADD COLUMN IF NOT EXISTS updated_at timestamptz NOT NULL DEFAULT NOW();
CREATE UNIQUE INDEX IF NOT EXISTS tenants_custom_domain_idx ON tenants(custom_domain) WHERE custom_domain IS NOT NULL;
`)
	return err
}

const tenantCols = `id, slug, name, COALESCE(description,''), COALESCE(custom_domain,''), created_at, updated_at`

func scanTenant(row pgx.Row) (Tenant, error) {
	var t Tenant
	if err := row.Scan(&t.ID, &t.Slug, &t.Name, &t.Description, &t.CustomDomain, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Tenant{}, ErrNotFound
		}
		return Tenant{}, err
	}
	return t, nil
}

func (s *pgStore) FindBySlug(ctx context.Context, slug string) (Tenant, error) {
	row := s.dbPool.QueryRow(ctx, `SELECT `+tenantCols+` FROM tenants WHERE slug=$1`, slug)
	return scanTenant(row)
}

// FindByHostCandidate checks the custom-domain mapping first; when the
// candidate has more than two labels its first label is tried as a slug.
func (s *pgStore) FindByHostCandidate(ctx context.Context, host string) (Tenant, error) {
	row := s.dbPool.QueryRow(ctx, `SELECT `+tenantCols+` FROM tenants WHERE custom_domain=$1`, host)
	t, err := scanTenant(row)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Tenant{}, err
	}
	if parts := strings.Split(host, "."); len(parts) > 2 {
		return s.FindBySlug(ctx, parts[0])
	}
	return Tenant{}, ErrNotFound
}

func (s *pgStore) GetTenantByID(ctx context.Context, id string) (Tenant, error) {
	row := s.dbPool.QueryRow(ctx, `SELECT `+tenantCols+` FROM tenants WHERE id=$1`, id)
	return scanTenant(row)
}

// UpdateTenant applies a partial update inside a tenant-scoped transaction
// so the custom-domain uniqueness check and the write are atomic.
func (s *pgStore) UpdateTenant(ctx context.Context, id string, upd TenantUpdate) (Tenant, error) {
	tx, err := db.BeginTxWithTenant(ctx, s.dbPool, id)
	if err != nil {
		return Tenant{}, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `SELECT `+tenantCols+` FROM tenants WHERE id=$1 FOR UPDATE`, id)
	t, err := scanTenant(row)
	if err != nil {
		return Tenant{}, err
	}

	if upd.Name != nil && strings.TrimSpace(*upd.Name) != "" {
		t.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.Description != nil {
		t.Description = *upd.Description
	}
	if upd.CustomDomain != nil {
		d := strings.ToLower(strings.TrimSpace(*upd.CustomDomain))
		if d != "" {
			var other string
			err := tx.QueryRow(ctx, `SELECT id FROM tenants WHERE custom_domain=$1 AND id<>$2`, d, id).Scan(&other)
			if err == nil {
				return Tenant{}, ErrDomainTaken
			}
			if !errors.Is(err, pgx.ErrNoRows) {
				return Tenant{}, err
			}
		}
		t.CustomDomain = d
	}

	row = tx.QueryRow(ctx, `UPDATE tenants SET name=$1, description=$2, custom_domain=NULLIF($3,''), updated_at=NOW() WHERE id=$4 RETURNING `+tenantCols, t.Name, t.Description, t.CustomDomain, id)
	t, err = scanTenant(row)
	if err != nil {
		return Tenant{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Tenant{}, err
	}
	return t, nil
}

func (s *pgStore) CreateUserWithTenant(ctx context.Context, u NewUser, t NewTenant) (User, Tenant, error) {
	tx, err := s.dbPool.Begin(ctx)
	if err != nil {
		return User{}, Tenant{}, err
	}
	defer tx.Rollback(ctx)

	user := User{ID: uuid.NewString(), Email: strings.ToLower(u.Email), Name: u.Name, PasswordHash: u.PasswordHash}
	if err := tx.QueryRow(ctx, `INSERT INTO users(id,email,name,password_hash) VALUES ($1,$2,$3,$4) RETURNING created_at`,
		user.ID, user.Email, user.Name, user.PasswordHash).Scan(&user.CreatedAt); err != nil {
		return User{}, Tenant{}, translateUnique(err)
	}

	tenant := Tenant{ID: uuid.NewString(), Slug: t.Slug, Name: t.Name}
	if err := tx.QueryRow(ctx, `INSERT INTO tenants(id,slug,name) VALUES ($1,$2,$3) RETURNING created_at, updated_at`,
		tenant.ID, tenant.Slug, tenant.Name).Scan(&tenant.CreatedAt, &tenant.UpdatedAt); err != nil {
		return User{}, Tenant{}, translateUnique(err)
	}

	if _, err := tx.Exec(ctx, `INSERT INTO user_tenants(user_id,tenant_id) VALUES ($1,$2)`, user.ID, tenant.ID); err != nil {
		return User{}, Tenant{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return User{}, Tenant{}, err
	}
	return user, tenant, nil
}

func (s *pgStore) FindUserByEmail(ctx context.Context, email string) (User, error) {
	row := s.dbPool.QueryRow(ctx, `SELECT id, email, name, password_hash, created_at FROM users WHERE email=$1`, strings.ToLower(email))
	var u User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

func (s *pgStore) GetUserWithTenants(ctx context.Context, id string) (User, []Tenant, error) {
	row := s.dbPool.QueryRow(ctx, `SELECT id, email, name, password_hash, created_at FROM users WHERE id=$1`, id)
	var u User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, nil, ErrNotFound
		}
		return User{}, nil, err
	}
	rows, err := s.dbPool.Query(ctx, `SELECT `+tenantCols+` FROM tenants t JOIN user_tenants ut ON ut.tenant_id=t.id WHERE ut.user_id=$1 ORDER BY t.created_at`, id)
	if err != nil {
		return User{}, nil, err
	}
	defer rows.Close()
	var ts []Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return User{}, nil, err
		}
		ts = append(ts, t)
	}
	return u, ts, rows.Err()
}

// translateUnique maps a unique-violation to ErrConflict so handlers can
// return a 400 instead of a 500.
func translateUnique(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrConflict
	}
	return err
}
