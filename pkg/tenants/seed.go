// pkg/tenants/seed.go
package tenants

import (
	"context"
	"encoding/json"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"gopkg.in/yaml.v3"
)

// SeedEntry is one tenant row to upsert at startup.
type SeedEntry struct {
	ID           string `json:"id" yaml:"id"`
	Slug         string `json:"slug" yaml:"slug"`
	Name         string `json:"name" yaml:"name"`
	Description  string `json:"description" yaml:"description"`
	CustomDomain string `json:"custom_domain" yaml:"custom_domain"`
}

// SeedFromEnv ingests initial tenant data from a JSON array
// (TENANT_SEED_JSON). Missing ids are generated.
func SeedFromEnv(ctx context.Context, dbPool *pgxpool.Pool, jsonSeed string) error {
	if jsonSeed == "" {
		return nil
	}
	var entries []SeedEntry
	if err := json.Unmarshal([]byte(jsonSeed), &entries); err != nil {
		return err
	}
	return upsertSeed(ctx, dbPool, entries)
}

// SeedFromFile ingests initial tenant data from a YAML file
// (TENANT_SEED_FILE). Same shape as the JSON seed.
func SeedFromFile(ctx context.Context, dbPool *pgxpool.Pool, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var entries []SeedEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return err
	}
	return upsertSeed(ctx, dbPool, entries)
}

func upsertSeed(ctx context.Context, dbPool *pgxpool.Pool, entries []SeedEntry) error {
	for _, e := range entries {
		if e.Slug == "" {
			continue
		}
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if e.Name == "" {
			e.Name = e.Slug
		}
		_, err := dbPool.Exec(ctx, `INSERT INTO tenants(id,slug,name,description,custom_domain)
		  VALUES ($1,$2,$3,$4,NULLIF($5,''))
		  ON CONFLICT (slug) DO UPDATE SET name=EXCLUDED.name,description=EXCLUDED.description,custom_domain=EXCLUDED.custom_domain,updated_at=NOW()`,
			e.ID, e.Slug, e.Name, e.Description, e.CustomDomain)
		if err != nil {
			return err
		}
	}
	return nil
}
