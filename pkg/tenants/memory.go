// pkg/tenants/memory.go
package tenants

import (
	"context"
	"encoding/json"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// memStore implements Store with in-process maps. Used when no DATABASE_URL
// is configured (dev bring-up) and by tests.
type memStore struct {
	log *zap.SugaredLogger

	mu       sync.RWMutex
	byID     map[string]Tenant
	users    map[string]User     // by id
	members  map[string][]string // user id -> tenant ids, insertion order
}

// NewMemoryStore constructs an empty in-memory store, optionally pre-seeded.
func NewMemoryStore(log *zap.SugaredLogger, seed ...Tenant) Store {
	s := &memStore{log: log, byID: map[string]Tenant{}, users: map[string]User{}, members: map[string][]string{}}
	for _, t := range seed {
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		s.byID[t.ID] = t
	}
	return s
}

// NewMemoryStoreFromEnv seeds the store from TENANT_SEED_JSON when present.
func NewMemoryStoreFromEnv(log *zap.SugaredLogger) Store {
	var seed []Tenant
	if raw := os.Getenv("TENANT_SEED_JSON"); raw != "" {
		var entries []SeedEntry
		if err := json.Unmarshal([]byte(raw), &entries); err != nil {
			log.Warnw("tenant seed parse", "err", err)
		}
		for _, e := range entries {
			if e.Slug == "" {
				continue
			}
			name := e.Name
			if name == "" {
				name = e.Slug
			}
			seed = append(seed, Tenant{ID: e.ID, Slug: e.Slug, Name: name, Description: e.Description, CustomDomain: e.CustomDomain, CreatedAt: time.Now(), UpdatedAt: time.Now()})
		}
	}
	return NewMemoryStore(log, seed...)
}

func (s *memStore) FindBySlug(ctx context.Context, slug string) (Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.byID {
		if t.Slug == slug {
			return t, nil
		}
	}
	return Tenant{}, ErrNotFound
}

func (s *memStore) FindByHostCandidate(ctx context.Context, host string) (Tenant, error) {
	s.mu.RLock()
	for _, t := range s.byID {
		if t.CustomDomain != "" && t.CustomDomain == host {
			s.mu.RUnlock()
			return t, nil
		}
	}
	s.mu.RUnlock()
	if parts := strings.Split(host, "."); len(parts) > 2 {
		return s.FindBySlug(ctx, parts[0])
	}
	return Tenant{}, ErrNotFound
}

func (s *memStore) GetTenantByID(ctx context.Context, id string) (Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t, ok := s.byID[id]; ok {
		return t, nil
	}
	return Tenant{}, ErrNotFound
}

func (s *memStore) UpdateTenant(ctx context.Context, id string, upd TenantUpdate) (Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.byID[id]
	if !ok {
		return Tenant{}, ErrNotFound
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
			for _, other := range s.byID {
				if other.ID != id && other.CustomDomain == d {
					return Tenant{}, ErrDomainTaken
				}
			}
		}
		t.CustomDomain = d
	}
	t.UpdatedAt = time.Now()
	s.byID[id] = t
	return t, nil
}

func (s *memStore) CreateUserWithTenant(ctx context.Context, u NewUser, nt NewTenant) (User, Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(u.Email)
	for _, existing := range s.users {
		if existing.Email == email {
			return User{}, Tenant{}, ErrConflict
		}
	}
	for _, existing := range s.byID {
		if existing.Slug == nt.Slug {
			return User{}, Tenant{}, ErrConflict
		}
	}
	now := time.Now()
	user := User{ID: uuid.NewString(), Email: email, Name: u.Name, PasswordHash: u.PasswordHash, CreatedAt: now}
	tenant := Tenant{ID: uuid.NewString(), Slug: nt.Slug, Name: nt.Name, CreatedAt: now, UpdatedAt: now}
	s.users[user.ID] = user
	s.byID[tenant.ID] = tenant
	s.members[user.ID] = append(s.members[user.ID], tenant.ID)
	return user, tenant, nil
}

func (s *memStore) FindUserByEmail(ctx context.Context, email string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	email = strings.ToLower(email)
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (s *memStore) GetUserWithTenants(ctx context.Context, id string) (User, []Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return User{}, nil, ErrNotFound
	}
	var ts []Tenant
	for _, tid := range s.members[id] {
		if t, ok := s.byID[tid]; ok {
			ts = append(ts, t)
		}
	}
	sort.SliceStable(ts, func(i, j int) bool { return ts[i].CreatedAt.Before(ts[j].CreatedAt) })
	return u, ts, nil
}
