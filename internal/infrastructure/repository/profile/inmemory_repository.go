package profile

import (
	"context"
	"sort"
	"sync"

	"jan-server/services/messaging-api/internal/domain"
	"jan-server/services/messaging-api/internal/domain/identity"
	"jan-server/services/messaging-api/internal/utils/platformerrors"
)

// InMemoryRepository keeps profiles in a map. Used for local runs and tests.
type InMemoryRepository struct {
	mu      sync.RWMutex
	entries map[string]identity.Profile
}

// NewInMemoryRepository seeds the repository with the given profiles.
func NewInMemoryRepository(seed ...*identity.Profile) *InMemoryRepository {
	repo := &InMemoryRepository{entries: make(map[string]identity.Profile, len(seed))}
	for _, p := range seed {
		repo.entries[p.ID] = *p
	}
	return repo
}

func (r *InMemoryRepository) Get(ctx context.Context, id string) (*identity.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.entries[id]
	if !ok {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
			"profile not found", nil, "3f8d0b94-5e7a-4c1d-8f6b-8a9c0d1e2f34")
	}
	return &p, nil
}

func (r *InMemoryRepository) GetMany(ctx context.Context, ids []string) ([]*identity.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*identity.Profile, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.entries[id]; ok {
			out = append(out, &p)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) ListByRoles(ctx context.Context, roles []domain.Role) ([]*identity.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[domain.Role]struct{}, len(roles))
	for _, role := range roles {
		wanted[role] = struct{}{}
	}

	out := make([]*identity.Profile, 0)
	for _, p := range r.entries {
		if _, ok := wanted[p.Role]; ok {
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *InMemoryRepository) Upsert(ctx context.Context, profile *identity.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[profile.ID] = *profile
	return nil
}
