package identity

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"jan-server/services/messaging-api/internal/domain"
	"jan-server/services/messaging-api/internal/utils/platformerrors"
)

// Directory resolves actor identities to display data.
type Directory interface {
	Resolve(ctx context.Context, id string) (*Profile, error)
	Lookup(ctx context.Context, ids []string) (map[string]*Profile, error)
	ListStaff(ctx context.Context) ([]*Profile, error)
	Sync(ctx context.Context, profile *Profile) error
}

type service struct {
	repo  Repository
	cache Cache
	log   zerolog.Logger
	now   func() time.Time
}

// NewService builds the directory. cache may be nil.
func NewService(repo Repository, cache Cache, log zerolog.Logger) Directory {
	return &service{
		repo:  repo,
		cache: cache,
		log:   log.With().Str("component", "identity-directory").Logger(),
		now:   time.Now,
	}
}

func (s *service) Resolve(ctx context.Context, id string) (*Profile, error) {
	if !domain.ValidActorID(id) {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"malformed actor id", nil, "c1f0a2b3-6d4e-4f5a-9b8c-1d2e3f4a5b60")
	}

	if s.cache != nil {
		if cached, ok, err := s.cache.Get(ctx, id); err != nil {
			s.log.Warn().Err(err).Str("actor_id", id).Msg("profile cache read failed")
		} else if ok {
			return cached, nil
		}
	}

	profile, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.remember(ctx, profile)
	return profile, nil
}

func (s *service) Lookup(ctx context.Context, ids []string) (map[string]*Profile, error) {
	result := make(map[string]*Profile, len(ids))
	missing := make([]string, 0, len(ids))

	for _, id := range uniqueIDs(ids) {
		if s.cache != nil {
			if cached, ok, err := s.cache.Get(ctx, id); err == nil && ok {
				result[id] = cached
				continue
			}
		}
		missing = append(missing, id)
	}

	if len(missing) == 0 {
		return result, nil
	}

	profiles, err := s.repo.GetMany(ctx, missing)
	if err != nil {
		return nil, err
	}
	for _, p := range profiles {
		result[p.ID] = p
		s.remember(ctx, p)
	}
	return result, nil
}

func (s *service) ListStaff(ctx context.Context) ([]*Profile, error) {
	profiles, err := s.repo.ListByRoles(ctx, []domain.Role{domain.RoleStaff, domain.RolePrivilegedStaff})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(profiles, func(i, j int) bool {
		return strings.ToLower(profiles[i].DisplayName) < strings.ToLower(profiles[j].DisplayName)
	})
	return profiles, nil
}

// Sync upserts the caller's profile when its display data changed.
func (s *service) Sync(ctx context.Context, profile *Profile) error {
	if profile == nil || !domain.ValidActorID(profile.ID) {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"malformed actor id", nil, "d2a1b3c4-7e5f-4a6b-8c9d-2e3f4a5b6c71")
	}
	if strings.TrimSpace(profile.DisplayName) == "" {
		profile.DisplayName = profile.ID
	}

	existing, err := s.Resolve(ctx, profile.ID)
	if err != nil && !platformerrors.IsNotFound(err) {
		return err
	}
	if existing.SameDisplay(profile) {
		return nil
	}

	profile.UpdatedAt = s.now().UTC()
	if err := s.repo.Upsert(ctx, profile); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, fmt.Sprintf("sync profile %s", profile.ID))
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, profile.ID); err != nil {
			s.log.Warn().Err(err).Str("actor_id", profile.ID).Msg("profile cache invalidation failed")
		}
	}

	s.log.Debug().Str("actor_id", profile.ID).Str("role", profile.Role.String()).Msg("profile synced")
	return nil
}

func (s *service) remember(ctx context.Context, profile *Profile) {
	if s.cache == nil || profile == nil {
		return
	}
	if err := s.cache.Set(ctx, profile); err != nil {
		s.log.Warn().Err(err).Str("actor_id", profile.ID).Msg("profile cache write failed")
	}
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
