package identity

import (
	"context"
	"time"

	"jan-server/services/messaging-api/internal/domain"
)

// Profile is the display data of an actor, used to decorate responses and to resolve staff targets.
type Profile struct {
	ID          string      `json:"id"`
	DisplayName string      `json:"display_name"`
	Role        domain.Role `json:"role"`
	AvatarURL   string      `json:"avatar_url,omitempty"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// SameDisplay reports whether two profiles carry identical display data.
func (p *Profile) SameDisplay(other *Profile) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.ID == other.ID &&
		p.DisplayName == other.DisplayName &&
		p.Role == other.Role &&
		p.AvatarURL == other.AvatarURL
}

// Repository persists profiles.
type Repository interface {
	Get(ctx context.Context, id string) (*Profile, error)
	GetMany(ctx context.Context, ids []string) ([]*Profile, error)
	ListByRoles(ctx context.Context, roles []domain.Role) ([]*Profile, error)
	Upsert(ctx context.Context, profile *Profile) error
}

// Cache is an optional read-through cache in front of the repository.
type Cache interface {
	Get(ctx context.Context, id string) (*Profile, bool, error)
	Set(ctx context.Context, profile *Profile) error
	Delete(ctx context.Context, id string) error
}
