package handlers

import (
	"context"

	"jan-server/services/messaging-api/internal/domain"
	"jan-server/services/messaging-api/internal/domain/identity"
	"jan-server/services/messaging-api/internal/utils/platformerrors"
)

// IdentityHandler serves directory lookups.
type IdentityHandler struct {
	directory identity.Directory
}

// NewIdentityHandler creates a new identity handler.
func NewIdentityHandler(directory identity.Directory) *IdentityHandler {
	return &IdentityHandler{directory: directory}
}

// ListStaff returns every staff-side profile a client can address.
func (h *IdentityHandler) ListStaff(ctx context.Context) ([]*identity.Profile, error) {
	return h.directory.ListStaff(ctx)
}

// Me returns the caller's profile. An actor without a stored profile gets one derived from the token.
func (h *IdentityHandler) Me(ctx context.Context, actor domain.Actor) (*identity.Profile, error) {
	profile, err := h.directory.Resolve(ctx, actor.ID)
	if err != nil {
		if platformerrors.IsNotFound(err) {
			return &identity.Profile{ID: actor.ID, DisplayName: actor.ID, Role: actor.Role}, nil
		}
		return nil, err
	}
	// The token is authoritative for the role.
	profile.Role = actor.Role
	return profile, nil
}
