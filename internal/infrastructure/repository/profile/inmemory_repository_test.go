package profile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jan-server/services/messaging-api/internal/domain"
	"jan-server/services/messaging-api/internal/domain/identity"
	"jan-server/services/messaging-api/internal/utils/platformerrors"
)

func TestInMemory_ProfileLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository(
		&identity.Profile{ID: "staff-2", DisplayName: "Zed", Role: domain.RoleStaff},
		&identity.Profile{ID: "client-1", DisplayName: "Ann", Role: domain.RoleClient},
	)

	_, err := repo.Get(ctx, "nobody")
	assert.True(t, platformerrors.IsNotFound(err))

	require.NoError(t, repo.Upsert(ctx, &identity.Profile{ID: "staff-1", DisplayName: "Amy", Role: domain.RolePrivilegedStaff}))

	got, err := repo.GetMany(ctx, []string{"client-1", "missing", "staff-1"})
	require.NoError(t, err)
	require.Len(t, got, 2)

	staff, err := repo.ListByRoles(ctx, []domain.Role{domain.RoleStaff, domain.RolePrivilegedStaff})
	require.NoError(t, err)
	require.Len(t, staff, 2)
	assert.Equal(t, "staff-1", staff[0].ID)
	assert.Equal(t, "staff-2", staff[1].ID)

	p, err := repo.Get(ctx, "staff-1")
	require.NoError(t, err)
	p.DisplayName = "mutated"
	again, err := repo.Get(ctx, "staff-1")
	require.NoError(t, err)
	assert.Equal(t, "Amy", again.DisplayName)
}
