package profile

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"jan-server/services/messaging-api/internal/domain"
	"jan-server/services/messaging-api/internal/domain/identity"
	"jan-server/services/messaging-api/internal/infrastructure/database/entities"
	"jan-server/services/messaging-api/internal/utils/platformerrors"
)

// PostgresRepository persists profiles via PostgreSQL using GORM.
type PostgresRepository struct {
	db *gorm.DB
}

// NewPostgresRepository creates a repository backed by the provided DB.
func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*identity.Profile, error) {
	var entity entities.Profile
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
				"profile not found", err, "0fbd0f34-1743-4404-adc3-83cb1f98fdd0")
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to get profile", err, "25568438-b745-4e13-970d-a42dfdab7b26")
	}
	return mapEntity(entity), nil
}

func (r *PostgresRepository) GetMany(ctx context.Context, ids []string) ([]*identity.Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []entities.Profile
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to get profiles", err, "831d7137-723a-4f77-8b53-c89750ab7124")
	}
	return mapEntities(rows), nil
}

func (r *PostgresRepository) ListByRoles(ctx context.Context, roles []domain.Role) ([]*identity.Profile, error) {
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, role.String())
	}
	var rows []entities.Profile
	if err := r.db.WithContext(ctx).Where("role IN ?", names).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to list profiles", err, "4ed5e9ae-e527-4021-9dc7-7854384f90c5")
	}
	return mapEntities(rows), nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, profile *identity.Profile) error {
	entity := entities.Profile{
		ID:          profile.ID,
		DisplayName: profile.DisplayName,
		Role:        profile.Role.String(),
		AvatarURL:   profile.AvatarURL,
		UpdatedAt:   profile.UpdatedAt,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"display_name", "role", "avatar_url", "updated_at"}),
	}).Create(&entity).Error
	if err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to upsert profile", err, "eff17d6b-2bf3-46a9-bd78-08aca67ad04e")
	}
	return nil
}

func mapEntities(rows []entities.Profile) []*identity.Profile {
	out := make([]*identity.Profile, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapEntity(row))
	}
	return out
}

func mapEntity(entity entities.Profile) *identity.Profile {
	role, _ := domain.ParseRole(entity.Role)
	return &identity.Profile{
		ID:          entity.ID,
		DisplayName: entity.DisplayName,
		Role:        role,
		AvatarURL:   entity.AvatarURL,
		UpdatedAt:   entity.UpdatedAt.UTC(),
	}
}
