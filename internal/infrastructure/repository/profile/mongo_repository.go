package profile

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"jan-server/services/messaging-api/internal/domain"
	"jan-server/services/messaging-api/internal/domain/identity"
	"jan-server/services/messaging-api/internal/utils/platformerrors"
)

const profilesCollection = "profiles"

type profileDoc struct {
	ID          string    `bson:"_id"`
	DisplayName string    `bson:"display_name"`
	Role        string    `bson:"role"`
	AvatarURL   string    `bson:"avatar_url,omitempty"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

// MongoRepository keeps profiles next to the conversation documents.
type MongoRepository struct {
	db *mongo.Database
}

// NewMongoRepository creates a repository on the given database.
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{db: db}
}

func (r *MongoRepository) collection() *mongo.Collection {
	return r.db.Collection(profilesCollection)
}

// EnsureIndexes creates the role index used by the staff listing.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "role", Value: 1}, {Key: "_id", Value: 1}},
	})
	return err
}

func (r *MongoRepository) Get(ctx context.Context, id string) (*identity.Profile, error) {
	var doc profileDoc
	if err := r.collection().FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
				"profile not found", err, "7a1e0c52-93d4-4b8e-a6f1-2d5c8b9e0f13")
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to get profile", err, "8b2f1d63-a4e5-4c9f-b7a2-3e6d9c0f1a24")
	}
	return fromDoc(doc), nil
}

func (r *MongoRepository) GetMany(ctx context.Context, ids []string) ([]*identity.Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, "9c3a2e74-b5f6-4d0a-88b3-4f7e0d1a2b35")
}

func (r *MongoRepository) ListByRoles(ctx context.Context, roles []domain.Role) ([]*identity.Profile, error) {
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, role.String())
	}
	return r.find(ctx, bson.M{"role": bson.M{"$in": names}}, "ad4b3f85-c6a7-4e1b-99c4-5a8f1e2b3c46")
}

func (r *MongoRepository) Upsert(ctx context.Context, profile *identity.Profile) error {
	doc := profileDoc{
		ID:          profile.ID,
		DisplayName: profile.DisplayName,
		Role:        profile.Role.String(),
		AvatarURL:   profile.AvatarURL,
		UpdatedAt:   profile.UpdatedAt,
	}
	_, err := r.collection().ReplaceOne(ctx, bson.M{"_id": profile.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to upsert profile", err, "be5c4a96-d7b8-4f2c-8ad5-6b9a2f3c4d57")
	}
	return nil
}

func (r *MongoRepository) find(ctx context.Context, filter bson.M, code string) ([]*identity.Profile, error) {
	cursor, err := r.collection().Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to query profiles", err, code)
	}
	defer cursor.Close(ctx)

	var docs []profileDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to decode profiles", err, code)
	}
	out := make([]*identity.Profile, 0, len(docs))
	for _, doc := range docs {
		out = append(out, fromDoc(doc))
	}
	return out, nil
}

func fromDoc(doc profileDoc) *identity.Profile {
	role, _ := domain.ParseRole(doc.Role)
	return &identity.Profile{
		ID:          doc.ID,
		DisplayName: doc.DisplayName,
		Role:        role,
		AvatarURL:   doc.AvatarURL,
		UpdatedAt:   doc.UpdatedAt.UTC(),
	}
}
