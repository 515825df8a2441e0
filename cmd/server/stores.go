package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"jan-server/services/messaging-api/internal/config"
	"jan-server/services/messaging-api/internal/domain/conversation"
	"jan-server/services/messaging-api/internal/domain/identity"
	"jan-server/services/messaging-api/internal/infrastructure/database"
	conversationrepo "jan-server/services/messaging-api/internal/infrastructure/repository/conversation"
	profilerepo "jan-server/services/messaging-api/internal/infrastructure/repository/profile"
	"jan-server/services/messaging-api/internal/infrastructure/storage"
	"jan-server/services/messaging-api/internal/interfaces/httpserver"
)

// Stores bundles the repositories selected by CONVERSATION_STORE_BACKEND.
type Stores struct {
	Conversations conversation.Repository
	Profiles      identity.Repository

	checks  []httpserver.ReadinessCheck
	closers []func(context.Context) error
}

// ProvideStores connects the configured backend and prepares its schema.
func ProvideStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Stores, error) {
	switch cfg.StoreBackend {
	case config.StoreBackendPostgres:
		return providePostgresStores(ctx, cfg, log)
	case config.StoreBackendMongo:
		return provideMongoStores(ctx, cfg, log)
	case config.StoreBackendMemory:
		log.Warn().Msg("using in-memory conversation store; data is lost on restart")
		return &Stores{
			Conversations: conversationrepo.NewInMemoryRepository(),
			Profiles:      profilerepo.NewInMemoryRepository(),
		}, nil
	default:
		return nil, fmt.Errorf("unsupported conversation store backend %q", cfg.StoreBackend)
	}
}

func providePostgresStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Stores, error) {
	db, err := database.Connect(cfg, log)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(ctx, db, log); err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}

	return &Stores{
		Conversations: conversationrepo.NewPostgresRepository(db),
		Profiles:      profilerepo.NewPostgresRepository(db),
		checks:        []httpserver.ReadinessCheck{{Name: "postgres", Check: sqlDB.PingContext}},
		closers:       []func(context.Context) error{func(context.Context) error { return sqlDB.Close() }},
	}, nil
}

func provideMongoStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Stores, error) {
	client, err := database.ConnectMongo(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	db := client.Database(cfg.MongoDatabase)

	conversations := conversationrepo.NewMongoRepository(db)
	if err := conversations.EnsureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("ensure conversation indexes: %w", err)
	}
	profiles := profilerepo.NewMongoRepository(db)
	if err := profiles.EnsureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("ensure profile indexes: %w", err)
	}

	return &Stores{
		Conversations: conversations,
		Profiles:      profiles,
		checks: []httpserver.ReadinessCheck{{Name: "mongo", Check: func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		}}},
		closers: []func(context.Context) error{client.Disconnect},
	}, nil
}

// ProvideBlob selects the attachment blob backend.
func ProvideBlob(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storage.Blob, error) {
	if cfg.IsLocalStorage() {
		return storage.NewLocalStorage(cfg, log)
	}
	return storage.NewS3Storage(ctx, cfg, log)
}
