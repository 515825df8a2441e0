package database

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"jan-server/services/messaging-api/internal/config"
)

// ConnectMongo opens a client for the document store backend and checks it answers.
func ConnectMongo(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*mongo.Client, error) {
	opts := options.Client().ApplyURI(cfg.MongoURI)
	if cfg.DBMaxOpenConns > 0 {
		opts.SetMaxPoolSize(uint64(cfg.DBMaxOpenConns))
	}
	if cfg.DBMaxIdleConns > 0 {
		opts.SetMinPoolSize(uint64(cfg.DBMaxIdleConns))
	}

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	log.Info().Str("database", cfg.MongoDatabase).Msg("connected to mongodb")
	return client, nil
}
