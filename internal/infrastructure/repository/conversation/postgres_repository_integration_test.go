//go:build integration

package conversation

import (
	"context"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"jan-server/services/messaging-api/internal/config"
	"jan-server/services/messaging-api/internal/domain/conversation"
	"jan-server/services/messaging-api/internal/infrastructure/database"
)

// Run with: MESSAGING_TEST_POSTGRES_DSN=postgres://... go test -tags integration ./...
func TestPostgres_RepositoryContract(t *testing.T) {
	dsn := os.Getenv("MESSAGING_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("MESSAGING_TEST_POSTGRES_DSN is not set")
	}

	cfg := &config.Config{DBPostgresqlWriteDSN: dsn, DBMaxIdleConns: 2, DBMaxOpenConns: 20}
	db, err := database.Connect(cfg, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(context.Background(), db, zerolog.Nop()))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	repo := NewPostgresRepository(db)
	runRepositoryContract(t, func(t *testing.T) conversation.Repository { return repo })
}
