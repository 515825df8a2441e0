package database

import (
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"jan-server/services/messaging-api/internal/config"
)

// SchemaName is the postgres schema holding every messaging table.
const SchemaName = "messaging_api"

// Connect opens the write connection and configures the pool.
func Connect(cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	level := gormlogger.Silent
	if cfg.LogLevel == "debug" {
		level = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DBPostgresqlWriteDSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
	})
	if err != nil {
		log.Error().
			Str("error_code", "9343e5eb-7c98-4849-869e-f9fed89568cb").
			Err(err).
			Msg("unable to connect to database")
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("retrieve sql db: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.DBConnLifetime)

	log.Info().Msg("connected to database")
	return db, nil
}
