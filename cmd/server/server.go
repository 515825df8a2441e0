// @title           Messaging API
// @version         1.0
// @description     Two-party conversations between clients and staff members.
// @description     Provides read tracking, unread counts, attachments and two-tier deletion.

// @contact.name   Jan Team
// @contact.url    https://github.com/janhq/jan-server

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8290
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token from Keycloak

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"jan-server/services/messaging-api/internal/config"
	"jan-server/services/messaging-api/internal/domain/conversation"
	"jan-server/services/messaging-api/internal/domain/identity"
	"jan-server/services/messaging-api/internal/infrastructure/auth"
	"jan-server/services/messaging-api/internal/infrastructure/cache"
	"jan-server/services/messaging-api/internal/infrastructure/logger"
	"jan-server/services/messaging-api/internal/infrastructure/observability"
	"jan-server/services/messaging-api/internal/infrastructure/storage"
	"jan-server/services/messaging-api/internal/interfaces/httpserver"
	"jan-server/services/messaging-api/internal/interfaces/httpserver/handlers"
)

// Application holds the main application components.
type Application struct {
	httpServer *httpserver.HTTPServer
	closers    []func(context.Context) error
	log        zerolog.Logger
}

// NewApplication creates a new application instance.
func NewApplication(httpServer *httpserver.HTTPServer, stores *Stores, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		closers:    stores.closers,
		log:        log,
	}
}

// Start runs the HTTP server and releases store connections once it stops.
func (a *Application) Start(ctx context.Context, cfg *config.Config) error {
	err := a.httpServer.Run(ctx)

	closeCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if closeErr := a.closers[i](closeCtx); closeErr != nil {
			a.log.Warn().Err(closeErr).Msg("failed to close store connection")
		}
	}
	return err
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("failed to shutdown telemetry")
		}
	}()

	stores, err := ProvideStores(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StoreBackend).Msg("failed to initialize conversation store")
	}

	blob, err := ProvideBlob(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StorageBackend).Msg("failed to initialize attachment storage")
	}
	stores.checks = append(stores.checks, httpserver.ReadinessCheck{Name: "attachments", Check: blob.Health})

	profileCache := ProvideProfileCache(cfg, stores, log)
	directory := identity.NewService(stores.Profiles, profileCache, log)

	attachments := storage.NewAttachmentStore(cfg, blob, log)
	conversationService := conversation.NewService(cfg, stores.Conversations, attachments, directory, log)

	authValidator, err := auth.NewValidator(ctx, cfg, directory, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize auth validator")
	}
	defer authValidator.Close()

	handlerProvider := handlers.NewDefaultProvider(cfg, conversationService, directory, log)
	httpServer := httpserver.New(cfg, log, handlerProvider, authValidator, stores.checks)

	app := NewApplication(httpServer, stores, log)

	log.Info().
		Str("service", cfg.ServiceName).
		Int("port", cfg.HTTPPort).
		Str("environment", cfg.Environment).
		Str("store_backend", cfg.StoreBackend).
		Str("storage_backend", blob.Name()).
		Bool("profile_cache", profileCache != nil).
		Msg("starting application")

	if err := app.Start(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

// ProvideProfileCache connects the optional redis cache. Failures degrade to uncached lookups.
func ProvideProfileCache(cfg *config.Config, stores *Stores, log zerolog.Logger) identity.Cache {
	if !cfg.ProfileCacheEnabled() {
		return nil
	}
	profileCache, err := cache.NewProfileCache(cfg.RedisURL, cfg.ProfileCacheTTL, log)
	if err != nil {
		log.Warn().Err(err).Msg("profile cache unavailable, continuing without it")
		return nil
	}
	stores.closers = append(stores.closers, func(context.Context) error { return profileCache.Close() })
	return profileCache
}

func loadEnvFiles() {
	paths := []string{".env", "../.env", "../../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
