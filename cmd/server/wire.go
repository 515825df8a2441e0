//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"

	"jan-server/services/messaging-api/internal/config"
	"jan-server/services/messaging-api/internal/domain/conversation"
	"jan-server/services/messaging-api/internal/domain/identity"
	"jan-server/services/messaging-api/internal/infrastructure/auth"
	"jan-server/services/messaging-api/internal/infrastructure/storage"
	"jan-server/services/messaging-api/internal/interfaces/httpserver"
	"jan-server/services/messaging-api/internal/interfaces/httpserver/handlers"
)

// ProviderSet is the wire provider set for the application.
var ProviderSet = wire.NewSet(
	// Infrastructure providers
	ProvideStores,
	ProvideBlob,
	ProvideProfileCache,
	ProvideConversationRepository,
	ProvideProfileRepository,
	ProvideReadinessChecks,
	ProvideAttachmentStore,
	ProvideAuthValidator,

	// Domain providers
	identity.NewService,
	ProvideConversationService,

	// Interface providers
	handlers.HandlerProvider,
	httpserver.New,

	// Application
	NewApplication,
)

// ProvideConversationRepository exposes the selected conversation repository.
func ProvideConversationRepository(stores *Stores) conversation.Repository {
	return stores.Conversations
}

// ProvideProfileRepository exposes the selected profile repository.
func ProvideProfileRepository(stores *Stores) identity.Repository {
	return stores.Profiles
}

// ProvideReadinessChecks collects store and blob readiness checks.
func ProvideReadinessChecks(stores *Stores, blob storage.Blob) []httpserver.ReadinessCheck {
	return append(stores.checks, httpserver.ReadinessCheck{Name: "attachments", Check: blob.Health})
}

// ProvideAttachmentStore adapts the blob backend to the attachment store.
func ProvideAttachmentStore(cfg *config.Config, blob storage.Blob, log zerolog.Logger) conversation.AttachmentStore {
	return storage.NewAttachmentStore(cfg, blob, log)
}

// ProvideAuthValidator provides an auth validator.
func ProvideAuthValidator(ctx context.Context, cfg *config.Config, directory identity.Directory, log zerolog.Logger) (*auth.Validator, error) {
	return auth.NewValidator(ctx, cfg, directory, log)
}

// ProvideConversationService provides the conversation service. The directory resolves staff targets.
func ProvideConversationService(
	cfg *config.Config,
	repo conversation.Repository,
	attachments conversation.AttachmentStore,
	directory identity.Directory,
	log zerolog.Logger,
) conversation.Service {
	return conversation.NewService(cfg, repo, attachments, directory, log)
}

// CreateApplication creates the application with all dependencies wired.
func CreateApplication(
	ctx context.Context,
	cfg *config.Config,
	log zerolog.Logger,
) (*Application, error) {
	wire.Build(ProviderSet)
	return nil, nil
}
