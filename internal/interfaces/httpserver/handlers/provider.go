package handlers

import (
	"github.com/google/wire"
	"github.com/rs/zerolog"

	"jan-server/services/messaging-api/internal/config"
	"jan-server/services/messaging-api/internal/domain/conversation"
	"jan-server/services/messaging-api/internal/domain/identity"
)

// Provider holds all HTTP handlers.
type Provider struct {
	Conversation *ConversationHandler
	Identity     *IdentityHandler
}

// NewProvider creates a new handler provider.
func NewProvider(conversationHandler *ConversationHandler, identityHandler *IdentityHandler) *Provider {
	return &Provider{
		Conversation: conversationHandler,
		Identity:     identityHandler,
	}
}

// NewDefaultProvider builds every handler from the domain services.
func NewDefaultProvider(cfg *config.Config, conversations conversation.Service, directory identity.Directory, log zerolog.Logger) *Provider {
	return NewProvider(
		NewConversationHandler(cfg, conversations, directory, log),
		NewIdentityHandler(directory),
	)
}

// HandlerProvider provides all handlers for wire.
var HandlerProvider = wire.NewSet(
	NewConversationHandler,
	NewIdentityHandler,
	NewProvider,
)
