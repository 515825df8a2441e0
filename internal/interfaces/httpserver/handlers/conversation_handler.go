package handlers

import (
	"context"

	"github.com/rs/zerolog"

	"jan-server/services/messaging-api/internal/config"
	"jan-server/services/messaging-api/internal/domain"
	"jan-server/services/messaging-api/internal/domain/conversation"
	"jan-server/services/messaging-api/internal/domain/identity"
	"jan-server/services/messaging-api/internal/infrastructure/metrics"
)

// ConversationHandler adapts conversation.Service for the HTTP routes.
type ConversationHandler struct {
	service            conversation.Service
	directory          identity.Directory
	maxAttachmentBytes int64
	log                zerolog.Logger
}

// NewConversationHandler creates a new conversation handler. directory may be nil.
func NewConversationHandler(cfg *config.Config, service conversation.Service, directory identity.Directory, log zerolog.Logger) *ConversationHandler {
	return &ConversationHandler{
		service:            service,
		directory:          directory,
		maxAttachmentBytes: cfg.MaxAttachmentBytes,
		log:                log.With().Str("component", "conversation-handler").Logger(),
	}
}

// MaxAttachmentBytes is the upload limit applied when reading request bodies.
func (h *ConversationHandler) MaxAttachmentBytes() int64 {
	return h.maxAttachmentBytes
}

// Create opens a conversation.
func (h *ConversationHandler) Create(ctx context.Context, actor domain.Actor, input conversation.CreateInput) (*conversation.Conversation, error) {
	conv, err := h.service.Create(ctx, actor, input)
	if err != nil {
		return nil, err
	}
	metrics.ConversationsCreated.Inc()
	metrics.RecordMessageAppended(actor.Role.String(), input.Attachment != nil)
	return conv, nil
}

// Reply appends a message.
func (h *ConversationHandler) Reply(ctx context.Context, actor domain.Actor, conversationID string, input conversation.ReplyInput) (*conversation.Conversation, error) {
	conv, err := h.service.Reply(ctx, actor, conversationID, input)
	if err != nil {
		return nil, err
	}
	metrics.RecordMessageAppended(actor.Role.String(), input.Attachment != nil)
	return conv, nil
}

// MarkRead flags the other side's messages as read.
func (h *ConversationHandler) MarkRead(ctx context.Context, actor domain.Actor, conversationID string) error {
	return h.service.MarkRead(ctx, actor, conversationID)
}

// UnreadCount returns the number of conversations with unread messages.
func (h *ConversationHandler) UnreadCount(ctx context.Context, actor domain.Actor) (int64, error) {
	return h.service.UnreadCount(ctx, actor)
}

// Delete leaves or hard-deletes depending on the actor's role.
func (h *ConversationHandler) Delete(ctx context.Context, actor domain.Actor, conversationID string) error {
	if err := h.service.Delete(ctx, actor, conversationID); err != nil {
		return err
	}
	kind := "leave"
	if actor.Role.IsPrivileged() {
		kind = "hard"
	}
	metrics.RecordConversationDeleted(kind)
	return nil
}

// List returns the actor's conversations.
func (h *ConversationHandler) List(ctx context.Context, actor domain.Actor) ([]*conversation.Conversation, error) {
	return h.service.List(ctx, actor)
}

// Get returns one conversation.
func (h *ConversationHandler) Get(ctx context.Context, actor domain.Actor, conversationID string) (*conversation.Conversation, error) {
	return h.service.Get(ctx, actor, conversationID)
}

// OpenAttachment opens the blob of one message.
func (h *ConversationHandler) OpenAttachment(ctx context.Context, actor domain.Actor, conversationID, messageID string) (*conversation.AttachmentContent, error) {
	return h.service.OpenAttachment(ctx, actor, conversationID, messageID)
}

// Profiles looks up display data for every participant of convs.
// Lookup failures only degrade the response to raw IDs.
func (h *ConversationHandler) Profiles(ctx context.Context, convs ...*conversation.Conversation) map[string]*identity.Profile {
	if h.directory == nil {
		return nil
	}
	var ids []string
	for _, conv := range convs {
		ids = append(ids, conv.ParticipantIDs()...)
	}
	if len(ids) == 0 {
		return nil
	}
	profiles, err := h.directory.Lookup(ctx, ids)
	if err != nil {
		h.log.Warn().Err(err).Int("ids", len(ids)).Msg("profile lookup failed")
		return nil
	}
	return profiles
}
