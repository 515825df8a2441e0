package conversation

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"jan-server/services/messaging-api/internal/config"
	"jan-server/services/messaging-api/internal/domain"
	"jan-server/services/messaging-api/internal/domain/identity"
	"jan-server/services/messaging-api/internal/utils/idgen"
	"jan-server/services/messaging-api/internal/utils/platformerrors"
)

const purgeConcurrency = 4

// TargetResolver resolves the staff identity a client wants to contact.
type TargetResolver interface {
	Resolve(ctx context.Context, id string) (*identity.Profile, error)
}

// Service defines the conversation operations. Every call receives the authenticated actor.
type Service interface {
	Create(ctx context.Context, actor domain.Actor, input CreateInput) (*Conversation, error)
	Reply(ctx context.Context, actor domain.Actor, conversationID string, input ReplyInput) (*Conversation, error)
	MarkRead(ctx context.Context, actor domain.Actor, conversationID string) error
	UnreadCount(ctx context.Context, actor domain.Actor) (int64, error)
	Delete(ctx context.Context, actor domain.Actor, conversationID string) error
	List(ctx context.Context, actor domain.Actor) ([]*Conversation, error)
	Get(ctx context.Context, actor domain.Actor, conversationID string) (*Conversation, error)
	OpenAttachment(ctx context.Context, actor domain.Actor, conversationID, messageID string) (*AttachmentContent, error)
}

type service struct {
	repo               Repository
	attachments        AttachmentStore
	targets            TargetResolver
	maxAttachmentBytes int64
	purgeOnDelete      bool
	log                zerolog.Logger
	now                func() time.Time
}

// NewService creates the conversation service.
func NewService(cfg *config.Config, repo Repository, attachments AttachmentStore, targets TargetResolver, log zerolog.Logger) Service {
	return &service{
		repo:               repo,
		attachments:        attachments,
		targets:            targets,
		maxAttachmentBytes: cfg.MaxAttachmentBytes,
		purgeOnDelete:      cfg.PurgeAttachmentsOnDelete,
		log:                log.With().Str("component", "conversation-service").Logger(),
		now:                time.Now,
	}
}

func (s *service) Create(ctx context.Context, actor domain.Actor, input CreateInput) (*Conversation, error) {
	if err := s.validateActor(ctx, actor); err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleClient {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeForbidden,
			"only clients can start conversations", nil, "82426b8b-f4b2-4dd5-add4-ac7185230945")
	}

	input.normalize()
	if err := validate.Struct(input); err != nil {
		return nil, validationError(ctx, err, "b94d4a00-0d06-45b3-99cf-4718f5fc8827")
	}
	if err := s.validateUpload(ctx, input.Attachment); err != nil {
		return nil, err
	}

	target, err := s.resolveStaff(ctx, input.TargetID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	participants := []Participant{
		{ActorID: actor.ID, Role: actor.Role, JoinedAt: now},
		{ActorID: target.ID, Role: target.Role, JoinedAt: now},
	}
	if err := ValidatePair(participants); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			err.Error(), err, "d20f9370-21c6-4006-81b7-cb01dfeb5582")
	}

	conversationID, err := idgen.GenerateSecureID(conversationIDPrefix, idLength)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "generate conversation id")
	}
	messageID, err := idgen.GenerateSecureID(messageIDPrefix, idLength)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "generate message id")
	}

	attachment, err := s.storeAttachment(ctx, input.Attachment)
	if err != nil {
		return nil, err
	}

	conv := &Conversation{
		ID:           conversationID,
		Subject:      input.Subject,
		Participants: participants,
		Messages: []Message{{
			ID:         messageID,
			SenderID:   actor.ID,
			Body:       input.Body,
			Attachment: attachment,
			CreatedAt:  now,
		}},
		LastActivityAt: now,
		CreatedAt:      now,
	}

	if err := s.repo.Create(ctx, conv); err != nil {
		s.discardAttachment(ctx, attachment)
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "create conversation")
	}

	s.log.Debug().
		Str("conversation_id", conv.ID).
		Str("initiator_id", actor.ID).
		Str("target_id", target.ID).
		Bool("attachment", attachment != nil).
		Msg("conversation created")

	return conv, nil
}

func (s *service) Reply(ctx context.Context, actor domain.Actor, conversationID string, input ReplyInput) (*Conversation, error) {
	if err := s.validateActor(ctx, actor); err != nil {
		return nil, err
	}
	if err := s.validateConversationID(ctx, conversationID); err != nil {
		return nil, err
	}

	input.normalize()
	if err := validate.Struct(input); err != nil {
		return nil, validationError(ctx, err, "6331466b-cabb-4a76-8a13-b24b135829d7")
	}
	if err := s.validateUpload(ctx, input.Attachment); err != nil {
		return nil, err
	}

	if _, err := s.memberConversation(ctx, actor, conversationID); err != nil {
		return nil, err
	}

	messageID, err := idgen.GenerateSecureID(messageIDPrefix, idLength)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "generate message id")
	}

	attachment, err := s.storeAttachment(ctx, input.Attachment)
	if err != nil {
		return nil, err
	}

	msg := &Message{
		ID:         messageID,
		SenderID:   actor.ID,
		Body:       input.Body,
		Attachment: attachment,
	}

	updated, err := s.repo.AppendMessage(ctx, conversationID, msg, s.now().UTC())
	if err != nil {
		s.discardAttachment(ctx, attachment)
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "append message")
	}

	s.log.Debug().
		Str("conversation_id", conversationID).
		Str("message_id", msg.ID).
		Str("sender_id", actor.ID).
		Msg("message appended")

	return updated, nil
}

func (s *service) MarkRead(ctx context.Context, actor domain.Actor, conversationID string) error {
	if err := s.validateActor(ctx, actor); err != nil {
		return err
	}
	if err := s.validateConversationID(ctx, conversationID); err != nil {
		return err
	}
	if _, err := s.memberConversation(ctx, actor, conversationID); err != nil {
		return err
	}

	marked, err := s.repo.MarkRead(ctx, conversationID, actor.ID)
	if err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "mark conversation read")
	}

	s.log.Debug().
		Str("conversation_id", conversationID).
		Str("reader_id", actor.ID).
		Int64("marked", marked).
		Msg("conversation marked read")
	return nil
}

func (s *service) UnreadCount(ctx context.Context, actor domain.Actor) (int64, error) {
	if err := s.validateActor(ctx, actor); err != nil {
		return 0, err
	}
	count, err := s.repo.CountUnread(ctx, actor.ID)
	if err != nil {
		return 0, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "count unread conversations")
	}
	return count, nil
}

func (s *service) Delete(ctx context.Context, actor domain.Actor, conversationID string) error {
	if err := s.validateActor(ctx, actor); err != nil {
		return err
	}
	if err := s.validateConversationID(ctx, conversationID); err != nil {
		return err
	}

	switch actor.Role {
	case domain.RolePrivilegedStaff:
		removed, err := s.repo.DeleteAsMember(ctx, conversationID, actor.ID)
		if err != nil {
			return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "hard delete conversation")
		}
		s.log.Info().
			Str("conversation_id", conversationID).
			Str("actor_id", actor.ID).
			Msg("conversation hard deleted")
		s.purgeAttachments(ctx, removed)
		return nil

	case domain.RoleClient, domain.RoleStaff:
		// A leave never purges blobs, even when it removes the conversation.
		result, err := s.repo.Leave(ctx, conversationID, actor.ID, s.now().UTC())
		if err != nil {
			return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "leave conversation")
		}
		s.log.Info().
			Str("conversation_id", conversationID).
			Str("actor_id", actor.ID).
			Bool("deleted", result.Deleted).
			Msg("participant left conversation")
		return nil

	default:
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeForbidden,
			"actor role is not recognised", nil, "6eebcb28-3353-409a-96ed-cf42aeaa50ad")
	}
}

func (s *service) List(ctx context.Context, actor domain.Actor) ([]*Conversation, error) {
	if err := s.validateActor(ctx, actor); err != nil {
		return nil, err
	}
	conversations, err := s.repo.ListByMember(ctx, actor.ID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "list conversations")
	}
	return conversations, nil
}

func (s *service) Get(ctx context.Context, actor domain.Actor, conversationID string) (*Conversation, error) {
	if err := s.validateActor(ctx, actor); err != nil {
		return nil, err
	}
	if err := s.validateConversationID(ctx, conversationID); err != nil {
		return nil, err
	}
	return s.memberConversation(ctx, actor, conversationID)
}

func (s *service) OpenAttachment(ctx context.Context, actor domain.Actor, conversationID, messageID string) (*AttachmentContent, error) {
	if err := s.validateActor(ctx, actor); err != nil {
		return nil, err
	}
	if err := s.validateConversationID(ctx, conversationID); err != nil {
		return nil, err
	}
	if !ValidMessageID(messageID) {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"message id is not a well-formed identifier", nil, "aa7fa53d-b2e3-4297-98f9-830b179db344")
	}

	conv, err := s.memberConversation(ctx, actor, conversationID)
	if err != nil {
		return nil, err
	}

	msg, ok := conv.Message(messageID)
	if !ok || msg.Attachment == nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound,
			"attachment not found", nil, "86fbb5a5-b248-411b-836b-402b9d406db4")
	}

	body, err := s.attachments.Open(ctx, msg.Attachment.Reference)
	if err != nil {
		if platformerrors.IsNotFound(err) {
			return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "open attachment")
		}
		return nil, s.dependencyError(ctx, err, "open attachment", "1c1672aa-d5cb-465c-9601-e0a0158e53e6")
	}

	return &AttachmentContent{Attachment: *msg.Attachment, Body: body}, nil
}

// memberConversation loads a conversation and enforces active membership.
func (s *service) memberConversation(ctx context.Context, actor domain.Actor, conversationID string) (*Conversation, error) {
	conv, err := s.repo.Get(ctx, conversationID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "get conversation")
	}
	if !conv.IsMember(actor.ID) {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeForbidden,
			"not a participant of this conversation", nil, "bdb609d6-53b5-4269-88ed-bcf673b6e0e7")
	}
	return conv, nil
}

func (s *service) resolveStaff(ctx context.Context, targetID string) (*identity.Profile, error) {
	target, err := s.targets.Resolve(ctx, targetID)
	if err != nil {
		if platformerrors.IsNotFound(err) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound,
				"target staff member not found", err, "73fae828-e923-48d1-aa0d-6fe7be3a8e75")
		}
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "resolve target")
	}
	if target == nil || !target.Role.IsStaffSide() {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound,
			"target staff member not found", nil, "42d9cade-d7be-4045-bdb9-becf58542f9a")
	}
	return target, nil
}

func (s *service) storeAttachment(ctx context.Context, upload *AttachmentUpload) (*Attachment, error) {
	if upload == nil {
		return nil, nil
	}
	stored, err := s.attachments.Store(ctx, upload.Data, upload.Name)
	if err != nil {
		if platformerrors.IsValidation(err) {
			return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "store attachment")
		}
		return nil, s.dependencyError(ctx, err, "store attachment", "79c1dbe0-54d9-486d-a20d-955ea9a633c8")
	}
	return stored, nil
}

// discardAttachment removes a blob whose message never got persisted.
func (s *service) discardAttachment(ctx context.Context, attachment *Attachment) {
	if attachment == nil {
		return
	}
	if err := s.attachments.Remove(ctx, attachment.Reference); err != nil {
		s.log.Warn().Err(err).Str("reference", attachment.Reference).Msg("failed to discard unreferenced attachment")
	}
}

func (s *service) purgeAttachments(ctx context.Context, conv *Conversation) {
	if !s.purgeOnDelete || conv == nil {
		return
	}
	var eg errgroup.Group
	eg.SetLimit(purgeConcurrency)
	for _, ref := range conv.AttachmentReferences() {
		eg.Go(func() error {
			if err := s.attachments.Remove(ctx, ref); err != nil {
				s.log.Warn().
					Err(err).
					Str("conversation_id", conv.ID).
					Str("reference", ref).
					Msg("failed to purge attachment")
			}
			return nil
		})
	}
	_ = eg.Wait()
}

func (s *service) dependencyError(ctx context.Context, err error, message, code string) error {
	s.log.Warn().Err(err).Msg(message)
	return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeExternal,
		message+": attachment storage unavailable, try again", err, code)
}
