package conversation

import (
	"context"
	"sort"
	"sync"
	"time"

	"jan-server/services/messaging-api/internal/domain/conversation"
	"jan-server/services/messaging-api/internal/utils/platformerrors"
)

// InMemoryRepository is a thread-safe repository for local runs and tests.
type InMemoryRepository struct {
	mu      sync.RWMutex
	entries map[string]*conversation.Conversation
}

// NewInMemoryRepository creates an empty repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{entries: make(map[string]*conversation.Conversation)}
}

func (r *InMemoryRepository) Create(ctx context.Context, conv *conversation.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[conv.ID]; exists {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeConflict,
			"conversation already exists", nil, "0c5a7e61-2b4d-4f8a-9c3e-5d6f7a8b9c01")
	}
	r.entries[conv.ID] = clone(conv)
	return nil
}

func (r *InMemoryRepository) Get(ctx context.Context, id string) (*conversation.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conv, ok := r.entries[id]
	if !ok {
		return nil, notFound(ctx)
	}
	return clone(conv), nil
}

func (r *InMemoryRepository) ListByMember(ctx context.Context, actorID string) ([]*conversation.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*conversation.Conversation, 0)
	for _, conv := range r.entries {
		if conv.IsMember(actorID) {
			out = append(out, clone(conv))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastActivityAt.Equal(out[j].LastActivityAt) {
			return out[i].LastActivityAt.After(out[j].LastActivityAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *InMemoryRepository) AppendMessage(ctx context.Context, conversationID string, msg *conversation.Message, at time.Time) (*conversation.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv, ok := r.entries[conversationID]
	if !ok {
		return nil, notFound(ctx)
	}
	if !conv.IsMember(msg.SenderID) {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeForbidden,
			"sender is not a participant", nil, "1d6b8f72-3c5e-4a9b-8d4f-6e7a8b9c0d12")
	}

	if at.Before(conv.LastActivityAt) {
		at = conv.LastActivityAt
	}
	stored := *msg
	stored.Read = false
	stored.CreatedAt = at
	if msg.Attachment != nil {
		attachment := *msg.Attachment
		stored.Attachment = &attachment
	}

	conv.Messages = append(conv.Messages, stored)
	conv.LastActivityAt = at
	msg.CreatedAt = at
	return clone(conv), nil
}

func (r *InMemoryRepository) MarkRead(ctx context.Context, conversationID, readerID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv, ok := r.entries[conversationID]
	if !ok {
		return 0, notFound(ctx)
	}
	var changed int64
	for i := range conv.Messages {
		if conv.Messages[i].SenderID != readerID && !conv.Messages[i].Read {
			conv.Messages[i].Read = true
			changed++
		}
	}
	return changed, nil
}

func (r *InMemoryRepository) CountUnread(ctx context.Context, actorID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, conv := range r.entries {
		if conv.IsMember(actorID) && conv.HasUnreadFor(actorID) {
			count++
		}
	}
	return count, nil
}

func (r *InMemoryRepository) Leave(ctx context.Context, conversationID, actorID string, at time.Time) (*conversation.LeaveResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv, ok := r.entries[conversationID]
	if !ok {
		return nil, notFound(ctx)
	}
	if !conv.IsMember(actorID) {
		return nil, notFound(ctx)
	}

	left := at
	for i := range conv.Participants {
		if conv.Participants[i].ActorID == actorID {
			conv.Participants[i].LeftAt = &left
		}
	}

	result := &conversation.LeaveResult{Conversation: clone(conv)}
	if conv.ActiveParticipantCount() == 0 {
		delete(r.entries, conversationID)
		result.Deleted = true
	}
	return result, nil
}

func (r *InMemoryRepository) DeleteAsMember(ctx context.Context, conversationID, actorID string) (*conversation.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv, ok := r.entries[conversationID]
	if !ok || !conv.IsMember(actorID) {
		return nil, notFound(ctx)
	}
	delete(r.entries, conversationID)
	return clone(conv), nil
}

func notFound(ctx context.Context) error {
	return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
		"conversation not found", nil, "2e7c9a83-4d6f-4b0c-9e5a-7f8b9c0d1e23")
}

func clone(conv *conversation.Conversation) *conversation.Conversation {
	out := *conv
	out.Participants = make([]conversation.Participant, len(conv.Participants))
	for i, p := range conv.Participants {
		if p.LeftAt != nil {
			left := *p.LeftAt
			p.LeftAt = &left
		}
		out.Participants[i] = p
	}
	out.Messages = make([]conversation.Message, len(conv.Messages))
	for i, m := range conv.Messages {
		if m.Attachment != nil {
			attachment := *m.Attachment
			m.Attachment = &attachment
		}
		out.Messages[i] = m
	}
	return &out
}
