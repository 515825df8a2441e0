package conversation

import (
	"context"
	"time"
)

// Repository defines persistence operations needed by the service.
//
// Implementations return NOT_FOUND platform errors for unknown conversations.
// AppendMessage and Leave must be atomic per call: concurrent appends never
// overwrite each other and the caller's membership is checked in the same step.
type Repository interface {
	Create(ctx context.Context, conv *Conversation) error
	Get(ctx context.Context, id string) (*Conversation, error)
	ListByMember(ctx context.Context, actorID string) ([]*Conversation, error)
	// AppendMessage stamps msg.CreatedAt with max(at, last activity) and pushes it.
	// It returns FORBIDDEN when the sender is not an active participant.
	AppendMessage(ctx context.Context, conversationID string, msg *Message, at time.Time) (*Conversation, error)
	// MarkRead flips unread messages not sent by readerID and returns how many changed.
	MarkRead(ctx context.Context, conversationID, readerID string) (int64, error)
	// CountUnread counts conversations where actorID is active and has something unread.
	CountUnread(ctx context.Context, actorID string) (int64, error)
	// Leave marks actorID as departed and deletes the conversation once nobody is left.
	// The returned conversation is its state before any deletion.
	Leave(ctx context.Context, conversationID, actorID string, at time.Time) (*LeaveResult, error)
	// DeleteAsMember removes the conversation only while actorID is an active participant,
	// checking and deleting in one step. It returns the removed conversation, or
	// NOT_FOUND when the conversation is unknown or actorID is not a member.
	DeleteAsMember(ctx context.Context, conversationID, actorID string) (*Conversation, error)
}

// LeaveResult reports the outcome of Repository.Leave.
type LeaveResult struct {
	Conversation *Conversation
	Deleted      bool
}
