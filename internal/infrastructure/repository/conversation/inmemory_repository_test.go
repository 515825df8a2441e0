package conversation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jan-server/services/messaging-api/internal/domain"
	"jan-server/services/messaging-api/internal/domain/conversation"
	"jan-server/services/messaging-api/internal/utils/platformerrors"
)

func seedConversation(t *testing.T, repo *InMemoryRepository, at time.Time) *conversation.Conversation {
	t.Helper()
	conv := &conversation.Conversation{
		ID:      "conv_aaaaaaaaaaaaaaaa",
		Subject: "Shipping",
		Participants: []conversation.Participant{
			{ActorID: "client-1", Role: domain.RoleClient, JoinedAt: at},
			{ActorID: "staff-1", Role: domain.RoleStaff, JoinedAt: at},
		},
		Messages: []conversation.Message{
			{ID: "msg_aaaaaaaaaaaaaaaa", SenderID: "client-1", Body: "where is it", CreatedAt: at},
		},
		LastActivityAt: at,
		CreatedAt:      at,
	}
	require.NoError(t, repo.Create(context.Background(), conv))
	return conv
}

func TestInMemory_CreateRejectsDuplicates(t *testing.T) {
	repo := NewInMemoryRepository()
	conv := seedConversation(t, repo, time.Now().UTC())

	err := repo.Create(context.Background(), conv)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeConflict))
}

func TestInMemory_AppendClampsTimestamp(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	conv := seedConversation(t, repo, at)

	msg := &conversation.Message{ID: "msg_bbbbbbbbbbbbbbbb", SenderID: "staff-1", Body: "shipped", Read: true}
	updated, err := repo.AppendMessage(ctx, conv.ID, msg, at.Add(-time.Minute))
	require.NoError(t, err)

	assert.Equal(t, at, msg.CreatedAt)
	assert.Equal(t, at, updated.LastActivityAt)
	assert.False(t, updated.Messages[1].Read, "appended messages start unread")

	_, err = repo.AppendMessage(ctx, conv.ID, &conversation.Message{ID: "msg_cccccccccccccccc", SenderID: "intruder"}, at)
	assert.True(t, platformerrors.IsForbidden(err))

	_, err = repo.AppendMessage(ctx, "conv_missing0000000", msg, at)
	assert.True(t, platformerrors.IsNotFound(err))
}

func TestInMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	conv := seedConversation(t, repo, time.Now().UTC())

	got, err := repo.Get(ctx, conv.ID)
	require.NoError(t, err)
	got.Messages[0].Body = "mutated"
	got.Participants[0].ActorID = "other"

	again, err := repo.Get(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, "where is it", again.Messages[0].Body)
	assert.Equal(t, "client-1", again.Participants[0].ActorID)
}

func TestInMemory_MarkReadAndCountUnread(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	conv := seedConversation(t, repo, time.Now().UTC())

	count, err := repo.CountUnread(ctx, "staff-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	changed, err := repo.MarkRead(ctx, conv.ID, "staff-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), changed)

	changed, err = repo.MarkRead(ctx, conv.ID, "staff-1")
	require.NoError(t, err)
	assert.Zero(t, changed)

	count, err = repo.CountUnread(ctx, "staff-1")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestInMemory_LeaveThenDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	at := time.Now().UTC()
	conv := seedConversation(t, repo, at)

	res, err := repo.Leave(ctx, conv.ID, "client-1", at)
	require.NoError(t, err)
	assert.False(t, res.Deleted)
	assert.False(t, res.Conversation.IsMember("client-1"))

	_, err = repo.Leave(ctx, conv.ID, "client-1", at)
	assert.True(t, platformerrors.IsNotFound(err))

	list, err := repo.ListByMember(ctx, "client-1")
	require.NoError(t, err)
	assert.Empty(t, list)

	res, err = repo.Leave(ctx, conv.ID, "staff-1", at)
	require.NoError(t, err)
	assert.True(t, res.Deleted)
	assert.Len(t, res.Conversation.Messages, 1)

	_, err = repo.DeleteAsMember(ctx, conv.ID, "staff-1")
	assert.True(t, platformerrors.IsNotFound(err))
}
