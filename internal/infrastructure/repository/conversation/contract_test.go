package conversation

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jan-server/services/messaging-api/internal/domain"
	"jan-server/services/messaging-api/internal/domain/conversation"
	"jan-server/services/messaging-api/internal/utils/idgen"
	"jan-server/services/messaging-api/internal/utils/platformerrors"
)

// contractPair is a client and staff member unique to one test run, so shared
// databases never mix results between runs.
type contractPair struct {
	client string
	staff  string
}

func newContractPair(t *testing.T) contractPair {
	t.Helper()
	suffix, err := idgen.GenerateSecureID("run", 8)
	require.NoError(t, err)
	return contractPair{client: "client-" + suffix, staff: "staff-" + suffix}
}

func newID(t *testing.T, prefix string) string {
	t.Helper()
	id, err := idgen.GenerateSecureID(prefix, 16)
	require.NoError(t, err)
	return id
}

func contractConversation(t *testing.T, pair contractPair, at time.Time, attachment *conversation.Attachment) *conversation.Conversation {
	t.Helper()
	return &conversation.Conversation{
		ID:      newID(t, "conv"),
		Subject: "Delivery",
		Participants: []conversation.Participant{
			{ActorID: pair.client, Role: domain.RoleClient, JoinedAt: at},
			{ActorID: pair.staff, Role: domain.RoleStaff, JoinedAt: at},
		},
		Messages: []conversation.Message{
			{ID: newID(t, "msg"), SenderID: pair.client, Body: "where is my parcel", Attachment: attachment, CreatedAt: at},
		},
		LastActivityAt: at,
		CreatedAt:      at,
	}
}

// runRepositoryContract checks the behaviour every conversation store must share.
// newRepo returns a ready repository; it may be shared between subtests.
func runRepositoryContract(t *testing.T, newRepo func(t *testing.T) conversation.Repository) {
	base := time.Now().UTC().Truncate(time.Millisecond)

	t.Run("create and get", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)
		pair := newContractPair(t)
		attachment := &conversation.Attachment{Name: "label.pdf", Reference: "attachments/2026/01/x.pdf", Size: 42, MediaType: "application/pdf"}
		conv := contractConversation(t, pair, base, attachment)
		require.NoError(t, repo.Create(ctx, conv))

		got, err := repo.Get(ctx, conv.ID)
		require.NoError(t, err)
		assert.Equal(t, conv.Subject, got.Subject)
		assert.Equal(t, []string{pair.client, pair.staff}, got.ParticipantIDs())
		require.Len(t, got.Messages, 1)
		require.NotNil(t, got.Messages[0].Attachment)
		assert.Equal(t, *attachment, *got.Messages[0].Attachment)
		assert.True(t, base.Equal(got.LastActivityAt))

		_, err = repo.Get(ctx, newID(t, "conv"))
		assert.True(t, platformerrors.IsNotFound(err))
	})

	t.Run("append clamps timestamps and checks membership", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)
		pair := newContractPair(t)
		conv := contractConversation(t, pair, base, nil)
		require.NoError(t, repo.Create(ctx, conv))

		msg := &conversation.Message{ID: newID(t, "msg"), SenderID: pair.staff, Body: "on its way", Read: true}
		updated, err := repo.AppendMessage(ctx, conv.ID, msg, base.Add(-time.Hour))
		require.NoError(t, err)
		assert.True(t, base.Equal(msg.CreatedAt), "stamp never precedes last activity")
		require.Len(t, updated.Messages, 2)
		assert.False(t, updated.Messages[1].Read)
		assert.Equal(t, msg.ID, updated.Messages[1].ID)

		later := base.Add(time.Minute)
		updated, err = repo.AppendMessage(ctx, conv.ID, &conversation.Message{ID: newID(t, "msg"), SenderID: pair.client, Body: "thanks"}, later)
		require.NoError(t, err)
		assert.True(t, later.Equal(updated.LastActivityAt))

		_, err = repo.AppendMessage(ctx, conv.ID, &conversation.Message{ID: newID(t, "msg"), SenderID: "stranger-1", Body: "hi"}, later)
		assert.True(t, platformerrors.IsForbidden(err))

		_, err = repo.AppendMessage(ctx, newID(t, "conv"), &conversation.Message{ID: newID(t, "msg"), SenderID: pair.client, Body: "hi"}, later)
		assert.True(t, platformerrors.IsNotFound(err))
	})

	t.Run("concurrent appends are all kept in order", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)
		pair := newContractPair(t)
		conv := contractConversation(t, pair, base, nil)
		require.NoError(t, repo.Create(ctx, conv))

		const writers = 10
		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				sender := pair.client
				if i%2 == 0 {
					sender = pair.staff
				}
				msg := &conversation.Message{ID: newID(t, "msg"), SenderID: sender, Body: fmt.Sprintf("note %d", i)}
				_, err := repo.AppendMessage(ctx, conv.ID, msg, base.Add(time.Duration(i)*time.Millisecond))
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()

		got, err := repo.Get(ctx, conv.ID)
		require.NoError(t, err)
		require.Len(t, got.Messages, writers+1)
		for i := 1; i < len(got.Messages); i++ {
			assert.False(t, got.Messages[i].CreatedAt.Before(got.Messages[i-1].CreatedAt), "message %d", i)
		}
	})

	t.Run("mark read and count unread", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)
		pair := newContractPair(t)
		first := contractConversation(t, pair, base, nil)
		second := contractConversation(t, pair, base, nil)
		require.NoError(t, repo.Create(ctx, first))
		require.NoError(t, repo.Create(ctx, second))
		_, err := repo.AppendMessage(ctx, first.ID, &conversation.Message{ID: newID(t, "msg"), SenderID: pair.client, Body: "again"}, base)
		require.NoError(t, err)

		count, err := repo.CountUnread(ctx, pair.staff)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count, "conversations, not messages")
		count, err = repo.CountUnread(ctx, pair.client)
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)

		marked, err := repo.MarkRead(ctx, first.ID, pair.staff)
		require.NoError(t, err)
		assert.Equal(t, int64(2), marked)
		marked, err = repo.MarkRead(ctx, first.ID, pair.staff)
		require.NoError(t, err)
		assert.Equal(t, int64(0), marked)

		count, err = repo.CountUnread(ctx, pair.staff)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		_, err = repo.MarkRead(ctx, newID(t, "conv"), pair.staff)
		assert.True(t, platformerrors.IsNotFound(err))
	})

	t.Run("leave then last leave deletes", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)
		pair := newContractPair(t)
		conv := contractConversation(t, pair, base, nil)
		require.NoError(t, repo.Create(ctx, conv))

		res, err := repo.Leave(ctx, conv.ID, pair.client, base)
		require.NoError(t, err)
		assert.False(t, res.Deleted)
		assert.False(t, res.Conversation.IsMember(pair.client))

		_, err = repo.Leave(ctx, conv.ID, pair.client, base)
		assert.True(t, platformerrors.IsNotFound(err))

		list, err := repo.ListByMember(ctx, pair.client)
		require.NoError(t, err)
		assert.Empty(t, list)
		count, err := repo.CountUnread(ctx, pair.client)
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)

		res, err = repo.Leave(ctx, conv.ID, pair.staff, base)
		require.NoError(t, err)
		assert.True(t, res.Deleted)
		assert.Len(t, res.Conversation.Messages, 1)

		_, err = repo.Get(ctx, conv.ID)
		assert.True(t, platformerrors.IsNotFound(err))
	})

	t.Run("delete as member", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)
		pair := newContractPair(t)
		attachment := &conversation.Attachment{Name: "a.txt", Reference: "attachments/2026/01/a.txt", Size: 1, MediaType: "text/plain"}
		conv := contractConversation(t, pair, base, attachment)
		require.NoError(t, repo.Create(ctx, conv))

		_, err := repo.DeleteAsMember(ctx, conv.ID, "stranger-1")
		assert.True(t, platformerrors.IsNotFound(err))
		_, err = repo.Get(ctx, conv.ID)
		require.NoError(t, err, "a non-member delete leaves the conversation in place")

		_, err = repo.Leave(ctx, conv.ID, pair.client, base)
		require.NoError(t, err)
		_, err = repo.DeleteAsMember(ctx, conv.ID, pair.client)
		assert.True(t, platformerrors.IsNotFound(err), "departed participants cannot delete")

		removed, err := repo.DeleteAsMember(ctx, conv.ID, pair.staff)
		require.NoError(t, err)
		assert.Equal(t, []string{attachment.Reference}, removed.AttachmentReferences())

		_, err = repo.Get(ctx, conv.ID)
		assert.True(t, platformerrors.IsNotFound(err))
	})

	t.Run("list orders by last activity then id", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)
		pair := newContractPair(t)
		older := contractConversation(t, pair, base.Add(-time.Hour), nil)
		tiedA := contractConversation(t, pair, base, nil)
		tiedB := contractConversation(t, pair, base, nil)
		for _, conv := range []*conversation.Conversation{older, tiedA, tiedB} {
			require.NoError(t, repo.Create(ctx, conv))
		}

		list, err := repo.ListByMember(ctx, pair.staff)
		require.NoError(t, err)
		require.Len(t, list, 3)

		high, low := tiedA.ID, tiedB.ID
		if low > high {
			high, low = low, high
		}
		assert.Equal(t, []string{high, low, older.ID}, []string{list[0].ID, list[1].ID, list[2].ID})
	})
}

func TestInMemory_RepositoryContract(t *testing.T) {
	runRepositoryContract(t, func(t *testing.T) conversation.Repository {
		return NewInMemoryRepository()
	})
}
