package conversationres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jan-server/services/messaging-api/internal/domain"
	domainconv "jan-server/services/messaging-api/internal/domain/conversation"
	"jan-server/services/messaging-api/internal/domain/identity"
)

func TestNewConversationResponse_Decoration(t *testing.T) {
	joined := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	left := joined.Add(time.Hour)
	conv := &domainconv.Conversation{
		ID:      "conv_0123456789abcdef",
		Subject: "Hello",
		Participants: []domainconv.Participant{
			{ActorID: "client-1", Role: domain.RoleClient, JoinedAt: joined, LeftAt: &left},
			{ActorID: "staff-1", Role: domain.RoleStaff, JoinedAt: joined},
		},
		Messages: []domainconv.Message{
			{ID: "msg_0123456789abcdef", SenderID: "client-1", Body: "hi", CreatedAt: joined},
		},
		LastActivityAt: joined,
		CreatedAt:      joined,
	}
	profiles := map[string]*identity.Profile{
		"staff-1": {ID: "staff-1", DisplayName: "Sam", AvatarURL: "https://example.test/sam.png"},
	}

	resp := NewConversationResponse(conv, "staff-1", profiles)

	require.Len(t, resp.Participants, 2)
	assert.Equal(t, "client-1", resp.Participants[0].DisplayName)
	assert.False(t, resp.Participants[0].Active)
	require.NotNil(t, resp.Participants[0].LeftAt)
	assert.Equal(t, left.Unix(), *resp.Participants[0].LeftAt)

	assert.Equal(t, "Sam", resp.Participants[1].DisplayName)
	assert.Equal(t, "https://example.test/sam.png", resp.Participants[1].AvatarURL)
	assert.True(t, resp.Participants[1].Active)
	assert.Nil(t, resp.Participants[1].LeftAt)

	require.Len(t, resp.Messages, 1)
	assert.Nil(t, resp.Messages[0].Attachment)
	assert.True(t, resp.HasUnread)
	assert.Equal(t, joined.Unix(), resp.LastActivityAt)
}

func TestAttachmentDownloadPath(t *testing.T) {
	assert.Equal(t, "/v1/conversations/conv_a/messages/msg_b/attachment", AttachmentDownloadPath("conv_a", "msg_b"))
}
