// Package conversationres contains HTTP response DTOs for conversation endpoints.
package conversationres

import (
	"fmt"
	"net/url"

	domainconv "jan-server/services/messaging-api/internal/domain/conversation"
	"jan-server/services/messaging-api/internal/domain/identity"
)

const (
	ObjectConversation        = "conversation"
	ObjectConversationDeleted = "conversation.deleted"
	ObjectConversationRead    = "conversation.read"
	ObjectMessage             = "message"
	ObjectUnreadCount         = "unread_count"
	ObjectList                = "list"
)

// ParticipantResponse is one side of a conversation decorated with display data.
type ParticipantResponse struct {
	ActorID     string `json:"actor_id"`
	Role        string `json:"role"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	Active      bool   `json:"active"`
	JoinedAt    int64  `json:"joined_at"`
	LeftAt      *int64 `json:"left_at,omitempty"`
}

// AttachmentResponse describes an attachment. The blob reference stays server-side.
type AttachmentResponse struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	MediaType   string `json:"media_type"`
	DownloadURL string `json:"download_url"`
}

// MessageResponse represents a message in API responses.
type MessageResponse struct {
	ID         string              `json:"id"`
	Object     string              `json:"object"`
	SenderID   string              `json:"sender_id"`
	SenderName string              `json:"sender_name"`
	Body       string              `json:"body"`
	Read       bool                `json:"read"`
	Attachment *AttachmentResponse `json:"attachment,omitempty"`
	CreatedAt  int64               `json:"created_at"`
}

// ConversationResponse is a full conversation including its messages.
type ConversationResponse struct {
	ID             string                `json:"id"`
	Object         string                `json:"object"`
	Subject        string                `json:"subject"`
	Participants   []ParticipantResponse `json:"participants"`
	Messages       []MessageResponse     `json:"messages"`
	HasUnread      bool                  `json:"has_unread"`
	LastActivityAt int64                 `json:"last_activity_at"`
	CreatedAt      int64                 `json:"created_at"`
}

// ConversationSummaryResponse is a list entry without the message bodies.
type ConversationSummaryResponse struct {
	ID             string                `json:"id"`
	Object         string                `json:"object"`
	Subject        string                `json:"subject"`
	Participants   []ParticipantResponse `json:"participants"`
	MessageCount   int                   `json:"message_count"`
	HasUnread      bool                  `json:"has_unread"`
	LastActivityAt int64                 `json:"last_activity_at"`
	CreatedAt      int64                 `json:"created_at"`
}

// ListConversationsResponse represents the response for listing conversations.
type ListConversationsResponse struct {
	Object string                         `json:"object"`
	Data   []*ConversationSummaryResponse `json:"data"`
}

// UnreadCountResponse carries the number of conversations with unread messages.
type UnreadCountResponse struct {
	Object string `json:"object"`
	Count  int64  `json:"count"`
}

// MarkReadResponse acknowledges POST /read.
type MarkReadResponse struct {
	ID     string `json:"id"`
	Object string `json:"object"`
	Read   bool   `json:"read"`
}

// DeleteConversationResponse represents the response for deleting a conversation.
type DeleteConversationResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

// NewConversationResponse renders conv for viewerID. profiles may be nil or incomplete.
func NewConversationResponse(conv *domainconv.Conversation, viewerID string, profiles map[string]*identity.Profile) *ConversationResponse {
	messages := make([]MessageResponse, 0, len(conv.Messages))
	for _, m := range conv.Messages {
		messages = append(messages, newMessageResponse(conv.ID, m, profiles))
	}
	return &ConversationResponse{
		ID:             conv.ID,
		Object:         ObjectConversation,
		Subject:        conv.Subject,
		Participants:   newParticipants(conv, profiles),
		Messages:       messages,
		HasUnread:      conv.HasUnreadFor(viewerID),
		LastActivityAt: conv.LastActivityAt.Unix(),
		CreatedAt:      conv.CreatedAt.Unix(),
	}
}

// NewListConversationsResponse renders a list of conversation summaries for viewerID.
func NewListConversationsResponse(convs []*domainconv.Conversation, viewerID string, profiles map[string]*identity.Profile) *ListConversationsResponse {
	data := make([]*ConversationSummaryResponse, len(convs))
	for i, conv := range convs {
		data[i] = &ConversationSummaryResponse{
			ID:             conv.ID,
			Object:         ObjectConversation,
			Subject:        conv.Subject,
			Participants:   newParticipants(conv, profiles),
			MessageCount:   len(conv.Messages),
			HasUnread:      conv.HasUnreadFor(viewerID),
			LastActivityAt: conv.LastActivityAt.Unix(),
			CreatedAt:      conv.CreatedAt.Unix(),
		}
	}
	return &ListConversationsResponse{Object: ObjectList, Data: data}
}

// NewUnreadCountResponse creates an UnreadCountResponse.
func NewUnreadCountResponse(count int64) *UnreadCountResponse {
	return &UnreadCountResponse{Object: ObjectUnreadCount, Count: count}
}

// NewMarkReadResponse creates a MarkReadResponse.
func NewMarkReadResponse(id string) *MarkReadResponse {
	return &MarkReadResponse{ID: id, Object: ObjectConversationRead, Read: true}
}

// NewDeleteConversationResponse creates a DeleteConversationResponse.
func NewDeleteConversationResponse(id string) *DeleteConversationResponse {
	return &DeleteConversationResponse{ID: id, Object: ObjectConversationDeleted, Deleted: true}
}

// AttachmentDownloadPath returns the API path serving a message attachment.
func AttachmentDownloadPath(conversationID, messageID string) string {
	return fmt.Sprintf("/v1/conversations/%s/messages/%s/attachment",
		url.PathEscape(conversationID), url.PathEscape(messageID))
}

func newParticipants(conv *domainconv.Conversation, profiles map[string]*identity.Profile) []ParticipantResponse {
	out := make([]ParticipantResponse, 0, len(conv.Participants))
	for _, p := range conv.Participants {
		resp := ParticipantResponse{
			ActorID:     p.ActorID,
			Role:        p.Role.String(),
			DisplayName: displayName(p.ActorID, profiles),
			Active:      p.Active(),
			JoinedAt:    p.JoinedAt.Unix(),
		}
		if profile, ok := profiles[p.ActorID]; ok && profile != nil {
			resp.AvatarURL = profile.AvatarURL
		}
		if p.LeftAt != nil {
			left := p.LeftAt.Unix()
			resp.LeftAt = &left
		}
		out = append(out, resp)
	}
	return out
}

func newMessageResponse(conversationID string, m domainconv.Message, profiles map[string]*identity.Profile) MessageResponse {
	resp := MessageResponse{
		ID:         m.ID,
		Object:     ObjectMessage,
		SenderID:   m.SenderID,
		SenderName: displayName(m.SenderID, profiles),
		Body:       m.Body,
		Read:       m.Read,
		CreatedAt:  m.CreatedAt.Unix(),
	}
	if m.Attachment != nil {
		resp.Attachment = &AttachmentResponse{
			Name:        m.Attachment.Name,
			Size:        m.Attachment.Size,
			MediaType:   m.Attachment.MediaType,
			DownloadURL: AttachmentDownloadPath(conversationID, m.ID),
		}
	}
	return resp
}

// displayName falls back to the raw ID for actors without a stored profile.
func displayName(actorID string, profiles map[string]*identity.Profile) string {
	if profile, ok := profiles[actorID]; ok && profile != nil && profile.DisplayName != "" {
		return profile.DisplayName
	}
	return actorID
}
