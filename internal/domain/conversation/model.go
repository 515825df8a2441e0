package conversation

import (
	"fmt"
	"time"

	"jan-server/services/messaging-api/internal/domain"
)

// Participant is one of the two identities bound to a conversation at creation.
type Participant struct {
	ActorID  string      `json:"actor_id"`
	Role     domain.Role `json:"role"`
	JoinedAt time.Time   `json:"joined_at"`
	LeftAt   *time.Time  `json:"left_at,omitempty"`
}

// Active reports whether the participant still has access to the conversation.
func (p Participant) Active() bool {
	return p.LeftAt == nil
}

// Attachment is the metadata of a blob referenced by a message.
type Attachment struct {
	Name      string `json:"name"`
	Reference string `json:"reference"`
	Size      int64  `json:"size"`
	MediaType string `json:"media_type"`
}

// Message is one append-only entry of a conversation.
type Message struct {
	ID         string      `json:"id"`
	SenderID   string      `json:"sender_id"`
	Body       string      `json:"body"`
	Attachment *Attachment `json:"attachment,omitempty"`
	Read       bool        `json:"read"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Conversation is the two-party thread.
type Conversation struct {
	ID             string        `json:"id"`
	Subject        string        `json:"subject"`
	Participants   []Participant `json:"participants"`
	Messages       []Message     `json:"messages"`
	LastActivityAt time.Time     `json:"last_activity_at"`
	CreatedAt      time.Time     `json:"created_at"`
}

// Participant returns the participant entry for actorID, if present.
func (c *Conversation) Participant(actorID string) (Participant, bool) {
	for _, p := range c.Participants {
		if p.ActorID == actorID {
			return p, true
		}
	}
	return Participant{}, false
}

// IsMember reports whether actorID is an active participant.
func (c *Conversation) IsMember(actorID string) bool {
	p, ok := c.Participant(actorID)
	return ok && p.Active()
}

// ActiveParticipantCount returns the number of participants that have not left.
func (c *Conversation) ActiveParticipantCount() int {
	count := 0
	for _, p := range c.Participants {
		if p.Active() {
			count++
		}
	}
	return count
}

// ParticipantIDs returns the IDs of both bound participants in order.
func (c *Conversation) ParticipantIDs() []string {
	ids := make([]string, 0, len(c.Participants))
	for _, p := range c.Participants {
		ids = append(ids, p.ActorID)
	}
	return ids
}

// HasUnreadFor reports whether a message not sent by actorID is still unread.
func (c *Conversation) HasUnreadFor(actorID string) bool {
	for _, m := range c.Messages {
		if m.SenderID != actorID && !m.Read {
			return true
		}
	}
	return false
}

// Message returns the message with the given ID, if present.
func (c *Conversation) Message(messageID string) (Message, bool) {
	for _, m := range c.Messages {
		if m.ID == messageID {
			return m, true
		}
	}
	return Message{}, false
}

// AttachmentReferences returns every blob reference held by the conversation.
func (c *Conversation) AttachmentReferences() []string {
	var refs []string
	for _, m := range c.Messages {
		if m.Attachment != nil && m.Attachment.Reference != "" {
			refs = append(refs, m.Attachment.Reference)
		}
	}
	return refs
}

// ValidatePair checks the creation pair rule: two distinct identities, one client and one staff-side.
func ValidatePair(participants []Participant) error {
	if len(participants) != 2 {
		return fmt.Errorf("conversation requires exactly two participants, got %d", len(participants))
	}
	a, b := participants[0], participants[1]
	if a.ActorID == b.ActorID {
		return fmt.Errorf("conversation participants must be distinct")
	}
	clients, staff := 0, 0
	for _, p := range participants {
		switch {
		case p.Role == domain.RoleClient:
			clients++
		case p.Role.IsStaffSide():
			staff++
		}
	}
	if clients != 1 || staff != 1 {
		return fmt.Errorf("conversation requires one client and one staff participant")
	}
	return nil
}
