package entities

import (
	"time"

	"gorm.io/datatypes"
)

// Conversation is the persisted thread header.
type Conversation struct {
	ID             string    `gorm:"type:varchar(40);primaryKey"`
	Subject        string    `gorm:"type:varchar(200);not null"`
	LastActivityAt time.Time `gorm:"not null"`
	CreatedAt      time.Time `gorm:"not null"`

	Participants []ConversationParticipant `gorm:"foreignKey:ConversationID"`
	Messages     []Message                 `gorm:"foreignKey:ConversationID"`
}

func (Conversation) TableName() string {
	return "messaging_api.conversations"
}

// ConversationParticipant binds an actor to a conversation.
type ConversationParticipant struct {
	ConversationID string `gorm:"type:varchar(40);primaryKey"`
	ActorID        string `gorm:"type:varchar(128);primaryKey"`
	Role           string `gorm:"type:varchar(32);not null"`
	Position       int16  `gorm:"not null"`
	JoinedAt       time.Time
	LeftAt         *time.Time
}

func (ConversationParticipant) TableName() string {
	return "messaging_api.conversation_participants"
}

// Message is one appended row. Seq is assigned by the database and orders the log.
type Message struct {
	ID             string         `gorm:"type:varchar(40);primaryKey"`
	Seq            int64          `gorm:"->"`
	ConversationID string         `gorm:"type:varchar(40);not null"`
	SenderID       string         `gorm:"type:varchar(128);not null"`
	Body           string         `gorm:"type:text;not null"`
	Attachment     datatypes.JSON `gorm:"type:jsonb"`
	Read           bool           `gorm:"not null;default:false"`
	CreatedAt      time.Time      `gorm:"not null"`
}

func (Message) TableName() string {
	return "messaging_api.messages"
}
