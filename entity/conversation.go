package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ConversationActive   = "active"
	ConversationResolved = "resolved"
	ConversationPending  = "pending"

	StartedFromChatbot = "chatbot"
	StartedFromDirect  = "direct"
)

type Participant struct {
	User primitive.ObjectID `json:"user" bson:"user"`
	Role string             `json:"role" bson:"role"` // "user" | "admin"
}

type Conversation struct {
	ID primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	// Customer is the non-admin participant. The active-conversation
	// uniqueness index lives on this field rather than participants.user,
	// which is multikey and would collide on the shared admin.
	Customer      primitive.ObjectID `json:"customer" bson:"customer"`
	Participants  []Participant      `json:"participants" bson:"participants"`
	StartedFrom   string             `json:"started_from" bson:"started_from"`
	Status        string             `json:"status" bson:"status"`
	LastMessage   string             `json:"last_message" bson:"last_message"`
	LastMessageAt time.Time          `json:"last_message_at" bson:"last_message_at"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}

func NewConversation(userID, adminID primitive.ObjectID, startedFrom string) *Conversation {
	now := time.Now()
	return &Conversation{
		Customer: userID,
		Participants: []Participant{
			{User: userID, Role: UserRole},
			{User: adminID, Role: AdminRole},
		},
		StartedFrom:   startedFrom,
		Status:        ConversationActive,
		LastMessageAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (c *Conversation) HasParticipant(userID primitive.ObjectID) bool {
	for _, p := range c.Participants {
		if p.User == userID {
			return true
		}
	}
	return false
}

// ConversationView is a conversation with participant users populated.
type ConversationView struct {
	Conversation `bson:",inline"`
	Users        []UserInfo `json:"users" bson:"users"`
}
