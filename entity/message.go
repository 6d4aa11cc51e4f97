package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MessageTypeText   = "text"
	MessageTypeFile   = "file"
	MessageTypeSystem = "system"
)

type Message struct {
	ID           primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Conversation primitive.ObjectID   `json:"conversation" bson:"conversation"`
	Sender       primitive.ObjectID   `json:"sender" bson:"sender"`
	Content      string               `json:"content" bson:"content"`
	MessageType  string               `json:"message_type" bson:"message_type"`
	ReadBy       []primitive.ObjectID `json:"read_by" bson:"read_by"`
	CreatedAt    time.Time            `json:"created_at" bson:"created_at"`
}

func NewMessage(conversationID, senderID primitive.ObjectID, content string) *Message {
	return &Message{
		Conversation: conversationID,
		Sender:       senderID,
		Content:      content,
		MessageType:  MessageTypeText,
		CreatedAt:    time.Now(),
	}
}

// MessageView is a message with the sender populated.
type MessageView struct {
	Message    `bson:",inline"`
	SenderInfo UserInfo `json:"sender_info" bson:"sender_info"`
}
