package chat

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"webstore/entity"
)

type Core interface {
	StartConversation(ctx context.Context, userID primitive.ObjectID, initialMessage string) (*entity.Conversation, *entity.MessageView, error)
	SendMessage(ctx context.Context, conversationID, senderID primitive.ObjectID, content string) (*entity.MessageView, error)
	GetMessages(ctx context.Context, conversationID primitive.ObjectID, requester *entity.User) ([]entity.MessageView, error)
	GetUserConversations(ctx context.Context, userID primitive.ObjectID, requester *entity.User) ([]entity.ConversationView, error)
	ResolveConversation(ctx context.Context, conversationID primitive.ObjectID, requester *entity.User) error
}
