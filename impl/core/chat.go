package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"webstore/entity"
	repository "webstore/internal/database"
	"webstore/internal/lib/sl"
)

// StartConversation finds or creates the user's active support thread with
// the store admin. The unique partial index on active conversations makes
// concurrent starts collapse onto a single thread.
func (c *Core) StartConversation(ctx context.Context, userID primitive.ObjectID, initialMessage string) (*entity.Conversation, *entity.MessageView, error) {
	if c.repo == nil {
		return nil, nil, errNotInitialized("repository")
	}

	admin, err := c.repo.FindAdmin(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrNoAdmin
		}
		return nil, nil, err
	}

	conversation, err := c.repo.FindActiveConversation(ctx, userID)
	switch {
	case err == nil:
		// reuse the existing active thread
	case errors.Is(err, repository.ErrNotFound):
		conversation = entity.NewConversation(userID, admin.ID, entity.StartedFromChatbot)
		err = c.repo.InsertConversation(ctx, conversation)
		if errors.Is(err, repository.ErrDuplicateActiveConversation) {
			// lost the race; the winner's thread is the one to use
			conversation, err = c.repo.FindActiveConversation(ctx, userID)
		}
		if err != nil {
			return nil, nil, err
		}

		if c.chatNotifier != nil {
			c.chatNotifier.BroadcastConversationStarted(*conversation)
		}
		if c.adminNotifier != nil {
			userName := userID.Hex()
			if user, uerr := c.repo.GetUserByID(ctx, userID); uerr == nil {
				userName = user.Name
			}
			c.adminNotifier.NotifyConversationStarted(*conversation, userName, initialMessage)
		}
	default:
		return nil, nil, err
	}

	var view *entity.MessageView
	if initialMessage != "" {
		view, err = c.SendMessage(ctx, conversation.ID, userID, initialMessage)
		if err != nil {
			return nil, nil, err
		}
	}

	return conversation, view, nil
}

// SendMessage persists a message and updates the thread's denormalized
// last-message fields. The sender must be a participant.
func (c *Core) SendMessage(ctx context.Context, conversationID, senderID primitive.ObjectID, content string) (*entity.MessageView, error) {
	if c.repo == nil {
		return nil, errNotInitialized("repository")
	}

	conversation, err := c.repo.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conversation.HasParticipant(senderID) {
		return nil, ErrNotParticipant
	}

	message := entity.NewMessage(conversationID, senderID, content)
	if err := c.repo.SaveMessage(ctx, message); err != nil {
		return nil, err
	}

	if err := c.repo.TouchConversation(ctx, conversationID, content, message.CreatedAt); err != nil {
		c.log.With(
			slog.String("conversation", conversationID.Hex()),
			sl.Err(err),
		).Error("touch conversation")
	}

	view := &entity.MessageView{Message: *message}
	if sender, err := c.repo.GetUserByID(ctx, senderID); err == nil {
		view.SenderInfo = sender.Info()
	}

	if c.chatNotifier != nil {
		c.chatNotifier.BroadcastMessage(*view)
	}

	return view, nil
}

// GetMessages returns the full ordered history of a conversation. Only
// participants and admins may read a thread.
func (c *Core) GetMessages(ctx context.Context, conversationID primitive.ObjectID, requester *entity.User) ([]entity.MessageView, error) {
	if c.repo == nil {
		return nil, errNotInitialized("repository")
	}

	conversation, err := c.repo.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if requester != nil && !requester.IsAdmin() && !conversation.HasParticipant(requester.ID) {
		return nil, ErrForbidden
	}

	return c.repo.GetMessages(ctx, conversationID)
}

// GetUserConversations lists a user's threads newest-activity-first.
func (c *Core) GetUserConversations(ctx context.Context, userID primitive.ObjectID, requester *entity.User) ([]entity.ConversationView, error) {
	if c.repo == nil {
		return nil, errNotInitialized("repository")
	}
	if requester != nil && !requester.IsAdmin() && requester.ID != userID {
		return nil, ErrForbidden
	}
	return c.repo.ListUserConversations(ctx, userID)
}

// ResolveConversation closes an active support thread.
func (c *Core) ResolveConversation(ctx context.Context, conversationID primitive.ObjectID, requester *entity.User) error {
	if c.repo == nil {
		return errNotInitialized("repository")
	}

	conversation, err := c.repo.GetConversation(ctx, conversationID)
	if err != nil {
		return err
	}
	if requester != nil && !requester.IsAdmin() && !conversation.HasParticipant(requester.ID) {
		return ErrForbidden
	}

	return c.repo.SetConversationStatus(ctx, conversationID, entity.ConversationResolved)
}

// HandleMarkRead is called by the websocket hub when an admin marks a
// conversation as read.
func (c *Core) HandleMarkRead(readerID, conversationID string) error {
	reader, err := primitive.ObjectIDFromHex(readerID)
	if err != nil {
		return fmt.Errorf("invalid reader id: %w", err)
	}
	conversation, err := primitive.ObjectIDFromHex(conversationID)
	if err != nil {
		return fmt.Errorf("invalid conversation id: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.repo.MarkMessagesRead(ctx, conversation, reader); err != nil {
		return err
	}

	if c.chatNotifier != nil {
		c.chatNotifier.BroadcastReadReceipt(readerID, conversationID)
	}
	return nil
}
