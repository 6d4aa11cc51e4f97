package core

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"webstore/entity"
	repository "webstore/internal/database"
)

// chatRepo simulates the conversation store, including the unique-index
// duplicate error a concurrent starter runs into.
type chatRepo struct {
	Repository

	admin        *entity.User
	users        map[primitive.ObjectID]*entity.User
	active       *entity.Conversation
	activeLookup func() *entity.Conversation
	insertErr    error
	conversation *entity.Conversation
	messages     []*entity.Message
}

func (f *chatRepo) FindAdmin(_ context.Context) (*entity.User, error) {
	if f.admin == nil {
		return nil, repository.ErrNotFound
	}
	return f.admin, nil
}

func (f *chatRepo) GetUserByID(_ context.Context, id primitive.ObjectID) (*entity.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (f *chatRepo) FindActiveConversation(_ context.Context, _ primitive.ObjectID) (*entity.Conversation, error) {
	if f.activeLookup != nil {
		if c := f.activeLookup(); c != nil {
			return c, nil
		}
		return nil, repository.ErrNotFound
	}
	if f.active == nil {
		return nil, repository.ErrNotFound
	}
	return f.active, nil
}

func (f *chatRepo) InsertConversation(_ context.Context, c *entity.Conversation) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	c.ID = primitive.NewObjectID()
	f.active = c
	return nil
}

func (f *chatRepo) GetConversation(_ context.Context, id primitive.ObjectID) (*entity.Conversation, error) {
	if f.conversation != nil && f.conversation.ID == id {
		return f.conversation, nil
	}
	if f.active != nil && f.active.ID == id {
		return f.active, nil
	}
	return nil, repository.ErrNotFound
}

func (f *chatRepo) SaveMessage(_ context.Context, m *entity.Message) error {
	m.ID = primitive.NewObjectID()
	f.messages = append(f.messages, m)
	return nil
}

func (f *chatRepo) TouchConversation(_ context.Context, _ primitive.ObjectID, _ string, _ time.Time) error {
	return nil
}

type recordingNotifier struct {
	messages      []entity.MessageView
	conversations []entity.Conversation
	receipts      int
}

func (n *recordingNotifier) BroadcastMessage(msg entity.MessageView) {
	n.messages = append(n.messages, msg)
}

func (n *recordingNotifier) BroadcastConversationStarted(c entity.Conversation) {
	n.conversations = append(n.conversations, c)
}

func (n *recordingNotifier) BroadcastReadReceipt(_, _ string) {
	n.receipts++
}

func TestStartConversationCreatesThread(t *testing.T) {
	admin := &entity.User{ID: primitive.NewObjectID(), Name: "Admin", Role: entity.AdminRole}
	userID := primitive.NewObjectID()
	repo := &chatRepo{
		admin: admin,
		users: map[primitive.ObjectID]*entity.User{
			userID: {ID: userID, Name: "Alice"},
		},
	}
	notifier := &recordingNotifier{}

	c := newTestCore(repo)
	c.SetChatNotifier(notifier)

	conversation, message, err := c.StartConversation(context.Background(), userID, "hello")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !conversation.HasParticipant(userID) || !conversation.HasParticipant(admin.ID) {
		t.Error("conversation should include both the user and the admin")
	}
	if message == nil || message.Content != "hello" {
		t.Errorf("initial message = %+v", message)
	}
	if len(notifier.conversations) != 1 {
		t.Errorf("conversation_started broadcasts = %d", len(notifier.conversations))
	}
	if len(notifier.messages) != 1 {
		t.Errorf("message broadcasts = %d", len(notifier.messages))
	}
}

func TestStartConversationLosesRace(t *testing.T) {
	admin := &entity.User{ID: primitive.NewObjectID(), Role: entity.AdminRole}
	userID := primitive.NewObjectID()

	winner := entity.NewConversation(userID, admin.ID, entity.StartedFromChatbot)
	winner.ID = primitive.NewObjectID()

	repo := &chatRepo{
		admin:     admin,
		users:     map[primitive.ObjectID]*entity.User{},
		insertErr: repository.ErrDuplicateActiveConversation,
	}

	c := newTestCore(repo)

	// first lookup misses, insert collides, re-read must return the winner
	lookups := 0
	repo.activeLookup = func() *entity.Conversation {
		lookups++
		if lookups == 1 {
			return nil
		}
		return winner
	}

	conversation, _, err := c.StartConversation(context.Background(), userID, "")
	if err != nil {
		t.Fatalf("start after losing race: %v", err)
	}
	if conversation.ID != winner.ID {
		t.Errorf("conversation = %s, want winner %s", conversation.ID.Hex(), winner.ID.Hex())
	}
}

func TestStartConversationNoAdmin(t *testing.T) {
	c := newTestCore(&chatRepo{})

	_, _, err := c.StartConversation(context.Background(), primitive.NewObjectID(), "")
	if err != ErrNoAdmin {
		t.Errorf("err = %v, want ErrNoAdmin", err)
	}
}

func TestSendMessageRequiresParticipant(t *testing.T) {
	userID := primitive.NewObjectID()
	adminID := primitive.NewObjectID()
	conversation := entity.NewConversation(userID, adminID, entity.StartedFromDirect)
	conversation.ID = primitive.NewObjectID()

	repo := &chatRepo{
		conversation: conversation,
		users:        map[primitive.ObjectID]*entity.User{},
	}
	c := newTestCore(repo)

	_, err := c.SendMessage(context.Background(), conversation.ID, primitive.NewObjectID(), "hi")
	if err != ErrNotParticipant {
		t.Errorf("stranger send: err = %v, want ErrNotParticipant", err)
	}

	if _, err := c.SendMessage(context.Background(), conversation.ID, userID, "hi"); err != nil {
		t.Errorf("participant send: %v", err)
	}
	if len(repo.messages) != 1 {
		t.Errorf("saved messages = %d", len(repo.messages))
	}
}

func TestGetMessagesAuthorization(t *testing.T) {
	userID := primitive.NewObjectID()
	conversation := entity.NewConversation(userID, primitive.NewObjectID(), entity.StartedFromDirect)
	conversation.ID = primitive.NewObjectID()

	repo := &chatRepo{conversation: conversation}
	c := newTestCore(repo)

	stranger := &entity.User{ID: primitive.NewObjectID(), Role: entity.UserRole}
	if _, err := c.GetMessages(context.Background(), conversation.ID, stranger); err != ErrForbidden {
		t.Errorf("stranger read: err = %v, want ErrForbidden", err)
	}
}
