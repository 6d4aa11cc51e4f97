package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"webstore/entity"
)

// FindActiveConversation returns the user's active support thread, or
// ErrNotFound when none exists.
func (m *MongoDB) FindActiveConversation(ctx context.Context, userID primitive.ObjectID) (*entity.Conversation, error) {
	connection, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)
	filter := bson.D{
		{"customer", userID},
		{"status", entity.ConversationActive},
	}

	var conversation entity.Conversation
	err = collection.FindOne(ctx, filter).Decode(&conversation)
	if err != nil {
		return nil, m.findError(err)
	}
	return &conversation, nil
}

// InsertConversation creates a conversation. The unique partial index on
// (customer, status=active) makes concurrent creates for the same user fail
// with a duplicate-key error; callers recover by re-reading the winner with
// FindActiveConversation.
func (m *MongoDB) InsertConversation(ctx context.Context, conversation *entity.Conversation) error {
	connection, err := m.connect(ctx)
	if err != nil {
		return err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)
	result, err := collection.InsertOne(ctx, conversation)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateActiveConversation
		}
		return fmt.Errorf("mongodb insert conversation: %w", err)
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		conversation.ID = id
	}
	return nil
}

var ErrDuplicateActiveConversation = fmt.Errorf("active conversation already exists")

func (m *MongoDB) GetConversation(ctx context.Context, id primitive.ObjectID) (*entity.Conversation, error) {
	connection, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)

	var conversation entity.Conversation
	err = collection.FindOne(ctx, bson.D{{"_id", id}}).Decode(&conversation)
	if err != nil {
		return nil, m.findError(err)
	}
	return &conversation, nil
}

// TouchConversation updates the denormalized last-message fields.
func (m *MongoDB) TouchConversation(ctx context.Context, id primitive.ObjectID, lastMessage string, at time.Time) error {
	connection, err := m.connect(ctx)
	if err != nil {
		return err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)
	result, err := collection.UpdateOne(ctx,
		bson.D{{"_id", id}},
		bson.M{"$set": bson.D{
			{"last_message", lastMessage},
			{"last_message_at", at},
			{"updated_at", at},
		}},
	)
	if err != nil {
		return fmt.Errorf("mongodb touch conversation: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoDB) SetConversationStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	connection, err := m.connect(ctx)
	if err != nil {
		return err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)
	result, err := collection.UpdateOne(ctx,
		bson.D{{"_id", id}},
		bson.M{"$set": bson.D{
			{"status", status},
			{"updated_at", time.Now()},
		}},
	)
	if err != nil {
		return fmt.Errorf("mongodb set conversation status: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListUserConversations returns the user's conversations newest-activity-first
// with participant users populated.
func (m *MongoDB) ListUserConversations(ctx context.Context, userID primitive.ObjectID) ([]entity.ConversationView, error) {
	connection, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{"participants", bson.D{{"$elemMatch", bson.D{{"user", userID}}}}},
		}}},
		{{Key: "$sort", Value: bson.D{{"last_message_at", -1}}}},
		{{Key: "$lookup", Value: bson.D{
			{"from", usersCollection},
			{"localField", "participants.user"},
			{"foreignField", "_id"},
			{"as", "users"},
		}}},
		{{Key: "$project", Value: bson.D{
			{"users.password", 0},
		}}},
	}

	cursor, err := collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("mongodb aggregate conversations: %w", err)
	}
	defer cursor.Close(ctx)

	var conversations []entity.ConversationView
	if err = cursor.All(ctx, &conversations); err != nil {
		return nil, fmt.Errorf("mongodb decode conversations: %w", err)
	}
	return conversations, nil
}
