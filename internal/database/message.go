package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"webstore/entity"
)

func (m *MongoDB) SaveMessage(ctx context.Context, message *entity.Message) error {
	connection, err := m.connect(ctx)
	if err != nil {
		return err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(messagesCollection)
	result, err := collection.InsertOne(ctx, message)
	if err != nil {
		return fmt.Errorf("mongodb insert message: %w", err)
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		message.ID = id
	}
	return nil
}

// GetMessages returns the full history of a conversation in ascending
// creation order with sender name/email populated. No pagination: the chat
// widget always renders the whole thread.
func (m *MongoDB) GetMessages(ctx context.Context, conversationID primitive.ObjectID) ([]entity.MessageView, error) {
	connection, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(messagesCollection)

	cursor, err := collection.Aggregate(ctx, messagesPipeline(conversationID))
	if err != nil {
		return nil, fmt.Errorf("mongodb aggregate messages: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []entity.MessageView
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("mongodb decode messages: %w", err)
	}
	return messages, nil
}

// messagesPipeline selects a conversation's messages in ascending creation
// order and populates the sender, with the password stripped.
func messagesPipeline(conversationID primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{"conversation", conversationID}}}},
		{{Key: "$sort", Value: bson.D{{"created_at", 1}}}},
		{{Key: "$lookup", Value: bson.D{
			{"from", usersCollection},
			{"localField", "sender"},
			{"foreignField", "_id"},
			{"as", "sender_info"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{"path", "$sender_info"},
			{"preserveNullAndEmptyArrays", true},
		}}},
		{{Key: "$project", Value: bson.D{
			{"sender_info.password", 0},
		}}},
	}
}

// MarkMessagesRead adds the reader to readBy on every message in the
// conversation sent by someone else.
func (m *MongoDB) MarkMessagesRead(ctx context.Context, conversationID, readerID primitive.ObjectID) error {
	connection, err := m.connect(ctx)
	if err != nil {
		return err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(messagesCollection)
	_, err = collection.UpdateMany(ctx,
		bson.D{
			{"conversation", conversationID},
			{"sender", bson.D{{"$ne", readerID}}},
		},
		bson.M{"$addToSet": bson.D{{"read_by", readerID}}},
	)
	if err != nil {
		return fmt.Errorf("mongodb mark messages read: %w", err)
	}
	return nil
}
