package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"webstore/entity"
)

func (m *MongoDB) CreateOrder(ctx context.Context, order *entity.Order) error {
	connection, err := m.connect(ctx)
	if err != nil {
		return err
	}
	defer m.disconnect(ctx, connection)

	order.CreatedAt = time.Now()

	collection := connection.Database(m.database).Collection(ordersCollection)
	result, err := collection.InsertOne(ctx, order)
	if err != nil {
		return fmt.Errorf("mongodb insert order: %w", err)
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		order.ID = id
	}
	return nil
}

func (m *MongoDB) GetOrder(ctx context.Context, id primitive.ObjectID) (*entity.Order, error) {
	connection, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(ordersCollection)

	var order entity.Order
	err = collection.FindOne(ctx, bson.D{{"_id", id}}).Decode(&order)
	if err != nil {
		return nil, m.findError(err)
	}
	return &order, nil
}

func (m *MongoDB) ListUserOrders(ctx context.Context, userID primitive.ObjectID) ([]entity.Order, error) {
	connection, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(ordersCollection)
	cursor, err := collection.Find(ctx,
		bson.D{{"user", userID}},
		options.Find().SetSort(bson.D{{"created_at", -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("mongodb find user orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []entity.Order
	if err = cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("mongodb decode orders: %w", err)
	}
	return orders, nil
}

func (m *MongoDB) ListAllOrders(ctx context.Context) ([]entity.Order, error) {
	connection, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(ordersCollection)
	cursor, err := collection.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{"created_at", -1}}))
	if err != nil {
		return nil, fmt.Errorf("mongodb find orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []entity.Order
	if err = cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("mongodb decode orders: %w", err)
	}
	return orders, nil
}

// MarkOrderPaid records a payment capture. Idempotent for already-paid orders.
func (m *MongoDB) MarkOrderPaid(ctx context.Context, id primitive.ObjectID, payment entity.PaymentResult) error {
	connection, err := m.connect(ctx)
	if err != nil {
		return err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(ordersCollection)
	result, err := collection.UpdateOne(ctx,
		bson.D{{"_id", id}},
		bson.M{"$set": bson.D{
			{"is_paid", true},
			{"paid_at", time.Now()},
			{"payment_result", payment},
		}},
	)
	if err != nil {
		return fmt.Errorf("mongodb mark order paid: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoDB) MarkOrderDelivered(ctx context.Context, id primitive.ObjectID) error {
	connection, err := m.connect(ctx)
	if err != nil {
		return err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(ordersCollection)
	result, err := collection.UpdateOne(ctx,
		bson.D{{"_id", id}},
		bson.M{"$set": bson.D{
			{"is_delivered", true},
			{"delivered_at", time.Now()},
		}},
	)
	if err != nil {
		return fmt.Errorf("mongodb mark order delivered: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
