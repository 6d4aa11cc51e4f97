package order

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"webstore/entity"
)

type Core interface {
	PlaceOrder(ctx context.Context, user *entity.User, items []entity.OrderItem, shipping entity.ShippingAddress, paymentMethod string) (*entity.Order, error)
	Order(ctx context.Context, id primitive.ObjectID, requester *entity.User) (*entity.Order, error)
	MyOrders(ctx context.Context, userID primitive.ObjectID) ([]entity.Order, error)
	AllOrders(ctx context.Context) ([]entity.Order, error)
	PayOrder(ctx context.Context, id primitive.ObjectID, payment entity.PaymentResult, requester *entity.User) (*entity.Order, error)
	DeliverOrder(ctx context.Context, id primitive.ObjectID) (*entity.Order, error)
}
