package core

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"webstore/entity"
)

// PlaceOrder creates an order for the user. Item names, images and prices
// are snapshotted from the catalog; client-sent prices are ignored.
func (c *Core) PlaceOrder(ctx context.Context, user *entity.User, items []entity.OrderItem, shipping entity.ShippingAddress, paymentMethod string) (*entity.Order, error) {
	if c.repo == nil {
		return nil, errNotInitialized("repository")
	}
	if len(items) == 0 {
		return nil, ErrNoOrderItems
	}
	if err := c.validate.Struct(shipping); err != nil {
		return nil, err
	}

	orderItems := make([]entity.OrderItem, 0, len(items))
	for _, item := range items {
		product, err := c.repo.GetProduct(ctx, item.Product)
		if err != nil {
			return nil, err
		}
		if err := c.validate.Struct(item); err != nil {
			return nil, err
		}

		orderItems = append(orderItems, entity.OrderItem{
			Product: product.ID,
			Name:    product.Name,
			Qty:     item.Qty,
			Price:   product.Price,
			Image:   product.Image,
		})
	}

	order := &entity.Order{
		User:            user.ID,
		OrderItems:      orderItems,
		ShippingAddress: shipping,
		PaymentMethod:   paymentMethod,
		CreatedAt:       time.Now(),
	}
	order.ComputePrices()

	if err := c.repo.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	return order, nil
}

// Order returns a single order. Customers may only read their own.
func (c *Core) Order(ctx context.Context, id primitive.ObjectID, requester *entity.User) (*entity.Order, error) {
	if c.repo == nil {
		return nil, errNotInitialized("repository")
	}

	order, err := c.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if requester != nil && !requester.IsAdmin() && order.User != requester.ID {
		return nil, ErrForbidden
	}

	return order, nil
}

func (c *Core) MyOrders(ctx context.Context, userID primitive.ObjectID) ([]entity.Order, error) {
	if c.repo == nil {
		return nil, errNotInitialized("repository")
	}
	return c.repo.ListUserOrders(ctx, userID)
}

func (c *Core) AllOrders(ctx context.Context) ([]entity.Order, error) {
	if c.repo == nil {
		return nil, errNotInitialized("repository")
	}
	return c.repo.ListAllOrders(ctx)
}

// PayOrder records the payment capture reported by the checkout widget.
func (c *Core) PayOrder(ctx context.Context, id primitive.ObjectID, payment entity.PaymentResult, requester *entity.User) (*entity.Order, error) {
	if c.repo == nil {
		return nil, errNotInitialized("repository")
	}

	order, err := c.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if requester != nil && !requester.IsAdmin() && order.User != requester.ID {
		return nil, ErrForbidden
	}

	if payment.UpdateTime.IsZero() {
		payment.UpdateTime = time.Now()
	}
	if err := c.repo.MarkOrderPaid(ctx, id, payment); err != nil {
		return nil, err
	}

	return c.repo.GetOrder(ctx, id)
}

// DeliverOrder marks an order delivered. Admin only, enforced by the route.
func (c *Core) DeliverOrder(ctx context.Context, id primitive.ObjectID) (*entity.Order, error) {
	if c.repo == nil {
		return nil, errNotInitialized("repository")
	}

	if err := c.repo.MarkOrderDelivered(ctx, id); err != nil {
		return nil, err
	}

	return c.repo.GetOrder(ctx, id)
}
