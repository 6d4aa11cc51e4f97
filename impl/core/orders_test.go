package core

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"webstore/entity"
	repository "webstore/internal/database"
)

type orderRepo struct {
	Repository

	products map[primitive.ObjectID]*entity.Product
	created  *entity.Order
	orders   map[primitive.ObjectID]*entity.Order
}

func (f *orderRepo) GetProduct(_ context.Context, id primitive.ObjectID) (*entity.Product, error) {
	if p, ok := f.products[id]; ok {
		return p, nil
	}
	return nil, repository.ErrNotFound
}

func (f *orderRepo) CreateOrder(_ context.Context, o *entity.Order) error {
	o.ID = primitive.NewObjectID()
	f.created = o
	return nil
}

func (f *orderRepo) GetOrder(_ context.Context, id primitive.ObjectID) (*entity.Order, error) {
	if o, ok := f.orders[id]; ok {
		return o, nil
	}
	return nil, repository.ErrNotFound
}

func TestPlaceOrderSnapshotsCatalogPrices(t *testing.T) {
	productID := primitive.NewObjectID()
	repo := &orderRepo{
		products: map[primitive.ObjectID]*entity.Product{
			productID: {ID: productID, Name: "Laptop", Price: 60, Image: "laptop.jpg"},
		},
	}
	c := newTestCore(repo)
	user := &entity.User{ID: primitive.NewObjectID()}

	// the client claims a lower price; it must be ignored
	items := []entity.OrderItem{{Product: productID, Qty: 1, Price: 0.01}}
	shipping := entity.ShippingAddress{Address: "1 Main St", City: "Kyiv", PostalCode: "01001", Country: "UA"}

	order, err := c.PlaceOrder(context.Background(), user, items, shipping, "PayPal")
	if err != nil {
		t.Fatalf("place order: %v", err)
	}

	if order.OrderItems[0].Price != 60 {
		t.Errorf("item price = %v, want catalog price 60", order.OrderItems[0].Price)
	}
	if order.OrderItems[0].Name != "Laptop" {
		t.Errorf("item name = %q, want snapshot from catalog", order.OrderItems[0].Name)
	}
	if order.ItemsPrice != 60 || order.ShippingPrice != 10 || order.TaxPrice != 9 {
		t.Errorf("prices = %v/%v/%v", order.ItemsPrice, order.ShippingPrice, order.TaxPrice)
	}
	if order.TotalPrice != 79 {
		t.Errorf("total = %v, want 79", order.TotalPrice)
	}
	if repo.created == nil {
		t.Error("order was not persisted")
	}
}

func TestPlaceOrderRejectsEmptyCart(t *testing.T) {
	c := newTestCore(&orderRepo{})
	user := &entity.User{ID: primitive.NewObjectID()}
	shipping := entity.ShippingAddress{Address: "1 Main St", City: "Kyiv", PostalCode: "01001", Country: "UA"}

	if _, err := c.PlaceOrder(context.Background(), user, nil, shipping, "PayPal"); err != ErrNoOrderItems {
		t.Errorf("err = %v, want ErrNoOrderItems", err)
	}
}

func TestOrderOwnership(t *testing.T) {
	owner := &entity.User{ID: primitive.NewObjectID(), Role: entity.UserRole}
	admin := &entity.User{ID: primitive.NewObjectID(), Role: entity.AdminRole}
	stranger := &entity.User{ID: primitive.NewObjectID(), Role: entity.UserRole}

	order := &entity.Order{ID: primitive.NewObjectID(), User: owner.ID}
	repo := &orderRepo{orders: map[primitive.ObjectID]*entity.Order{order.ID: order}}
	c := newTestCore(repo)

	if _, err := c.Order(context.Background(), order.ID, owner); err != nil {
		t.Errorf("owner read: %v", err)
	}
	if _, err := c.Order(context.Background(), order.ID, admin); err != nil {
		t.Errorf("admin read: %v", err)
	}
	if _, err := c.Order(context.Background(), order.ID, stranger); err != ErrForbidden {
		t.Errorf("stranger read: err = %v, want ErrForbidden", err)
	}
}
