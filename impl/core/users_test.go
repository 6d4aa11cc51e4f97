package core

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"webstore/entity"
	repository "webstore/internal/database"
)

type userRepo struct {
	Repository

	users      map[primitive.ObjectID]*entity.User
	orderCount int64
	deleted    []primitive.ObjectID
}

func (f *userRepo) GetUserByID(_ context.Context, id primitive.ObjectID) (*entity.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (f *userRepo) CountUserOrders(_ context.Context, _ primitive.ObjectID) (int64, error) {
	return f.orderCount, nil
}

func (f *userRepo) DeleteUser(_ context.Context, id primitive.ObjectID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func TestDeleteUserGuards(t *testing.T) {
	admin := &entity.User{ID: primitive.NewObjectID(), Role: entity.AdminRole}
	customer := &entity.User{ID: primitive.NewObjectID(), Role: entity.UserRole}

	repo := &userRepo{users: map[primitive.ObjectID]*entity.User{
		admin.ID:    admin,
		customer.ID: customer,
	}}
	c := newTestCore(repo)

	if err := c.DeleteUser(context.Background(), admin.ID); err != ErrAdminImmutable {
		t.Errorf("delete admin: err = %v, want ErrAdminImmutable", err)
	}

	repo.orderCount = 2
	if err := c.DeleteUser(context.Background(), customer.ID); err != ErrUserHasOrders {
		t.Errorf("delete customer with orders: err = %v, want ErrUserHasOrders", err)
	}

	repo.orderCount = 0
	if err := c.DeleteUser(context.Background(), customer.ID); err != nil {
		t.Errorf("delete clean customer: %v", err)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != customer.ID {
		t.Errorf("deleted = %v", repo.deleted)
	}
}
