package user

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"webstore/entity"
)

type Core interface {
	Register(ctx context.Context, name, email, password string) (*entity.User, string, error)
	Login(ctx context.Context, email, password string) (*entity.User, string, error)
	UpdateProfile(ctx context.Context, user *entity.User, name, email, password string) (*entity.User, error)
	Users(ctx context.Context) ([]entity.User, error)
	User(ctx context.Context, id primitive.ObjectID) (*entity.User, error)
	UpdateUserByAdmin(ctx context.Context, id primitive.ObjectID, name, email string, isAdmin bool) (*entity.User, error)
	DeleteUser(ctx context.Context, id primitive.ObjectID) error
}
