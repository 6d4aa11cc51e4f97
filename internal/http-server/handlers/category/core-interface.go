package category

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"webstore/entity"
)

type Core interface {
	Categories(ctx context.Context) ([]entity.Category, error)
	Category(ctx context.Context, id primitive.ObjectID) (*entity.Category, error)
	CreateCategory(ctx context.Context, category *entity.Category) error
	UpdateCategory(ctx context.Context, category *entity.Category) error
	DeleteCategory(ctx context.Context, id primitive.ObjectID) error
}
