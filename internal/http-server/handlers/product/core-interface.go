package product

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"webstore/entity"
	"webstore/impl/core"
)

type Core interface {
	Products(ctx context.Context, keyword string, page int) (*core.ProductPage, error)
	AllProducts(ctx context.Context) ([]entity.Product, error)
	Product(ctx context.Context, id primitive.ObjectID) (*entity.Product, error)
	TopProducts(ctx context.Context) ([]entity.Product, error)
	NewProducts(ctx context.Context) ([]entity.Product, error)
	FilterProducts(ctx context.Context, categories []primitive.ObjectID, priceRange []float64) ([]entity.Product, error)
	CreateProduct(ctx context.Context, product *entity.Product) error
	UpdateProduct(ctx context.Context, product *entity.Product) error
	DeleteProduct(ctx context.Context, id primitive.ObjectID) error
	AddProductReview(ctx context.Context, productID primitive.ObjectID, user *entity.User, rating float64, comment string) error
}
