package core

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"webstore/entity"
	repository "webstore/internal/database"
)

const (
	catalogPageSize  = 6
	topProductsLimit = 4
	newProductsLimit = 5
)

// ProductPage is one page of keyword-filtered catalog results.
type ProductPage struct {
	Products []entity.Product `json:"products"`
	Page     int              `json:"page"`
	Pages    int              `json:"pages"`
	HasMore  bool             `json:"has_more"`
}

// Products returns one catalog page, optionally filtered by a keyword
// matched against product names.
func (c *Core) Products(ctx context.Context, keyword string, page int) (*ProductPage, error) {
	if c.repo == nil {
		return nil, errNotInitialized("repository")
	}
	if page < 1 {
		page = 1
	}

	products, total, err := c.repo.ListProducts(ctx, keyword, page, catalogPageSize)
	if err != nil {
		return nil, err
	}

	pages := int((total + catalogPageSize - 1) / catalogPageSize)
	return &ProductPage{
		Products: products,
		Page:     page,
		Pages:    pages,
		HasMore:  page < pages,
	}, nil
}

func (c *Core) AllProducts(ctx context.Context) ([]entity.Product, error) {
	if c.repo == nil {
		return nil, errNotInitialized("repository")
	}
	return c.repo.ListAllProducts(ctx)
}

func (c *Core) Product(ctx context.Context, id primitive.ObjectID) (*entity.Product, error) {
	if c.repo == nil {
		return nil, errNotInitialized("repository")
	}
	return c.repo.GetProduct(ctx, id)
}

func (c *Core) TopProducts(ctx context.Context) ([]entity.Product, error) {
	if c.repo == nil {
		return nil, errNotInitialized("repository")
	}
	return c.repo.TopProducts(ctx, topProductsLimit)
}

func (c *Core) NewProducts(ctx context.Context) ([]entity.Product, error) {
	if c.repo == nil {
		return nil, errNotInitialized("repository")
	}
	return c.repo.NewProducts(ctx, newProductsLimit)
}

// FilterProducts narrows the catalog by category ids and an optional
// [min, max] price range.
func (c *Core) FilterProducts(ctx context.Context, categories []primitive.ObjectID, priceRange []float64) ([]entity.Product, error) {
	if c.repo == nil {
		return nil, errNotInitialized("repository")
	}

	minPrice, maxPrice := 0.0, 0.0
	if len(priceRange) >= 2 {
		minPrice, maxPrice = priceRange[0], priceRange[1]
	}

	return c.repo.FilterProducts(ctx, categories, minPrice, maxPrice)
}

func (c *Core) CreateProduct(ctx context.Context, product *entity.Product) error {
	if c.repo == nil {
		return errNotInitialized("repository")
	}
	if err := c.validate.Struct(product); err != nil {
		return err
	}

	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	return c.repo.CreateProduct(ctx, product)
}

func (c *Core) UpdateProduct(ctx context.Context, product *entity.Product) error {
	if c.repo == nil {
		return errNotInitialized("repository")
	}
	if err := c.validate.Struct(product); err != nil {
		return err
	}

	existing, err := c.repo.GetProduct(ctx, product.ID)
	if err != nil {
		return err
	}

	// reviews are append-only through AddProductReview
	product.Reviews = existing.Reviews
	product.Rating = existing.Rating
	product.NumReviews = existing.NumReviews
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now()

	return c.repo.UpdateProduct(ctx, product)
}

func (c *Core) DeleteProduct(ctx context.Context, id primitive.ObjectID) error {
	if c.repo == nil {
		return errNotInitialized("repository")
	}
	return c.repo.DeleteProduct(ctx, id)
}

// AddProductReview records one review per user per product and refreshes
// the denormalized rating.
func (c *Core) AddProductReview(ctx context.Context, productID primitive.ObjectID, user *entity.User, rating float64, comment string) error {
	if c.repo == nil {
		return errNotInitialized("repository")
	}

	product, err := c.repo.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	if product.HasReviewBy(user.ID) {
		return ErrAlreadyReviewed
	}

	review := entity.Review{
		User:      user.ID,
		Name:      user.Name,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: time.Now(),
	}
	if err := c.validate.Struct(review); err != nil {
		return err
	}

	product.AddReview(review)
	return c.repo.SaveReview(ctx, product)
}

func (c *Core) Categories(ctx context.Context) ([]entity.Category, error) {
	if c.repo == nil {
		return nil, errNotInitialized("repository")
	}
	return c.repo.ListCategories(ctx)
}

func (c *Core) Category(ctx context.Context, id primitive.ObjectID) (*entity.Category, error) {
	if c.repo == nil {
		return nil, errNotInitialized("repository")
	}
	return c.repo.GetCategory(ctx, id)
}

func (c *Core) CreateCategory(ctx context.Context, category *entity.Category) error {
	if c.repo == nil {
		return errNotInitialized("repository")
	}
	if err := c.validate.Struct(category); err != nil {
		return err
	}

	_, err := c.repo.FindCategoryByName(ctx, category.Name)
	switch {
	case err == nil:
		return ErrCategoryExists
	case errors.Is(err, repository.ErrNotFound):
		// free to create
	default:
		return err
	}

	return c.repo.CreateCategory(ctx, category)
}

func (c *Core) UpdateCategory(ctx context.Context, category *entity.Category) error {
	if c.repo == nil {
		return errNotInitialized("repository")
	}
	if err := c.validate.Struct(category); err != nil {
		return err
	}
	return c.repo.UpdateCategory(ctx, category)
}

func (c *Core) DeleteCategory(ctx context.Context, id primitive.ObjectID) error {
	if c.repo == nil {
		return errNotInitialized("repository")
	}
	return c.repo.DeleteCategory(ctx, id)
}
