package repository

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"webstore/entity"
)

func (m *MongoDB) CreateProduct(ctx context.Context, product *entity.Product) error {
	connection, err := m.connect(ctx)
	if err != nil {
		return err
	}
	defer m.disconnect(ctx, connection)

	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	collection := connection.Database(m.database).Collection(productsCollection)
	result, err := collection.InsertOne(ctx, product)
	if err != nil {
		return fmt.Errorf("mongodb insert product: %w", err)
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		product.ID = id
	}
	return nil
}

func (m *MongoDB) GetProduct(ctx context.Context, id primitive.ObjectID) (*entity.Product, error) {
	connection, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(productsCollection)

	var product entity.Product
	err = collection.FindOne(ctx, bson.D{{"_id", id}}).Decode(&product)
	if err != nil {
		return nil, m.findError(err)
	}
	return &product, nil
}

func (m *MongoDB) UpdateProduct(ctx context.Context, product *entity.Product) error {
	connection, err := m.connect(ctx)
	if err != nil {
		return err
	}
	defer m.disconnect(ctx, connection)

	product.UpdatedAt = time.Now()

	collection := connection.Database(m.database).Collection(productsCollection)
	result, err := collection.ReplaceOne(ctx, bson.D{{"_id", product.ID}}, product)
	if err != nil {
		return fmt.Errorf("mongodb update product: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoDB) DeleteProduct(ctx context.Context, id primitive.ObjectID) error {
	connection, err := m.connect(ctx)
	if err != nil {
		return err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(productsCollection)
	result, err := collection.DeleteOne(ctx, bson.D{{"_id", id}})
	if err != nil {
		return fmt.Errorf("mongodb delete product: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListProducts returns one page of products, optionally filtered by a
// case-insensitive keyword match on the name.
func (m *MongoDB) ListProducts(ctx context.Context, keyword string, page, pageSize int) ([]entity.Product, int64, error) {
	connection, err := m.connect(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(productsCollection)

	filter := bson.D{}
	if keyword != "" {
		filter = bson.D{{"name", primitive.Regex{Pattern: regexp.QuoteMeta(keyword), Options: "i"}}}
	}

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("mongodb count products: %w", err)
	}

	if page < 1 {
		page = 1
	}
	opts := options.Find().
		SetSort(bson.D{{"created_at", -1}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("mongodb find products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []entity.Product
	if err = cursor.All(ctx, &products); err != nil {
		return nil, 0, fmt.Errorf("mongodb decode products: %w", err)
	}
	return products, total, nil
}

func (m *MongoDB) ListAllProducts(ctx context.Context) ([]entity.Product, error) {
	connection, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(productsCollection)
	cursor, err := collection.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{"created_at", -1}}))
	if err != nil {
		return nil, fmt.Errorf("mongodb find products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []entity.Product
	if err = cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("mongodb decode products: %w", err)
	}
	return products, nil
}

func (m *MongoDB) TopProducts(ctx context.Context, limit int) ([]entity.Product, error) {
	return m.sortedProducts(ctx, bson.D{{"rating", -1}}, limit)
}

func (m *MongoDB) NewProducts(ctx context.Context, limit int) ([]entity.Product, error) {
	return m.sortedProducts(ctx, bson.D{{"created_at", -1}}, limit)
}

func (m *MongoDB) sortedProducts(ctx context.Context, sort bson.D, limit int) ([]entity.Product, error) {
	connection, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(productsCollection)
	cursor, err := collection.Find(ctx, bson.D{}, options.Find().SetSort(sort).SetLimit(int64(limit)))
	if err != nil {
		return nil, fmt.Errorf("mongodb find products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []entity.Product
	if err = cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("mongodb decode products: %w", err)
	}
	return products, nil
}

// FilterProducts returns products matching any of the category ids within
// the price range. Zero maxPrice means no upper bound.
func (m *MongoDB) FilterProducts(ctx context.Context, categories []primitive.ObjectID, minPrice, maxPrice float64) ([]entity.Product, error) {
	connection, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer m.disconnect(ctx, connection)

	filter := bson.D{}
	if len(categories) > 0 {
		filter = append(filter, bson.E{Key: "category", Value: bson.D{{"$in", categories}}})
	}
	price := bson.D{{"$gte", minPrice}}
	if maxPrice > 0 {
		price = append(price, bson.E{Key: "$lte", Value: maxPrice})
	}
	filter = append(filter, bson.E{Key: "price", Value: price})

	collection := connection.Database(m.database).Collection(productsCollection)
	cursor, err := collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("mongodb filter products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []entity.Product
	if err = cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("mongodb decode products: %w", err)
	}
	return products, nil
}

// SearchProducts matches the term as a case-insensitive substring of the
// product name, and of the brand when byBrand is set.
func (m *MongoDB) SearchProducts(ctx context.Context, term string, byBrand bool, limit int) ([]entity.Product, error) {
	connection, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer m.disconnect(ctx, connection)

	re := primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
	filter := bson.D{{"name", re}}
	if byBrand {
		filter = bson.D{{"$or", []bson.D{
			{{"name", re}},
			{{"brand", re}},
		}}}
	}

	collection := connection.Database(m.database).Collection(productsCollection)
	cursor, err := collection.Find(ctx, filter, options.Find().SetLimit(int64(limit)))
	if err != nil {
		return nil, fmt.Errorf("mongodb search products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []entity.Product
	if err = cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("mongodb decode products: %w", err)
	}
	return products, nil
}

func (m *MongoDB) ProductsByCategory(ctx context.Context, categoryID primitive.ObjectID, limit int) ([]entity.Product, error) {
	connection, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(productsCollection)
	cursor, err := collection.Find(ctx,
		bson.D{{"category", categoryID}},
		options.Find().SetLimit(int64(limit)),
	)
	if err != nil {
		return nil, fmt.Errorf("mongodb find products by category: %w", err)
	}
	defer cursor.Close(ctx)

	var products []entity.Product
	if err = cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("mongodb decode products: %w", err)
	}
	return products, nil
}

// DealQuery is the dynamic facet set for discount lookups. Empty fields are
// left out of the filter.
type DealQuery struct {
	Name      string
	Brand     string
	Category  primitive.ObjectID
	MaxPrice  float64
	MinRating float64
}

func (q DealQuery) IsEmpty() bool {
	return q.Name == "" && q.Brand == "" && q.Category.IsZero() && q.MaxPrice == 0 && q.MinRating == 0
}

// FindDeals runs a deal query sorted best-rated first, cheapest first.
func (m *MongoDB) FindDeals(ctx context.Context, query DealQuery, limit int) ([]entity.Product, error) {
	connection, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer m.disconnect(ctx, connection)

	filter := bson.D{}
	if query.Name != "" {
		filter = append(filter, bson.E{Key: "name", Value: primitive.Regex{Pattern: regexp.QuoteMeta(query.Name), Options: "i"}})
	}
	if query.Brand != "" {
		filter = append(filter, bson.E{Key: "brand", Value: primitive.Regex{Pattern: regexp.QuoteMeta(query.Brand), Options: "i"}})
	}
	if !query.Category.IsZero() {
		filter = append(filter, bson.E{Key: "category", Value: query.Category})
	}
	if query.MaxPrice > 0 {
		filter = append(filter, bson.E{Key: "price", Value: bson.D{{"$lte", query.MaxPrice}}})
	}
	if query.MinRating > 0 {
		filter = append(filter, bson.E{Key: "rating", Value: bson.D{{"$gte", query.MinRating}}})
	}

	opts := options.Find().
		SetSort(bson.D{{"rating", -1}, {"price", 1}}).
		SetLimit(int64(limit))

	collection := connection.Database(m.database).Collection(productsCollection)
	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find deals: %w", err)
	}
	defer cursor.Close(ctx)

	var products []entity.Product
	if err = cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("mongodb decode products: %w", err)
	}
	return products, nil
}

// SaveReview persists the product's review list and recomputed rating fields.
func (m *MongoDB) SaveReview(ctx context.Context, product *entity.Product) error {
	connection, err := m.connect(ctx)
	if err != nil {
		return err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(productsCollection)
	result, err := collection.UpdateOne(ctx,
		bson.D{{"_id", product.ID}},
		bson.M{"$set": bson.D{
			{"reviews", product.Reviews},
			{"rating", product.Rating},
			{"num_reviews", product.NumReviews},
			{"updated_at", time.Now()},
		}},
	)
	if err != nil {
		return fmt.Errorf("mongodb save review: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
