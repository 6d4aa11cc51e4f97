package repository

import (
	"context"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"webstore/entity"
)

func (m *MongoDB) CreateCategory(ctx context.Context, category *entity.Category) error {
	connection, err := m.connect(ctx)
	if err != nil {
		return err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(categoriesCollection)
	result, err := collection.InsertOne(ctx, category)
	if err != nil {
		return fmt.Errorf("mongodb insert category: %w", err)
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		category.ID = id
	}
	return nil
}

func (m *MongoDB) GetCategory(ctx context.Context, id primitive.ObjectID) (*entity.Category, error) {
	connection, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(categoriesCollection)

	var category entity.Category
	err = collection.FindOne(ctx, bson.D{{"_id", id}}).Decode(&category)
	if err != nil {
		return nil, m.findError(err)
	}
	return &category, nil
}

// FindCategoryByName resolves a category by case-insensitive substring match,
// the way chat utterances name categories ("laptops", "Laptop").
func (m *MongoDB) FindCategoryByName(ctx context.Context, name string) (*entity.Category, error) {
	connection, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(categoriesCollection)
	filter := bson.D{{"name", primitive.Regex{Pattern: regexp.QuoteMeta(name), Options: "i"}}}

	var category entity.Category
	err = collection.FindOne(ctx, filter).Decode(&category)
	if err != nil {
		return nil, m.findError(err)
	}
	return &category, nil
}

func (m *MongoDB) ListCategories(ctx context.Context) ([]entity.Category, error) {
	connection, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(categoriesCollection)
	cursor, err := collection.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{"name", 1}}))
	if err != nil {
		return nil, fmt.Errorf("mongodb find categories: %w", err)
	}
	defer cursor.Close(ctx)

	var categories []entity.Category
	if err = cursor.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("mongodb decode categories: %w", err)
	}
	return categories, nil
}

func (m *MongoDB) UpdateCategory(ctx context.Context, category *entity.Category) error {
	connection, err := m.connect(ctx)
	if err != nil {
		return err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(categoriesCollection)
	result, err := collection.UpdateOne(ctx,
		bson.D{{"_id", category.ID}},
		bson.M{"$set": bson.D{{"name", category.Name}}},
	)
	if err != nil {
		return fmt.Errorf("mongodb update category: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoDB) DeleteCategory(ctx context.Context, id primitive.ObjectID) error {
	connection, err := m.connect(ctx)
	if err != nil {
		return err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(categoriesCollection)
	result, err := collection.DeleteOne(ctx, bson.D{{"_id", id}})
	if err != nil {
		return fmt.Errorf("mongodb delete category: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
