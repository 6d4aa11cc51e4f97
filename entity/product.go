package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Category struct {
	ID   primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name string             `json:"name" bson:"name" validate:"required"`
}

type Review struct {
	User      primitive.ObjectID `json:"user" bson:"user"`
	Name      string             `json:"name" bson:"name"`
	Rating    float64            `json:"rating" bson:"rating" validate:"required,gte=1,lte=5"`
	Comment   string             `json:"comment" bson:"comment" validate:"required"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

type Product struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name" validate:"required"`
	Description  string             `json:"description" bson:"description" validate:"required"`
	Price        float64            `json:"price" bson:"price" validate:"gte=0"`
	Brand        string             `json:"brand" bson:"brand" validate:"required"`
	Category     primitive.ObjectID `json:"category" bson:"category" validate:"required"`
	Image        string             `json:"image" bson:"image"`
	Quantity     int                `json:"quantity" bson:"quantity" validate:"gte=0"`
	CountInStock int                `json:"count_in_stock" bson:"count_in_stock" validate:"gte=0"`
	Rating       float64            `json:"rating" bson:"rating"`
	NumReviews   int                `json:"num_reviews" bson:"num_reviews"`
	Reviews      []Review           `json:"reviews" bson:"reviews"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}

// AddReview appends a review and recomputes the denormalized rating fields.
// Rating is the arithmetic mean over all reviews.
func (p *Product) AddReview(review Review) {
	p.Reviews = append(p.Reviews, review)
	p.NumReviews = len(p.Reviews)

	sum := 0.0
	for _, r := range p.Reviews {
		sum += r.Rating
	}
	p.Rating = sum / float64(p.NumReviews)
}

func (p *Product) HasReviewBy(userID primitive.ObjectID) bool {
	for _, r := range p.Reviews {
		if r.User == userID {
			return true
		}
	}
	return false
}

func (p *Product) InStock() bool {
	return p.CountInStock > 0
}
