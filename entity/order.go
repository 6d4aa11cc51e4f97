package entity

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderItem struct {
	Product primitive.ObjectID `json:"product" bson:"product"`
	Name    string             `json:"name" bson:"name"`
	Qty     int                `json:"qty" bson:"qty" validate:"gte=1"`
	Price   float64            `json:"price" bson:"price"`
	Image   string             `json:"image" bson:"image"`
}

type ShippingAddress struct {
	Address    string `json:"address" bson:"address" validate:"required"`
	City       string `json:"city" bson:"city" validate:"required"`
	PostalCode string `json:"postal_code" bson:"postal_code" validate:"required"`
	Country    string `json:"country" bson:"country" validate:"required"`
}

// PaymentResult holds the capture details reported by the payment provider.
type PaymentResult struct {
	TransactionID string    `json:"transaction_id" bson:"transaction_id"`
	Status        string    `json:"status" bson:"status"`
	EmailAddress  string    `json:"email_address" bson:"email_address"`
	UpdateTime    time.Time `json:"update_time" bson:"update_time"`
}

type Order struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	User            primitive.ObjectID `json:"user" bson:"user"`
	OrderItems      []OrderItem        `json:"order_items" bson:"order_items"`
	ShippingAddress ShippingAddress    `json:"shipping_address" bson:"shipping_address"`
	PaymentMethod   string             `json:"payment_method" bson:"payment_method"`
	PaymentResult   *PaymentResult     `json:"payment_result,omitempty" bson:"payment_result,omitempty"`
	ItemsPrice      float64            `json:"items_price" bson:"items_price"`
	ShippingPrice   float64            `json:"shipping_price" bson:"shipping_price"`
	TaxPrice        float64            `json:"tax_price" bson:"tax_price"`
	TotalPrice      float64            `json:"total_price" bson:"total_price"`
	IsPaid          bool               `json:"is_paid" bson:"is_paid"`
	PaidAt          *time.Time         `json:"paid_at,omitempty" bson:"paid_at,omitempty"`
	IsDelivered     bool               `json:"is_delivered" bson:"is_delivered"`
	DeliveredAt     *time.Time         `json:"delivered_at,omitempty" bson:"delivered_at,omitempty"`
	CreatedAt       time.Time          `json:"created_at" bson:"created_at"`
}

const (
	freeShippingThreshold = 100.0
	flatShippingPrice     = 10.0
	taxRate               = 0.15
)

// ComputePrices fills the price breakdown from the order items.
// Orders over the free-shipping threshold ship for free, tax is a flat rate.
func (o *Order) ComputePrices() {
	items := 0.0
	for _, it := range o.OrderItems {
		items += it.Price * float64(it.Qty)
	}

	o.ItemsPrice = round2(items)
	if items > freeShippingThreshold {
		o.ShippingPrice = 0
	} else {
		o.ShippingPrice = flatShippingPrice
	}
	o.TaxPrice = round2(items * taxRate)
	o.TotalPrice = round2(o.ItemsPrice + o.ShippingPrice + o.TaxPrice)
}

// StatusText describes the order state for chat responses.
func (o *Order) StatusText() string {
	switch {
	case o.IsDelivered:
		return "has been delivered successfully"
	case o.IsPaid:
		return "has been shipped and is on its way to you"
	default:
		return "is being prepared for shipment"
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
