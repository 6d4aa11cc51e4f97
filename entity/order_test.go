package entity

import (
	"testing"
	"time"
)

func TestComputePrices(t *testing.T) {
	tests := []struct {
		name         string
		items        []OrderItem
		wantItems    float64
		wantShipping float64
		wantTax      float64
		wantTotal    float64
	}{
		{
			name:         "under free shipping threshold",
			items:        []OrderItem{{Qty: 2, Price: 20}},
			wantItems:    40,
			wantShipping: 10,
			wantTax:      6,
			wantTotal:    56,
		},
		{
			name:         "over free shipping threshold",
			items:        []OrderItem{{Qty: 1, Price: 150}},
			wantItems:    150,
			wantShipping: 0,
			wantTax:      22.5,
			wantTotal:    172.5,
		},
		{
			name:         "exactly at threshold still pays shipping",
			items:        []OrderItem{{Qty: 1, Price: 100}},
			wantItems:    100,
			wantShipping: 10,
			wantTax:      15,
			wantTotal:    125,
		},
		{
			name:         "fractional prices round to cents",
			items:        []OrderItem{{Qty: 3, Price: 9.99}},
			wantItems:    29.97,
			wantShipping: 10,
			wantTax:      4.5,
			wantTotal:    44.47,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Order{OrderItems: tt.items}
			o.ComputePrices()

			if o.ItemsPrice != tt.wantItems {
				t.Errorf("ItemsPrice = %v, want %v", o.ItemsPrice, tt.wantItems)
			}
			if o.ShippingPrice != tt.wantShipping {
				t.Errorf("ShippingPrice = %v, want %v", o.ShippingPrice, tt.wantShipping)
			}
			if o.TaxPrice != tt.wantTax {
				t.Errorf("TaxPrice = %v, want %v", o.TaxPrice, tt.wantTax)
			}
			if o.TotalPrice != tt.wantTotal {
				t.Errorf("TotalPrice = %v, want %v", o.TotalPrice, tt.wantTotal)
			}
		})
	}
}

func TestStatusText(t *testing.T) {
	now := time.Now()

	o := Order{}
	if got := o.StatusText(); got != "is being prepared for shipment" {
		t.Errorf("new order status = %q", got)
	}

	o.IsPaid = true
	o.PaidAt = &now
	if got := o.StatusText(); got != "has been shipped and is on its way to you" {
		t.Errorf("paid order status = %q", got)
	}

	o.IsDelivered = true
	o.DeliveredAt = &now
	if got := o.StatusText(); got != "has been delivered successfully" {
		t.Errorf("delivered order status = %q", got)
	}
}
