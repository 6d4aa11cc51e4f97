package core

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"webstore/entity"
	repository "webstore/internal/database"
)

// fakeRepo implements the subset of Repository the intent handlers touch.
// Unimplemented methods panic through the embedded nil interface.
type fakeRepo struct {
	Repository

	products   []entity.Product
	deals      []entity.Product
	categories []entity.Category
	order      *entity.Order
	user       *entity.User
	failSearch bool
}

func (f *fakeRepo) SearchProducts(_ context.Context, term string, _ bool, limit int) ([]entity.Product, error) {
	if f.failSearch {
		return nil, errors.New("search down")
	}
	out := []entity.Product{}
	for _, p := range f.products {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(term)) ||
			strings.Contains(strings.ToLower(p.Brand), strings.ToLower(term)) {
			out = append(out, p)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeRepo) FindDeals(_ context.Context, _ repository.DealQuery, limit int) ([]entity.Product, error) {
	if len(f.deals) > limit {
		return f.deals[:limit], nil
	}
	return f.deals, nil
}

func (f *fakeRepo) FindCategoryByName(_ context.Context, name string) (*entity.Category, error) {
	for _, c := range f.categories {
		if strings.EqualFold(c.Name, name) {
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeRepo) ListCategories(_ context.Context) ([]entity.Category, error) {
	return f.categories, nil
}

func (f *fakeRepo) ProductsByCategory(_ context.Context, id primitive.ObjectID, limit int) ([]entity.Product, error) {
	out := []entity.Product{}
	for _, p := range f.products {
		if p.Category == id {
			out = append(out, p)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeRepo) GetOrder(_ context.Context, id primitive.ObjectID) (*entity.Order, error) {
	if f.order != nil && f.order.ID == id {
		return f.order, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeRepo) GetUserByID(_ context.Context, id primitive.ObjectID) (*entity.User, error) {
	if f.user != nil && f.user.ID == id {
		return f.user, nil
	}
	return nil, repository.ErrNotFound
}

func newTestCore(repo Repository) *Core {
	c := New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.SetRepository(repo)
	return c
}

func product(name, brand string, price float64, stock int) entity.Product {
	return entity.Product{
		ID:           primitive.NewObjectID(),
		Name:         name,
		Brand:        brand,
		Price:        price,
		CountInStock: stock,
		Rating:       4.2,
	}
}

func TestHandleIntentPriceInquiryNoMatch(t *testing.T) {
	c := newTestCore(&fakeRepo{})

	params := entity.IntentParams{"product_name": "Nokia 3310"}
	f := c.HandleIntent(context.Background(), "price.inquiry", params, "", "")

	if !strings.Contains(f.Text, "couldn't find") {
		t.Errorf("no-match text = %q", f.Text)
	}
	if f.Payload != nil {
		t.Error("no-match should carry no payload")
	}
}

func TestHandleIntentPriceInquirySingleMatch(t *testing.T) {
	c := newTestCore(&fakeRepo{products: []entity.Product{
		product("iPhone 15", "Apple", 999, 7),
	}})

	params := entity.IntentParams{"product_name": "iphone"}
	f := c.HandleIntent(context.Background(), "price.inquiry", params, "", "")

	if !strings.Contains(f.Text, "$999") {
		t.Errorf("text should mention price, got %q", f.Text)
	}
	if f.Payload == nil || f.Payload.Type != entity.PayloadProductCard {
		t.Fatalf("payload = %+v, want product card", f.Payload)
	}
	if f.Payload.Card.Name != "iPhone 15" {
		t.Errorf("card name = %q", f.Payload.Card.Name)
	}
}

func TestHandleIntentPriceInquiryMultipleMatches(t *testing.T) {
	c := newTestCore(&fakeRepo{products: []entity.Product{
		product("iPhone 15", "Apple", 999, 7),
		product("iPhone 15 Pro", "Apple", 1199, 3),
		product("iPhone SE", "Apple", 429, 0),
	}})

	params := entity.IntentParams{"product_name": "iphone"}
	f := c.HandleIntent(context.Background(), "price.inquiry", params, "", "")

	if !strings.Contains(f.Text, "Found 3 matching products") {
		t.Errorf("text = %q", f.Text)
	}
	if f.Payload == nil || f.Payload.Type != entity.PayloadProductCarousel {
		t.Fatalf("payload = %+v, want carousel", f.Payload)
	}
	if len(f.Payload.Items) != 3 {
		t.Errorf("carousel items = %d", len(f.Payload.Items))
	}
}

func TestHandleIntentPriceInquiryMissingParam(t *testing.T) {
	c := newTestCore(&fakeRepo{})

	f := c.HandleIntent(context.Background(), "price.inquiry", entity.IntentParams{}, "", "")
	if !strings.Contains(f.Text, "Which product") {
		t.Errorf("missing-param prompt = %q", f.Text)
	}
}

func TestHandleIntentRepoErrorYieldsApology(t *testing.T) {
	c := newTestCore(&fakeRepo{failSearch: true})

	params := entity.IntentParams{"product_name": "iphone"}
	f := c.HandleIntent(context.Background(), "price.inquiry", params, "", "")

	if f.Text != dispatchErrorText {
		t.Errorf("text = %q, want dispatch apology", f.Text)
	}
}

func TestHandleIntentDiscountSingleDeal(t *testing.T) {
	c := newTestCore(&fakeRepo{deals: []entity.Product{
		product("Galaxy Watch", "Samsung", 100, 5),
	}})

	f := c.HandleIntent(context.Background(), "discount.inquiry", entity.IntentParams{}, "", "")

	// markup 1.2 over $100: original $120, save $20
	if !strings.Contains(f.Text, "$120") || !strings.Contains(f.Text, "$20") {
		t.Errorf("deal text = %q", f.Text)
	}
	if f.Payload == nil || f.Payload.Type != entity.PayloadProductCard {
		t.Errorf("payload = %+v", f.Payload)
	}
}

func TestFabricatedDealNeverBelowPrice(t *testing.T) {
	for _, price := range []float64{0, 0.5, 1, 99.99, 1200} {
		original, save := fabricatedDeal(price, singleDealMarkup)
		if original < price {
			t.Errorf("price %v: original %v below price", price, original)
		}
		if save != original-price {
			t.Errorf("price %v: save %v != original-price %v", price, save, original-price)
		}
	}
}

func TestHandleIntentOrderTracking(t *testing.T) {
	paidAt := time.Now()
	order := &entity.Order{
		ID:         primitive.NewObjectID(),
		User:       primitive.NewObjectID(),
		TotalPrice: 56,
		IsPaid:     true,
		PaidAt:     &paidAt,
		CreatedAt:  time.Now(),
	}
	c := newTestCore(&fakeRepo{
		order: order,
		user:  &entity.User{ID: order.User, Name: "Alice"},
	})

	params := entity.IntentParams{"order_number": order.ID.Hex()}
	f := c.HandleIntent(context.Background(), "order.tracking", params, "", "")

	if !strings.Contains(f.Text, "shipped") {
		t.Errorf("paid order should report shipped, got %q", f.Text)
	}
	if !strings.Contains(f.Text, "Alice") {
		t.Errorf("text should name the customer, got %q", f.Text)
	}
	if !strings.Contains(f.Text, "$56") {
		t.Errorf("text should carry the total, got %q", f.Text)
	}
}

func TestHandleIntentOrderTrackingUnknownId(t *testing.T) {
	c := newTestCore(&fakeRepo{})

	for _, raw := range []string{"not-hex", primitive.NewObjectID().Hex()} {
		params := entity.IntentParams{"order_number": raw}
		f := c.HandleIntent(context.Background(), "order.tracking", params, "", "")
		if !strings.Contains(f.Text, "couldn't find order") {
			t.Errorf("order %q: text = %q", raw, f.Text)
		}
	}
}

func TestHandleIntentFallback(t *testing.T) {
	c := newTestCore(&fakeRepo{})

	f := c.HandleIntent(context.Background(), "weather.report", nil, "", "It looks sunny!")
	if f.Text != "It looks sunny!" {
		t.Errorf("service text should pass through, got %q", f.Text)
	}

	f = c.HandleIntent(context.Background(), "weather.report", nil, "how much does shipping cost", "")
	if !strings.Contains(f.Text, "shipping") {
		t.Errorf("fallback should suggest shipping help, got %q", f.Text)
	}
}

func TestTruncateCutsOnRuneBoundaries(t *testing.T) {
	if got := truncate("short", 150); got != "short" {
		t.Errorf("short text should pass through, got %q", got)
	}

	s := strings.Repeat("é", 200)
	got := truncate(s, 150)
	if !utf8.ValidString(got) {
		t.Fatalf("truncated text is not valid UTF-8: %q", got)
	}
	if want := strings.Repeat("é", 150) + "..."; got != want {
		t.Errorf("got %d runes, want 150 + ellipsis", utf8.RuneCountInString(got))
	}
}

func TestHandleWebhookShape(t *testing.T) {
	c := newTestCore(&fakeRepo{})

	resp := c.HandleWebhook(context.Background(), entity.WebhookRequest{
		QueryResult: entity.QueryResult{
			Intent: entity.Intent{DisplayName: "return.policy"},
		},
	})

	if resp.Source != "webstore-backend" {
		t.Errorf("source = %q", resp.Source)
	}
	if !strings.Contains(resp.FulfillmentText, "30 days") {
		t.Errorf("fulfillment = %q", resp.FulfillmentText)
	}
}
