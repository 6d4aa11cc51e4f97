package webhook

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"webstore/entity"
)

type fakeCore struct {
	gotIntent string
	response  entity.WebhookResponse
}

func (f *fakeCore) HandleWebhook(_ context.Context, req entity.WebhookRequest) entity.WebhookResponse {
	f.gotIntent = req.QueryResult.Intent.DisplayName
	return f.response
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHandleDispatchesIntent(t *testing.T) {
	core := &fakeCore{response: entity.WebhookResponse{
		FulfillmentText: "Yes, we have iPhone 15.",
		Source:          "webstore-backend",
	}}

	body := `{
		"queryResult": {
			"intent": {"displayName": "price.inquiry"},
			"parameters": {"product_name": {"stringValue": "iPhone 15"}},
			"queryText": "how much is the iphone 15"
		}
	}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook", strings.NewReader(body))
	rec := httptest.NewRecorder()

	Handle(testLogger(), core)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if core.gotIntent != "price.inquiry" {
		t.Errorf("dispatched intent = %q", core.gotIntent)
	}

	var resp entity.WebhookResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.FulfillmentText != "Yes, we have iPhone 15." {
		t.Errorf("fulfillment = %q", resp.FulfillmentText)
	}
	if resp.Source != "webstore-backend" {
		t.Errorf("source = %q", resp.Source)
	}
}

func TestHandleMalformedBodyStillAnswers(t *testing.T) {
	core := &fakeCore{}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook", strings.NewReader("{nope"))
	rec := httptest.NewRecorder()

	Handle(testLogger(), core)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, webhook must answer 200", rec.Code)
	}

	var resp entity.WebhookResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.FulfillmentText == "" || resp.Source != "webstore-backend" {
		t.Errorf("response = %+v", resp)
	}
}
