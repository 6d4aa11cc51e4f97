package entity

import (
	"encoding/json"
	"testing"
)

func TestIntentParamsPlainJSON(t *testing.T) {
	raw := `{"product_name": "iPhone 15", "price_range": 500, "urgent": true}`

	var params IntentParams
	if err := json.Unmarshal([]byte(raw), &params); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got := params.String("product_name"); got != "iPhone 15" {
		t.Errorf("product_name = %q", got)
	}
	if got := params.String("price_range"); got != "500" {
		t.Errorf("price_range = %q, numeric values should format as strings", got)
	}
	if got := params.String("urgent"); got != "true" {
		t.Errorf("urgent = %q", got)
	}
	if got := params.String("missing"); got != "" {
		t.Errorf("missing = %q, want empty", got)
	}
}

func TestIntentParamsTaggedValues(t *testing.T) {
	raw := `{
		"product_name": {"stringValue": "Macbook Air"},
		"rating": {"numberValue": 4.5},
		"nothing": {"nullValue": null},
		"nested": {"structValue": {"fields": {"inner": {"stringValue": "deep"}}}},
		"list": {"listValue": {"values": [{"numberValue": 1}, {"stringValue": "two"}]}}
	}`

	var params IntentParams
	if err := json.Unmarshal([]byte(raw), &params); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got := params.String("product_name"); got != "Macbook Air" {
		t.Errorf("product_name = %q", got)
	}
	if rating, ok := params.Float("rating"); !ok || rating != 4.5 {
		t.Errorf("rating = %v ok=%v", rating, ok)
	}
	if params["nothing"] != nil {
		t.Errorf("nullValue should decode to nil, got %v", params["nothing"])
	}

	nested, ok := params["nested"].(map[string]any)
	if !ok {
		t.Fatalf("nested = %T, want map", params["nested"])
	}
	if nested["inner"] != "deep" {
		t.Errorf("nested.inner = %v", nested["inner"])
	}

	list, ok := params["list"].([]any)
	if !ok || len(list) != 2 {
		t.Fatalf("list = %v", params["list"])
	}
	if list[0] != 1.0 || list[1] != "two" {
		t.Errorf("list values = %v", list)
	}
}

func TestIntentParamsFieldsWrapper(t *testing.T) {
	raw := `{"fields": {"order_number": {"stringValue": "68e9a1"}}}`

	var params IntentParams
	if err := json.Unmarshal([]byte(raw), &params); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got := params.String("order_number"); got != "68e9a1" {
		t.Errorf("order_number = %q", got)
	}
}

func TestIntentParamsFloatFromString(t *testing.T) {
	params := IntentParams{"max": "250.5", "bad": "abc"}

	if f, ok := params.Float("max"); !ok || f != 250.5 {
		t.Errorf("Float(max) = %v ok=%v", f, ok)
	}
	if _, ok := params.Float("bad"); ok {
		t.Error("Float(bad) should fail")
	}
}
