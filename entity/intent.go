package entity

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// WebhookRequest is the fulfillment callback payload sent by the NLU service.
type WebhookRequest struct {
	QueryResult QueryResult `json:"queryResult" validate:"required"`
}

type QueryResult struct {
	Intent          Intent       `json:"intent"`
	Parameters      IntentParams `json:"parameters"`
	FulfillmentText string       `json:"fulfillmentText"`
	QueryText       string       `json:"queryText"`
}

type Intent struct {
	DisplayName string `json:"displayName"`
}

type WebhookResponse struct {
	FulfillmentText string   `json:"fulfillmentText"`
	Payload         *Payload `json:"payload,omitempty"`
	Source          string   `json:"source"`
}

// Fulfillment is the dispatcher's answer for a single intent.
type Fulfillment struct {
	Text    string
	Payload *Payload
}

const (
	PayloadProductCard     = "product_card"
	PayloadProductCarousel = "product_carousel"
)

// Payload is the structured attachment rendered by the chat widget
// alongside the fulfillment text.
type Payload struct {
	Type  string        `json:"type"`
	Card  *ProductCard  `json:"card,omitempty"`
	Items []ProductCard `json:"items,omitempty"`
}

type ProductCard struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Brand        string  `json:"brand"`
	Price        float64 `json:"price"`
	Image        string  `json:"image"`
	Rating       float64 `json:"rating"`
	CountInStock int     `json:"count_in_stock"`
}

// IntentResult is the NLU wrapper's answer for one user utterance.
// Transport failures are carried as Success=false with an apology in
// Response, never as a Go error.
type IntentResult struct {
	Success      bool         `json:"success"`
	Intent       string       `json:"intent,omitempty"`
	Confidence   float64      `json:"confidence,omitempty"`
	Response     string       `json:"response"`
	Parameters   IntentParams `json:"parameters,omitempty"`
	HasOrderInfo bool         `json:"has_order_info"`
	Payload      *Payload     `json:"payload,omitempty"`
	Error        string       `json:"error,omitempty"`
}

// IntentParams holds intent parameters normalized to plain Go values.
//
// The NLU service encodes parameters either as plain JSON values or as its
// tagged-union value representation ({"stringValue": ...}, {"numberValue": ...},
// nested structValue/listValue). Both shapes decode to the same flat map, so
// intent handlers read parameters from a single place.
type IntentParams map[string]any

func (p *IntentParams) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	// A top-level {"fields": {...}} wrapper is the struct encoding of the
	// whole parameter map.
	if fields, ok := raw["fields"]; ok && len(raw) == 1 {
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(fields, &inner); err == nil {
			raw = inner
		}
	}

	out := make(map[string]any, len(raw))
	for name, value := range raw {
		decoded, err := decodeParamValue(value)
		if err != nil {
			return fmt.Errorf("parameter %q: %w", name, err)
		}
		out[name] = decoded
	}

	*p = out
	return nil
}

// decodeParamValue unwraps one value, recursing through the kind-tagged
// encoding when present.
func decodeParamValue(data json.RawMessage) (any, error) {
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(data, &tagged); err == nil {
		if v, ok := tagged["stringValue"]; ok {
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				return nil, err
			}
			return s, nil
		}
		if v, ok := tagged["numberValue"]; ok {
			var f float64
			if err := json.Unmarshal(v, &f); err != nil {
				return nil, err
			}
			return f, nil
		}
		if v, ok := tagged["boolValue"]; ok {
			var b bool
			if err := json.Unmarshal(v, &b); err != nil {
				return nil, err
			}
			return b, nil
		}
		if _, ok := tagged["nullValue"]; ok {
			return nil, nil
		}
		if v, ok := tagged["structValue"]; ok {
			var inner struct {
				Fields map[string]json.RawMessage `json:"fields"`
			}
			if err := json.Unmarshal(v, &inner); err != nil {
				return nil, err
			}
			out := make(map[string]any, len(inner.Fields))
			for name, value := range inner.Fields {
				decoded, err := decodeParamValue(value)
				if err != nil {
					return nil, err
				}
				out[name] = decoded
			}
			return out, nil
		}
		if v, ok := tagged["listValue"]; ok {
			var inner struct {
				Values []json.RawMessage `json:"values"`
			}
			if err := json.Unmarshal(v, &inner); err != nil {
				return nil, err
			}
			out := make([]any, 0, len(inner.Values))
			for _, value := range inner.Values {
				decoded, err := decodeParamValue(value)
				if err != nil {
					return nil, err
				}
				out = append(out, decoded)
			}
			return out, nil
		}

		// Plain JSON object without kind tags.
		out := make(map[string]any, len(tagged))
		for name, value := range tagged {
			decoded, err := decodeParamValue(value)
			if err != nil {
				return nil, err
			}
			out[name] = decoded
		}
		return out, nil
	}

	var plain any
	if err := json.Unmarshal(data, &plain); err != nil {
		return nil, err
	}
	return plain, nil
}

// String returns the named parameter as a string, or "" when absent.
// Numeric values are formatted, so "price_range: 500" still matches the
// handlers' regex extraction.
func (p IntentParams) String(name string) string {
	switch v := p[name].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

func (p IntentParams) Float(name string) (float64, bool) {
	switch v := p[name].(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
