package assistant

import (
	"encoding/json"
	"strings"

	"webstore/entity"
)

// extractPayload recovers a rich payload (product card or carousel) from the
// model reply. The payload may arrive in the dedicated field, or embedded in
// the fulfillment text as a JSON object.
func extractPayload(raw json.RawMessage, responseText string) *entity.Payload {
	if len(raw) > 0 {
		var payload entity.Payload
		if err := json.Unmarshal(raw, &payload); err == nil && payload.Type != "" {
			return &payload
		}
	}

	text := strings.TrimSpace(responseText)
	if !strings.HasPrefix(text, "{") {
		return nil
	}

	var wrapped struct {
		Payload *entity.Payload `json:"payload"`
	}
	if err := json.Unmarshal([]byte(text), &wrapped); err == nil && wrapped.Payload != nil && wrapped.Payload.Type != "" {
		return wrapped.Payload
	}

	var payload entity.Payload
	if err := json.Unmarshal([]byte(text), &payload); err == nil && payload.Type != "" {
		return &payload
	}

	return nil
}
