package webhook

import (
	"context"

	"webstore/entity"
)

type Core interface {
	HandleWebhook(ctx context.Context, request entity.WebhookRequest) entity.WebhookResponse
}
