package chatbot

import (
	"context"

	"webstore/entity"
)

type Core interface {
	BotMessage(ctx context.Context, sessionID, message, languageCode string) entity.IntentResult
	ResetBotSession(sessionID string)
}
