package core

import (
	"context"

	"webstore/entity"
)

const botUnavailableText = "The assistant is currently unavailable. Please try again later or contact support."

// localIntents are the intents this backend fulfills itself; for anything
// else the assistant's own response passes through untouched.
var localIntents = map[string]struct{}{
	"price.inquiry":      {},
	"stock.inquiry":      {},
	"product.category":   {},
	"product.inquiry":    {},
	"shipping.info":      {},
	"discount.inquiry":   {},
	"order.tracking":     {},
	"track.order":        {},
	"check.order.status": {},
	"order.inquiry":      {},
	"return.policy":      {},
	"payment.method":     {},
	"help":               {},
	"contact.support":    {},
}

// BotMessage runs one chatbot turn: classify the utterance, then let the
// matching local handler override the assistant's canned response with live
// store data. The result is always presentable, never a transport error.
func (c *Core) BotMessage(ctx context.Context, sessionID, message, languageCode string) entity.IntentResult {
	if c.ass == nil {
		return entity.IntentResult{
			Success:  false,
			Response: botUnavailableText,
			Error:    "assistant disabled",
		}
	}

	result := c.ass.DetectIntent(ctx, sessionID, message, languageCode)
	if !result.Success || result.Intent == "" {
		return result
	}

	if _, ok := localIntents[result.Intent]; ok {
		fulfillment := c.HandleIntent(ctx, result.Intent, result.Parameters, message, result.Response)
		if fulfillment.Text != "" {
			result.Response = fulfillment.Text
		}
		if fulfillment.Payload != nil {
			result.Payload = fulfillment.Payload
		}
	}

	return result
}

// ResetBotSession drops the stored dialogue history for a chat session.
func (c *Core) ResetBotSession(sessionID string) {
	if c.ass != nil {
		c.ass.ResetSession(sessionID)
	}
}
