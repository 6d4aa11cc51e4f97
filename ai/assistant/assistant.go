package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sashabaranov/go-openai"

	"webstore/entity"
	"webstore/internal/config"
	"webstore/internal/lib/sl"
)

const fallbackResponse = "Sorry, I am having technical issues. Please try again later."

// historyLimit bounds the per-session context window sent to the model.
const historyLimit = 10

// ChatCompleter is the slice of the OpenAI client the assistant needs.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Assistant classifies storefront chat messages into intents through the
// hosted model. One instance serves all sessions; concurrent requests for
// the same session are serialized.
type Assistant struct {
	client ChatCompleter
	model  string
	locker *LockSessions
	log    *slog.Logger

	// mu guards the sessions map itself; the striped locker only
	// serializes work within one session.
	mu       sync.Mutex
	sessions map[string][]openai.ChatCompletionMessage
}

type LockSessions struct {
	mutex    sync.Mutex
	sessions map[string]*sync.Mutex
}

func New(conf *config.Config, logger *slog.Logger) *Assistant {
	if !conf.OpenAI.Enabled || conf.OpenAI.ApiKey == "" {
		return nil
	}
	return &Assistant{
		client:   openai.NewClient(conf.OpenAI.ApiKey),
		model:    conf.OpenAI.Model,
		sessions: make(map[string][]openai.ChatCompletionMessage),
		locker:   &LockSessions{sessions: make(map[string]*sync.Mutex)},
		log:      logger.With(sl.Module("assistant")),
	}
}

func (l *LockSessions) Lock(sessionID string) {
	l.mutex.Lock()

	mutex, exists := l.sessions[sessionID]
	if !exists {
		mutex = &sync.Mutex{}
		l.sessions[sessionID] = mutex
	}

	l.mutex.Unlock()

	mutex.Lock()
}

func (l *LockSessions) Unlock(sessionID string) {
	l.mutex.Lock()

	mutex, exists := l.sessions[sessionID]
	if !exists {
		l.mutex.Unlock()
		return
	}
	l.mutex.Unlock()

	mutex.Unlock()
}

// classification is the JSON shape the model is instructed to reply with.
type classification struct {
	Intent     string          `json:"intent"`
	Confidence float64         `json:"confidence"`
	Response   string          `json:"response"`
	Parameters json.RawMessage `json:"parameters"`
	Payload    json.RawMessage `json:"payload"`
}

var orderIntents = map[string]bool{
	"order.tracking":     true,
	"track.order":        true,
	"check.order.status": true,
	"order.inquiry":      true,
}

// DetectIntent classifies one utterance for a session. Transport and
// service failures are swallowed into a Success=false result carrying an
// apology; the method never returns an error to the caller.
func (a *Assistant) DetectIntent(ctx context.Context, sessionID, message, languageCode string) entity.IntentResult {
	if languageCode == "" {
		languageCode = "en"
	}

	a.locker.Lock(sessionID)
	defer a.locker.Unlock(sessionID)

	history := a.history(sessionID)

	request := openai.ChatCompletionRequest{
		Model: a.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: append([]openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: classifierPrompt(languageCode),
			},
		}, append(history, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: message,
		})...),
	}

	response, err := a.client.CreateChatCompletion(ctx, request)
	if err != nil {
		a.log.With(
			slog.String("session", sessionID),
			sl.Err(err),
		).Error("detect intent")
		return entity.IntentResult{
			Success:  false,
			Error:    err.Error(),
			Response: fallbackResponse,
		}
	}

	if len(response.Choices) == 0 {
		a.log.With(slog.String("session", sessionID)).Error("detect intent: empty choices")
		return entity.IntentResult{
			Success:  false,
			Error:    "no choices returned",
			Response: fallbackResponse,
		}
	}

	responseText := response.Choices[0].Message.Content

	history = append(history,
		openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: message},
		openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: responseText},
	)
	if len(history) > historyLimit {
		history = history[len(history)-historyLimit:]
	}
	a.saveHistory(sessionID, history)

	var parsed classification
	if err := json.Unmarshal([]byte(responseText), &parsed); err != nil {
		a.log.With(
			slog.String("session", sessionID),
			slog.String("response", responseText),
			sl.Err(err),
		).Error("unmarshalling classification")
		// Treat the raw text as a direct answer with no intent match.
		return entity.IntentResult{
			Success:  true,
			Response: responseText,
		}
	}

	result := entity.IntentResult{
		Success:      true,
		Intent:       parsed.Intent,
		Confidence:   parsed.Confidence,
		Response:     parsed.Response,
		HasOrderInfo: orderIntents[parsed.Intent],
	}

	if len(parsed.Parameters) > 0 {
		var params entity.IntentParams
		if err := json.Unmarshal(parsed.Parameters, &params); err != nil {
			a.log.With(
				slog.String("session", sessionID),
				sl.Err(err),
			).Error("unmarshalling parameters")
		} else {
			result.Parameters = params
		}
	}

	result.Payload = extractPayload(parsed.Payload, parsed.Response)

	a.log.With(
		slog.String("session", sessionID),
		slog.String("intent", result.Intent),
		slog.Float64("confidence", result.Confidence),
	).Debug("detect intent")

	return result
}

// ResetSession drops the stored history for a session.
func (a *Assistant) ResetSession(sessionID string) {
	a.locker.Lock(sessionID)
	defer a.locker.Unlock(sessionID)

	a.mu.Lock()
	delete(a.sessions, sessionID)
	a.mu.Unlock()
}

func (a *Assistant) history(sessionID string) []openai.ChatCompletionMessage {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sessions[sessionID]
}

func (a *Assistant) saveHistory(sessionID string, history []openai.ChatCompletionMessage) {
	a.mu.Lock()
	a.sessions[sessionID] = history
	a.mu.Unlock()
}

func classifierPrompt(languageCode string) string {
	return fmt.Sprintf(`You are the intent classifier of an electronics web store chatbot.
Classify the user's message into exactly one intent:
price.inquiry, stock.inquiry, product.category, product.inquiry, shipping.info,
discount.inquiry, order.tracking, return.policy, payment.method, help,
contact.support, fallback.

Reply with a single JSON object:
{"intent": "<name>", "confidence": <0..1>, "response": "<short answer in %s>",
 "parameters": {<extracted values>}}

Known parameter names: product_name, product_category, brand, price_range,
rating_range, order_number, location, shipping_method, payment_method,
system_feature. Include only parameters present in the message.`, languageCode)
}
