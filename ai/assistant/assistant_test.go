package assistant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"

	"webstore/entity"
)

type fakeCompleter struct {
	reply string
	err   error

	requests []openai.ChatCompletionRequest
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: f.reply}},
		},
	}, nil
}

func newTestAssistant(client ChatCompleter) *Assistant {
	return &Assistant{
		client:   client,
		model:    "test-model",
		sessions: make(map[string][]openai.ChatCompletionMessage),
		locker:   &LockSessions{sessions: make(map[string]*sync.Mutex)},
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestDetectIntentSwallowsTransportErrors(t *testing.T) {
	a := newTestAssistant(&fakeCompleter{err: errors.New("connection refused")})

	result := a.DetectIntent(context.Background(), "s1", "how much is the iphone", "en")

	if result.Success {
		t.Error("transport failure must not report success")
	}
	if result.Response != fallbackResponse {
		t.Errorf("response = %q, want fallback apology", result.Response)
	}
	if result.Error == "" {
		t.Error("error detail should be carried in the result")
	}
}

func TestDetectIntentParsesClassification(t *testing.T) {
	a := newTestAssistant(&fakeCompleter{
		reply: `{"intent": "price.inquiry", "confidence": 0.93,
			"response": "Let me check the price.",
			"parameters": {"product_name": "iPhone 15"}}`,
	})

	result := a.DetectIntent(context.Background(), "s1", "how much is the iphone 15", "en")

	if !result.Success {
		t.Fatalf("result = %+v", result)
	}
	if result.Intent != "price.inquiry" || result.Confidence != 0.93 {
		t.Errorf("intent = %q confidence = %v", result.Intent, result.Confidence)
	}
	if got := result.Parameters.String("product_name"); got != "iPhone 15" {
		t.Errorf("product_name = %q", got)
	}
	if result.HasOrderInfo {
		t.Error("price inquiry must not flag order info")
	}
}

func TestDetectIntentFlagsOrderIntents(t *testing.T) {
	a := newTestAssistant(&fakeCompleter{
		reply: `{"intent": "order.tracking", "confidence": 0.88, "response": "Checking.",
			"parameters": {"order_number": "abc123"}}`,
	})

	result := a.DetectIntent(context.Background(), "s1", "where is my order abc123", "en")

	if !result.HasOrderInfo {
		t.Error("order.tracking should flag order info")
	}
}

func TestDetectIntentUnparseableReplyBecomesPlainAnswer(t *testing.T) {
	a := newTestAssistant(&fakeCompleter{reply: "Our store opens at 9am."})

	result := a.DetectIntent(context.Background(), "s1", "when do you open", "en")

	if !result.Success {
		t.Error("plain-text reply is still a usable answer")
	}
	if result.Intent != "" {
		t.Errorf("intent = %q, want none", result.Intent)
	}
	if result.Response != "Our store opens at 9am." {
		t.Errorf("response = %q", result.Response)
	}
}

func TestDetectIntentKeepsBoundedHistory(t *testing.T) {
	client := &fakeCompleter{reply: `{"intent": "help", "confidence": 1, "response": "ok"}`}
	a := newTestAssistant(client)

	for i := 0; i < 20; i++ {
		a.DetectIntent(context.Background(), "s1", "help", "en")
	}

	if got := len(a.sessions["s1"]); got > historyLimit {
		t.Errorf("session history = %d, limit %d", got, historyLimit)
	}

	// each request carries system prompt + history + current message
	last := client.requests[len(client.requests)-1]
	if len(last.Messages) > historyLimit+2 {
		t.Errorf("request messages = %d", len(last.Messages))
	}
}

// slowCompleter keeps requests in flight long enough for calls to overlap.
// Unlike fakeCompleter it records nothing, so it is safe to share between
// goroutines.
type slowCompleter struct {
	reply string
	delay time.Duration
}

func (f *slowCompleter) CreateChatCompletion(_ context.Context, _ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	time.Sleep(f.delay)
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: f.reply}},
		},
	}, nil
}

func TestDetectIntentConcurrentSessions(t *testing.T) {
	a := newTestAssistant(&slowCompleter{
		reply: `{"intent": "help", "confidence": 1, "response": "ok"}`,
		delay: 5 * time.Millisecond,
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			session := fmt.Sprintf("s%d", n)
			for j := 0; j < 5; j++ {
				a.DetectIntent(context.Background(), session, "help", "en")
			}
			if n%2 == 0 {
				a.ResetSession(session)
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 8; i++ {
		session := fmt.Sprintf("s%d", i)
		got := len(a.history(session))
		if i%2 == 0 && got != 0 {
			t.Errorf("session %s: history = %d after reset", session, got)
		}
		if i%2 == 1 && got == 0 {
			t.Errorf("session %s: history lost", session)
		}
	}
}

func TestResetSession(t *testing.T) {
	a := newTestAssistant(&fakeCompleter{reply: `{"intent": "help", "confidence": 1, "response": "ok"}`})

	a.DetectIntent(context.Background(), "s1", "help", "en")
	if len(a.sessions["s1"]) == 0 {
		t.Fatal("history should be recorded")
	}

	a.ResetSession("s1")
	if len(a.sessions["s1"]) != 0 {
		t.Error("history should be dropped")
	}
}

func TestExtractPayloadFromFulfillmentText(t *testing.T) {
	text := `{"payload": {"type": "product_card", "card": {"id": "1", "name": "iPhone"}}}`

	payload := extractPayload(nil, text)
	if payload == nil || payload.Type != entity.PayloadProductCard {
		t.Fatalf("payload = %+v", payload)
	}
	if payload.Card == nil || payload.Card.Name != "iPhone" {
		t.Errorf("card = %+v", payload.Card)
	}

	if got := extractPayload(nil, "just words"); got != nil {
		t.Errorf("plain text should yield no payload, got %+v", got)
	}
}
