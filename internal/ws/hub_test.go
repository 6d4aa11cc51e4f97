package ws

import (
	"io"
	"log/slog"
	"testing"
	"time"
)

type markReadRecorder struct {
	reader       string
	conversation string
	calls        int
}

func (m *markReadRecorder) HandleMarkRead(readerID, conversationID string) error {
	m.reader = readerID
	m.conversation = conversationID
	m.calls++
	return nil
}

func testHub(handler ClientMessageHandler) *Hub {
	h := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	h.SetHandler(handler)
	return h
}

func TestHandleClientMessageMarkRead(t *testing.T) {
	rec := &markReadRecorder{}
	h := testHub(rec)

	h.HandleClientMessage("admin1", []byte(`{"type": "mark_read", "data": {"conversation_id": "c1"}}`))

	if rec.calls != 1 {
		t.Fatalf("calls = %d", rec.calls)
	}
	if rec.reader != "admin1" || rec.conversation != "c1" {
		t.Errorf("got reader=%q conversation=%q", rec.reader, rec.conversation)
	}
}

func TestHandleClientMessageIgnoresJunk(t *testing.T) {
	rec := &markReadRecorder{}
	h := testHub(rec)

	h.HandleClientMessage("admin1", []byte(`not json`))
	h.HandleClientMessage("admin1", []byte(`{"type": "unknown", "data": {}}`))
	h.HandleClientMessage("admin1", []byte(`{"type": "mark_read", "data": {}}`))

	if rec.calls != 0 {
		t.Errorf("junk input reached the handler %d times", rec.calls)
	}
}

func TestRunDropsSaturatedClients(t *testing.T) {
	h := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	go h.Run()

	healthy := &Client{send: make(chan []byte, 4)}
	stuck := &Client{send: make(chan []byte)} // nobody reads this one

	h.register <- healthy
	h.register <- stuck

	h.BroadcastReadReceipt("admin1", "c1")
	h.BroadcastReadReceipt("admin1", "c2")

	for i := 0; i < 2; i++ {
		select {
		case <-healthy.send:
		case <-time.After(time.Second):
			t.Fatal("healthy client did not receive broadcast")
		}
	}

	// the second event is only delivered after the first pass over the
	// clients map finished, so the stuck client is gone by now
	h.mu.RLock()
	_, present := h.clients[stuck]
	h.mu.RUnlock()
	if present {
		t.Error("saturated client should have been dropped")
	}
}

func TestHandleClientMessageNoHandler(t *testing.T) {
	h := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))

	// must not panic
	h.HandleClientMessage("admin1", []byte(`{"type": "mark_read", "data": {"conversation_id": "c1"}}`))
}
