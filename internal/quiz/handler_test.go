package quiz

import (
	"testing"
	"time"

	"github.com/oserockets-max/soken-quiz/internal/config"
	"github.com/oserockets-max/soken-quiz/internal/session"
)

func newTestHandler() *Handler {
	return NewHandler(&config.Config{QuizBatchSize: 3, QuizHistoryLimit: 30}, nil, nil, "test-model")
}

func TestSweepEvictsIdleSessions(t *testing.T) {
	h := newTestHandler()

	h.smu.Lock()
	h.sessions["stale"] = &sessionEntry{m: session.New(nil, nil), lastSeen: time.Now().Add(-3 * time.Hour)}
	h.sessions["fresh"] = &sessionEntry{m: session.New(nil, nil), lastSeen: time.Now()}
	h.smu.Unlock()

	if n := h.sweep(2 * time.Hour); n != 1 {
		t.Fatalf("sweep evicted %d sessions, want 1", n)
	}
	if _, ok := h.entry("stale"); ok {
		t.Error("stale session survived the sweep")
	}
	if _, ok := h.entry("fresh"); !ok {
		t.Error("fresh session was evicted")
	}
}

func TestEntryTouchKeepsSessionAlive(t *testing.T) {
	h := newTestHandler()

	h.smu.Lock()
	h.sessions["s1"] = &sessionEntry{m: session.New(nil, nil), lastSeen: time.Now().Add(-3 * time.Hour)}
	h.smu.Unlock()

	if _, ok := h.entry("s1"); !ok {
		t.Fatal("session not found")
	}
	if n := h.sweep(2 * time.Hour); n != 0 {
		t.Errorf("sweep evicted %d sessions, want 0 after a touch", n)
	}
}
