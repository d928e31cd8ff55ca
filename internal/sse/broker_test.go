package sse

import (
	"strings"
	"testing"
	"time"
)

func TestSubscribeAndPublish(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	ch := b.Subscribe()
	b.Publish(Event{Type: EventRunFinished, Data: map[string]int{"matched": 3}})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: run.finished") {
			t.Errorf("message = %q", s)
		}
		if !strings.Contains(s, `"matched":3`) {
			t.Errorf("payload missing: %q", s)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	ch := b.Subscribe()
	b.Unsubscribe(ch)

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected closed channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed")
	}
}

func TestClientCount(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	if n := b.ClientCount(); n != 0 {
		t.Errorf("count = %d, want 0", n)
	}
	ch := b.Subscribe()
	if n := b.ClientCount(); n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
	b.Unsubscribe(ch)
}

func TestPublishAfterCloseIsSafe(t *testing.T) {
	b := NewBroker()
	b.Close()
	b.Publish(Event{Type: EventRunStarted})
	if n := b.ClientCount(); n != 0 {
		t.Errorf("count after close = %d", n)
	}
	if ch := b.Subscribe(); ch != nil {
		if _, ok := <-ch; ok {
			t.Error("subscribe after close must return closed channel")
		}
	}
}
