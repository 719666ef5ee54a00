package sse

import (
	"strings"
	"testing"
	"time"
)

func recvMsg(t *testing.T, ch chan []byte) string {
	t.Helper()
	select {
	case msg, ok := <-ch:
		if !ok {
			t.Fatal("client channel closed")
		}
		return string(msg)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return ""
	}
}

func TestSubscribePublish(t *testing.T) {
	b := NewBroker(0)
	defer b.Close()

	ch := b.Subscribe()
	b.Publish(Event{Type: "test.event", Data: map[string]string{"k": "v"}})

	msg := recvMsg(t, ch)
	if !strings.Contains(msg, "event: test.event") {
		t.Errorf("missing event line: %q", msg)
	}
	if !strings.Contains(msg, `"k":"v"`) {
		t.Errorf("missing payload: %q", msg)
	}
	if !strings.HasSuffix(msg, "\n\n") {
		t.Errorf("frame not terminated by blank line: %q", msg)
	}
}

func TestClientCount(t *testing.T) {
	b := NewBroker(0)
	defer b.Close()

	if n := b.ClientCount(); n != 0 {
		t.Errorf("count = %d, want 0", n)
	}
	ch1 := b.Subscribe()
	ch2 := b.Subscribe()
	if n := b.ClientCount(); n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
	b.Unsubscribe(ch1)
	if n := b.ClientCount(); n != 1 {
		t.Errorf("count after unsubscribe = %d, want 1", n)
	}
	b.Unsubscribe(ch2)
}

func TestPublishContactEvent(t *testing.T) {
	b := NewBroker(time.Hour) // throttle due.updated to at most once
	defer b.Close()

	ch := b.Subscribe()

	b.PublishContactEvent("created", "Contacts/Ann.md")
	first := recvMsg(t, ch)
	if !strings.Contains(first, "event: contact.created") || !strings.Contains(first, "Contacts/Ann.md") {
		t.Errorf("unexpected first event: %q", first)
	}
	second := recvMsg(t, ch)
	if !strings.Contains(second, "event: due.updated") {
		t.Errorf("expected due.updated after contact event: %q", second)
	}

	// Within the throttle window a second contact event fires alone.
	b.PublishContactEvent("deleted", "Contacts/Ann.md")
	third := recvMsg(t, ch)
	if !strings.Contains(third, "event: contact.deleted") {
		t.Errorf("unexpected third event: %q", third)
	}
	select {
	case msg := <-ch:
		t.Errorf("due.updated not throttled: %q", msg)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestUnknownContactEventKindIgnored(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()

	ch := b.Subscribe()
	b.PublishContactEvent("renamed", "Contacts/Ann.md")

	// No contact.* frame, but the due throttle still admits one due.updated.
	msg := recvMsg(t, ch)
	if !strings.Contains(msg, "event: due.updated") {
		t.Errorf("got %q, want only due.updated", msg)
	}
}

func TestCloseClosesClients(t *testing.T) {
	b := NewBroker(0)
	ch := b.Subscribe()
	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected closed channel after broker Close")
		}
	case <-time.After(time.Second):
		t.Error("client channel not closed")
	}

	// Operations after Close are safe no-ops.
	b.Publish(Event{Type: "x"})
	b.PublishContactEvent("created", "p")
	if n := b.ClientCount(); n != 0 {
		t.Errorf("count after close = %d", n)
	}
	late := b.Subscribe()
	if _, ok := <-late; ok {
		t.Error("subscribe after close should return a closed channel")
	}
}
