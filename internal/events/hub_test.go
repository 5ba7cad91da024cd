package events

import (
	"testing"
	"time"

	"github.com/pigeonhq/pigeon/internal/twilio"
)

func TestPublishAndSubscribe(t *testing.T) {
	h := NewHub(16)

	ch, cancel := h.Subscribe()
	defer cancel()

	msg := twilio.InboundMessage{From: "+15551234567", To: "+15557654321", Body: "Hi", MessageSID: "SM1", AccountSID: "AC1"}
	receipt := h.Publish(TypeMessageReceived, msg)
	if receipt == "" {
		t.Fatal("Publish returned empty receipt ID")
	}

	select {
	case ev := <-ch:
		if ev.Type != TypeMessageReceived {
			t.Errorf("Type = %q, want %q", ev.Type, TypeMessageReceived)
		}
		if ev.ReceiptID != receipt {
			t.Errorf("ReceiptID = %q, want %q", ev.ReceiptID, receipt)
		}
		if ev.Message.MessageSID != "SM1" {
			t.Errorf("MessageSID = %q, want SM1", ev.Message.MessageSID)
		}
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
}

func TestReceiptIDsAreUnique(t *testing.T) {
	h := NewHub(16)

	a := h.Publish(TypeMessageReceived, twilio.InboundMessage{MessageSID: "SM1"})
	b := h.Publish(TypeMessageReceived, twilio.InboundMessage{MessageSID: "SM1"})
	if a == b {
		t.Error("receipt IDs should differ per delivery")
	}
}

func TestRecent_RingOverwritesOldest(t *testing.T) {
	h := NewHub(2)

	h.Publish(TypeMessageReceived, twilio.InboundMessage{MessageSID: "SM1"})
	h.Publish(TypeMessageReceived, twilio.InboundMessage{MessageSID: "SM2"})
	h.Publish(TypeMessageReceived, twilio.InboundMessage{MessageSID: "SM3"})

	recent := h.Recent()
	if len(recent) != 2 {
		t.Fatalf("len(Recent()) = %d, want 2", len(recent))
	}
	if recent[0].Message.MessageSID != "SM2" || recent[1].Message.MessageSID != "SM3" {
		t.Errorf("Recent() = [%s %s], want [SM2 SM3]",
			recent[0].Message.MessageSID, recent[1].Message.MessageSID)
	}
}

func TestSubscribe_CancelClosesChannel(t *testing.T) {
	h := NewHub(16)

	ch, cancel := h.Subscribe()
	cancel()

	if _, ok := <-ch; ok {
		t.Error("channel should be closed after cancel")
	}

	// Publishing after cancel must not panic.
	h.Publish(TypeMessageReceived, twilio.InboundMessage{MessageSID: "SM1"})
}

func TestPublish_SlowSubscriberDoesNotBlock(t *testing.T) {
	h := NewHub(16)

	_, cancel := h.Subscribe() // never drained
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 300; i++ {
			h.Publish(TypeMessageReceived, twilio.InboundMessage{MessageSID: "SM"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}
}
