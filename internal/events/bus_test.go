package events

import (
	"testing"
	"time"
)

func TestPublishDeliversToSubscriber(t *testing.T) {
	b := New()
	ch, cancel := b.Subscribe()
	defer cancel()

	b.Publish(Event{Service: "web", Kind: Started})

	select {
	case e := <-ch:
		if e.Service != "web" || e.Kind != Started {
			t.Fatalf("unexpected event: %+v", e)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestPublishWithNoSubscribersDoesNotBlock(t *testing.T) {
	b := New()
	done := make(chan struct{})
	go func() {
		b.Publish(Event{Service: "web", Kind: Stopped})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked with no subscribers")
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	b := New()
	ch, cancel := b.Subscribe()
	cancel()

	b.Publish(Event{Service: "web", Kind: Started})

	if _, ok := <-ch; ok {
		t.Fatalf("expected channel closed after cancel")
	}
}

func TestRecentReturnsBoundedHistory(t *testing.T) {
	b := New()
	for i := 0; i < historyCap+10; i++ {
		b.Publish(Event{Service: "web", Kind: AutoRestart})
	}
	recent := b.Recent(1000)
	if len(recent) != historyCap {
		t.Fatalf("expected history capped at %d, got %d", historyCap, len(recent))
	}
}

func TestRecentRespectsRequestedCount(t *testing.T) {
	b := New()
	for i := 0; i < 5; i++ {
		b.Publish(Event{Service: "web", Kind: Started})
	}
	recent := b.Recent(2)
	if len(recent) != 2 {
		t.Fatalf("expected 2 events, got %d", len(recent))
	}
}

func TestFullSubscriberDropsRatherThanBlocks(t *testing.T) {
	b := New()
	_, cancel := b.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer+20; i++ {
			b.Publish(Event{Service: "web", Kind: AutoRestart})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full subscriber buffer")
	}
}
