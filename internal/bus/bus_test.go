package bus

import (
	"testing"
	"time"

	"github.com/matheus3301/jobboard/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPublishChangeKind(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("messages.", 10)
	defer unsub()

	b.PublishChange(Change{Collection: "messages", DocID: "m1", Op: OpCreated, Keys: []string{"c1"}})

	select {
	case evt := <-ch:
		if evt.Kind != "messages.created" {
			t.Errorf("got kind %q, want messages.created", evt.Kind)
		}
		c, ok := evt.Payload.(Change)
		if !ok {
			t.Fatalf("payload type %T, want Change", evt.Payload)
		}
		if !c.HasKey("c1") || c.HasKey("c2") {
			t.Errorf("keys = %v", c.Keys)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestNamespaceFiltering(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe(Namespace("conversations"), 10)
	defer unsub()

	b.PublishChange(Change{Collection: "messages", Op: OpCreated})
	b.PublishChange(Change{Collection: "conversations", Op: OpUpdated})

	select {
	case evt := <-ch:
		if evt.Kind != "conversations.updated" {
			t.Errorf("got kind %q, want conversations.updated", evt.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	select {
	case evt := <-ch:
		t.Errorf("unexpected event: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("daemon.", 10)
	unsub()
	unsub()

	b.Publish(Event{Kind: StatusChanged})

	select {
	case evt := <-ch:
		t.Errorf("received event after unsubscribe: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
	if n := b.Subscribers(); n != 0 {
		t.Errorf("Subscribers() = %d, want 0", n)
	}
}

func TestDropOnFullBuffer(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("test.", 1)
	defer unsub()
	before := testutil.ToFloat64(metrics.BusDropped.WithLabelValues("test."))

	b.Publish(Event{Kind: "test.one"})
	// Buffer is full; this one is dropped.
	b.Publish(Event{Kind: "test.two"})

	evt := <-ch
	if evt.Kind != "test.one" {
		t.Errorf("got %q, want test.one", evt.Kind)
	}
	select {
	case evt := <-ch:
		t.Errorf("dropped event delivered: %v", evt)
	default:
	}
	if got := testutil.ToFloat64(metrics.BusDropped.WithLabelValues("test.")) - before; got != 1 {
		t.Errorf("dropped counter moved by %v, want 1", got)
	}
}
