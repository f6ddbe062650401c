package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestRedisPublisherRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	pub := NewRedisPublisher(mr.Addr(), "")
	defer pub.Close()

	ctx := context.Background()
	sub := pub.Subscribe(ctx, UserChannel("user-1"))
	defer sub.Close()

	// Wait for the subscription before publishing; pub/sub has no replay.
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	evt := Event{Type: EventNotification, Data: map[string]any{"id": "n-1"}}
	if err := pub.PublishToUser(ctx, "user-1", evt); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case msg := <-sub.Channel():
		var got Event
		if err := json.Unmarshal([]byte(msg.Payload), &got); err != nil {
			t.Fatalf("payload not json: %v", err)
		}
		if got.Type != EventNotification {
			t.Fatalf("event type = %q, want %q", got.Type, EventNotification)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event never arrived")
	}
}

func TestConversationChannelIsolation(t *testing.T) {
	mr := miniredis.RunT(t)
	pub := NewRedisPublisher(mr.Addr(), "")
	defer pub.Close()

	ctx := context.Background()
	sub := pub.Subscribe(ctx, ConversationChannel("conv-a"))
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if err := pub.PublishToConversation(ctx, "conv-b", Event{Type: EventMessageNew}); err != nil {
		t.Fatalf("publish conv-b: %v", err)
	}
	if err := pub.PublishToConversation(ctx, "conv-a", Event{Type: EventMessageNew}); err != nil {
		t.Fatalf("publish conv-a: %v", err)
	}

	select {
	case msg := <-sub.Channel():
		if msg.Channel != ConversationChannel("conv-a") {
			t.Fatalf("leaked event from %q", msg.Channel)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event never arrived")
	}
}
