package feed

import (
	"context"
	"log"
	"sync"

	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/domain"
)

// Fetcher loads conversation history, newest page first or last;
// the reducer does not care about page order.
type Fetcher interface {
	FetchMessages(ctx context.Context, conversationID string, limit int) ([]domain.Message, error)
}

// Subscriber delivers live messages for a conversation. Calling the
// returned cancel function stops the stream.
type Subscriber interface {
	SubscribeMessages(ctx context.Context, conversationID string, onMessage func(domain.Message)) (cancel func(), err error)
}

// Client keeps a conversation's timeline current. History comes from
// the fetcher; the subscriber fills the gap in real time. When the
// subscription cannot be established the client stays usable in
// fetch-only mode.
type Client struct {
	fetcher    Fetcher
	subscriber Subscriber

	mu       sync.Mutex
	timeline *Timeline
	cancel   func()
	live     bool
}

func NewClient(f Fetcher, s Subscriber) *Client {
	return &Client{fetcher: f, subscriber: s, timeline: NewTimeline()}
}

// Open fetches history and then attempts to go live. A subscribe
// failure is logged, not returned.
func (c *Client) Open(ctx context.Context, conversationID string, historyLimit int) error {
	history, err := c.fetcher.FetchMessages(ctx, conversationID, historyLimit)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.timeline.Merge(history)
	c.mu.Unlock()

	if c.subscriber == nil {
		return nil
	}
	cancel, err := c.subscriber.SubscribeMessages(ctx, conversationID, c.onMessage)
	if err != nil {
		log.Printf("feed: subscribe failed for conversation %s, staying fetch-only: %v", conversationID, err)
		return nil
	}

	c.mu.Lock()
	c.cancel = cancel
	c.live = true
	c.mu.Unlock()
	return nil
}

// Refresh re-fetches history and merges it. In fetch-only mode this is
// the only way new messages arrive.
func (c *Client) Refresh(ctx context.Context, conversationID string, limit int) error {
	history, err := c.fetcher.FetchMessages(ctx, conversationID, limit)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.timeline.Merge(history)
	c.mu.Unlock()
	return nil
}

func (c *Client) onMessage(m domain.Message) {
	c.mu.Lock()
	c.timeline.Add(m)
	c.mu.Unlock()
}

// Live reports whether the subscription is active.
func (c *Client) Live() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.live
}

// Messages returns the reconciled timeline snapshot.
func (c *Client) Messages() []domain.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timeline.Messages()
}

// Close stops the live subscription if one is active.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
		c.live = false
	}
}
