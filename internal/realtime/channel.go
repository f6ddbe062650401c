package realtime

import (
	"context"
	"strings"

	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/domain"
	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/store"
)

// Event types carried over the delivery channel.
const (
	EventMessageNew   = "message_new"
	EventNotification = "notification"
	EventBidUpdated   = "bid_updated"
)

type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Publisher is the at-most-once realtime transport. It is a latency
// shortcut only: delivery failures are swallowed by callers because the
// durable tables remain the source of truth.
type Publisher interface {
	PublishToUser(ctx context.Context, userID string, evt Event) error
	PublishToConversation(ctx context.Context, convID string, evt Event) error
}

const (
	userChannelPrefix = "private-user."
	convChannelPrefix = "private-conversation."
)

// UserChannel names the recipient-scoped private channel.
func UserChannel(userID string) string { return userChannelPrefix + userID }

// ConversationChannel names the participant-scoped private channel.
func ConversationChannel(convID string) string { return convChannelPrefix + convID }

// Authorize verifies that userID may subscribe to channel. Unknown
// channel families and membership failures all fail closed.
func Authorize(ctx context.Context, st store.Store, channel, userID string) error {
	if rest, ok := strings.CutPrefix(channel, userChannelPrefix); ok {
		if rest != userID {
			return domain.NewError(domain.CodeForbidden, "channel belongs to another user", nil)
		}
		return nil
	}
	if convID, ok := strings.CutPrefix(channel, convChannelPrefix); ok {
		conv, err := st.GetConversation(ctx, convID)
		if err != nil {
			return domain.NewError(domain.CodeForbidden, "conversation not accessible", err)
		}
		if !conv.HasParticipant(userID) {
			return domain.NewError(domain.CodeForbidden, "not a participant in this conversation", nil)
		}
		return nil
	}
	return domain.NewError(domain.CodeForbidden, "unknown channel", nil)
}

// Noop drops every event. It is the offline default when no redis is
// configured; clients fall back to polling the durable tables.
type Noop struct{}

func (Noop) PublishToUser(context.Context, string, Event) error         { return nil }
func (Noop) PublishToConversation(context.Context, string, Event) error { return nil }
