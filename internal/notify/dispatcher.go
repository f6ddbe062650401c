package notify

import (
	"context"
	"log"

	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/domain"
	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/realtime"
	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/store"
)

// Dispatcher owns notification delivery. The durable row is the
// correctness boundary; the realtime ping and the email are best-effort
// extras whose failure is logged and swallowed.
type Dispatcher struct {
	store store.Store
	pub   realtime.Publisher
	mail  *EmailQueue // optional
}

func NewDispatcher(st store.Store, pub realtime.Publisher, mail *EmailQueue) *Dispatcher {
	if pub == nil {
		pub = realtime.Noop{}
	}
	return &Dispatcher{store: st, pub: pub, mail: mail}
}

// Dispatch persists the notification, then attempts the push. Used by
// flows whose state change carries no surrounding store transaction.
func (d *Dispatcher) Dispatch(ctx context.Context, n domain.Notification) error {
	if err := d.store.CreateNotification(ctx, n); err != nil {
		return err
	}
	d.Ping(n)
	return nil
}

// Ping sends the post-commit realtime pointer for an already-persisted
// notification. Never returns an error: the write already succeeded.
func (d *Dispatcher) Ping(n domain.Notification) {
	evt := realtime.Event{
		Type: realtime.EventNotification,
		Data: map[string]any{
			"id":         n.ID,
			"type":       n.Type,
			"related_id": n.RelatedID,
		},
	}
	if err := d.pub.PublishToUser(context.Background(), n.UserID, evt); err != nil {
		log.Printf("[notify] push failed for user %s: %v", n.UserID, err)
	}
	if d.mail != nil {
		if user, err := d.store.GetUserByID(context.Background(), n.UserID); err == nil {
			if err := d.mail.EnqueueNotificationEmail(user.Email, n); err != nil {
				log.Printf("[notify] email enqueue failed for user %s: %v", n.UserID, err)
			}
		}
	}
}

// Publisher exposes the underlying transport for callers that also push
// conversation-scoped events.
func (d *Dispatcher) Publisher() realtime.Publisher { return d.pub }
