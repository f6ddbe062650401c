package realtime

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/httpx"
	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/store"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Bridge forwards pub/sub events to a websocket client. The client is
// always subscribed to its own user channel; conversation channels are
// added via ?conversation= after an authorization check.
type Bridge struct {
	store store.Store
	pub   *RedisPublisher
}

func NewBridge(st store.Store, pub *RedisPublisher) *Bridge {
	return &Bridge{store: st, pub: pub}
}

// Handle - websocket endpoint for realtime message and notification events
func (b *Bridge) Handle(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return httpx.Unauthorized(c)
	}
	if b.pub == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "realtime transport not configured"})
	}

	channels := []string{UserChannel(userID)}
	for _, convID := range c.QueryParams()["conversation"] {
		channel := ConversationChannel(convID)
		if err := Authorize(c.Request().Context(), b.store, channel, userID); err != nil {
			return httpx.Error(c, err)
		}
		channels = append(channels, channel)
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	sub := b.pub.Subscribe(ctx, channels...)
	defer sub.Close()

	// Read loop only detects the client going away; the protocol is
	// server push.
	go func() {
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	events := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-events:
			if !ok {
				return nil
			}
			if err := ws.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				return nil
			}
		}
	}
}
