package chat

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/domain"
	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/notify"
	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/realtime"
	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/store"
)

const maxMessageLen = 4000

// Service is the append-only message log per conversation with
// per-participant read cursors.
type Service struct {
	store  store.Store
	notify *notify.Dispatcher
}

func NewService(st store.Store, d *notify.Dispatcher) *Service {
	return &Service{store: st, notify: d}
}

// Post appends a message and notifies every other participant. The
// message and the notification rows commit together; both pushes are
// best-effort and happen after.
func (s *Service) Post(ctx context.Context, convID, senderID, content string) (domain.Message, error) {
	if strings.TrimSpace(content) == "" {
		return domain.Message{}, domain.NewError(domain.CodeValidation, "message is empty", nil)
	}
	if len([]rune(content)) > maxMessageLen {
		return domain.Message{}, domain.NewError(domain.CodeValidation, "message too long", nil)
	}

	conv, err := s.store.GetConversation(ctx, convID)
	if err != nil {
		return domain.Message{}, err
	}
	if !conv.HasParticipant(senderID) {
		return domain.Message{}, domain.NewError(domain.CodeForbidden, "not a participant in this conversation", nil)
	}

	msg := domain.Message{
		ID:             uuid.New().String(),
		ConversationID: convID,
		SenderID:       senderID,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
	}
	var notifs []domain.Notification
	for _, p := range conv.Participants {
		if p.UserID != senderID {
			notifs = append(notifs, notify.NewMessage(p.UserID, msg))
		}
	}
	if err := s.store.AppendMessage(ctx, msg, notifs); err != nil {
		return domain.Message{}, err
	}

	evt := realtime.Event{Type: realtime.EventMessageNew, Data: msg}
	if err := s.notify.Publisher().PublishToConversation(context.Background(), convID, evt); err != nil {
		log.Printf("[chat] push failed for conversation %s: %v", convID, err)
	}
	for _, n := range notifs {
		s.notify.Ping(n)
	}
	return msg, nil
}

// MarkRead flips is_read on everything the others sent and advances the
// reader's cursor. Idempotent.
func (s *Service) MarkRead(ctx context.Context, convID, userID string) error {
	conv, err := s.store.GetConversation(ctx, convID)
	if err != nil {
		return err
	}
	if !conv.HasParticipant(userID) {
		return domain.NewError(domain.CodeForbidden, "not a participant in this conversation", nil)
	}
	return s.store.MarkConversationRead(ctx, convID, userID, time.Now().UTC())
}

// History returns messages in chronological order, most-recent-bounded
// by limit when limit > 0.
func (s *Service) History(ctx context.Context, convID, requesterID string, limit int) ([]domain.Message, error) {
	conv, err := s.store.GetConversation(ctx, convID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(requesterID) {
		return nil, domain.NewError(domain.CodeForbidden, "not a participant in this conversation", nil)
	}
	return s.store.ListMessages(ctx, convID, limit)
}

// Unread counts the messages others sent that userID has not read.
func (s *Service) Unread(ctx context.Context, convID, userID string) (int64, error) {
	conv, err := s.store.GetConversation(ctx, convID)
	if err != nil {
		return 0, err
	}
	if !conv.HasParticipant(userID) {
		return 0, domain.NewError(domain.CodeForbidden, "not a participant in this conversation", nil)
	}
	return s.store.UnreadMessageCount(ctx, convID, userID)
}

// Conversations lists the user's threads, most recently active first.
func (s *Service) Conversations(ctx context.Context, userID string) ([]store.ConversationSummary, error) {
	return s.store.ListConversationsForUser(ctx, userID)
}
