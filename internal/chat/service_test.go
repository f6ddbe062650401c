package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/domain"
	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/notify"
	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/realtime"
	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/store"
)

// failingPublisher simulates a dead realtime transport.
type failingPublisher struct{}

func (failingPublisher) PublishToUser(context.Context, string, realtime.Event) error {
	return errors.New("transport down")
}

func (failingPublisher) PublishToConversation(context.Context, string, realtime.Event) error {
	return errors.New("transport down")
}

// seedConversation runs the accept flow so the conversation exists the
// way production creates it.
func seedConversation(t *testing.T, st *store.Memory, customerID, craftsmanID string) domain.Conversation {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	job := domain.Job{
		ID:         uuid.New().String(),
		CustomerID: customerID,
		Title:      "Paint the living room",
		Currency:   "SYP",
		Status:     domain.JobOpen,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := st.CreateJob(ctx, job); err != nil {
		t.Fatalf("seed job: %v", err)
	}

	bid := domain.Bid{
		ID:          uuid.New().String(),
		JobID:       job.ID,
		CraftsmanID: craftsmanID,
		Price:       1000,
		Currency:    "SYP",
		Status:      domain.BidPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := st.SubmitBid(ctx, bid, notify.NewBid(customerID, job, bid)); err != nil {
		t.Fatalf("seed bid: %v", err)
	}

	conv := domain.Conversation{
		ID:    uuid.New().String(),
		JobID: job.ID,
		Participants: []domain.Participant{
			{UserID: customerID},
			{UserID: craftsmanID},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	out, err := st.AcceptBid(ctx, job.ID, bid.ID, conv, notify.BidAccepted(craftsmanID, job, bid))
	if err != nil {
		t.Fatalf("seed accept: %v", err)
	}
	return out
}

func newTestService(t *testing.T, pub realtime.Publisher) (*Service, *store.Memory) {
	t.Helper()
	st := store.NewMemory()
	return NewService(st, notify.NewDispatcher(st, pub, nil)), st
}

func TestPostAppendsAndNotifiesRecipient(t *testing.T) {
	svc, st := newTestService(t, nil)
	ctx := context.Background()
	conv := seedConversation(t, st, "customer-1", "craftsman-1")

	msg, err := svc.Post(ctx, conv.ID, "customer-1", "when can you start?")
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if msg.ConversationID != conv.ID || msg.SenderID != "customer-1" {
		t.Fatalf("unexpected message %+v", msg)
	}

	notifs, _ := st.ListNotifications(ctx, "craftsman-1")
	var newMsg int
	for _, n := range notifs {
		if n.Type == domain.NotifNewMessage {
			newMsg++
		}
	}
	if newMsg != 1 {
		t.Fatalf("expected one new_message notification, got %d", newMsg)
	}
}

func TestPostSurvivesPushFailure(t *testing.T) {
	svc, st := newTestService(t, failingPublisher{})
	ctx := context.Background()
	conv := seedConversation(t, st, "customer-1", "craftsman-1")

	if _, err := svc.Post(ctx, conv.ID, "customer-1", "hello"); err != nil {
		t.Fatalf("post should succeed with dead transport, got %v", err)
	}
	msgs, _ := st.ListMessages(ctx, conv.ID, 0)
	if len(msgs) != 1 {
		t.Fatalf("message row missing, got %d", len(msgs))
	}
}

func TestPostValidation(t *testing.T) {
	svc, st := newTestService(t, nil)
	ctx := context.Background()
	conv := seedConversation(t, st, "customer-1", "craftsman-1")

	if _, err := svc.Post(ctx, conv.ID, "customer-1", "   "); !domain.Is(err, domain.CodeValidation) {
		t.Errorf("blank message: expected validation, got %v", err)
	}
	long := make([]rune, 4001)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := svc.Post(ctx, conv.ID, "customer-1", string(long)); !domain.Is(err, domain.CodeValidation) {
		t.Errorf("long message: expected validation, got %v", err)
	}
}

func TestPostByNonParticipantForbidden(t *testing.T) {
	svc, st := newTestService(t, nil)
	conv := seedConversation(t, st, "customer-1", "craftsman-1")

	_, err := svc.Post(context.Background(), conv.ID, "stranger", "let me in")
	if !domain.Is(err, domain.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestHistoryAscendingWithLimit(t *testing.T) {
	svc, st := newTestService(t, nil)
	ctx := context.Background()
	conv := seedConversation(t, st, "customer-1", "craftsman-1")

	for _, text := range []string{"one", "two", "three"} {
		if _, err := svc.Post(ctx, conv.ID, "customer-1", text); err != nil {
			t.Fatalf("post %s: %v", text, err)
		}
		time.Sleep(time.Millisecond)
	}

	msgs, err := svc.History(ctx, conv.ID, "craftsman-1", 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	for i := 1; i < len(msgs); i++ {
		if msgs[i].CreatedAt.Before(msgs[i-1].CreatedAt) {
			t.Fatalf("messages out of order at %d", i)
		}
	}

	limited, err := svc.History(ctx, conv.ID, "craftsman-1", 2)
	if err != nil {
		t.Fatalf("limited history: %v", err)
	}
	if len(limited) != 2 || limited[1].Content != "three" {
		t.Fatalf("expected the 2 most recent in order, got %+v", limited)
	}
}

func TestMarkReadIdempotent(t *testing.T) {
	svc, st := newTestService(t, nil)
	ctx := context.Background()
	conv := seedConversation(t, st, "customer-1", "craftsman-1")

	if _, err := svc.Post(ctx, conv.ID, "customer-1", "ping"); err != nil {
		t.Fatalf("post: %v", err)
	}

	unread, _ := svc.Unread(ctx, conv.ID, "craftsman-1")
	if unread != 1 {
		t.Fatalf("expected 1 unread, got %d", unread)
	}

	if err := svc.MarkRead(ctx, conv.ID, "craftsman-1"); err != nil {
		t.Fatalf("first mark read: %v", err)
	}
	if err := svc.MarkRead(ctx, conv.ID, "craftsman-1"); err != nil {
		t.Fatalf("repeat mark read should be a no-op, got %v", err)
	}
	unread, _ = svc.Unread(ctx, conv.ID, "craftsman-1")
	if unread != 0 {
		t.Fatalf("expected 0 unread after mark read, got %d", unread)
	}

	// The sender's own view is untouched.
	unread, _ = svc.Unread(ctx, conv.ID, "customer-1")
	if unread != 0 {
		t.Fatalf("sender should have 0 unread, got %d", unread)
	}
}

func TestConversationsSummary(t *testing.T) {
	svc, st := newTestService(t, nil)
	ctx := context.Background()
	conv := seedConversation(t, st, "customer-1", "craftsman-1")

	if _, err := svc.Post(ctx, conv.ID, "customer-1", "latest word"); err != nil {
		t.Fatalf("post: %v", err)
	}

	list, err := svc.Conversations(ctx, "craftsman-1")
	if err != nil || len(list) != 1 {
		t.Fatalf("expected one conversation, got %d (%v)", len(list), err)
	}
	if list[0].LastMessage != "latest word" || list[0].Unread != 1 {
		t.Fatalf("unexpected summary %+v", list[0])
	}
}
