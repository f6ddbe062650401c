package realtime_test

import (
	"context"
	"testing"
	"time"

	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/domain"
	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/notify"
	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/realtime"
	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/store"
)

func seedConversation(t *testing.T, st *store.Memory) domain.Conversation {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	job := domain.Job{ID: "job-1", CustomerID: "customer-1", Title: "Install shelves", Status: domain.JobOpen, CreatedAt: now, UpdatedAt: now}
	if err := st.CreateJob(ctx, job); err != nil {
		t.Fatalf("seed job: %v", err)
	}
	bid := domain.Bid{ID: "bid-1", JobID: job.ID, CraftsmanID: "craftsman-1", Price: 100, Status: domain.BidPending, CreatedAt: now, UpdatedAt: now}
	if err := st.SubmitBid(ctx, bid, notify.NewBid("customer-1", job, bid)); err != nil {
		t.Fatalf("seed bid: %v", err)
	}
	conv := domain.Conversation{
		ID:    "conv-1",
		JobID: job.ID,
		Participants: []domain.Participant{
			{UserID: "customer-1"},
			{UserID: "craftsman-1"},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	out, err := st.AcceptBid(ctx, job.ID, bid.ID, conv, notify.BidAccepted("craftsman-1", job, bid))
	if err != nil {
		t.Fatalf("seed accept: %v", err)
	}
	return out
}

func TestAuthorize(t *testing.T) {
	st := store.NewMemory()
	conv := seedConversation(t, st)
	ctx := context.Background()

	cases := []struct {
		name    string
		channel string
		userID  string
		allowed bool
	}{
		{"own user channel", realtime.UserChannel("customer-1"), "customer-1", true},
		{"someone else's user channel", realtime.UserChannel("customer-1"), "craftsman-1", false},
		{"participant conversation channel", realtime.ConversationChannel(conv.ID), "craftsman-1", true},
		{"other participant", realtime.ConversationChannel(conv.ID), "customer-1", true},
		{"non participant", realtime.ConversationChannel(conv.ID), "stranger", false},
		{"missing conversation", realtime.ConversationChannel("no-such-conv"), "customer-1", false},
		{"unknown channel family", "presence-global", "customer-1", false},
		{"empty channel", "", "customer-1", false},
	}
	for _, tc := range cases {
		err := realtime.Authorize(ctx, st, tc.channel, tc.userID)
		if tc.allowed && err != nil {
			t.Errorf("%s: expected allow, got %v", tc.name, err)
		}
		if !tc.allowed {
			if !domain.Is(err, domain.CodeForbidden) {
				t.Errorf("%s: expected forbidden, got %v", tc.name, err)
			}
		}
	}
}
