package bids

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/domain"
	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/notify"
	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.Memory) {
	t.Helper()
	st := store.NewMemory()
	return NewService(st, notify.NewDispatcher(st, nil, nil)), st
}

func seedJob(t *testing.T, st *store.Memory, customerID string) domain.Job {
	t.Helper()
	now := time.Now().UTC()
	job := domain.Job{
		ID:         uuid.New().String(),
		CustomerID: customerID,
		Title:      "Fix kitchen sink",
		Currency:   "SYP",
		Status:     domain.JobOpen,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := st.CreateJob(context.Background(), job); err != nil {
		t.Fatalf("seed job: %v", err)
	}
	return job
}

func TestSubmitCreatesPendingBidAndNotifiesCustomer(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	job := seedJob(t, st, "customer-1")

	bid, err := svc.Submit(ctx, job.ID, "craftsman-1", Terms{Price: 5000, EstimatedDays: 3, Message: "can start tomorrow"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if bid.Status != domain.BidPending {
		t.Fatalf("expected pending, got %s", bid.Status)
	}
	if bid.Currency != "SYP" {
		t.Fatalf("expected job currency fallback, got %q", bid.Currency)
	}

	notifs, err := st.ListNotifications(ctx, "customer-1")
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(notifs) != 1 || notifs[0].Type != domain.NotifNewBid {
		t.Fatalf("expected one new_bid notification, got %+v", notifs)
	}
	if notifs[0].TitleAr == "" || notifs[0].TitleEn == "" {
		t.Fatalf("expected bilingual titles, got %+v", notifs[0])
	}
}

func TestSubmitValidation(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	job := seedJob(t, st, "customer-1")

	cases := []struct {
		name  string
		terms Terms
	}{
		{"zero price", Terms{Price: 0, EstimatedDays: 3}},
		{"zero days", Terms{Price: 100, EstimatedDays: 0}},
	}
	for _, tc := range cases {
		if _, err := svc.Submit(ctx, job.ID, "craftsman-1", tc.terms); !domain.Is(err, domain.CodeValidation) {
			t.Errorf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestSubmitOnOwnJobForbidden(t *testing.T) {
	svc, st := newTestService(t)
	job := seedJob(t, st, "customer-1")

	_, err := svc.Submit(context.Background(), job.ID, "customer-1", Terms{Price: 100, EstimatedDays: 1})
	if !domain.Is(err, domain.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestSubmitDuplicateLiveBidConflicts(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	job := seedJob(t, st, "customer-1")

	if _, err := svc.Submit(ctx, job.ID, "craftsman-1", Terms{Price: 100, EstimatedDays: 1}); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	_, err := svc.Submit(ctx, job.ID, "craftsman-1", Terms{Price: 200, EstimatedDays: 2})
	if !domain.Is(err, domain.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestWithdrawThenResubmit(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	job := seedJob(t, st, "customer-1")

	bid, err := svc.Submit(ctx, job.ID, "craftsman-1", Terms{Price: 100, EstimatedDays: 1})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := svc.Transition(ctx, job.ID, bid.ID, "craftsman-1", domain.BidWithdrawn); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if _, err := svc.Submit(ctx, job.ID, "craftsman-1", Terms{Price: 150, EstimatedDays: 2}); err != nil {
		t.Fatalf("resubmit after withdraw: %v", err)
	}
}

func TestWithdrawByWrongActorForbidden(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	job := seedJob(t, st, "customer-1")

	bid, err := svc.Submit(ctx, job.ID, "craftsman-1", Terms{Price: 100, EstimatedDays: 1})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := svc.Transition(ctx, job.ID, bid.ID, "customer-1", domain.BidWithdrawn); !domain.Is(err, domain.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestAcceptBidEffects(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	job := seedJob(t, st, "customer-1")

	winner, err := svc.Submit(ctx, job.ID, "craftsman-1", Terms{Price: 100, EstimatedDays: 1})
	if err != nil {
		t.Fatalf("submit winner: %v", err)
	}
	loser, err := svc.Submit(ctx, job.ID, "craftsman-2", Terms{Price: 90, EstimatedDays: 2})
	if err != nil {
		t.Fatalf("submit loser: %v", err)
	}

	if _, err := svc.Transition(ctx, job.ID, winner.ID, "customer-1", domain.BidAccepted); err != nil {
		t.Fatalf("accept: %v", err)
	}

	got, _ := st.GetBid(ctx, winner.ID)
	if got.Status != domain.BidAccepted {
		t.Errorf("winner status = %s, want accepted", got.Status)
	}
	got, _ = st.GetBid(ctx, loser.ID)
	if got.Status != domain.BidRejected {
		t.Errorf("competing bid status = %s, want rejected", got.Status)
	}
	j, _ := st.GetJob(ctx, job.ID)
	if j.Status != domain.JobInProgress {
		t.Errorf("job status = %s, want in_progress", j.Status)
	}

	convs, err := st.ListConversationsForUser(ctx, "craftsman-1")
	if err != nil || len(convs) != 1 {
		t.Fatalf("expected one conversation for winner, got %d (%v)", len(convs), err)
	}
	if convs[0].Conversation.JobID != job.ID {
		t.Errorf("conversation job = %s, want %s", convs[0].Conversation.JobID, job.ID)
	}

	notifs, _ := st.ListNotifications(ctx, "craftsman-1")
	if len(notifs) != 1 || notifs[0].Type != domain.NotifBidAccepted {
		t.Fatalf("expected bid_accepted notification for winner, got %+v", notifs)
	}
}

func TestAcceptByNonOwnerForbidden(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	job := seedJob(t, st, "customer-1")

	bid, err := svc.Submit(ctx, job.ID, "craftsman-1", Terms{Price: 100, EstimatedDays: 1})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := svc.Transition(ctx, job.ID, bid.ID, "craftsman-1", domain.BidAccepted); !domain.Is(err, domain.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestAcceptOnResolvedJobFails(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	job := seedJob(t, st, "customer-1")

	first, _ := svc.Submit(ctx, job.ID, "craftsman-1", Terms{Price: 100, EstimatedDays: 1})
	second, _ := svc.Submit(ctx, job.ID, "craftsman-2", Terms{Price: 90, EstimatedDays: 1})

	if _, err := svc.Transition(ctx, job.ID, first.ID, "customer-1", domain.BidAccepted); err != nil {
		t.Fatalf("first accept: %v", err)
	}
	if _, err := svc.Transition(ctx, job.ID, second.ID, "customer-1", domain.BidAccepted); !domain.Is(err, domain.CodeInvalidState) {
		t.Fatalf("expected invalid_state on second accept, got %v", err)
	}
}

func TestConcurrentAcceptsExactlyOneWins(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	job := seedJob(t, st, "customer-1")

	var bidIDs []string
	for _, craftsman := range []string{"c1", "c2", "c3", "c4"} {
		b, err := svc.Submit(ctx, job.ID, craftsman, Terms{Price: 100, EstimatedDays: 1})
		if err != nil {
			t.Fatalf("submit %s: %v", craftsman, err)
		}
		bidIDs = append(bidIDs, b.ID)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for _, id := range bidIDs {
		wg.Add(1)
		go func(bidID string) {
			defer wg.Done()
			if _, err := svc.Transition(ctx, job.ID, bidID, "customer-1", domain.BidAccepted); err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}(id)
	}
	wg.Wait()

	if accepted != 1 {
		t.Fatalf("expected exactly one accepted bid, got %d", accepted)
	}
	bids, _ := st.ListBidsByJob(ctx, job.ID)
	var winners int
	for _, b := range bids {
		if b.Status == domain.BidAccepted {
			winners++
		}
	}
	if winners != 1 {
		t.Fatalf("expected one accepted bid in store, got %d", winners)
	}
}

func TestSubmitOnClosedJobInvalidState(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	job := seedJob(t, st, "customer-1")
	if err := st.UpdateJobStatus(ctx, job.ID, domain.JobOpen, domain.JobCancelled); err != nil {
		t.Fatalf("cancel job: %v", err)
	}

	_, err := svc.Submit(ctx, job.ID, "craftsman-1", Terms{Price: 100, EstimatedDays: 1})
	if !domain.Is(err, domain.CodeInvalidState) {
		t.Fatalf("expected invalid_state, got %v", err)
	}
}

func TestListForJobScoping(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	job := seedJob(t, st, "customer-1")

	if _, err := svc.Submit(ctx, job.ID, "craftsman-1", Terms{Price: 100, EstimatedDays: 1}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := svc.Submit(ctx, job.ID, "craftsman-2", Terms{Price: 120, EstimatedDays: 1}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	all, err := svc.ListForJob(ctx, job.ID, "customer-1")
	if err != nil || len(all) != 2 {
		t.Fatalf("customer should see 2 bids, got %d (%v)", len(all), err)
	}
	own, err := svc.ListForJob(ctx, job.ID, "craftsman-1")
	if err != nil || len(own) != 1 || own[0].CraftsmanID != "craftsman-1" {
		t.Fatalf("craftsman should see only own bid, got %+v (%v)", own, err)
	}
}

type acceptFailStore struct {
	store.Store
}

func (s *acceptFailStore) AcceptBid(ctx context.Context, jobID, bidID string, conv domain.Conversation, n domain.Notification) (domain.Conversation, error) {
	return domain.Conversation{}, domain.NewError(domain.CodeInternal, "transaction aborted", nil)
}

func TestAcceptFailureLeavesNoPartialState(t *testing.T) {
	mem := store.NewMemory()
	svc := NewService(&acceptFailStore{Store: mem}, notify.NewDispatcher(mem, nil, nil))
	ctx := context.Background()
	job := seedJob(t, mem, "customer-1")

	bid, err := svc.Submit(ctx, job.ID, "craftsman-1", Terms{Price: 5000, EstimatedDays: 3})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := svc.Transition(ctx, job.ID, bid.ID, "customer-1", domain.BidAccepted); !domain.Is(err, domain.CodeInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}

	gotJob, err := mem.GetJob(ctx, job.ID)
	if err != nil || gotJob.Status != domain.JobOpen {
		t.Fatalf("job mutated after failed accept: %+v (%v)", gotJob, err)
	}
	gotBid, err := mem.GetBid(ctx, bid.ID)
	if err != nil || gotBid.Status != domain.BidPending {
		t.Fatalf("bid mutated after failed accept: %+v (%v)", gotBid, err)
	}
	for _, userID := range []string{"customer-1", "craftsman-1"} {
		convs, err := mem.ListConversationsForUser(ctx, userID)
		if err != nil {
			t.Fatalf("list conversations for %s: %v", userID, err)
		}
		if len(convs) != 0 {
			t.Fatalf("conversation created after failed accept for %s", userID)
		}
	}
	notifs, err := mem.ListNotifications(ctx, "craftsman-1")
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	for _, n := range notifs {
		if n.Type == domain.NotifBidAccepted {
			t.Fatalf("acceptance notification written after failed accept")
		}
	}
}
