package reviews

import (
	"context"
	"testing"

	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/domain"
	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/notify"
	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.Memory) {
	t.Helper()
	st := store.NewMemory()
	return NewService(st, notify.NewDispatcher(st, nil, nil)), st
}

// seedCompletedJob walks a job through accept and completion so the
// review preconditions hold.
func seedCompletedJob(t *testing.T, st *store.Memory, customerID, craftsmanID string) domain.Job {
	t.Helper()
	ctx := context.Background()

	key := customerID + "-" + craftsmanID
	job := domain.Job{ID: "job-" + key, CustomerID: customerID, Title: "Build a wardrobe", Status: domain.JobOpen}
	if err := st.CreateJob(ctx, job); err != nil {
		t.Fatalf("seed job: %v", err)
	}
	bid := domain.Bid{ID: "bid-" + key, JobID: job.ID, CraftsmanID: craftsmanID, Price: 100, Status: domain.BidPending}
	if err := st.SubmitBid(ctx, bid, notify.NewBid(customerID, job, bid)); err != nil {
		t.Fatalf("seed bid: %v", err)
	}
	conv := domain.Conversation{
		ID:    "conv-" + key,
		JobID: job.ID,
		Participants: []domain.Participant{
			{UserID: customerID},
			{UserID: craftsmanID},
		},
	}
	if _, err := st.AcceptBid(ctx, job.ID, bid.ID, conv, notify.BidAccepted(craftsmanID, job, bid)); err != nil {
		t.Fatalf("seed accept: %v", err)
	}
	if err := st.UpdateJobStatus(ctx, job.ID, domain.JobInProgress, domain.JobCompleted); err != nil {
		t.Fatalf("seed complete: %v", err)
	}
	job.Status = domain.JobCompleted
	return job
}

func TestCreateReviewAndNotification(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	job := seedCompletedJob(t, st, "customer-1", "craftsman-1")

	review, err := svc.Create(ctx, job.ID, "customer-1", Input{Rating: 5, Comment: "excellent work"})
	if err != nil {
		t.Fatalf("create review: %v", err)
	}
	if review.CraftsmanID != "craftsman-1" || review.Rating != 5 {
		t.Fatalf("unexpected review %+v", review)
	}

	notifs, _ := st.ListNotifications(ctx, "craftsman-1")
	var reviews int
	for _, n := range notifs {
		if n.Type == domain.NotifNewReview {
			reviews++
		}
	}
	if reviews != 1 {
		t.Fatalf("expected one new_review notification, got %d", reviews)
	}

	got, err := svc.ForJob(ctx, job.ID)
	if err != nil || got.ID != review.ID {
		t.Fatalf("review lookup failed: %+v (%v)", got, err)
	}
}

func TestCreateReviewTwiceConflicts(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	job := seedCompletedJob(t, st, "customer-1", "craftsman-1")

	if _, err := svc.Create(ctx, job.ID, "customer-1", Input{Rating: 4}); err != nil {
		t.Fatalf("first review: %v", err)
	}
	_, err := svc.Create(ctx, job.ID, "customer-1", Input{Rating: 1})
	if !domain.Is(err, domain.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreateReviewGuards(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	job := seedCompletedJob(t, st, "customer-1", "craftsman-1")

	if _, err := svc.Create(ctx, job.ID, "customer-1", Input{Rating: 0}); !domain.Is(err, domain.CodeValidation) {
		t.Errorf("rating 0: expected validation, got %v", err)
	}
	if _, err := svc.Create(ctx, job.ID, "customer-1", Input{Rating: 6}); !domain.Is(err, domain.CodeValidation) {
		t.Errorf("rating 6: expected validation, got %v", err)
	}
	if _, err := svc.Create(ctx, job.ID, "craftsman-1", Input{Rating: 5}); !domain.Is(err, domain.CodeForbidden) {
		t.Errorf("craftsman reviewing: expected forbidden, got %v", err)
	}

	open := domain.Job{ID: "job-open", CustomerID: "customer-1", Title: "Open job", Status: domain.JobOpen}
	if err := st.CreateJob(ctx, open); err != nil {
		t.Fatalf("seed open job: %v", err)
	}
	if _, err := svc.Create(ctx, open.ID, "customer-1", Input{Rating: 5}); !domain.Is(err, domain.CodeInvalidState) {
		t.Errorf("open job: expected invalid_state, got %v", err)
	}
}

func TestListForCraftsman(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	jobA := seedCompletedJob(t, st, "customer-1", "craftsman-1")
	jobB := seedCompletedJob(t, st, "customer-2", "craftsman-1")
	if _, err := svc.Create(ctx, jobA.ID, "customer-1", Input{Rating: 5}); err != nil {
		t.Fatalf("review A: %v", err)
	}
	if _, err := svc.Create(ctx, jobB.ID, "customer-2", Input{Rating: 3}); err != nil {
		t.Fatalf("review B: %v", err)
	}

	list, err := svc.ListForCraftsman(ctx, "craftsman-1")
	if err != nil || len(list) != 2 {
		t.Fatalf("expected 2 reviews, got %d (%v)", len(list), err)
	}
}
