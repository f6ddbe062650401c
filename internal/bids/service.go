package bids

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/domain"
	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/notify"
	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/store"
)

const maxBidMessageLen = 2000

// Terms is what a craftsman offers on a job.
type Terms struct {
	Price         int64  `json:"price"`
	Currency      string `json:"currency"`
	EstimatedDays int    `json:"estimated_days"`
	Message       string `json:"message"`
}

// Service owns bid state transitions and their side effects. Requester
// identity is always an explicit parameter; the service never reads it
// from ambient state.
type Service struct {
	store  store.Store
	notify *notify.Dispatcher
}

func NewService(st store.Store, d *notify.Dispatcher) *Service {
	return &Service{store: st, notify: d}
}

// Submit creates a pending bid on an open job and notifies the
// customer. One live bid per craftsman per job.
func (s *Service) Submit(ctx context.Context, jobID, craftsmanID string, t Terms) (domain.Bid, error) {
	if t.Price <= 0 {
		return domain.Bid{}, domain.NewError(domain.CodeValidation, "price must be positive", nil)
	}
	if t.EstimatedDays <= 0 {
		return domain.Bid{}, domain.NewError(domain.CodeValidation, "estimated_days must be positive", nil)
	}
	if len([]rune(t.Message)) > maxBidMessageLen {
		return domain.Bid{}, domain.NewError(domain.CodeValidation, "message too long", nil)
	}

	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return domain.Bid{}, err
	}
	if job.CustomerID == craftsmanID {
		return domain.Bid{}, domain.NewError(domain.CodeForbidden, "cannot bid on your own job", nil)
	}
	if job.Status != domain.JobOpen {
		return domain.Bid{}, domain.NewError(domain.CodeInvalidState, "job is not open for bids", nil)
	}

	now := time.Now().UTC()
	currency := t.Currency
	if currency == "" {
		currency = job.Currency
	}
	bid := domain.Bid{
		ID:            uuid.New().String(),
		JobID:         jobID,
		CraftsmanID:   craftsmanID,
		Price:         t.Price,
		Currency:      currency,
		EstimatedDays: t.EstimatedDays,
		Message:       t.Message,
		Status:        domain.BidPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// Bid and customer notification commit together; the store also
	// re-checks job state and uniqueness under its own transaction.
	n := notify.NewBid(job.CustomerID, job, bid)
	if err := s.store.SubmitBid(ctx, bid, n); err != nil {
		return domain.Bid{}, err
	}
	s.notify.Ping(n)
	return bid, nil
}

// Transition moves a bid to target on behalf of requesterID.
//
// withdrawn: the bid's craftsman, from pending.
// accepted:  the job's customer, from pending; runs the atomic accept
// transaction (competing bids rejected, job in progress, conversation
// created or reused, craftsman notified).
// rejected:  the job's customer, from pending.
func (s *Service) Transition(ctx context.Context, jobID, bidID, requesterID string, target domain.BidStatus) (domain.Bid, error) {
	bid, err := s.store.GetBid(ctx, bidID)
	if err != nil {
		return domain.Bid{}, err
	}
	if bid.JobID != jobID {
		return domain.Bid{}, domain.NewError(domain.CodeNotFound, "bid not found", nil)
	}
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return domain.Bid{}, err
	}

	switch target {
	case domain.BidWithdrawn:
		if requesterID != bid.CraftsmanID {
			return domain.Bid{}, domain.NewError(domain.CodeForbidden, "only the bid's craftsman may withdraw it", nil)
		}
		if bid.Status != domain.BidPending {
			return domain.Bid{}, domain.NewError(domain.CodeInvalidState, "bid is not pending", nil)
		}
		if err := s.store.WithdrawBid(ctx, bidID); err != nil {
			return domain.Bid{}, err
		}
		bid.Status = domain.BidWithdrawn

	case domain.BidAccepted:
		if requesterID != job.CustomerID {
			return domain.Bid{}, domain.NewError(domain.CodeForbidden, "only the job's customer may accept a bid", nil)
		}
		if bid.Status != domain.BidPending {
			return domain.Bid{}, domain.NewError(domain.CodeInvalidState, "bid is not pending", nil)
		}
		now := time.Now().UTC()
		conv := domain.Conversation{
			ID:    uuid.New().String(),
			JobID: job.ID,
			Participants: []domain.Participant{
				{UserID: job.CustomerID},
				{UserID: bid.CraftsmanID},
			},
			CreatedAt: now,
			UpdatedAt: now,
		}
		n := notify.BidAccepted(bid.CraftsmanID, job, bid)
		if _, err := s.store.AcceptBid(ctx, jobID, bidID, conv, n); err != nil {
			return domain.Bid{}, err
		}
		bid.Status = domain.BidAccepted
		s.notify.Ping(n)

	case domain.BidRejected:
		if requesterID != job.CustomerID {
			return domain.Bid{}, domain.NewError(domain.CodeForbidden, "only the job's customer may reject a bid", nil)
		}
		if bid.Status != domain.BidPending {
			return domain.Bid{}, domain.NewError(domain.CodeInvalidState, "bid is not pending", nil)
		}
		n := notify.BidRejected(bid.CraftsmanID, job, bid)
		if err := s.store.RejectBid(ctx, bidID, n); err != nil {
			return domain.Bid{}, err
		}
		bid.Status = domain.BidRejected
		s.notify.Ping(n)

	default:
		return domain.Bid{}, domain.NewError(domain.CodeValidation, "unsupported target status", nil)
	}

	return bid, nil
}

// ListForJob returns every bid for the job's customer, or only the
// requester's own bids for anyone else.
func (s *Service) ListForJob(ctx context.Context, jobID, requesterID string) ([]domain.Bid, error) {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	all, err := s.store.ListBidsByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if requesterID == job.CustomerID {
		return all, nil
	}
	var own []domain.Bid
	for _, b := range all {
		if b.CraftsmanID == requesterID {
			own = append(own, b)
		}
	}
	return own, nil
}
