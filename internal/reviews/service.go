package reviews

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/domain"
	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/notify"
	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/store"
)

// Service handles post-completion reviews. One review per job, written
// by the customer about the craftsman whose bid was accepted.
type Service struct {
	store  store.Store
	notify *notify.Dispatcher
}

func NewService(st store.Store, d *notify.Dispatcher) *Service {
	return &Service{store: st, notify: d}
}

type Input struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (s *Service) Create(ctx context.Context, jobID, reviewerID string, in Input) (domain.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return domain.Review{}, domain.NewError(domain.CodeValidation, "rating must be between 1 and 5", nil)
	}
	if len([]rune(in.Comment)) > 1000 {
		return domain.Review{}, domain.NewError(domain.CodeValidation, "comment too long", nil)
	}

	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return domain.Review{}, err
	}
	if job.CustomerID != reviewerID {
		return domain.Review{}, domain.NewError(domain.CodeForbidden, "only the job's customer may leave a review", nil)
	}
	if job.Status != domain.JobCompleted {
		return domain.Review{}, domain.NewError(domain.CodeInvalidState, "job is not completed yet", nil)
	}

	craftsmanID, err := s.acceptedCraftsman(ctx, jobID)
	if err != nil {
		return domain.Review{}, err
	}

	review := domain.Review{
		ID:          uuid.New().String(),
		JobID:       jobID,
		ReviewerID:  reviewerID,
		CraftsmanID: craftsmanID,
		Rating:      in.Rating,
		Comment:     in.Comment,
		CreatedAt:   time.Now().UTC(),
	}
	n := notify.NewReview(craftsmanID, job, review)
	if err := s.store.CreateReview(ctx, review, n); err != nil {
		return domain.Review{}, err
	}
	s.notify.Ping(n)
	return review, nil
}

func (s *Service) ListForCraftsman(ctx context.Context, craftsmanID string) ([]domain.Review, error) {
	return s.store.ListReviewsForCraftsman(ctx, craftsmanID)
}

func (s *Service) ForJob(ctx context.Context, jobID string) (domain.Review, error) {
	return s.store.GetReviewForJob(ctx, jobID)
}

func (s *Service) acceptedCraftsman(ctx context.Context, jobID string) (string, error) {
	bids, err := s.store.ListBidsByJob(ctx, jobID)
	if err != nil {
		return "", err
	}
	for _, b := range bids {
		if b.Status == domain.BidAccepted {
			return b.CraftsmanID, nil
		}
	}
	return "", domain.NewError(domain.CodeInvalidState, "job has no accepted bid", nil)
}
