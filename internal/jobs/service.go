package jobs

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/domain"
	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/notify"
	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/store"
)

// Service owns jobs and their monotonic status transitions
// (open -> in_progress -> completed, or -> cancelled).
type Service struct {
	store  store.Store
	notify *notify.Dispatcher
}

func NewService(st store.Store, d *notify.Dispatcher) *Service {
	return &Service{store: st, notify: d}
}

type CreateInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CategoryID  string `json:"category_id"`
	BudgetMin   int64  `json:"budget_min"`
	BudgetMax   int64  `json:"budget_max"`
	Currency    string `json:"currency"`
}

func (s *Service) Create(ctx context.Context, customerID string, in CreateInput) (domain.Job, error) {
	if strings.TrimSpace(in.Title) == "" {
		return domain.Job{}, domain.NewError(domain.CodeValidation, "title is required", nil)
	}
	if in.BudgetMin < 0 || in.BudgetMax < 0 || (in.BudgetMax > 0 && in.BudgetMin > in.BudgetMax) {
		return domain.Job{}, domain.NewError(domain.CodeValidation, "invalid budget range", nil)
	}
	currency := in.Currency
	if currency == "" {
		currency = "SYP"
	}

	now := time.Now().UTC()
	job := domain.Job{
		ID:          uuid.New().String(),
		CustomerID:  customerID,
		CategoryID:  in.CategoryID,
		Title:       in.Title,
		Description: in.Description,
		BudgetMin:   in.BudgetMin,
		BudgetMax:   in.BudgetMax,
		Currency:    currency,
		Status:      domain.JobOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateJob(ctx, job); err != nil {
		return domain.Job{}, err
	}
	return job, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Job, error) {
	return s.store.GetJob(ctx, id)
}

func (s *Service) List(ctx context.Context, f store.JobFilter) ([]domain.Job, error) {
	return s.store.ListJobs(ctx, f)
}

// Complete moves an in-progress job to completed and notifies the
// accepted craftsman.
func (s *Service) Complete(ctx context.Context, jobID, requesterID string) (domain.Job, error) {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return domain.Job{}, err
	}
	if job.CustomerID != requesterID {
		return domain.Job{}, domain.NewError(domain.CodeForbidden, "only the job's customer may complete it", nil)
	}
	if err := s.store.UpdateJobStatus(ctx, jobID, domain.JobInProgress, domain.JobCompleted); err != nil {
		return domain.Job{}, err
	}
	job.Status = domain.JobCompleted

	if craftsmanID := s.acceptedCraftsman(ctx, jobID); craftsmanID != "" {
		if err := s.notify.Dispatch(ctx, notify.JobCompleted(craftsmanID, job)); err != nil {
			log.Printf("[jobs] completion notification for job %s: %v", jobID, err)
		}
	}
	return job, nil
}

// Cancel marks an open or in-progress job cancelled.
func (s *Service) Cancel(ctx context.Context, jobID, requesterID string) (domain.Job, error) {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return domain.Job{}, err
	}
	if job.CustomerID != requesterID {
		return domain.Job{}, domain.NewError(domain.CodeForbidden, "only the job's customer may cancel it", nil)
	}
	if job.Status != domain.JobOpen && job.Status != domain.JobInProgress {
		return domain.Job{}, domain.NewError(domain.CodeInvalidState, "job cannot be cancelled at this stage", nil)
	}
	if err := s.store.UpdateJobStatus(ctx, jobID, job.Status, domain.JobCancelled); err != nil {
		return domain.Job{}, err
	}
	job.Status = domain.JobCancelled
	return job, nil
}

// Delete removes a job; owner or admin only.
func (s *Service) Delete(ctx context.Context, jobID, requesterID, requesterRole string) error {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job.CustomerID != requesterID && requesterRole != domain.RoleAdmin {
		return domain.NewError(domain.CodeForbidden, "only the job's owner or an admin may delete it", nil)
	}
	return s.store.DeleteJob(ctx, jobID)
}

func (s *Service) acceptedCraftsman(ctx context.Context, jobID string) string {
	bids, err := s.store.ListBidsByJob(ctx, jobID)
	if err != nil {
		return ""
	}
	for _, b := range bids {
		if b.Status == domain.BidAccepted {
			return b.CraftsmanID
		}
	}
	return ""
}
