package store

import (
	"context"
	"time"

	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/domain"
)

// JobFilter narrows ListJobs. Zero values mean "any".
type JobFilter struct {
	Status     domain.JobStatus
	CustomerID string
	CategoryID string
}

// ConversationSummary is the thread-list view for one user.
type ConversationSummary struct {
	Conversation  domain.Conversation `json:"conversation"`
	LastMessage   string              `json:"last_message,omitempty"`
	LastMessageAt time.Time           `json:"last_message_at,omitempty"`
	Unread        int64               `json:"unread"`
}

// Store defines persistence for jobs, bids, conversations, messages,
// notifications and reviews. Every mutating method is atomic: multi-row
// effects of one logical operation either all commit or none do.
// Notifications that belong to a state change are written in the same
// transaction as the change; realtime pushes happen outside, after the
// method returns.
type Store interface {
	// users
	CreateUser(ctx context.Context, u domain.User) error
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// jobs
	CreateJob(ctx context.Context, j domain.Job) error
	GetJob(ctx context.Context, id string) (domain.Job, error)
	ListJobs(ctx context.Context, f JobFilter) ([]domain.Job, error)
	// UpdateJobStatus is a compare-and-set: it fails with invalid_state
	// when the job is no longer in the `from` status.
	UpdateJobStatus(ctx context.Context, id string, from, to domain.JobStatus) error
	DeleteJob(ctx context.Context, id string) error

	// bids
	// SubmitBid inserts the bid and the customer's notification together.
	// A live (non-withdrawn) bid by the same craftsman on the same job
	// maps to conflict; a non-open job maps to invalid_state.
	SubmitBid(ctx context.Context, b domain.Bid, n domain.Notification) error
	GetBid(ctx context.Context, id string) (domain.Bid, error)
	ListBidsByJob(ctx context.Context, jobID string) ([]domain.Bid, error)
	WithdrawBid(ctx context.Context, id string) error
	RejectBid(ctx context.Context, id string, n domain.Notification) error
	// AcceptBid performs the accept transaction: bid -> accepted, other
	// pending bids on the job -> rejected, job -> in_progress, the
	// conversation created (or reused for the same pair on this job) and
	// the craftsman's notification written. Returns the conversation in
	// effect after commit.
	AcceptBid(ctx context.Context, jobID, bidID string, conv domain.Conversation, n domain.Notification) (domain.Conversation, error)

	// conversations / messages
	GetConversation(ctx context.Context, id string) (domain.Conversation, error)
	ListConversationsForUser(ctx context.Context, userID string) ([]ConversationSummary, error)
	// AppendMessage writes the message and one notification per other
	// participant in a single transaction, bumping the conversation.
	AppendMessage(ctx context.Context, m domain.Message, notifs []domain.Notification) error
	// MarkConversationRead flips is_read on messages sent by others and
	// advances the reader's cursor. Idempotent.
	MarkConversationRead(ctx context.Context, convID, userID string, at time.Time) error
	ListMessages(ctx context.Context, convID string, limit int) ([]domain.Message, error)
	UnreadMessageCount(ctx context.Context, convID, userID string) (int64, error)

	// notifications
	CreateNotification(ctx context.Context, n domain.Notification) error
	ListNotifications(ctx context.Context, userID string) ([]domain.Notification, error)
	UnreadNotificationCount(ctx context.Context, userID string) (int64, error)
	MarkNotificationRead(ctx context.Context, userID, id string) error
	MarkAllNotificationsRead(ctx context.Context, userID string) error

	// reviews
	CreateReview(ctx context.Context, r domain.Review, n domain.Notification) error
	ListReviewsForCraftsman(ctx context.Context, craftsmanID string) ([]domain.Review, error)
	GetReviewForJob(ctx context.Context, jobID string) (domain.Review, error)
}
