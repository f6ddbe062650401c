package domain

import "time"

// User roles
const (
	RoleCustomer  = "customer"
	RoleCraftsman = "craftsman"
	RoleAdmin     = "admin"
)

func ValidRole(role string) bool {
	switch role {
	case RoleCustomer, RoleCraftsman:
		return true
	default:
		return false
	}
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

type JobStatus string

const (
	JobOpen       JobStatus = "open"
	JobInProgress JobStatus = "in_progress"
	JobCompleted  JobStatus = "completed"
	JobCancelled  JobStatus = "cancelled"
)

func ValidJobStatus(s JobStatus) bool {
	switch s {
	case JobOpen, JobInProgress, JobCompleted, JobCancelled:
		return true
	default:
		return false
	}
}

type Job struct {
	ID          string    `json:"id"`
	CustomerID  string    `json:"customer_id"`
	CategoryID  string    `json:"category_id,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	BudgetMin   int64     `json:"budget_min"`
	BudgetMax   int64     `json:"budget_max"`
	Currency    string    `json:"currency"`
	Status      JobStatus `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type BidStatus string

const (
	BidPending   BidStatus = "pending"
	BidAccepted  BidStatus = "accepted"
	BidRejected  BidStatus = "rejected"
	BidWithdrawn BidStatus = "withdrawn"
)

func ValidBidStatus(s BidStatus) bool {
	switch s {
	case BidPending, BidAccepted, BidRejected, BidWithdrawn:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transition is allowed from s.
func (s BidStatus) Terminal() bool {
	return s == BidAccepted || s == BidRejected || s == BidWithdrawn
}

type Bid struct {
	ID            string    `json:"id"`
	JobID         string    `json:"job_id"`
	CraftsmanID   string    `json:"craftsman_id"`
	Price         int64     `json:"price"`
	Currency      string    `json:"currency"`
	EstimatedDays int       `json:"estimated_days"`
	Message       string    `json:"message,omitempty"`
	Status        BidStatus `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Participant struct {
	UserID     string     `json:"user_id"`
	LastReadAt *time.Time `json:"last_read_at,omitempty"`
}

// Conversation links the job's customer and the accepted craftsman.
// It is only ever created as a side effect of a bid being accepted.
type Conversation struct {
	ID           string        `json:"id"`
	JobID        string        `json:"job_id,omitempty"`
	Participants []Participant `json:"participants"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func (c Conversation) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	Content        string    `json:"content"`
	IsRead         bool      `json:"is_read"`
	CreatedAt      time.Time `json:"created_at"`
}

type NotificationType string

const (
	NotifNewBid       NotificationType = "new_bid"
	NotifBidAccepted  NotificationType = "bid_accepted"
	NotifBidRejected  NotificationType = "bid_rejected"
	NotifJobCompleted NotificationType = "job_completed"
	NotifNewMessage   NotificationType = "new_message"
	NotifNewReview    NotificationType = "new_review"
)

// Notification is the durable record; the realtime ping is only a
// latency shortcut over it. Titles and bodies are bilingual.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Type      NotificationType `json:"type"`
	TitleAr   string           `json:"title_ar"`
	TitleEn   string           `json:"title_en"`
	BodyAr    string           `json:"body_ar,omitempty"`
	BodyEn    string           `json:"body_en,omitempty"`
	Link      string           `json:"link,omitempty"`
	RelatedID string           `json:"related_id,omitempty"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
	ReadAt    *time.Time       `json:"read_at,omitempty"`
}

type Review struct {
	ID          string    `json:"id"`
	JobID       string    `json:"job_id"`
	ReviewerID  string    `json:"reviewer_id"`
	CraftsmanID string    `json:"craftsman_id"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
