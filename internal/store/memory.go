package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/domain"
)

// Memory keeps everything in-process. It backs tests and local runs
// without Postgres; the mutex gives each logical operation the same
// all-or-nothing behavior the SQL transactions give the Postgres store.
type Memory struct {
	mu            sync.RWMutex
	users         map[string]domain.User
	emails        map[string]string // email -> user ID
	jobs          map[string]domain.Job
	bids          map[string]domain.Bid
	conversations map[string]domain.Conversation
	messages      map[string][]domain.Message // conversation ID -> messages
	notifications map[string][]domain.Notification
	reviews       map[string]domain.Review // job ID -> review
}

func NewMemory() *Memory {
	return &Memory{
		users:         make(map[string]domain.User),
		emails:        make(map[string]string),
		jobs:          make(map[string]domain.Job),
		bids:          make(map[string]domain.Bid),
		conversations: make(map[string]domain.Conversation),
		messages:      make(map[string][]domain.Message),
		notifications: make(map[string][]domain.Notification),
		reviews:       make(map[string]domain.Review),
	}
}

var _ Store = (*Memory)(nil)

func (m *Memory) CreateUser(_ context.Context, u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.emails[u.Email]; ok {
		return domain.NewError(domain.CodeConflict, "email already registered", nil)
	}
	m.users[u.ID] = u
	m.emails[u.Email] = u.ID
	return nil
}

func (m *Memory) GetUserByEmail(_ context.Context, email string) (domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, ok := m.emails[email]; ok {
		return m.users[id], nil
	}
	return domain.User{}, domain.NewError(domain.CodeNotFound, "user not found", nil)
}

func (m *Memory) GetUserByID(_ context.Context, id string) (domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return domain.User{}, domain.NewError(domain.CodeNotFound, "user not found", nil)
	}
	return u, nil
}

func (m *Memory) CreateJob(_ context.Context, j domain.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[j.ID] = j
	return nil
}

func (m *Memory) GetJob(_ context.Context, id string) (domain.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	j, ok := m.jobs[id]
	if !ok {
		return domain.Job{}, domain.NewError(domain.CodeNotFound, "job not found", nil)
	}
	return j, nil
}

func (m *Memory) ListJobs(_ context.Context, f JobFilter) ([]domain.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var res []domain.Job
	for _, j := range m.jobs {
		if f.Status != "" && j.Status != f.Status {
			continue
		}
		if f.CustomerID != "" && j.CustomerID != f.CustomerID {
			continue
		}
		if f.CategoryID != "" && j.CategoryID != f.CategoryID {
			continue
		}
		res = append(res, j)
	}
	sort.Slice(res, func(i, k int) bool { return res[i].CreatedAt.After(res[k].CreatedAt) })
	return res, nil
}

func (m *Memory) UpdateJobStatus(_ context.Context, id string, from, to domain.JobStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return domain.NewError(domain.CodeNotFound, "job not found", nil)
	}
	if j.Status != from {
		return domain.NewError(domain.CodeInvalidState, "job is not "+string(from), nil)
	}
	j.Status = to
	j.UpdatedAt = time.Now().UTC()
	m.jobs[id] = j
	return nil
}

func (m *Memory) DeleteJob(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[id]; !ok {
		return domain.NewError(domain.CodeNotFound, "job not found", nil)
	}
	delete(m.jobs, id)
	for bidID, b := range m.bids {
		if b.JobID == id {
			delete(m.bids, bidID)
		}
	}
	return nil
}

func (m *Memory) SubmitBid(_ context.Context, b domain.Bid, n domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[b.JobID]
	if !ok {
		return domain.NewError(domain.CodeNotFound, "job not found", nil)
	}
	if job.Status != domain.JobOpen {
		return domain.NewError(domain.CodeInvalidState, "job is not open for bids", nil)
	}
	for _, existing := range m.bids {
		if existing.JobID == b.JobID && existing.CraftsmanID == b.CraftsmanID && existing.Status != domain.BidWithdrawn {
			return domain.NewError(domain.CodeConflict, "bid already submitted for this job", nil)
		}
	}
	m.bids[b.ID] = b
	m.notifications[n.UserID] = append(m.notifications[n.UserID], n)
	return nil
}

func (m *Memory) GetBid(_ context.Context, id string) (domain.Bid, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.bids[id]
	if !ok {
		return domain.Bid{}, domain.NewError(domain.CodeNotFound, "bid not found", nil)
	}
	return b, nil
}

func (m *Memory) ListBidsByJob(_ context.Context, jobID string) ([]domain.Bid, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var res []domain.Bid
	for _, b := range m.bids {
		if b.JobID == jobID {
			res = append(res, b)
		}
	}
	sort.Slice(res, func(i, k int) bool { return res[i].CreatedAt.Before(res[k].CreatedAt) })
	return res, nil
}

func (m *Memory) WithdrawBid(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setBidStatusLocked(id, domain.BidPending, domain.BidWithdrawn)
}

func (m *Memory) RejectBid(_ context.Context, id string, n domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.setBidStatusLocked(id, domain.BidPending, domain.BidRejected); err != nil {
		return err
	}
	m.notifications[n.UserID] = append(m.notifications[n.UserID], n)
	return nil
}

func (m *Memory) setBidStatusLocked(id string, from, to domain.BidStatus) error {
	b, ok := m.bids[id]
	if !ok {
		return domain.NewError(domain.CodeNotFound, "bid not found", nil)
	}
	if b.Status != from {
		return domain.NewError(domain.CodeInvalidState, "bid is not "+string(from), nil)
	}
	b.Status = to
	b.UpdatedAt = time.Now().UTC()
	m.bids[id] = b
	return nil
}

func (m *Memory) AcceptBid(_ context.Context, jobID, bidID string, conv domain.Conversation, n domain.Notification) (domain.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	bid, ok := m.bids[bidID]
	if !ok || bid.JobID != jobID {
		return domain.Conversation{}, domain.NewError(domain.CodeNotFound, "bid not found", nil)
	}
	job, ok := m.jobs[jobID]
	if !ok {
		return domain.Conversation{}, domain.NewError(domain.CodeNotFound, "job not found", nil)
	}
	if job.Status != domain.JobOpen {
		return domain.Conversation{}, domain.NewError(domain.CodeInvalidState, "job already resolved", nil)
	}
	if bid.Status != domain.BidPending {
		return domain.Conversation{}, domain.NewError(domain.CodeInvalidState, "bid is not pending", nil)
	}

	now := time.Now().UTC()
	bid.Status = domain.BidAccepted
	bid.UpdatedAt = now
	m.bids[bidID] = bid

	for id, other := range m.bids {
		if other.JobID == jobID && other.ID != bidID && other.Status == domain.BidPending {
			other.Status = domain.BidRejected
			other.UpdatedAt = now
			m.bids[id] = other
		}
	}

	job.Status = domain.JobInProgress
	job.UpdatedAt = now
	m.jobs[jobID] = job

	// Reuse an existing conversation for the same pair on this job
	// (a prior withdrawn-then-reaccepted cycle may have left one).
	out := conv
	found := false
	for _, existing := range m.conversations {
		if existing.JobID == jobID && existing.HasParticipant(job.CustomerID) && existing.HasParticipant(bid.CraftsmanID) {
			out = existing
			found = true
			break
		}
	}
	if !found {
		m.conversations[out.ID] = out
	}

	m.notifications[n.UserID] = append(m.notifications[n.UserID], n)
	return out, nil
}

func (m *Memory) GetConversation(_ context.Context, id string) (domain.Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.conversations[id]
	if !ok {
		return domain.Conversation{}, domain.NewError(domain.CodeNotFound, "conversation not found", nil)
	}
	return c, nil
}

func (m *Memory) ListConversationsForUser(_ context.Context, userID string) ([]ConversationSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var res []ConversationSummary
	for _, c := range m.conversations {
		if !c.HasParticipant(userID) {
			continue
		}
		s := ConversationSummary{Conversation: c}
		for _, msg := range m.messages[c.ID] {
			if msg.SenderID != userID && !msg.IsRead {
				s.Unread++
			}
			if msg.CreatedAt.After(s.LastMessageAt) {
				s.LastMessage = msg.Content
				s.LastMessageAt = msg.CreatedAt
			}
		}
		res = append(res, s)
	}
	sort.Slice(res, func(i, k int) bool {
		return res[i].Conversation.UpdatedAt.After(res[k].Conversation.UpdatedAt)
	})
	return res, nil
}

func (m *Memory) AppendMessage(_ context.Context, msg domain.Message, notifs []domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.conversations[msg.ConversationID]
	if !ok {
		return domain.NewError(domain.CodeNotFound, "conversation not found", nil)
	}
	m.messages[msg.ConversationID] = append(m.messages[msg.ConversationID], msg)
	c.UpdatedAt = msg.CreatedAt
	m.conversations[msg.ConversationID] = c
	for _, n := range notifs {
		m.notifications[n.UserID] = append(m.notifications[n.UserID], n)
	}
	return nil
}

func (m *Memory) MarkConversationRead(_ context.Context, convID, userID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.conversations[convID]
	if !ok {
		return domain.NewError(domain.CodeNotFound, "conversation not found", nil)
	}
	msgs := m.messages[convID]
	for i := range msgs {
		if msgs[i].SenderID != userID {
			msgs[i].IsRead = true
		}
	}
	m.messages[convID] = msgs
	for i := range c.Participants {
		if c.Participants[i].UserID == userID {
			t := at
			c.Participants[i].LastReadAt = &t
		}
	}
	m.conversations[convID] = c
	return nil
}

func (m *Memory) ListMessages(_ context.Context, convID string, limit int) ([]domain.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	src := m.messages[convID]
	msgs := make([]domain.Message, len(src))
	copy(msgs, src)
	sort.Slice(msgs, func(i, k int) bool { return msgs[i].CreatedAt.Before(msgs[k].CreatedAt) })
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

func (m *Memory) UnreadMessageCount(_ context.Context, convID, userID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var count int64
	for _, msg := range m.messages[convID] {
		if msg.SenderID != userID && !msg.IsRead {
			count++
		}
	}
	return count, nil
}

func (m *Memory) CreateNotification(_ context.Context, n domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications[n.UserID] = append(m.notifications[n.UserID], n)
	return nil
}

func (m *Memory) ListNotifications(_ context.Context, userID string) ([]domain.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	src := m.notifications[userID]
	res := make([]domain.Notification, len(src))
	copy(res, src)
	sort.Slice(res, func(i, k int) bool { return res[i].CreatedAt.After(res[k].CreatedAt) })
	return res, nil
}

func (m *Memory) UnreadNotificationCount(_ context.Context, userID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var count int64
	for _, n := range m.notifications[userID] {
		if !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (m *Memory) MarkNotificationRead(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.notifications[userID]
	for i := range list {
		if list[i].ID == id {
			if !list[i].IsRead {
				now := time.Now().UTC()
				list[i].IsRead = true
				list[i].ReadAt = &now
			}
			return nil
		}
	}
	return domain.NewError(domain.CodeNotFound, "notification not found", nil)
}

func (m *Memory) MarkAllNotificationsRead(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	list := m.notifications[userID]
	for i := range list {
		if !list[i].IsRead {
			list[i].IsRead = true
			list[i].ReadAt = &now
		}
	}
	return nil
}

func (m *Memory) CreateReview(_ context.Context, r domain.Review, n domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reviews[r.JobID]; ok {
		return domain.NewError(domain.CodeConflict, "job already reviewed", nil)
	}
	m.reviews[r.JobID] = r
	m.notifications[n.UserID] = append(m.notifications[n.UserID], n)
	return nil
}

func (m *Memory) ListReviewsForCraftsman(_ context.Context, craftsmanID string) ([]domain.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var res []domain.Review
	for _, r := range m.reviews {
		if r.CraftsmanID == craftsmanID {
			res = append(res, r)
		}
	}
	sort.Slice(res, func(i, k int) bool { return res[i].CreatedAt.After(res[k].CreatedAt) })
	return res, nil
}

func (m *Memory) GetReviewForJob(_ context.Context, jobID string) (domain.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.reviews[jobID]
	if !ok {
		return domain.Review{}, domain.NewError(domain.CodeNotFound, "review not found", nil)
	}
	return r, nil
}
