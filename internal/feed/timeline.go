package feed

import (
	"sort"

	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/domain"
)

// Timeline reconciles a conversation's message stream from two sources:
// a history fetch and live pushed events. The same message can arrive
// through both, so everything is deduplicated by id and kept in
// ascending created_at order.
type Timeline struct {
	seen     map[string]struct{}
	messages []domain.Message
}

func NewTimeline() *Timeline {
	return &Timeline{seen: make(map[string]struct{})}
}

// Add inserts a message unless its id is already present. Returns true
// if the message was new.
func (t *Timeline) Add(m domain.Message) bool {
	if _, ok := t.seen[m.ID]; ok {
		return false
	}
	t.seen[m.ID] = struct{}{}
	t.messages = append(t.messages, m)

	// Pushed events can land before an older history page does.
	sort.SliceStable(t.messages, func(i, j int) bool {
		return t.messages[i].CreatedAt.Before(t.messages[j].CreatedAt)
	})
	return true
}

// Merge adds a batch of history messages.
func (t *Timeline) Merge(history []domain.Message) {
	for _, m := range history {
		t.Add(m)
	}
}

// Messages returns a snapshot in ascending created_at order.
func (t *Timeline) Messages() []domain.Message {
	out := make([]domain.Message, len(t.messages))
	copy(out, t.messages)
	return out
}

func (t *Timeline) Len() int { return len(t.messages) }
