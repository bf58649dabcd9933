// Package projection builds local conversation timelines from observed messages.
// Handles grouping by counterparty, ordering, and deduplication.
// Not safe for concurrent use; the owning store serializes access.
package projection

import (
	"artist-hub/domain"
	"artist-hub/errors"
	"sort"

	"github.com/samber/lo"
)

// Timeline holds the conversations of a single owner.
type Timeline struct {
	Owner   domain.UserID
	threads map[domain.UserID][]domain.Message
	seen    map[string]struct{} // message IDs already placed
}

func NewTimeline(owner domain.UserID) *Timeline {
	return &Timeline{
		Owner:   owner,
		threads: make(map[domain.UserID][]domain.Message),
		seen:    make(map[string]struct{}),
	}
}

// Reset replaces every conversation with the given history.
// Messages that don't belong to the owner are skipped and counted.
func (t *Timeline) Reset(messages []domain.Message) (skipped int) {
	t.threads = make(map[domain.UserID][]domain.Message)
	t.seen = make(map[string]struct{})

	valid := lo.Filter(messages, func(m domain.Message, _ int) bool {
		return t.check(m) == nil
	})
	skipped = len(messages) - len(valid)

	for counterparty, group := range lo.GroupBy(valid, func(m domain.Message) domain.UserID {
		return m.Counterparty(t.Owner)
	}) {
		unique := lo.Filter(group, func(m domain.Message, _ int) bool {
			return t.remember(m)
		})
		sort.SliceStable(unique, func(i, j int) bool {
			return unique[i].Timestamp.Before(unique[j].Timestamp)
		})
		t.threads[counterparty] = unique
	}
	return skipped
}

// Consume places a single message in its conversation.
// It returns false when the message was already known.
func (t *Timeline) Consume(message domain.Message) (domain.UserID, bool, error) {
	if err := t.check(message); err != nil {
		return "", false, err
	}
	counterparty := message.Counterparty(t.Owner)
	if !t.remember(message) {
		return counterparty, false, nil
	}
	t.threads[counterparty] = insertStable(t.threads[counterparty], message)
	return counterparty, true, nil
}

// Merge adds older history to a conversation and returns how many messages were new.
func (t *Timeline) Merge(counterparty domain.UserID, older []domain.Message) int {
	added := 0
	for _, m := range older {
		if t.check(m) != nil || m.Counterparty(t.Owner) != counterparty {
			continue
		}
		if !t.remember(m) {
			continue
		}
		t.threads[counterparty] = insertStable(t.threads[counterparty], m)
		added++
	}
	return added
}

// Oldest returns the earliest known message of a conversation.
func (t *Timeline) Oldest(counterparty domain.UserID) (domain.Message, bool) {
	thread := t.threads[counterparty]
	if len(thread) == 0 {
		return domain.Message{}, false
	}
	return thread[0], true
}

// AtOldest counts the known messages sharing the oldest timestamp of a
// conversation. An inclusive history bound returns them again.
func (t *Timeline) AtOldest(counterparty domain.UserID) int {
	thread := t.threads[counterparty]
	count := 0
	for _, m := range thread {
		if !m.Timestamp.Equal(thread[0].Timestamp) {
			break
		}
		count++
	}
	return count
}

func (t *Timeline) Thread(counterparty domain.UserID) []domain.Message {
	return append([]domain.Message(nil), t.threads[counterparty]...)
}

func (t *Timeline) Snapshot() domain.Conversations {
	return domain.Conversations(t.threads).Clone()
}

// Len returns the number of conversations and the number of messages.
func (t *Timeline) Len() (int, int) {
	total := 0
	for _, thread := range t.threads {
		total += len(thread)
	}
	return len(t.threads), total
}

func (t *Timeline) check(message domain.Message) error {
	if !message.Involves(t.Owner) {
		return errors.ErrForeignMessage
	}
	if message.Counterparty(t.Owner) == t.Owner {
		return errors.ErrSelfConversation
	}
	return nil
}

// remember records the message ID. Messages without an ID are never deduplicated.
func (t *Timeline) remember(message domain.Message) bool {
	if message.ID == "" {
		return true
	}
	if _, ok := t.seen[message.ID]; ok {
		return false
	}
	t.seen[message.ID] = struct{}{}
	return true
}

// insertStable inserts after every message with a timestamp <= message's,
// which is what append followed by a stable sort would produce.
func insertStable(thread []domain.Message, message domain.Message) []domain.Message {
	i := sort.Search(len(thread), func(i int) bool {
		return thread[i].Timestamp.After(message.Timestamp)
	})
	thread = append(thread, domain.Message{})
	copy(thread[i+1:], thread[i:])
	thread[i] = message
	return thread
}
