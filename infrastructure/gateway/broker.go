package gateway

import (
	"artist-hub/contract"
	"artist-hub/domain"
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

var errSlowSubscriber = fmt.Errorf("push buffer full, subscription dropped")

type set map[string]struct{}

// Broker fans created messages out to the live subscriptions of both participants.
type Broker struct {
	mu            sync.RWMutex
	log           *slog.Logger
	bufferSize    int
	subscriptions map[string]*subscription // subscription id -> subscription
	participants  map[domain.UserID]set    // participant -> subscription ids
}

func NewBroker(log *slog.Logger, bufferSize int) *Broker {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Broker{
		log:           log,
		bufferSize:    bufferSize,
		subscriptions: make(map[string]*subscription),
		participants:  make(map[domain.UserID]set),
	}
}

// Subscribe registers a push channel for filter.Participant.
// It ends on Unsubscribe, when ctx is done, or when the subscriber falls behind.
func (b *Broker) Subscribe(ctx context.Context, filter domain.MessageFilter) contract.MessageSubscription {
	sub := &subscription{
		id:       uuid.NewString(),
		filter:   filter,
		messages: make(chan domain.Message, b.bufferSize),
		done:     make(chan struct{}),
		broker:   b,
	}

	b.mu.Lock()
	b.subscriptions[sub.id] = sub
	if _, ok := b.participants[filter.Participant]; !ok {
		b.participants[filter.Participant] = make(set)
	}
	b.participants[filter.Participant][sub.id] = struct{}{}
	b.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			sub.end(ctx.Err())
		case <-sub.done:
		}
	}()
	return sub
}

// Publish delivers message to every matching subscription without blocking.
func (b *Broker) Publish(message domain.Message) {
	var slow []*subscription

	b.mu.RLock()
	for _, participant := range []domain.UserID{message.SenderID, message.ReceiverID} {
		for id := range b.participants[participant] {
			sub := b.subscriptions[id]
			if !sub.filter.Matches(message) {
				continue
			}
			select {
			case sub.messages <- message:
			default:
				slow = append(slow, sub)
			}
		}
		if message.SenderID == message.ReceiverID {
			break
		}
	}
	b.mu.RUnlock()

	for _, sub := range slow {
		b.log.Warn("Push subscriber too slow", "participant", sub.filter.Participant, "message_id", message.ID)
		sub.end(errSlowSubscriber)
	}
}

// Len returns the number of live subscriptions.
func (b *Broker) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscriptions)
}

// remove unregisters sub and closes its channel. Closing under the write lock
// guarantees Publish never sends on a closed channel.
func (b *Broker) remove(sub *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.subscriptions, sub.id)
	if members, ok := b.participants[sub.filter.Participant]; ok {
		delete(members, sub.id)
		if len(members) == 0 {
			delete(b.participants, sub.filter.Participant)
		}
	}
	close(sub.messages)
}

type subscription struct {
	id       string
	filter   domain.MessageFilter
	messages chan domain.Message
	done     chan struct{}
	broker   *Broker
	once     sync.Once
	mu       sync.Mutex
	err      error
}

func (s *subscription) Messages() <-chan domain.Message {
	return s.messages
}

func (s *subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *subscription) Unsubscribe() {
	s.end(nil)
}

func (s *subscription) end(err error) {
	s.once.Do(func() {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		s.broker.remove(s)
		close(s.done)
	})
}
