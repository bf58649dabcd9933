package services

import (
	"artist-hub/contract"
	"artist-hub/domain"
	"artist-hub/domain/event"
	"artist-hub/errors"
	"artist-hub/projection"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo/mutable"
)

const defaultPageSize = 50

type IConversationStore interface {
	Load(ctx context.Context) error
	Subscribe(ctx context.Context) (*MessagePump, error)
	SendMessage(ctx context.Context, counterparty domain.UserID, body string) error
	SetActiveChat(counterparty *domain.UserID)
	ActiveChat() *domain.UserID
	LoadMoreMessages(ctx context.Context, counterparty domain.UserID) (int, error)
	Conversations() domain.Conversations
	Thread(counterparty domain.UserID) []domain.Message
	Loading() bool
	Err() error
	Close()
}

type ConversationConfig struct {
	HistoryLimit int // 0 loads the whole history
	PageSize     int
}

// ConversationStore is a read-through cache of the current user's direct messages.
// Sent messages reach it through the push channel, never through the send call.
type ConversationStore struct {
	mu       sync.RWMutex
	gateway  contract.MessageGateway
	identity contract.Identity
	log      *slog.Logger
	events   chan<- event.StoreEvent
	config   ConversationConfig
	now      func() time.Time

	timeline         *projection.Timeline
	activeChat       *domain.UserID
	loading          int
	pushedDuringLoad []domain.Message
	exhausted        map[domain.UserID]bool
	lastErr          error
	pumps            []*MessagePump
	closed           bool
}

func NewConversationStore(gateway contract.MessageGateway, identity contract.Identity,
	log *slog.Logger, events chan<- event.StoreEvent, config ConversationConfig) *ConversationStore {
	if config.PageSize <= 0 {
		config.PageSize = defaultPageSize
	}
	return &ConversationStore{
		gateway:   gateway,
		identity:  identity,
		log:       log,
		events:    events,
		config:    config,
		now:       time.Now,
		exhausted: make(map[domain.UserID]bool),
	}
}

// Load fetches every message of the current user and replaces the whole mapping.
// On failure the previous mapping is kept.
func (s *ConversationStore) Load(ctx context.Context) error {
	user, err := currentUser(s.identity)
	if err != nil {
		return err
	}

	s.startLoading()
	defer s.stopLoading()

	messages, err := s.gateway.ListMessages(ctx, domain.MessageFilter{
		Participant: user,
		Limit:       s.config.HistoryLimit,
	})
	if err != nil {
		return s.fail(fmt.Errorf("%w: messages: %w", errors.ErrLoad, err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.log.Debug("Discarding message history loaded after close")
		return nil
	}

	timeline := projection.NewTimeline(user)
	if skipped := timeline.Reset(oldestFirst(messages)); skipped > 0 {
		s.log.Warn("Skipped messages not addressed to a counterparty", "owner", user, "count", skipped)
	}
	// A push can land while the list request is in flight and be missing from its result.
	for _, pushed := range s.pushedDuringLoad {
		_, _, _ = timeline.Consume(pushed)
	}
	s.timeline = timeline
	s.exhausted = make(map[domain.UserID]bool)
	s.lastErr = nil

	conversations, total := timeline.Len()
	publish(s.log, s.events, event.ConversationsReplaced{Owner: user, Conversations: conversations, Messages: total})
	return nil
}

// Subscribe opens the push channel of the current user.
// The returned pump must be run to deliver messages; the store unsubscribes it on Close.
func (s *ConversationStore) Subscribe(ctx context.Context) (*MessagePump, error) {
	user, err := currentUser(s.identity)
	if err != nil {
		return nil, err
	}
	if s.isClosed() {
		return nil, errors.ErrClosed
	}

	sub, err := s.gateway.SubscribeCreateMessage(ctx, domain.MessageFilter{Participant: user})
	if err != nil {
		return nil, s.fail(fmt.Errorf("%w: messages: %w", errors.ErrSubscribe, err))
	}
	pump := newMessagePump(s, sub, user, s.log)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		pump.Unsubscribe()
		return nil, errors.ErrClosed
	}
	s.pumps = append(s.pumps, pump)
	s.mu.Unlock()

	s.log.Debug("Subscribed to message push channel", "user", user)
	return pump, nil
}

// SendMessage creates the message remotely. Local state changes only when the
// push channel echoes it back. A failed send is neither retried nor queued.
func (s *ConversationStore) SendMessage(ctx context.Context, counterparty domain.UserID, body string) error {
	if strings.TrimSpace(body) == "" {
		return errors.ErrEmptyMessage
	}
	user, err := currentUser(s.identity)
	if err != nil {
		return err
	}
	if counterparty == "" || counterparty == user {
		return fmt.Errorf("%w: %q", errors.ErrInvalidRecipient, counterparty)
	}

	_, err = s.gateway.CreateMessage(ctx, domain.CreateMessageInput{
		SenderID:   user,
		ReceiverID: counterparty,
		Body:       body,
		Timestamp:  s.now().UTC(),
	})
	if err != nil {
		return s.fail(fmt.Errorf("%w: %w", errors.ErrSend, err))
	}
	return nil
}

func (s *ConversationStore) SetActiveChat(counterparty *domain.UserID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if counterparty == nil {
		s.activeChat = nil
		return
	}
	selected := *counterparty
	s.activeChat = &selected
}

func (s *ConversationStore) ActiveChat() *domain.UserID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.activeChat == nil {
		return nil
	}
	selected := *s.activeChat
	return &selected
}

// LoadMoreMessages fetches one page of history older than what is loaded for
// counterparty and returns how many messages were new. The request is widened
// by the loaded messages sharing the oldest timestamp so a full page always
// brings something new. A short page means the conversation is complete.
func (s *ConversationStore) LoadMoreMessages(ctx context.Context, counterparty domain.UserID) (int, error) {
	user, err := currentUser(s.identity)
	if err != nil {
		return 0, err
	}

	filter := domain.MessageFilter{
		Participant:  user,
		Counterparty: &counterparty,
		Limit:        s.config.PageSize,
	}
	s.mu.RLock()
	if s.exhausted[counterparty] {
		s.mu.RUnlock()
		return 0, nil
	}
	if s.timeline != nil && s.timeline.Owner == user {
		if oldest, ok := s.timeline.Oldest(counterparty); ok {
			before := oldest.Timestamp
			filter.Before = &before
			filter.Limit += s.timeline.AtOldest(counterparty)
		}
	}
	s.mu.RUnlock()

	s.startLoading()
	defer s.stopLoading()

	page, err := s.gateway.ListMessages(ctx, filter)
	if err != nil {
		return 0, s.fail(fmt.Errorf("%w: older messages with %s: %w", errors.ErrLoad, counterparty, err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, nil
	}
	if s.timeline == nil || s.timeline.Owner != user {
		s.timeline = projection.NewTimeline(user)
	}
	added := s.timeline.Merge(counterparty, oldestFirst(page))
	if len(page) < filter.Limit {
		s.exhausted[counterparty] = true
	}
	if added > 0 {
		publish(s.log, s.events, event.ConversationExtended{Counterparty: counterparty, Added: added})
	}
	return added, nil
}

func (s *ConversationStore) Conversations() domain.Conversations {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.timeline == nil {
		return domain.Conversations{}
	}
	return s.timeline.Snapshot()
}

func (s *ConversationStore) Thread(counterparty domain.UserID) []domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.timeline == nil {
		return nil
	}
	return s.timeline.Thread(counterparty)
}

func (s *ConversationStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading > 0
}

// Err returns the last gateway failure, for passive display.
func (s *ConversationStore) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Close disposes the store and tears down every push channel exactly once.
// Calls resolving afterwards leave the state untouched.
func (s *ConversationStore) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	pumps := s.pumps
	s.pumps = nil
	s.mu.Unlock()

	for _, pump := range pumps {
		pump.Unsubscribe()
	}
}

// apply merges a pushed message received by a pump subscribed for user.
func (s *ConversationStore) apply(user domain.UserID, message domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.timeline == nil {
		s.timeline = projection.NewTimeline(user)
	}
	if s.timeline.Owner != user {
		s.log.Debug("Ignoring push for a previous identity", "user", user, "owner", s.timeline.Owner)
		return
	}
	if s.loading > 0 {
		s.pushedDuringLoad = append(s.pushedDuringLoad, message)
	}

	counterparty, added, err := s.timeline.Consume(message)
	if err != nil {
		s.log.Warn("Dropping pushed message", "message_id", message.ID, "error", err)
		return
	}
	if !added {
		s.log.Debug("Duplicate push delivery ignored", "message_id", message.ID)
		return
	}
	publish(s.log, s.events, event.ConversationUpdated{Counterparty: counterparty, Message: message})
}

func (s *ConversationStore) startLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading++
}

func (s *ConversationStore) stopLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading--
	if s.loading == 0 {
		s.pushedDuringLoad = nil
	}
}

func (s *ConversationStore) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

func (s *ConversationStore) fail(err error) error {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
	s.log.Error("Conversation store operation failed", "error", err)
	return err
}

// oldestFirst reverses a newest-first gateway page without touching the caller's slice.
func oldestFirst(messages []domain.Message) []domain.Message {
	ordered := append([]domain.Message(nil), messages...)
	mutable.Reverse(ordered)
	return ordered
}
