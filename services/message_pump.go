package services

import (
	"artist-hub/contract"
	"artist-hub/domain"
	"context"
	"log/slog"
	"sync"
)

// MessagePump drains one push subscription into the conversation store.
// It stops when the subscription ends, when its context is canceled, or when
// the signed-in user is no longer the one it subscribed for.
type MessagePump struct {
	store *ConversationStore
	sub   contract.MessageSubscription
	user  domain.UserID
	log   *slog.Logger
	once  sync.Once
}

func newMessagePump(store *ConversationStore, sub contract.MessageSubscription, user domain.UserID, log *slog.Logger) *MessagePump {
	return &MessagePump{store: store, sub: sub, user: user, log: log}
}

func (p *MessagePump) Run(ctx context.Context) error {
	messages := p.sub.Messages()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case message, ok := <-messages:
			if !ok {
				if err := p.sub.Err(); err != nil {
					p.log.Warn("Push channel closed", "user", p.user, "error", err)
				}
				return nil
			}
			if current, err := p.store.identity.CurrentUser(); err != nil || current != p.user {
				p.log.Info("Identity changed, dropping push channel", "user", p.user)
				p.Unsubscribe()
				return nil
			}
			p.store.apply(p.user, message)
		}
	}
}

// Unsubscribe tears the subscription down. Safe to call more than once.
func (p *MessagePump) Unsubscribe() {
	p.once.Do(func() {
		p.sub.Unsubscribe()
		p.log.Debug("Unsubscribed from message push channel", "user", p.user)
	})
}

func (p *MessagePump) User() domain.UserID {
	return p.user
}
