package gateway

import (
	"artist-hub/contract"
	"artist-hub/domain"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
)

const (
	subprotocol      = "graphql-transport-ws"
	handshakeTimeout = 10 * time.Second
	writeTimeout     = 5 * time.Second
)

type RealtimeConfig struct {
	Endpoint   string
	APIKey     string
	BufferSize int
}

// RealtimeClient opens push subscriptions over websocket, one connection per subscription.
type RealtimeClient struct {
	cfg    RealtimeConfig
	tokens TokenSource
	dialer websocket.Dialer
	log    *slog.Logger
}

func NewRealtimeClient(cfg RealtimeConfig, tokens TokenSource, log *slog.Logger) *RealtimeClient {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 64
	}
	return &RealtimeClient{
		cfg:    cfg,
		tokens: tokens,
		dialer: websocket.Dialer{
			HandshakeTimeout: handshakeTimeout,
			Subprotocols:     []string{subprotocol},
		},
		log: log,
	}
}

type frame struct {
	ID      string `json:"id,omitempty"`
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Subscribe runs the connection_init / subscribe handshake and starts reading
// "next" frames for document. The subscription is acknowledged before returning.
func (r *RealtimeClient) Subscribe(ctx context.Context, document string, variables map[string]any) (contract.MessageSubscription, error) {
	conn, _, err := r.dialer.DialContext(ctx, r.cfg.Endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial: %w", err)
	}

	init := map[string]any{}
	if r.cfg.APIKey != "" {
		init["x-api-key"] = r.cfg.APIKey
	}
	if r.tokens != nil && r.tokens.Token() != "" {
		init["Authorization"] = "Bearer " + r.tokens.Token()
	}
	if err := r.handshake(conn, init); err != nil {
		_ = conn.Close()
		return nil, err
	}

	sub := &realtimeSubscription{
		id:       uuid.NewString(),
		conn:     conn,
		messages: make(chan domain.Message, r.cfg.BufferSize),
		done:     make(chan struct{}),
		log:      r.log,
	}
	if err := sub.write(&frame{ID: sub.id, Type: "subscribe", Payload: map[string]any{
		"query":     document,
		"variables": variables,
	}}); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("send subscribe: %w", err)
	}

	go sub.read()
	go func() {
		select {
		case <-ctx.Done():
			sub.Unsubscribe()
		case <-sub.done:
		}
	}()
	return sub, nil
}

func (r *RealtimeClient) handshake(conn *websocket.Conn, payload map[string]any) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	if err := conn.WriteJSON(frame{Type: "connection_init", Payload: payload}); err != nil {
		return fmt.Errorf("send connection_init: %w", err)
	}
	if err := conn.SetReadDeadline(time.Now().Add(handshakeTimeout)); err != nil {
		return err
	}
	_, raw, err := conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("await connection_ack: %w", err)
	}
	if kind := gjson.GetBytes(raw, "type").String(); kind != "connection_ack" {
		return fmt.Errorf("unexpected %q frame during handshake", kind)
	}
	return conn.SetReadDeadline(time.Time{})
}

type realtimeSubscription struct {
	id       string
	conn     *websocket.Conn
	messages chan domain.Message
	done     chan struct{}
	log      *slog.Logger

	writeMu sync.Mutex
	once    sync.Once
	mu      sync.Mutex
	err     error
}

func (s *realtimeSubscription) Messages() <-chan domain.Message {
	return s.messages
}

func (s *realtimeSubscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Unsubscribe sends "complete" and closes the connection, exactly once.
func (s *realtimeSubscription) Unsubscribe() {
	s.once.Do(func() {
		close(s.done)
		if err := s.write(&frame{ID: s.id, Type: "complete"}); err != nil {
			s.log.Debug("Complete frame not sent", "subscription", s.id, "error", err)
		}
		_ = s.write(nil)
		_ = s.conn.Close()
	})
}

// read is the only sender on messages and closes it on exit.
func (s *realtimeSubscription) read() {
	defer close(s.messages)
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
			default:
				s.fail(fmt.Errorf("push channel read: %w", err))
			}
			return
		}

		switch kind := gjson.GetBytes(raw, "type").String(); kind {
		case "next":
			message, err := parseMessage(gjson.GetBytes(raw, "payload.data.onCreateMessage"))
			if err != nil {
				s.log.Warn("Unreadable pushed message", "error", err)
				continue
			}
			select {
			case s.messages <- message:
			case <-s.done:
				return
			}
		case "ping":
			if err := s.write(&frame{Type: "pong"}); err != nil {
				s.log.Debug("Pong not sent", "error", err)
			}
		case "error":
			s.fail(fmt.Errorf("subscription error: %s", gjson.GetBytes(raw, "payload").Raw))
			return
		case "complete":
			s.fail(nil)
			return
		default:
			s.log.Debug("Ignoring push frame", "type", kind)
		}
	}
}

// fail records why the subscription ended and releases the connection.
func (s *realtimeSubscription) fail(err error) {
	s.mu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.mu.Unlock()
	s.once.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}

// write sends a frame, or a close message when f is nil.
func (s *realtimeSubscription) write(f *frame) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	if f == nil {
		return s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}
	return s.conn.WriteJSON(f)
}
