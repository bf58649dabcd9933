package gateway

import (
	"artist-hub/domain"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

var upgrader = websocket.Upgrader{
	Subprotocols: []string{subprotocol},
	CheckOrigin:  func(*http.Request) bool { return true },
}

// fakeRealtimeServer acknowledges the handshake, pushes the given frames once
// subscribed, then reports the frame types it received afterwards.
func fakeRealtimeServer(t *testing.T, pushes []string, received chan<- string) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		_, raw, err := conn.ReadMessage()
		if err != nil || gjson.GetBytes(raw, "type").String() != "connection_init" {
			return
		}
		received <- "connection_init:" + gjson.GetBytes(raw, "payload.Authorization").String()
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"connection_ack"}`))

		_, raw, err = conn.ReadMessage()
		if err != nil {
			return
		}
		id := gjson.GetBytes(raw, "id").String()
		received <- gjson.GetBytes(raw, "type").String()
		for _, push := range pushes {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(strings.ReplaceAll(push, "$ID", id)))
		}
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				return
			}
			received <- gjson.GetBytes(raw, "type").String()
		}
	}))
	t.Cleanup(server.Close)
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestRealtimeClient_Delivers_Pushed_Messages(t *testing.T) {
	req := require.New(t)
	received := make(chan string, 16)
	endpoint := fakeRealtimeServer(t, []string{
		`{"type":"ping"}`,
		`{"id":"$ID","type":"next","payload":{"data":{"onCreateMessage":{"id":"m1","senderId":"kofi","receiverId":"amara","messageBody":"yo","timestamp":"2024-11-02T18:30:00Z","sender":{"username":"kofi"}}}}}`,
	}, received)

	client := NewRealtimeClient(RealtimeConfig{Endpoint: endpoint}, staticToken("token-123"), logs.GetLoggerFromLevel(slog.LevelDebug))
	sub, err := client.Subscribe(context.Background(), onCreateMessageDocument, map[string]any{
		"filter": participantFilter("amara"),
	})
	req.NoError(err)
	req.Equal("connection_init:Bearer token-123", <-received)
	req.Equal("subscribe", <-received)

	select {
	case message := <-sub.Messages():
		req.Equal(domain.Message{
			ID: "m1", SenderID: "kofi", ReceiverID: "amara", Body: "yo", Timestamp: t0,
			Sender: domain.SenderInfo{Username: "kofi"},
		}, message)
	case <-time.After(2 * time.Second):
		req.Fail("no message pushed")
	}
	req.Equal("pong", <-received)

	// When unsubscribing twice, a single complete frame is sent
	sub.Unsubscribe()
	sub.Unsubscribe()
	req.Equal("complete", <-received)

	_, open := <-sub.Messages()
	req.False(open)
	req.NoError(sub.Err())
}

func TestRealtimeClient_Server_Error_Ends_Subscription(t *testing.T) {
	req := require.New(t)
	received := make(chan string, 16)
	endpoint := fakeRealtimeServer(t, []string{
		`{"id":"$ID","type":"error","payload":[{"message":"Unauthorized"}]}`,
	}, received)

	client := NewRealtimeClient(RealtimeConfig{Endpoint: endpoint}, nil, logs.GetLoggerFromLevel(slog.LevelDebug))
	sub, err := client.Subscribe(context.Background(), onCreateMessageDocument, nil)
	req.NoError(err)

	_, open := <-sub.Messages()
	req.False(open)
	req.ErrorContains(sub.Err(), "Unauthorized")
}

func TestRealtimeClient_Dial_Failure(t *testing.T) {
	req := require.New(t)
	client := NewRealtimeClient(RealtimeConfig{Endpoint: "ws://127.0.0.1:1"}, nil, logs.GetLoggerFromLevel(slog.LevelDebug))

	_, err := client.Subscribe(context.Background(), onCreateMessageDocument, nil)

	req.Error(err)
}
