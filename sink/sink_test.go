package sink

import (
	"artist-hub/domain"
	"artist-hub/domain/event"
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTerminalSink_Renders_Pushed_Message(t *testing.T) {
	req := require.New(t)
	var out bytes.Buffer
	terminal := NewTerminalSink(&out, false)

	// When a pushed message is consumed
	err := terminal.Consume(context.Background(), event.ConversationUpdated{
		Counterparty: "kofi",
		Message: domain.Message{ID: "m1", SenderID: "kofi", ReceiverID: "amara", Body: "new mix uploaded",
			Timestamp: time.Date(2024, 11, 2, 18, 30, 5, 0, time.UTC)},
	})

	// Then a single plain line is printed
	req.NoError(err)
	req.Equal("[18:30:05] kofi -> amara new mix uploaded\n", out.String())
}

func TestTerminalSink_Colours(t *testing.T) {
	req := require.New(t)
	var plain, coloured bytes.Buffer

	evt := event.ProjectUpdated{ID: "p1", Status: domain.StatusCompleted}
	req.NoError(NewTerminalSink(&plain, false).Consume(context.Background(), evt))
	req.NoError(NewTerminalSink(&coloured, true).Consume(context.Background(), evt))

	req.Equal("~ project p1 is completed\n", plain.String())
	req.Contains(coloured.String(), "p1 is completed")
}

func TestTerminalSink_Expired_Context(t *testing.T) {
	req := require.New(t)
	var out bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewTerminalSink(&out, false).Consume(ctx, event.ProjectDeleted{ID: "p1"})

	req.ErrorIs(err, context.Canceled)
	req.Empty(out.String())
}

func TestLogSink_Writes_Structured_Attributes(t *testing.T) {
	req := require.New(t)
	var out bytes.Buffer
	log := slog.New(slog.NewTextHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug}))

	req.NoError(NewLogSink(log, slog.LevelInfo).Consume(context.Background(),
		event.ProjectUpdated{ID: "p1", Status: domain.StatusInProgress}))
	req.NoError(NewLogSink(log, slog.LevelInfo).Consume(context.Background(),
		event.InconsistencyDetected{Operation: "delete", ID: "p9"}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	req.Len(lines, 2)
	req.Contains(lines[0], "level=INFO")
	req.Contains(lines[0], "kind=project_updated")
	req.Contains(lines[0], "status=in-progress")
	req.Contains(lines[1], "level=WARN")
	req.Contains(lines[1], "project_id=p9")
}
