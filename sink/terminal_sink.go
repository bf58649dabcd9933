package sink

import (
	"artist-hub/domain/event"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/gookit/color"
)

const timeLayout = "15:04:05"

// TerminalSink prints store events for a human watching the session.
type TerminalSink struct {
	mu      sync.Mutex
	out     io.Writer
	colours bool
}

func NewTerminalSink(out io.Writer, colours bool) *TerminalSink {
	return &TerminalSink{out: out, colours: colours}
}

func (t *TerminalSink) Name() string { return "terminal" }

func (t *TerminalSink) Consume(ctx context.Context, e event.StoreEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	line := t.render(e)
	if line == "" {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := fmt.Fprintln(t.out, line)
	return err
}

func (t *TerminalSink) render(e event.StoreEvent) string {
	switch evt := e.(type) {
	case event.ConversationUpdated:
		header := fmt.Sprintf("[%s] %s -> %s", evt.Message.Timestamp.Format(timeLayout),
			evt.Message.SenderID, evt.Message.ReceiverID)
		return t.paint(header, color.FgCyan) + " " + evt.Message.Body
	case event.ConversationsReplaced:
		return t.paint(fmt.Sprintf("%d conversations, %d messages loaded", evt.Conversations, evt.Messages), color.FgGray)
	case event.ConversationExtended:
		return t.paint(fmt.Sprintf("%d older messages with %s", evt.Added, evt.Counterparty), color.FgGray)
	case event.ProjectsReplaced:
		return t.paint(fmt.Sprintf("%d projects loaded", evt.Projects), color.FgGray)
	case event.ProjectCreated:
		return t.paint("+ project", color.FgGreen) + fmt.Sprintf(" %s %q (%s)", evt.Project.ID, evt.Project.Name, evt.Project.Status)
	case event.ProjectUpdated:
		return t.paint("~ project", color.FgYellow) + fmt.Sprintf(" %s is %s", evt.ID, evt.Status)
	case event.ProjectDeleted:
		return t.paint("- project", color.FgRed) + " " + evt.ID
	case event.ProjectThreadReplaced:
		return t.paint("~ thread", color.FgYellow) + fmt.Sprintf(" %s has %d messages", evt.ID, evt.Messages)
	case event.InconsistencyDetected:
		return t.paint(fmt.Sprintf("! %s %s out of sync, reload projects", evt.Operation, evt.ID), color.FgRed, color.OpBold)
	default:
		return ""
	}
}

func (t *TerminalSink) paint(text string, colours ...color.Color) string {
	if !t.colours {
		return text
	}
	return color.New(colours...).Render(text)
}
