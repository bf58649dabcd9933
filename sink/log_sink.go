package sink

import (
	"artist-hub/domain/event"
	"context"
	"log/slog"
)

// LogSink records every store event as a structured log line.
type LogSink struct {
	log   *slog.Logger
	level slog.Level
}

func NewLogSink(log *slog.Logger, level slog.Level) LogSink {
	return LogSink{log: log, level: level}
}

func (l LogSink) Name() string { return "log" }

func (l LogSink) Consume(ctx context.Context, e event.StoreEvent) error {
	attrs := append([]any{"kind", string(e.Kind())}, attributes(e)...)
	if e.Kind() == event.InconsistencyKind {
		l.log.WarnContext(ctx, "Store event", attrs...)
		return nil
	}
	l.log.Log(ctx, l.level, "Store event", attrs...)
	return nil
}

func attributes(e event.StoreEvent) []any {
	switch evt := e.(type) {
	case event.ConversationsReplaced:
		return []any{"owner", evt.Owner, "conversations", evt.Conversations, "messages", evt.Messages}
	case event.ConversationUpdated:
		return []any{"counterparty", evt.Counterparty, "message_id", evt.Message.ID}
	case event.ConversationExtended:
		return []any{"counterparty", evt.Counterparty, "added", evt.Added}
	case event.ProjectsReplaced:
		return []any{"owner", evt.Owner, "projects", evt.Projects}
	case event.ProjectCreated:
		return []any{"project_id", evt.Project.ID, "service", evt.Project.ServiceType}
	case event.ProjectUpdated:
		return []any{"project_id", evt.ID, "status", evt.Status}
	case event.ProjectDeleted:
		return []any{"project_id", evt.ID}
	case event.ProjectThreadReplaced:
		return []any{"project_id", evt.ID, "messages", evt.Messages}
	case event.InconsistencyDetected:
		return []any{"operation", evt.Operation, "project_id", evt.ID}
	default:
		return nil
	}
}
