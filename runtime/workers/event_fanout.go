package workers

import (
	"artist-hub/contract"
	"artist-hub/domain/event"
	"context"
	"log/slog"
	"time"
)

const defaultSinkTimeout = 2 * time.Second

// EventFanout drains store events and hands each one to every sink, in order.
//
// Delivery is best effort: a sink that fails or exceeds its timeout is
// logged and skipped, it never holds back the other sinks or the stores.
type EventFanout struct {
	log         *slog.Logger
	events      <-chan event.StoreEvent
	sinks       []contract.EventSink
	sinkTimeout time.Duration
}

func NewEventFanout(log *slog.Logger, events <-chan event.StoreEvent, sinkTimeout time.Duration, sinks ...contract.EventSink) *EventFanout {
	if sinkTimeout <= 0 {
		sinkTimeout = defaultSinkTimeout
	}
	return &EventFanout{log: log, events: events, sinks: sinks, sinkTimeout: sinkTimeout}
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case evt, ok := <-w.events:
			if !ok {
				w.log.Debug("Store event channel closed")
				return nil
			}
			w.Fanout(ctx, evt)
		case <-ctx.Done():
			w.log.Debug("Context done, stopping event fanout")
			return nil
		}
	}
}

// Fanout One sink after the other for each event
func (w *EventFanout) Fanout(ctx context.Context, evt event.StoreEvent) {
	for _, sink := range w.sinks {
		sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
		if err := sink.Consume(sinkCtx, evt); err != nil {
			w.log.Warn("Sink failed to consume event", "sink", sinkName(sink), "kind", evt.Kind(), "error", err)
		}
		cancel()
	}
}

func sinkName(sink contract.EventSink) string {
	if named, ok := sink.(interface{ Name() string }); ok {
		return named.Name()
	}
	return "anonymous"
}
