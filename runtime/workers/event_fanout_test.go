package workers

import (
	"artist-hub/domain/event"
	"artist-hub/mocks"
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestEventFanout_Every_Sink_Receives_Every_Event(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	first := mocks.NewMockEventSink(ctrl)
	second := mocks.NewMockEventSink(ctrl)
	events := make(chan event.StoreEvent, 2)
	worker := NewEventFanout(logs.GetLoggerFromLevel(slog.LevelDebug), events, time.Second, first, second)

	// Given a failing first sink
	first.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(fmt.Errorf("terminal gone")).Times(2)
	second.EXPECT().Consume(gomock.Any(), event.ProjectDeleted{ID: "p1"}).Return(nil).Times(1)
	second.EXPECT().Consume(gomock.Any(), event.ProjectDeleted{ID: "p2"}).Return(nil).Times(1)

	events <- event.ProjectDeleted{ID: "p1"}
	events <- event.ProjectDeleted{ID: "p2"}
	close(events)

	// When the worker drains the channel, the second sink still gets both events
	req.NoError(worker.Run(context.Background()))
}

func TestEventFanout_SinkTimeout(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	slow := mocks.NewMockEventSink(ctrl)
	worker := NewEventFanout(logs.GetLoggerFromLevel(slog.LevelDebug), nil, 20*time.Millisecond, slow)

	slow.EXPECT().Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, evt event.StoreEvent) error {
			<-ctx.Done()
			return ctx.Err()
		}).
		Times(1)

	start := time.Now()
	worker.Fanout(context.Background(), event.ProjectDeleted{ID: "p1"})

	req.Less(time.Since(start), time.Second)
}

func TestEventFanout_Stops_With_Context(t *testing.T) {
	req := require.New(t)
	worker := NewEventFanout(logs.GetLoggerFromLevel(slog.LevelDebug), make(chan event.StoreEvent), time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req.NoError(worker.Run(ctx))
}
