package metrics

import (
	"context"

	"github.com/kilianp07/objreg/core/events"
	coremetrics "github.com/kilianp07/objreg/core/metrics"
	"github.com/kilianp07/objreg/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for
// registry lifecycle events. It stops when the context is canceled or the bus
// is closed. The returned channel is closed once the collector has stopped.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				record(sink, ev)
			}
		}
	}()
	return done
}

func record(sink coremetrics.MetricsSink, ev eventbus.Event) {
	switch e := ev.(type) {
	case events.ConstructedEvent:
		if r, ok := sink.(coremetrics.ConstructionRecorder); ok {
			_ = r.RecordConstruction(coremetrics.ConstructionSample{
				TypeID:   e.TypeID,
				Kind:     e.Kind,
				Duration: e.Duration,
				Failed:   e.Err != nil,
			})
		}
	case events.AliasedEvent:
		if r, ok := sink.(coremetrics.AliasRecorder); ok {
			_ = r.RecordAlias(e.TypeID, e.Replaced)
		}
	case events.FreedEvent:
		if r, ok := sink.(coremetrics.FreeRecorder); ok {
			_ = r.RecordFree(e.Removed)
		}
	}
}
