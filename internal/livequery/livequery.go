// Package livequery turns bus change events into re-delivered query results:
// every relevant write re-runs the query and pushes the full result set.
package livequery

import (
	"context"

	"github.com/matheus3301/jobboard/internal/bus"
	"github.com/matheus3301/jobboard/internal/metrics"
	"go.uber.org/zap"
)

const subscriptionBuffer = 256

// Query produces one snapshot of a live result set.
type Query[T any] func(ctx context.Context) (T, error)

// Match filters change events; nil accepts every event in the namespace.
type Match func(bus.Change) bool

// KeyMatch accepts changes carrying key among their keys.
func KeyMatch(key string) Match {
	return func(c bus.Change) bool { return c.HasKey(key) }
}

// Watch runs query immediately and again after every accepted change on
// collection. Changes arriving while a snapshot is being computed or
// delivered are coalesced into a single re-run. The returned channel is
// closed when ctx is done.
func Watch[T any](ctx context.Context, b *bus.Bus, collection string, match Match, query Query[T], logger *zap.Logger) <-chan T {
	if logger == nil {
		logger = zap.NewNop()
	}
	events, unsub := b.Subscribe(bus.Namespace(collection), subscriptionBuffer)
	out := make(chan T)

	accept := func(evt bus.Event) bool {
		if match == nil {
			return true
		}
		c, ok := evt.Payload.(bus.Change)
		return ok && match(c)
	}

	gauge := metrics.LiveQueriesActive.WithLabelValues(collection)
	gauge.Inc()

	go func() {
		defer gauge.Dec()
		defer close(out)
		defer unsub()

		dirty := true
		for {
			if dirty {
				dirty = false
				snap, err := query(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					logger.Warn("live query failed", zap.String("collection", collection), zap.Error(err))
				} else {
					select {
					case out <- snap:
					case <-ctx.Done():
						return
					}
				}
			}

			select {
			case evt := <-events:
				dirty = accept(evt)
			drain:
				for {
					select {
					case evt := <-events:
						dirty = accept(evt) || dirty
					default:
						break drain
					}
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
