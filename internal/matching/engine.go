package matching

import (
	"context"
	"sync"

	"github.com/matheus3301/jobboard/internal/bus"
	"github.com/matheus3301/jobboard/internal/store"
	"go.uber.org/zap"
)

// Requester runs a match for one application and stores the result.
type Requester interface {
	RequestMatch(ctx context.Context, applicationID string) (*store.Application, error)
}

// Engine requests a match for every newly created application.
type Engine struct {
	bus    *bus.Bus
	apps   Requester
	logger *zap.Logger
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewEngine creates a matching engine.
func NewEngine(b *bus.Bus, apps Requester, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{bus: b, apps: apps, logger: logger}
}

// Start subscribes to application creations on the bus.
func (e *Engine) Start(ctx context.Context) {
	ctx, e.cancel = context.WithCancel(ctx)
	ch, unsub := e.bus.Subscribe(bus.Kind(store.CollApplications, bus.OpCreated), 256)

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer unsub()
		for {
			select {
			case evt := <-ch:
				e.handleEvent(ctx, evt)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the engine and waits for an in-flight match to finish.
func (e *Engine) Stop() {
	if e.cancel != nil {
		e.cancel()
	}
	e.wg.Wait()
}

func (e *Engine) handleEvent(ctx context.Context, evt bus.Event) {
	c, ok := evt.Payload.(bus.Change)
	if !ok || c.Collection != store.CollApplications || c.Op != bus.OpCreated {
		return
	}
	if _, err := e.apps.RequestMatch(ctx, c.DocID); err != nil {
		if ctx.Err() != nil {
			return
		}
		e.logger.Error("resume match failed", zap.String("application_id", c.DocID), zap.Error(err))
		return
	}
	e.logger.Info("resume match stored", zap.String("application_id", c.DocID))
}
