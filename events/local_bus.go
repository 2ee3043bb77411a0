package events

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// LocalBus dispatches events to in-process handlers. Each handler runs on its
// own goroutine so Publish never waits for delivery; Wait blocks until all
// dispatched handlers have returned.
type LocalBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	wg       sync.WaitGroup
	logger   *zap.Logger
}

// NewLocalBus creates an empty bus
func NewLocalBus(logger *zap.Logger) *LocalBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalBus{handlers: make(map[string][]Handler), logger: logger}
}

// Subscribe registers h for routingKey
func (b *LocalBus) Subscribe(routingKey string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[routingKey] = append(b.handlers[routingKey], h)
}

// Publish encodes payload as JSON and hands it to every subscriber of routingKey
func (b *LocalBus) Publish(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers[routingKey]...)
	b.mu.RUnlock()

	// Delivery outlives the publishing request.
	ctx = context.WithoutCancel(ctx)
	for _, h := range handlers {
		b.wg.Add(1)
		go func(h Handler) {
			defer b.wg.Done()
			if err := h(ctx, routingKey, body); err != nil {
				b.logger.Error("event handler failed", zap.String("routingKey", routingKey), zap.Error(err))
			}
		}(h)
	}
	return nil
}

// Wait blocks until every handler started by Publish has returned
func (b *LocalBus) Wait() {
	b.wg.Wait()
}
