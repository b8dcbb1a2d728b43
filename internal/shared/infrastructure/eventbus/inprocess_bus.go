package eventbus

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// HandlerFunc processes a published event payload.
type HandlerFunc func(ctx context.Context, routingKey string, payload []byte) error

// InProcessBus is an in-memory event bus for local mode (no RabbitMQ).
// Events are delivered synchronously to handlers whose registered prefix
// matches the routing key. Handler errors are logged, not propagated, so a
// misbehaving subscriber cannot fail the publish path.
type InProcessBus struct {
	logger   *slog.Logger
	mu       sync.RWMutex
	handlers map[string][]HandlerFunc
}

// NewInProcessBus creates a new in-process event bus.
func NewInProcessBus(logger *slog.Logger) *InProcessBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcessBus{
		logger:   logger,
		handlers: make(map[string][]HandlerFunc),
	}
}

// Subscribe registers a handler for routing keys with the given prefix.
// An empty prefix receives every event.
func (b *InProcessBus) Subscribe(prefix string, handler HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[prefix] = append(b.handlers[prefix], handler)
}

// Publish dispatches the event synchronously to all matching handlers.
func (b *InProcessBus) Publish(ctx context.Context, routingKey string, payload []byte) error {
	b.mu.RLock()
	var matched []HandlerFunc
	for prefix, handlers := range b.handlers {
		if strings.HasPrefix(routingKey, prefix) {
			matched = append(matched, handlers...)
		}
	}
	b.mu.RUnlock()

	for _, handler := range matched {
		if err := handler(ctx, routingKey, payload); err != nil {
			b.logger.Error("event handler failed",
				"routing_key", routingKey,
				"error", err,
			)
		}
	}

	b.logger.Debug("event dispatched", "routing_key", routingKey, "handlers", len(matched))
	return nil
}

// Close is a no-op for the in-process bus.
func (b *InProcessBus) Close() error {
	return nil
}
