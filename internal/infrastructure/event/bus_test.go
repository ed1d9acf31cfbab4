package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/contaro/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type capturingHandler struct {
	mu     sync.Mutex
	types  []string
	events []shared.DomainEvent
	err    error
	panics bool
}

func (h *capturingHandler) EventTypes() []string {
	return h.types
}

func (h *capturingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	if h.panics {
		panic("handler exploded")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return h.err
}

func (h *capturingHandler) received() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.events...)
}

func newTestEvent(eventType string) shared.DomainEvent {
	e := shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New(), uuid.New())
	return &e
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	t.Run("delivers to handlers subscribed to the event type", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &capturingHandler{types: []string{"stock.moved"}}
		bus.Subscribe(handler)

		err := bus.Publish(context.Background(), newTestEvent("stock.moved"))

		require.NoError(t, err)
		assert.Len(t, handler.received(), 1)
	})

	t.Run("does not deliver unrelated event types", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &capturingHandler{types: []string{"stock.moved"}}
		bus.Subscribe(handler)

		err := bus.Publish(context.Background(), newTestEvent("nir.document.created"))

		require.NoError(t, err)
		assert.Empty(t, handler.received())
	})

	t.Run("wildcard handler receives everything", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &capturingHandler{}
		bus.Subscribe(handler)

		err := bus.Publish(context.Background(),
			newTestEvent("stock.moved"),
			newTestEvent("transfer.issued"),
		)

		require.NoError(t, err)
		assert.Len(t, handler.received(), 2)
	})

	t.Run("handler error does not stop other handlers", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		failing := &capturingHandler{types: []string{"stock.moved"}, err: errors.New("boom")}
		healthy := &capturingHandler{types: []string{"stock.moved"}}
		bus.Subscribe(failing)
		bus.Subscribe(healthy)

		err := bus.Publish(context.Background(), newTestEvent("stock.moved"))

		require.NoError(t, err)
		assert.Len(t, healthy.received(), 1)
	})

	t.Run("handler panic is recovered", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		panicking := &capturingHandler{types: []string{"stock.moved"}, panics: true}
		healthy := &capturingHandler{types: []string{"stock.moved"}}
		bus.Subscribe(panicking)
		bus.Subscribe(healthy)

		assert.NotPanics(t, func() {
			_ = bus.Publish(context.Background(), newTestEvent("stock.moved"))
		})
		assert.Len(t, healthy.received(), 1)
	})
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &capturingHandler{types: []string{"stock.moved"}}
	bus.Subscribe(handler)
	bus.Unsubscribe(handler)

	err := bus.Publish(context.Background(), newTestEvent("stock.moved"))

	require.NoError(t, err)
	assert.Empty(t, handler.received())
}

func TestHandlerRegistry(t *testing.T) {
	t.Run("subscribe with explicit types overrides handler types", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &capturingHandler{types: []string{"stock.moved"}}
		bus.Subscribe(handler, "transfer.issued")

		_ = bus.Publish(context.Background(), newTestEvent("stock.moved"))
		assert.Empty(t, handler.received())

		_ = bus.Publish(context.Background(), newTestEvent("transfer.issued"))
		assert.Len(t, handler.received(), 1)
	})

	t.Run("GetAllHandlers deduplicates", func(t *testing.T) {
		registry := NewHandlerRegistry()
		handler := &capturingHandler{}
		registry.Register(handler, "a", "b", "c")

		assert.Len(t, registry.GetAllHandlers(), 1)
	})
}
