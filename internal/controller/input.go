package controller

import (
	"context"
	"sync"

	"github.com/lox/roshambo/internal/game"
)

// InputKind identifies a user input
type InputKind int

const (
	InputChoice InputKind = iota + 1
	InputReset
)

func (k InputKind) String() string {
	switch k {
	case InputChoice:
		return "choice"
	case InputReset:
		return "reset"
	}
	return "unknown"
}

// Input is a user action published by a surface
type Input struct {
	Kind   InputKind
	Choice game.Choice // set for InputChoice
}

// Handler handles a published input
type Handler func(ctx context.Context, in Input)

// Bus delivers inputs from a surface to its subscribers. Handlers run
// synchronously in the publishing goroutine.
type Bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[InputKind]map[int]Handler
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{handlers: make(map[InputKind]map[int]Handler)}
}

// Subscribe registers fn for inputs of kind. Close the returned
// subscription to remove it.
func (b *Bus) Subscribe(kind InputKind, fn Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	if b.handlers[kind] == nil {
		b.handlers[kind] = make(map[int]Handler)
	}
	b.handlers[kind][id] = fn

	return &Subscription{cancel: func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers[kind], id)
	}}
}

// Publish delivers in to every handler subscribed to its kind and reports
// how many handlers ran.
func (b *Bus) Publish(ctx context.Context, in Input) int {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers[in.Kind]))
	for _, h := range b.handlers[in.Kind] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ctx, in)
	}
	return len(handlers)
}

// Subscription is a registered handler
type Subscription struct {
	once   sync.Once
	cancel func()
}

// Close removes the handler. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(s.cancel)
}
