package command

import (
	"errors"
	"sync/atomic"
)

var (
	// ErrRegistryFrozen is returned when registering after routing has started.
	ErrRegistryFrozen = errors.New("registry is frozen")
	// ErrNilHandler is returned when registering a nil handler.
	ErrNilHandler = errors.New("handler is nil")
)

// Registry is the ordered list of handlers considered by a Router.
// It is filled at startup and frozen when a Router is built from it.
type Registry struct {
	handlers []Handler
	frozen   atomic.Bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends h. Order matters: the first matching handler wins.
func (r *Registry) Register(h Handler) error {
	if h == nil {
		return ErrNilHandler
	}
	if r.frozen.Load() {
		return ErrRegistryFrozen
	}
	r.handlers = append(r.handlers, h)
	return nil
}

// Freeze forbids further registration.
func (r *Registry) Freeze() { r.frozen.Store(true) }

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool { return r.frozen.Load() }

// Handlers returns the handlers in registration order.
func (r *Registry) Handlers() []Handler {
	return append([]Handler(nil), r.handlers...)
}

// Len returns the number of registered handlers.
func (r *Registry) Len() int { return len(r.handlers) }

// Descriptions returns every handler description in registration order.
func (r *Registry) Descriptions() []string {
	out := make([]string, 0, len(r.handlers))
	for _, h := range r.handlers {
		out = append(out, h.Description())
	}
	return out
}
