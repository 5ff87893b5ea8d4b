package runtime

import (
	"fmt"
	"sync"
)

// Handler executes one task type. Run returning nil marks the row succeeded;
// a non-nil error marks it failed and leaves it to the retry policy.
type Handler interface {
	Type() string
	Run(jc *Context) error
}

// Registry maps task types to handlers. Registration happens at startup;
// lookups happen on every claim.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: map[string]Handler{}}
}

func (r *Registry) Register(h Handler) error {
	if h == nil || h.Type() == "" {
		return fmt.Errorf("handler with empty type cannot be registered")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[h.Type()]; exists {
		return fmt.Errorf("handler already registered for type %q", h.Type())
	}
	r.handlers[h.Type()] = h
	return nil
}

func (r *Registry) Get(taskType string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[taskType]
	return h, ok
}
