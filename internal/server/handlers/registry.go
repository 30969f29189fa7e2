package handlers

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/flourish/internal/protocol"
)

var (
	ErrMissingHandler = errors.New("message type has no handler")
	ErrUnknownType    = errors.New("handler registered for unknown message type")
)

// Registry maps every message type to its handler. It is built once and
// never modified, so concurrent lookups need no synchronization.
type Registry struct {
	handlers map[protocol.MessageType]Handler
}

// NewRegistry copies m into a registry after checking that it covers every
// protocol.MessageType exactly and holds no nil handler.
func NewRegistry(m map[protocol.MessageType]Handler) (*Registry, error) {
	var errs []error

	for _, t := range protocol.AllTypes() {
		if h, ok := m[t]; !ok || h == nil {
			errs = append(errs, fmt.Errorf("%w: %s", ErrMissingHandler, t))
		}
	}

	extra := make([]string, 0)
	for t := range m {
		if !t.Valid() {
			extra = append(extra, string(t))
		}
	}
	sort.Strings(extra)
	for _, t := range extra {
		errs = append(errs, fmt.Errorf("%w: %s", ErrUnknownType, t))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	handlers := make(map[protocol.MessageType]Handler, len(m))
	for t, h := range m {
		handlers[t] = h
	}
	return &Registry{handlers: handlers}, nil
}

// Lookup returns the handler for t.
func (r *Registry) Lookup(t protocol.MessageType) (Handler, bool) {
	h, ok := r.handlers[t]
	return h, ok
}

// Len returns the number of registered handlers.
func (r *Registry) Len() int {
	return len(r.handlers)
}
