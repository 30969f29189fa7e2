package handlers

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/flourish/internal/logging"
	"github.com/dmitrijs2005/flourish/internal/protocol"
)

// Dispatcher routes requests to the registered handler.
type Dispatcher struct {
	registry *Registry
	log      logging.Logger
}

func NewDispatcher(r *Registry, l logging.Logger) *Dispatcher {
	return &Dispatcher{registry: r, log: l.With("module", "dispatcher")}
}

// Dispatch always returns a response of the request's type. Unknown types
// and handler panics become failure responses.
func (d *Dispatcher) Dispatch(ctx context.Context, req *protocol.Message) (resp *protocol.Message) {
	h, ok := d.registry.Lookup(req.Type)
	if !ok {
		d.log.Warn(ctx, "unknown message type", "type", string(req.Type))
		return protocol.Fail(req.Type, protocol.CodeUnknownMessageType,
			fmt.Sprintf("unknown message type %q", req.Type))
	}

	defer func() {
		if r := recover(); r != nil {
			d.log.Error(ctx, "handler panic", "type", string(req.Type), "panic", fmt.Sprint(r))
			resp = protocol.Fail(req.Type, protocol.CodeInternal, textInternal)
		}
	}()

	resp = h.Handle(ctx, req)
	if resp == nil {
		d.log.Error(ctx, "handler returned no response", "type", string(req.Type))
		return protocol.Fail(req.Type, protocol.CodeInternal, textInternal)
	}
	resp.Type = req.Type
	return resp
}
