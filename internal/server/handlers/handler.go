// Package handlers turns protocol requests into protocol responses. There is
// one handler per message type; each owns exactly the repositories and
// collaborators its operation needs.
package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/flourish/internal/common"
	"github.com/dmitrijs2005/flourish/internal/logging"
	"github.com/dmitrijs2005/flourish/internal/protocol"
)

// Handler produces the response for one request. Failures are encoded in
// the returned message; a Handler never returns nil.
type Handler interface {
	Handle(ctx context.Context, req *protocol.Message) *protocol.Message
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx context.Context, req *protocol.Message) *protocol.Message

func (f HandlerFunc) Handle(ctx context.Context, req *protocol.Message) *protocol.Message {
	return f(ctx, req)
}

const (
	textInternal     = "internal error"
	textInvalidToken = "invalid or expired token"
	textUnauthorized = "not authorized"
)

// invalid builds a validation error that is reported to the client verbatim.
func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", common.ErrorValidation, fmt.Sprintf(format, args...))
}

// base carries what every handler shares.
type base struct {
	t   protocol.MessageType
	log logging.Logger
}

func newBase(t protocol.MessageType, log logging.Logger) base {
	return base{t: t, log: log.With("handler", string(t))}
}

// fail maps err onto a failure response. Storage and unexpected errors are
// logged and reported as a generic internal failure.
func (b base) fail(ctx context.Context, err error) *protocol.Message {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return protocol.Fail(b.t, protocol.CodeBadRequest, err.Error())
	case errors.Is(err, common.ErrorUnauthorized):
		return protocol.Fail(b.t, protocol.CodeUnauthorized, textUnauthorized)
	case errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrTokenUsed):
		return protocol.Fail(b.t, protocol.CodeInvalidToken, textInvalidToken)
	case errors.Is(err, common.ErrorAlreadyExists):
		return protocol.Fail(b.t, protocol.CodeConflict, "already exists")
	case errors.Is(err, common.ErrorNotFound), errors.Is(err, common.ErrorReferenceMissing):
		return protocol.Fail(b.t, protocol.CodeNotFound, "not found")
	default:
		b.log.Error(ctx, "request failed", "error", err)
		return protocol.Fail(b.t, protocol.CodeInternal, textInternal)
	}
}

func (b base) ok() *protocol.Message {
	return protocol.OK(b.t)
}

// user returns the signed-in user of the session carried by ctx.
func (b base) user(ctx context.Context) (int64, error) {
	s := SessionFrom(ctx)
	if s == nil || !s.Authenticated() {
		return 0, common.ErrorUnauthorized
	}
	return s.UserID(), nil
}
