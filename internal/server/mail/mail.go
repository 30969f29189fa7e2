// Package mail defines how password reset tokens reach users. Delivery over
// a real mail transport lives outside this server; LogSender records the
// request instead.
package mail

import (
	"context"

	"github.com/dmitrijs2005/flourish/internal/logging"
)

// Sender delivers a reset token to an email address.
type Sender interface {
	Send(ctx context.Context, email, token string) error
}

// LogSender logs delivery requests without the token itself.
type LogSender struct {
	log logging.Logger
}

func NewLogSender(l logging.Logger) *LogSender {
	return &LogSender{log: l.With("module", "mail")}
}

func (s *LogSender) Send(ctx context.Context, email, token string) error {
	s.log.Info(ctx, "password reset requested", "email", email, "token_len", len(token))
	return nil
}
