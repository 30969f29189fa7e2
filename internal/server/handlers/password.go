package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/flourish/internal/common"
	"github.com/dmitrijs2005/flourish/internal/logging"
	"github.com/dmitrijs2005/flourish/internal/protocol"
	"github.com/dmitrijs2005/flourish/internal/server/auth"
	"github.com/dmitrijs2005/flourish/internal/server/mail"
	"github.com/dmitrijs2005/flourish/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/flourish/internal/server/repositories/resettokens"
	"github.com/dmitrijs2005/flourish/internal/server/repositories/users"
)

// ForgotPasswordHandler issues a reset token for the account with the given
// email and asks the mail sender to deliver it. The response is the same
// whether or not the email is known.
type ForgotPasswordHandler struct {
	base
	users    users.Repository
	tokens   resettokens.Repository
	mail     mail.Sender
	validity time.Duration
	now      func() time.Time
}

func NewForgotPasswordHandler(u users.Repository, t resettokens.Repository, m mail.Sender,
	validity time.Duration, now func() time.Time, l logging.Logger) *ForgotPasswordHandler {
	if validity <= 0 {
		validity = common.DefaultResetTokenValidity
	}
	return &ForgotPasswordHandler{
		base:     newBase(protocol.ForgotPassword, l),
		users:    u,
		tokens:   t,
		mail:     m,
		validity: validity,
		now:      now,
	}
}

func (h *ForgotPasswordHandler) Handle(ctx context.Context, req *protocol.Message) *protocol.Message {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := validate.Var(email, "required,email"); err != nil {
		return h.fail(ctx, invalid("a valid email is required"))
	}

	u, err := h.users.GetByEmail(ctx, email)
	if errors.Is(err, common.ErrorNotFound) {
		h.log.Debug(ctx, "reset requested for unknown email")
		return h.ok()
	}
	if err != nil {
		return h.fail(ctx, err)
	}

	token, err := common.MakeRandURLToken(common.ResetTokenBytes)
	if err != nil {
		return h.fail(ctx, err)
	}
	expires := h.now().Add(h.validity)
	if err := h.tokens.Create(ctx, u.ID, common.HashToken(token), expires); err != nil {
		return h.fail(ctx, err)
	}

	if err := h.mail.Send(ctx, u.Email, token); err != nil {
		h.log.Warn(ctx, "reset token not delivered", "user_id", u.ID, "error", err)
	}
	return h.ok()
}

type passwordReset struct {
	Token       string `validate:"required"`
	NewPassword string `validate:"required,min=3,max=72"`
}

// ResetPasswordHandler consumes a reset token and stores the new password
// in the same transaction. Every token failure yields the same response.
type ResetPasswordHandler struct {
	base
	uow       repomanager.UnitOfWork
	tokens    resettokens.Repository
	passwords auth.PasswordHasher
	now       func() time.Time
}

func NewResetPasswordHandler(uow repomanager.UnitOfWork, tokens resettokens.Repository, p auth.PasswordHasher, now func() time.Time, l logging.Logger) *ResetPasswordHandler {
	return &ResetPasswordHandler{base: newBase(protocol.ResetPassword, l), uow: uow, tokens: tokens, passwords: p, now: now}
}

func (h *ResetPasswordHandler) Handle(ctx context.Context, req *protocol.Message) *protocol.Message {
	in := passwordReset{Token: strings.TrimSpace(req.Token), NewPassword: req.NewPassword}
	if err := validate.Struct(in); err != nil {
		return h.fail(ctx, describe(err))
	}
	if err := checkPassword(in.NewPassword); err != nil {
		return h.fail(ctx, err)
	}

	hash, err := h.passwords.Hash(in.NewPassword)
	if err != nil {
		return h.fail(ctx, err)
	}

	var userID int64
	err = h.uow.Do(ctx, func(ctx context.Context, repos *repomanager.Repositories) error {
		id, err := repos.ResetTokens.Consume(ctx, common.HashToken(in.Token), h.now())
		if err != nil {
			return err
		}
		userID = id
		return repos.Users.UpdatePassword(ctx, id, hash)
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrInvalidToken) {
			err = h.rejection(ctx, common.HashToken(in.Token))
		}
		return h.fail(ctx, err)
	}

	h.log.Info(ctx, "password reset", "user_id", userID)
	return h.ok()
}

// rejection finds out why a token could not be consumed. The reason is only
// logged; every token error maps to the same response.
func (h *ResetPasswordHandler) rejection(ctx context.Context, digest string) error {
	reason := common.ErrInvalidToken
	if t, err := h.tokens.Find(ctx, digest); err == nil && !t.Usable(h.now()) {
		reason = common.ErrTokenExpired
		if t.UsedAt != nil {
			reason = common.ErrTokenUsed
		}
	}
	h.log.Info(ctx, "reset token rejected", "reason", reason.Error())
	return reason
}
