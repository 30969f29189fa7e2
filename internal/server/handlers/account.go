package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/flourish/internal/common"
	"github.com/dmitrijs2005/flourish/internal/logging"
	"github.com/dmitrijs2005/flourish/internal/protocol"
	"github.com/dmitrijs2005/flourish/internal/server/auth"
	"github.com/dmitrijs2005/flourish/internal/server/models"
	"github.com/dmitrijs2005/flourish/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/flourish/internal/server/repositories/users"
)

type credentials struct {
	Username string `validate:"required,min=3,max=32,alphanum"`
	Email    string `validate:"required,email,max=254"`
	Password string `validate:"required,min=3,max=72"`
}

// LoginHandler checks a username and password and signs the session in.
type LoginHandler struct {
	base
	users     users.Repository
	passwords auth.PasswordHasher
}

func NewLoginHandler(u users.Repository, p auth.PasswordHasher, l logging.Logger) *LoginHandler {
	return &LoginHandler{base: newBase(protocol.Login, l), users: u, passwords: p}
}

func (h *LoginHandler) Handle(ctx context.Context, req *protocol.Message) *protocol.Message {
	if req.Username == "" || req.Password == "" {
		return h.fail(ctx, invalid("username and password are required"))
	}

	u, err := h.users.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if errors.Is(err, common.ErrorNotFound) {
		h.passwords.CompareDummy(req.Password)
		return h.fail(ctx, common.ErrorUnauthorized)
	}
	if err != nil {
		return h.fail(ctx, err)
	}
	if !h.passwords.Compare(u.PasswordHash, req.Password) {
		return h.fail(ctx, common.ErrorUnauthorized)
	}

	if s := SessionFrom(ctx); s != nil {
		s.SignIn(u.ID)
	}
	h.log.Info(ctx, "user logged in", "user_id", u.ID)

	resp := h.ok()
	resp.User = toUser(u)
	return resp
}

// RegisterHandler creates an account when both username and email are free.
type RegisterHandler struct {
	base
	users     users.Repository
	passwords auth.PasswordHasher
}

func NewRegisterHandler(u users.Repository, p auth.PasswordHasher, l logging.Logger) *RegisterHandler {
	return &RegisterHandler{base: newBase(protocol.Register, l), users: u, passwords: p}
}

func (h *RegisterHandler) Handle(ctx context.Context, req *protocol.Message) *protocol.Message {
	in := credentials{
		Username: strings.TrimSpace(req.Username),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: req.Password,
	}
	if err := validate.Struct(in); err != nil {
		return h.fail(ctx, describe(err))
	}
	if err := checkPassword(in.Password); err != nil {
		return h.fail(ctx, err)
	}

	taken, err := h.users.ExistsByUsername(ctx, in.Username)
	if err != nil {
		return h.fail(ctx, err)
	}
	if taken {
		return protocol.Fail(h.t, protocol.CodeConflict, "username already taken")
	}
	taken, err = h.users.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return h.fail(ctx, err)
	}
	if taken {
		return protocol.Fail(h.t, protocol.CodeConflict, "email already registered")
	}

	hash, err := h.passwords.Hash(in.Password)
	if err != nil {
		return h.fail(ctx, err)
	}

	// Unique constraints still guard against a concurrent registration
	// that slipped between the checks and the insert.
	u, err := h.users.Create(ctx, &models.User{
		Username:             in.Username,
		Email:                in.Email,
		PasswordHash:         hash,
		NotificationsEnabled: true,
		FunFactsEnabled:      true,
	})
	if err != nil {
		return h.fail(ctx, err)
	}

	if s := SessionFrom(ctx); s != nil {
		s.SignIn(u.ID)
	}
	h.log.Info(ctx, "user registered", "user_id", u.ID)

	resp := h.ok()
	resp.User = toUser(u)
	return resp
}

// DeleteAccountHandler removes the signed-in user and every library entry
// they own in one transaction. The current password must be supplied.
type DeleteAccountHandler struct {
	base
	users     users.Repository
	uow       repomanager.UnitOfWork
	passwords auth.PasswordHasher
}

func NewDeleteAccountHandler(u users.Repository, uow repomanager.UnitOfWork, p auth.PasswordHasher, l logging.Logger) *DeleteAccountHandler {
	return &DeleteAccountHandler{base: newBase(protocol.DeleteAccount, l), users: u, uow: uow, passwords: p}
}

func (h *DeleteAccountHandler) Handle(ctx context.Context, req *protocol.Message) *protocol.Message {
	userID, err := h.user(ctx)
	if err != nil {
		return h.fail(ctx, err)
	}

	u, err := h.users.GetByID(ctx, userID)
	if err != nil {
		return h.fail(ctx, err)
	}
	if req.Password == "" || !h.passwords.Compare(u.PasswordHash, req.Password) {
		return h.fail(ctx, common.ErrorUnauthorized)
	}

	var removed int64
	err = h.uow.Do(ctx, func(ctx context.Context, repos *repomanager.Repositories) error {
		n, err := repos.Library.DeleteAllForUser(ctx, userID)
		if err != nil {
			return err
		}
		removed = n
		return repos.Users.Delete(ctx, userID)
	})
	if err != nil {
		return h.fail(ctx, err)
	}

	SessionFrom(ctx).SignOut()
	h.log.Info(ctx, "account deleted", "user_id", userID, "entries", removed)

	resp := h.ok()
	resp.Count = removed
	return resp
}

// preferenceHandler toggles one boolean user preference.
type preferenceHandler struct {
	base
	users users.Repository
	set   func(ctx context.Context, id int64, enabled bool) error
}

func (h *preferenceHandler) Handle(ctx context.Context, req *protocol.Message) *protocol.Message {
	userID, err := h.user(ctx)
	if err != nil {
		return h.fail(ctx, err)
	}
	if err := h.set(ctx, userID, req.Enabled); err != nil {
		return h.fail(ctx, err)
	}

	u, err := h.users.GetByID(ctx, userID)
	if err != nil {
		return h.fail(ctx, err)
	}
	resp := h.ok()
	resp.User = toUser(u)
	resp.Enabled = req.Enabled
	return resp
}

// ChangeFunFactsHandler switches fun facts on or off for the signed-in user.
type ChangeFunFactsHandler struct{ preferenceHandler }

func NewChangeFunFactsHandler(u users.Repository, l logging.Logger) *ChangeFunFactsHandler {
	return &ChangeFunFactsHandler{preferenceHandler{
		base: newBase(protocol.ChangeFunFacts, l), users: u, set: u.SetFunFacts,
	}}
}

// ChangeNotificationsHandler switches watering notifications on or off.
type ChangeNotificationsHandler struct{ preferenceHandler }

func NewChangeNotificationsHandler(u users.Repository, l logging.Logger) *ChangeNotificationsHandler {
	return &ChangeNotificationsHandler{preferenceHandler{
		base: newBase(protocol.ChangeNotifications, l), users: u, set: u.SetNotifications,
	}}
}
