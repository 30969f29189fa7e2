package handlers

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/flourish/internal/logging"
	"github.com/dmitrijs2005/flourish/internal/protocol"
	"github.com/dmitrijs2005/flourish/internal/server/auth"
	"github.com/dmitrijs2005/flourish/internal/server/mail"
	"github.com/dmitrijs2005/flourish/internal/server/pictures"
	"github.com/dmitrijs2005/flourish/internal/server/repositories/repomanager"
)

// Deps collects what the handlers are built from.
type Deps struct {
	Repos      *repomanager.Repositories
	UnitOfWork repomanager.UnitOfWork
	Passwords  auth.PasswordHasher
	Mail       mail.Sender
	// Pictures may be nil when no object store is configured.
	Pictures pictures.Store
	Logger   logging.Logger
	Now      func() time.Time

	ResetTokenValidity time.Duration
	SearchLimit        int
}

// Build constructs one handler per message type and returns the checked
// registry.
func Build(d Deps) (*Registry, error) {
	if d.Repos == nil || d.UnitOfWork == nil || d.Passwords == nil || d.Mail == nil {
		return nil, errors.New("handlers: repositories, unit of work, password hasher and mail sender are required")
	}
	l := d.Logger
	if l == nil {
		l = logging.Discard()
	}
	now := d.Now
	if now == nil {
		now = time.Now
	}
	r := d.Repos

	return NewRegistry(map[protocol.MessageType]Handler{
		protocol.Login:               NewLoginHandler(r.Users, d.Passwords, l),
		protocol.Register:            NewRegisterHandler(r.Users, d.Passwords, l),
		protocol.DeleteAccount:       NewDeleteAccountHandler(r.Users, d.UnitOfWork, d.Passwords, l),
		protocol.Search:              NewSearchHandler(r.Plants, d.SearchLimit, l),
		protocol.GetMorePlantInfo:    NewGetMorePlantInfoHandler(r.Plants, l),
		protocol.GetLibrary:          NewGetLibraryHandler(r.Library, l),
		protocol.SavePlant:           NewSavePlantHandler(r.Plants, r.Library, now, l),
		protocol.DeletePlant:         NewDeletePlantHandler(r.Library, l),
		protocol.ChangeNickname:      NewChangeNicknameHandler(r.Library, l),
		protocol.ChangeLastWatered:   NewChangeLastWateredHandler(r.Library, now, l),
		protocol.ChangeAllToWatered:  NewChangeAllToWateredHandler(d.UnitOfWork, now, l),
		protocol.ChangePlantPicture:  NewChangePlantPictureHandler(r.Library, d.Pictures, l),
		protocol.ChangeFunFacts:      NewChangeFunFactsHandler(r.Users, l),
		protocol.ChangeNotifications: NewChangeNotificationsHandler(r.Users, l),
		protocol.ForgotPassword:      NewForgotPasswordHandler(r.Users, r.ResetTokens, d.Mail, d.ResetTokenValidity, now, l),
		protocol.ResetPassword:       NewResetPasswordHandler(d.UnitOfWork, r.ResetTokens, d.Passwords, now, l),
	})
}
