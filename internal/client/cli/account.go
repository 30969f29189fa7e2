package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/flourish/internal/common"
	"github.com/dmitrijs2005/flourish/internal/protocol"
)

var (
	errCancelled = errors.New("cancelled")
	errNoPayload = errors.New("server response is missing its payload")
)

// Register creates an account and signs the connection in as that user.
func (a *App) Register(ctx context.Context, args []string) error {
	username, err := argOrPrompt(a.reader, args, "Enter username", a.out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	resp, err := a.call(ctx, &protocol.Message{
		Type:     protocol.Register,
		Username: username,
		Email:    email,
		Password: string(password),
	})
	if err != nil {
		return err
	}
	if resp.User == nil {
		return errNoPayload
	}
	a.user = resp.User
	a.printf("Welcome, %s!\n", a.user.Username)
	return nil
}

// Login signs the connection in.
func (a *App) Login(ctx context.Context, args []string) error {
	username, err := argOrPrompt(a.reader, args, "Enter username", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	resp, err := a.call(ctx, &protocol.Message{
		Type:     protocol.Login,
		Username: username,
		Password: string(password),
	})
	if err != nil {
		return err
	}
	if resp.User == nil {
		return errNoPayload
	}
	a.user = resp.User
	a.printf("Logged in as %s\n", a.user.Username)
	return nil
}

// ForgotPassword asks the server to mail a reset token.
func (a *App) ForgotPassword(ctx context.Context, args []string) error {
	email, err := argOrPrompt(a.reader, args, "Enter account email", a.out)
	if err != nil {
		return err
	}
	if _, err := a.call(ctx, &protocol.Message{Type: protocol.ForgotPassword, Email: email}); err != nil {
		return err
	}
	a.printf("If the address is registered, a reset token is on its way.\n")
	return nil
}

// ResetPassword sets a new password using a mailed token.
func (a *App) ResetPassword(ctx context.Context, args []string) error {
	token, err := argOrPrompt(a.reader, args, "Enter reset token", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword("Enter new password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if _, err := a.call(ctx, &protocol.Message{
		Type:        protocol.ResetPassword,
		Token:       token,
		NewPassword: string(password),
	}); err != nil {
		return err
	}
	a.printf("Password changed. You can log in now.\n")
	return nil
}

// DeleteAccount removes the signed-in account after confirmation.
func (a *App) DeleteAccount(ctx context.Context, args []string) error {
	answer, err := GetSimpleText(a.reader, "This deletes your account and library. Type 'yes' to continue", a.out)
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "yes") {
		return errCancelled
	}
	password, err := GetPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	resp, err := a.call(ctx, &protocol.Message{Type: protocol.DeleteAccount, Password: string(password)})
	if err != nil {
		return err
	}
	a.user = nil
	a.printf("Account deleted (%d plants removed).\n", resp.Count)
	return nil
}

// FunFacts toggles fun facts: "funfacts on|off".
func (a *App) FunFacts(ctx context.Context, args []string) error {
	return a.setPreference(ctx, protocol.ChangeFunFacts, "fun facts", args)
}

// Notifications toggles watering notifications: "notifications on|off".
func (a *App) Notifications(ctx context.Context, args []string) error {
	return a.setPreference(ctx, protocol.ChangeNotifications, "notifications", args)
}

func (a *App) setPreference(ctx context.Context, t protocol.MessageType, name string, args []string) error {
	enabled, err := parseSwitch(args)
	if err != nil {
		return err
	}
	resp, err := a.call(ctx, &protocol.Message{Type: t, Enabled: enabled})
	if err != nil {
		return err
	}
	if resp.User != nil {
		a.user = resp.User
	}
	state := "off"
	if enabled {
		state = "on"
	}
	a.printf("%s turned %s\n", name, state)
	return nil
}
