package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context, args []string) error
	Login(ctx context.Context, args []string) error
	ForgotPassword(ctx context.Context, args []string) error
	ResetPassword(ctx context.Context, args []string) error
	DeleteAccount(ctx context.Context, args []string) error
	Search(ctx context.Context, args []string) error
	Info(ctx context.Context, args []string) error
	Library(ctx context.Context, args []string) error
	Save(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Rename(ctx context.Context, args []string) error
	Water(ctx context.Context, args []string) error
	WaterAll(ctx context.Context, args []string) error
	Picture(ctx context.Context, args []string) error
	FunFacts(ctx context.Context, args []string) error
	Notifications(ctx context.Context, args []string) error
}

const (
	helpAnonymous = "Available commands: register, login, forgot, reset, search, info, exit"
	helpSignedIn  = "Available commands: search, info, (l)ibrary, save, delete, rename, water, water-all, " +
		"picture, funfacts, notifications, delete-account, exit"
)

// runREPL reads commands line by line from reader and dispatches them to a.
// The first word is the command, the rest are its arguments. The loop ends
// on EOF, on "exit"/"quit" or when ctx is done.
//
// Command errors are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for ctx.Err() == nil {
		printlnFn(fmt.Sprintf("flourish %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpAnonymous)
			}
		case "register":
			cmdErr = a.Register(ctx, args)
		case "login":
			cmdErr = a.Login(ctx, args)
		case "forgot":
			cmdErr = a.ForgotPassword(ctx, args)
		case "reset":
			cmdErr = a.ResetPassword(ctx, args)
		case "delete-account":
			cmdErr = a.DeleteAccount(ctx, args)
		case "search":
			cmdErr = a.Search(ctx, args)
		case "info":
			cmdErr = a.Info(ctx, args)
		case "l", "library":
			cmdErr = a.Library(ctx, args)
		case "save":
			cmdErr = a.Save(ctx, args)
		case "delete":
			cmdErr = a.Delete(ctx, args)
		case "rename":
			cmdErr = a.Rename(ctx, args)
		case "water":
			cmdErr = a.Water(ctx, args)
		case "water-all":
			cmdErr = a.WaterAll(ctx, args)
		case "picture":
			cmdErr = a.Picture(ctx, args)
		case "funfacts":
			cmdErr = a.FunFacts(ctx, args)
		case "notifications":
			cmdErr = a.Notifications(ctx, args)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}
		if cmdErr != nil {
			printlnFn("error:", cmdErr)
		}
	}
}
