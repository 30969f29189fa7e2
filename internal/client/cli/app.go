// Package cli implements the interactive flourish command line client.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/dmitrijs2005/flourish/internal/client/client"
	"github.com/dmitrijs2005/flourish/internal/client/config"
	"github.com/dmitrijs2005/flourish/internal/protocol"
)

// caller is the part of *client.Client the commands use.
type caller interface {
	Call(ctx context.Context, req *protocol.Message) (*protocol.Message, error)
	Close() error
}

type App struct {
	config *config.Config
	conn   caller
	reader *bufio.Reader
	out    io.Writer
	user   *protocol.User
}

// NewApp connects to the server named in c.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	dialCtx, cancel := context.WithTimeout(ctx, c.DialTimeout)
	defer cancel()

	conn, err := client.Dial(dialCtx, c.ServerEndpointAddr)
	if err != nil {
		return nil, err
	}
	return newApp(c, conn, os.Stdin, os.Stdout), nil
}

func newApp(c *config.Config, conn caller, in io.Reader, out io.Writer) *App {
	return &App{config: c, conn: conn, reader: bufio.NewReader(in), out: out}
}

// Run starts the REPL and closes the connection when it ends.
func (a *App) Run(ctx context.Context) {
	defer func() {
		if err := a.conn.Close(); err != nil {
			log.Printf("close connection: %v", err)
		}
	}()

	log.Println("Welcome to Flourish CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) isLoggedIn() bool {
	return a.user != nil
}

func (a *App) getStatus() string {
	if a.user == nil {
		return ""
	}
	return fmt.Sprintf("(%s)", a.user.Username)
}

// call sends one request bounded by the configured request timeout.
func (a *App) call(ctx context.Context, req *protocol.Message) (*protocol.Message, error) {
	if a.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.config.RequestTimeout)
		defer cancel()
	}
	return a.conn.Call(ctx, req)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
