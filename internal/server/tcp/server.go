// Package tcp serves the flourish protocol over raw TCP connections. Each
// connection runs its own read, dispatch, write loop; sessions share only
// the dispatcher.
package tcp

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/dmitrijs2005/flourish/internal/logging"
	"github.com/dmitrijs2005/flourish/internal/protocol"
	"github.com/dmitrijs2005/flourish/internal/server/handlers"
	"github.com/google/uuid"
)

// newListener is a seam for tests.
var newListener = net.Listen

// Dispatcher produces the response for one request.
type Dispatcher interface {
	Dispatch(ctx context.Context, req *protocol.Message) *protocol.Message
}

type Server struct {
	address      string
	dispatcher   Dispatcher
	logger       logging.Logger
	maxFrame     int
	idleTimeout  time.Duration
	writeTimeout time.Duration

	ready chan struct{}
	addr  net.Addr

	mu       sync.Mutex
	sessions map[string]net.Conn
	wg       sync.WaitGroup
}

type Option func(*Server)

// WithMaxFrameSize bounds request and response frames.
func WithMaxFrameSize(n int) Option { return func(s *Server) { s.maxFrame = n } }

// WithIdleTimeout closes sessions that send nothing for d. Zero disables it.
func WithIdleTimeout(d time.Duration) Option { return func(s *Server) { s.idleTimeout = d } }

// WithWriteTimeout bounds writing one response. Zero disables it.
func WithWriteTimeout(d time.Duration) Option { return func(s *Server) { s.writeTimeout = d } }

func NewServer(address string, d Dispatcher, l logging.Logger, opts ...Option) *Server {
	s := &Server{
		address:      address,
		dispatcher:   d,
		logger:       l.With("module", "tcp_server"),
		maxFrame:     protocol.DefaultMaxFrameSize,
		writeTimeout: 30 * time.Second,
		ready:        make(chan struct{}),
		sessions:     map[string]net.Conn{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Ready is closed once the listener is bound.
func (s *Server) Ready() <-chan struct{} { return s.ready }

// Addr returns the bound address; valid after Ready is closed.
func (s *Server) Addr() net.Addr { return s.addr }

// Run listens until ctx is cancelled, then closes the listener and every
// open session and waits for the session goroutines to finish.
func (s *Server) Run(ctx context.Context) error {
	ln, err := newListener("tcp", s.address)
	if err != nil {
		return err
	}
	s.addr = ln.Addr()
	close(s.ready)

	stop := context.AfterFunc(ctx, func() {
		s.logger.Info(ctx, "Stopping TCP server...")
		_ = ln.Close()
	})
	defer stop()

	s.logger.Info(ctx, "Starting TCP server", "address", s.addr.String())

	var backoff time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			// Errors such as EMFILE clear up once sessions close, so the
			// listener stays up and retries.
			backoff = nextBackoff(backoff)
			s.logger.Warn(ctx, "accept failed, retrying", "error", err, "backoff", backoff.String())
			select {
			case <-ctx.Done():
			case <-time.After(backoff):
			}
			continue
		}
		backoff = 0

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serve(ctx, conn)
		}()
	}

	s.wg.Wait()
	return nil
}

func nextBackoff(d time.Duration) time.Duration {
	if d == 0 {
		return 5 * time.Millisecond
	}
	d *= 2
	if d > time.Second {
		d = time.Second
	}
	return d
}

// Sessions returns the number of open sessions.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) track(id string, conn net.Conn) func() {
	s.mu.Lock()
	s.sessions[id] = conn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
	}
}

// serve runs one session. Any transport error ends only this session.
func (s *Server) serve(ctx context.Context, conn net.Conn) {
	id := uuid.NewString()
	log := s.logger.With("session_id", id, "remote", conn.RemoteAddr().String())

	untrack := s.track(id, conn)
	defer untrack()
	defer conn.Close()

	// Shutdown unblocks a pending read by closing the socket.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	log.Info(ctx, "session opened")

	dec := protocol.NewDecoder(bufio.NewReader(conn), s.maxFrame)
	enc := protocol.NewEncoder(conn, s.maxFrame)

	// Requests in flight finish even when the server is stopping.
	reqCtx := handlers.WithSession(context.WithoutCancel(ctx), &handlers.Session{})

	var served int
	for {
		if s.idleTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(s.idleTimeout))
		}
		req, err := dec.Decode()
		if err != nil {
			s.logEnd(ctx, log, err, served)
			return
		}

		started := time.Now()
		resp := s.dispatcher.Dispatch(reqCtx, req)
		log.Debug(ctx, "request handled",
			"type", string(req.Type), "success", resp.Success, "error_code", string(resp.Error),
			"duration", time.Since(started).String())

		if s.writeTimeout > 0 {
			_ = conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
		}
		if err := enc.Encode(resp); err != nil {
			log.Warn(ctx, "write failed, closing session", "error", err)
			return
		}
		served++
	}
}

func (s *Server) logEnd(ctx context.Context, log logging.Logger, err error, served int) {
	var ne net.Error
	switch {
	case errors.Is(err, io.EOF):
		log.Info(ctx, "session closed by peer", "requests", served)
	case ctx.Err() != nil:
		log.Info(ctx, "session closed by shutdown", "requests", served)
	case errors.Is(err, protocol.ErrMalformed), errors.Is(err, protocol.ErrFrameTooLarge):
		log.Warn(ctx, "malformed message, closing session", "error", err, "requests", served)
	case errors.As(err, &ne) && ne.Timeout():
		log.Info(ctx, "session idle, closing", "requests", served)
	default:
		log.Warn(ctx, "read failed, closing session", "error", err, "requests", served)
	}
}
