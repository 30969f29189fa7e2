package handlers

import "context"

// Session is the per-connection state shared by the handlers of one client.
// A connection handles one request at a time, so no locking is needed.
type Session struct {
	userID int64
}

func (s *Session) SignIn(userID int64) { s.userID = userID }
func (s *Session) SignOut()            { s.userID = 0 }
func (s *Session) UserID() int64       { return s.userID }
func (s *Session) Authenticated() bool { return s.userID != 0 }

type sessionKey struct{}

// WithSession returns a context carrying s.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session carried by ctx, or nil.
func SessionFrom(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey{}).(*Session)
	return s
}
