package httpx

import (
	"context"
	"time"
)

type ctxKey string

const ctxKeySession ctxKey = "session"

// Session is the identity context the Authorizer attaches to an allowed request.
type Session struct {
	Subject   string
	JTI       string
	ExpiresAt time.Time
}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKeySession, s)
}

func SessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKeySession).(Session)
	return s, ok
}
