package utils

import (
	"context"
)

type contextKey string

const (
	ContextSessionKey   contextKey = "session"
	ContextRequestIDKey contextKey = "requestID"
)

// Session is the caller's sign-in state as read from cookies by the access gate.
type Session struct {
	Token string
	Role  string
}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ContextSessionKey, s)
}

func GetSessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ContextSessionKey).(Session)
	return s, ok && s.Token != ""
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ContextRequestIDKey, id)
}

func GetRequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ContextRequestIDKey).(string)
	return id, ok && id != ""
}
