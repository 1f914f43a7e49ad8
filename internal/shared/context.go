package shared

import "context"

type sessionContextKey struct{}

// ContextWithSession stores the session in context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session from context.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

// CurrentUserID reports the authenticated user for the request, if any.
func CurrentUserID(ctx context.Context) (int64, bool) {
	sess := SessionFromContext(ctx)
	if sess == nil || sess.User() == 0 {
		return 0, false
	}
	return sess.User(), true
}
