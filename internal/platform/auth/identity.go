package auth

import "context"

type contextKey string

const identityKey contextKey = "identity"

// Identity is the authenticated subject resolved from a bearer token.
type Identity struct {
	Email         string `json:"email"`
	UserID        int64  `json:"user_id"`
	ChatSessionID int64  `json:"chat_session_id"`
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the identity placed by the gate, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}
