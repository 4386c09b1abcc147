package catalog

import (
	"context"

	"library-backend/internal/domains/user"
)

type ctxKey int

const (
	currentUserKey ctxKey = iota
	clientIPKey
)

// WithCurrentUser attaches the authenticated user to ctx.
func WithCurrentUser(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, currentUserKey, u)
}

// CurrentUser returns nil for anonymous requests.
func CurrentUser(ctx context.Context) *user.User {
	u, _ := ctx.Value(currentUserKey).(*user.User)
	return u
}

func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

func ClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey).(string)
	return ip
}
