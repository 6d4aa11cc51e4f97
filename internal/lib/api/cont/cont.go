package cont

import (
	"context"

	"webstore/entity"
)

type contextKey string

const userKey contextKey = "user"

func PutUser(ctx context.Context, user *entity.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// GetUser returns the authenticated user stored by the authenticate
// middleware, or nil when the request was not authenticated.
func GetUser(ctx context.Context) *entity.User {
	user, _ := ctx.Value(userKey).(*entity.User)
	return user
}
