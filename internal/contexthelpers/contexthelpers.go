// Package contexthelpers stores request scoped values such as the authenticated user in context.
package contexthelpers

import (
	"context"
	"net/http"
)

type contextKey string

const (
	authenticatedUserIDKey = contextKey("authenticatedUserID")
	usernameKey            = contextKey("username")
)

// IsAuthenticated reports whether a user id has been stored with [AuthenticateContext].
func IsAuthenticated(ctx context.Context) bool {
	return AuthenticatedUserID(ctx) != ""
}

// AuthenticatedUserID returns the id of the authenticated user or an empty string.
func AuthenticatedUserID(ctx context.Context) string {
	userID, _ := ctx.Value(authenticatedUserIDKey).(string)
	return userID
}

// Username returns the name of the authenticated user or an empty string.
func Username(ctx context.Context) string {
	username, _ := ctx.Value(usernameKey).(string)
	return username
}

// WithUser stores the authenticated user in ctx.
func WithUser(ctx context.Context, userID, username string) context.Context {
	ctx = context.WithValue(ctx, authenticatedUserIDKey, userID)
	return context.WithValue(ctx, usernameKey, username)
}

func AuthenticateContext(r *http.Request, userID, username string) *http.Request {
	return r.WithContext(WithUser(r.Context(), userID, username))
}
