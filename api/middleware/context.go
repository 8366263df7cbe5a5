package middleware

import (
	"context"
)

type contextKey string

const (
	userIDKey    contextKey = "user_id"
	actorRoleKey contextKey = "actor_role"
	accessIDKey  contextKey = "access_id"
)

// WithUserID stores the authenticated user's ID on the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated user's ID, if present.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

func withActorRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, actorRoleKey, role)
}

// ActorRoleFromContext returns the authenticated user's role, if present.
func ActorRoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(actorRoleKey).(string)
	return role, ok && role != ""
}

func withAccessID(ctx context.Context, accessID string) context.Context {
	return context.WithValue(ctx, accessIDKey, accessID)
}

// AccessIDFromContext returns the access token identifier tied to the session.
func AccessIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(accessIDKey).(string)
	return id, ok && id != ""
}
