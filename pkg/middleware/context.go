package middleware

import "context"

type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	UserIDKey    contextKey = "user_id"
	UserRoleKey  contextKey = "user_role"
)

const (
	RoleMentor = "mentor"
	RoleMentee = "mentee"
	RoleAdmin  = "admin"
)

func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// UserFromContext returns the authenticated user ID and role. ok is false
// when the request did not pass through Authentication.
func UserFromContext(ctx context.Context) (userID, role string, ok bool) {
	userID, ok = ctx.Value(UserIDKey).(string)
	if !ok || userID == "" {
		return "", "", false
	}
	role, _ = ctx.Value(UserRoleKey).(string)
	return userID, role, true
}

// WithUser attaches an authenticated identity to ctx.
func WithUser(ctx context.Context, userID, role string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, userID)
	return context.WithValue(ctx, UserRoleKey, role)
}
