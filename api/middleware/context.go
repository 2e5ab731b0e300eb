package middleware

import "context"

type contextKey string

const (
	ctxClientID  contextKey = "client_id"
	ctxSessionID contextKey = "session_id"
	ctxStaffID   contextKey = "staff_id"
	ctxRole      contextKey = "staff_role"
)

func stringFromContext(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// ClientIDFromContext returns the id that owns the durable cart.
func ClientIDFromContext(ctx context.Context) string {
	return stringFromContext(ctx, ctxClientID)
}

// SessionIDFromContext returns the booking session id.
func SessionIDFromContext(ctx context.Context) string {
	return stringFromContext(ctx, ctxSessionID)
}

func StaffIDFromContext(ctx context.Context) string {
	return stringFromContext(ctx, ctxStaffID)
}

func RoleFromContext(ctx context.Context) string {
	return stringFromContext(ctx, ctxRole)
}

// WithClientID injects the client identifier into the context.
func WithClientID(ctx context.Context, clientID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxClientID, clientID)
}

// WithSessionID injects the booking session identifier into the context.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSessionID, sessionID)
}

// WithStaff injects the authenticated staff member into the context.
func WithStaff(ctx context.Context, staffID, role string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxStaffID, staffID)
	return context.WithValue(ctx, ctxRole, role)
}
