package middleware

import (
	"context"

	"github.com/angelmondragon/restaurant-reviews/internal/access"
)

type contextKey string

const ctxIdentity contextKey = "identity"

// WithIdentity stores the authenticated caller on the context.
func WithIdentity(ctx context.Context, identity access.Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxIdentity, identity)
}

// IdentityFromContext returns the caller placed by Auth, or a zero identity.
func IdentityFromContext(ctx context.Context) access.Identity {
	if ctx == nil {
		return access.Identity{}
	}
	if v, ok := ctx.Value(ctxIdentity).(access.Identity); ok {
		return v
	}
	return access.Identity{}
}

func UserIDFromContext(ctx context.Context) string {
	identity := IdentityFromContext(ctx)
	if identity.IsZero() {
		return ""
	}
	return identity.UserID.String()
}
