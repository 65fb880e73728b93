package middleware

import (
	"context"
	"net/http"

	"github.com/angelmondragon/restaurant-reviews/api/responses"
	"github.com/angelmondragon/restaurant-reviews/api/validators"
	"github.com/angelmondragon/restaurant-reviews/internal/access"
	"github.com/angelmondragon/restaurant-reviews/pkg/logger"
)

type identityResolver interface {
	RequireIdentity(ctx context.Context, token string) (access.Identity, error)
}

// Auth resolves the bearer token into an identity and seeds the request context with it.
func Auth(guard identityResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := guard.RequireIdentity(r.Context(), validators.BearerToken(r))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithIdentity(r.Context(), identity)
			if logg != nil {
				ctx = logg.WithUserID(ctx, identity.UserID.String())
				ctx = logg.WithActorRole(ctx, identity.Roles.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
