package middleware

import (
	"net/http"

	"github.com/angelmondragon/restaurant-reviews/api/responses"
	"github.com/angelmondragon/restaurant-reviews/internal/access"
	"github.com/angelmondragon/restaurant-reviews/pkg/enums"
	"github.com/angelmondragon/restaurant-reviews/pkg/logger"
)

// RequireRole admits callers holding any of the roles. It must run after Auth.
func RequireRole(logg *logger.Logger, roles ...enums.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := access.RequireRole(IdentityFromContext(r.Context()), roles...); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
