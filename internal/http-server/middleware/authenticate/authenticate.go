package authenticate

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"webstore/entity"
	"webstore/internal/lib/api/cont"
	"webstore/internal/lib/api/response"
	"webstore/internal/lib/sl"
)

type Authenticate interface {
	AuthenticateByToken(token string) (*entity.User, error)
}

// New guards a route group with bearer-token authentication. The resolved
// user lands in the request context for the handlers downstream.
func New(log *slog.Logger, auth Authenticate) func(next http.Handler) http.Handler {
	mod := sl.Module("middleware.authenticate")
	log.With(mod).Info("authenticate middleware initialized")

	return func(next http.Handler) http.Handler {

		fn := func(w http.ResponseWriter, r *http.Request) {
			id := middleware.GetReqID(r.Context())
			logger := log.With(
				mod,
				slog.String("path", r.URL.Path),
				slog.String("request_id", id),
			)

			header := r.Header.Get("Authorization")
			if len(header) == 0 {
				logger.Debug("auth failed", sl.Err(fmt.Errorf("authorization header not found")))
				authFailed(w, r, "Authorization header not found")
				return
			}

			token := ""
			if parts := strings.SplitN(header, " ", 2); len(parts) == 2 && parts[0] == "Bearer" {
				token = strings.TrimSpace(parts[1])
			}
			if len(token) == 0 {
				logger.Debug("auth failed", sl.Err(fmt.Errorf("token not found")))
				authFailed(w, r, "Token not found")
				return
			}

			if auth == nil {
				authFailed(w, r, "Unauthorized: authentication not enabled")
				return
			}

			user, err := auth.AuthenticateByToken(token)
			if err != nil {
				logger.Debug("auth failed", sl.Secret("token", token), sl.Err(err))
				authFailed(w, r, "Unauthorized: invalid token")
				return
			}

			ctx := cont.PutUser(r.Context(), user)

			w.Header().Set("X-Request-ID", id)
			w.Header().Set("X-User", user.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		}

		return http.HandlerFunc(fn)
	}
}

// RequireAdmin rejects requests from non-admin users. Must run after New.
func RequireAdmin(log *slog.Logger) func(next http.Handler) http.Handler {
	mod := sl.Module("middleware.authenticate")

	return func(next http.Handler) http.Handler {

		fn := func(w http.ResponseWriter, r *http.Request) {
			user := cont.GetUser(r.Context())
			if user == nil || !user.IsAdmin() {
				log.With(
					mod,
					slog.String("path", r.URL.Path),
				).Debug("admin access denied")
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("Admin access required"))
				return
			}
			next.ServeHTTP(w, r)
		}

		return http.HandlerFunc(fn)
	}
}

func authFailed(w http.ResponseWriter, r *http.Request, message string) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, response.Error(message))
}
