package middleware

import (
	"net/http"

	"github.com/nkiryanov/booklend/internal/handlers/render"
	"github.com/nkiryanov/booklend/internal/handlers/userctx"
	"github.com/nkiryanov/booklend/internal/models"
	"github.com/nkiryanov/booklend/internal/service/auth"
)

type authService interface {
	Authenticate(headers http.Header) (models.Principal, error)
}

type authLogger interface {
	Debug(msg string, args ...any)
	Error(msg string, args ...any)
}

// Reject request unless it carries a valid bearer token
// Every failure is rendered the same way, the reason is only logged
// Failures other than missing or invalid credentials are logged at Error level
func AuthMiddleware(as authService, l authLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := as.Authenticate(r.Header)
			if err != nil {
				if auth.IsAuthError(err) {
					l.Debug("request not authenticated", "uri", r.RequestURI, "reason", err)
				} else {
					l.Error("authentication failed", "uri", r.RequestURI, "error", err)
				}
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := userctx.New(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
