package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/AgentChief/accredis/models"
	"github.com/AgentChief/accredis/utils"
)

type contextKey string

const userKey contextKey = "user"

// Authenticator resolves a bearer token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// BearerToken returns the token from an "Authorization: Bearer ..." header.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if len(header) < 7 || !strings.EqualFold(header[:7], "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[7:])
	return token, token != ""
}

// AuthMiddleware requires a valid bearer token and stores the user in the request context.
func AuthMiddleware(auth Authenticator, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				utils.RespondWithError(w, http.StatusUnauthorized, "Missing or invalid Authorization header")
				return
			}
			user, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				utils.RespondWithAppError(w, logger, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFrom returns the authenticated user, or nil outside AuthMiddleware.
func UserFrom(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}
