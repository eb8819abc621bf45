package middleware

import (
	"fmt"
	"net/http"
	"runtime"

	"github.com/rs/zerolog"

	"github.com/AgentChief/accredis/utils"
)

// RecoveryMiddleware recovers from panics
func RecoveryMiddleware(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					var stack [4096]byte
					n := runtime.Stack(stack[:], false)
					logger.Error().
						Str("request_id", RequestIDFrom(r.Context())).
						Str("panic", fmt.Sprintf("%v", rec)).
						Str("stack", string(stack[:n])).
						Msg("panic recovered")
					utils.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
