// utils/utils.go
package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
)

func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, map[string]string{"error": message})
}

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"failed to encode response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// RespondWithAppError maps err onto a status code and writes the client message.
// Internal errors are logged and reported generically.
func RespondWithAppError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		logger.Error().Err(err).Msg("unhandled error")
		RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	switch appErr.Kind {
	case KindInternal, KindExternalFailure:
		logger.Error().Err(err).Str("kind", appErr.Kind.String()).Msg(appErr.Message)
	default:
		logger.Debug().Err(err).Str("kind", appErr.Kind.String()).Msg(appErr.Message)
	}
	RespondWithError(w, appErr.Kind.HTTPStatus(), appErr.Message)
}
