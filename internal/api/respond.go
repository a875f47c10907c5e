package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/matheus3301/smsdash/internal/conversation"
	"github.com/matheus3301/smsdash/internal/twilio"
	"go.uber.org/zap"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError answers with {"error": msg} and a status derived from err.
func writeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", RequestID(r.Context())),
			zap.Error(err),
		)
	}
	writeJSON(w, code, errorBody{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, conversation.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, conversation.ErrContactExists):
		return http.StatusConflict
	case errors.Is(err, twilio.ErrVoiceDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a JSON body into v. Failures are reported as invalid
// requests.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20)).Decode(v); err != nil {
		return errors.Join(conversation.ErrInvalidRequest, err)
	}
	return nil
}
