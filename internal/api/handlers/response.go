package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Ininit/OpenTranslate/internal/history"
	"github.com/Ininit/OpenTranslate/internal/translation"
	"github.com/Ininit/OpenTranslate/internal/translator"
	"github.com/Ininit/OpenTranslate/pkg/textextract"
)

const maxJSONBody = 1 << 20

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dest any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}

// writeError maps service errors onto HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, translator.ErrEmptyText),
		errors.Is(err, translator.ErrUnsupportedLanguage):
		return http.StatusBadRequest
	case errors.Is(err, translator.ErrProviderNotFound),
		errors.Is(err, history.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, textextract.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, translator.ErrDetectUnavailable),
		errors.Is(err, translator.ErrSpeechUnavailable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, translator.ErrAPIServer):
		return http.StatusBadGateway
	case errors.Is(err, translation.ErrJobsUnavailable),
		errors.Is(err, translation.ErrHistoryUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
