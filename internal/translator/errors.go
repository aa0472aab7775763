package translator

import (
	"errors"
	"fmt"
)

var (
	// ErrAPIServer is matched by every error the backend reports in its response envelope.
	ErrAPIServer = errors.New("API_SERVER_ERROR")

	ErrProviderNotFound    = errors.New("translation provider not configured")
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrDetectUnavailable   = errors.New("language detection unavailable")
	ErrSpeechUnavailable   = errors.New("speech unavailable")
	ErrEmptyText           = errors.New("text is required")
)

// ProtocolError is returned when the backend answers with an error envelope.
type ProtocolError struct {
	Provider string
	Method   string
	Code     int
	Message  string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: %s %s: code %d: %s", ErrAPIServer, e.Provider, e.Method, e.Code, e.Message)
}

func (e *ProtocolError) Is(target error) bool {
	return target == ErrAPIServer
}
