// internal/app/features/errors/logger.go
package errors

import (
	"net/http"

	"go.uber.org/zap"
)

// ErrorLogger logs a handler failure with request context and renders a
// friendly page in place of the raw error.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

func (e *ErrorLogger) fields(r *http.Request, err error) []zap.Field {
	return []zap.Field{
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}
}

// LogServerError logs at error level and renders a 500 page.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg, backURL string) {
	e.log.Error(msg, e.fields(r, err)...)
	RenderPage(w, r, http.StatusInternalServerError, "Something went wrong", userMsg, backURL)
}

// LogBadGateway logs at warn level and renders a 502 page. Used when the
// registration backend fails or answers with something unusable.
func (e *ErrorLogger) LogBadGateway(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg, backURL string) {
	e.log.Warn(msg, e.fields(r, err)...)
	RenderPage(w, r, http.StatusBadGateway, "Service unavailable", userMsg, backURL)
}

// LogBadRequest logs at warn level and renders a 400 page.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg, backURL string) {
	e.log.Warn(msg, e.fields(r, err)...)
	RenderPage(w, r, http.StatusBadRequest, "Bad request", userMsg, backURL)
}

// LogNotFound logs at info level and renders a 404 page.
func (e *ErrorLogger) LogNotFound(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg, backURL string) {
	e.log.Info(msg, e.fields(r, err)...)
	RenderPage(w, r, http.StatusNotFound, "Not found", userMsg, backURL)
}
