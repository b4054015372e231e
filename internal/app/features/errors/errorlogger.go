// internal/app/features/errors/errorlogger.go
package errors

import (
	"net/http"

	"go.uber.org/zap"
)

// ErrorLogger logs a failure with request context and answers the client
// with a friendly page, or with a plain message for HTMX requests.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger returns an ErrorLogger writing to log.
func NewErrorLogger(log *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: log}
}

func (e *ErrorLogger) fields(r *http.Request, err error) []zap.Field {
	return []zap.Field{
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}
}

// LogServerError logs msg and err at error level and renders a 500 page
// showing userMsg with a link to backURL.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg, backURL string) {
	e.log.Error(msg, e.fields(r, err)...)
	RenderServerError(w, r, http.StatusInternalServerError, userMsg, backURL)
}

// LogBadGateway is LogServerError for failures of the backend API.
func (e *ErrorLogger) LogBadGateway(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg, backURL string) {
	e.log.Warn(msg, e.fields(r, err)...)
	RenderServerError(w, r, http.StatusBadGateway, userMsg, backURL)
}

// HTMXLogServerError logs like LogServerError but answers with a bare 500
// and userMsg, for swaps that cannot take a full page.
func (e *ErrorLogger) HTMXLogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg, backURL string) {
	e.log.Error(msg, e.fields(r, err)...)
	if r.Header.Get("HX-Request") != "true" {
		RenderServerError(w, r, http.StatusInternalServerError, userMsg, backURL)
		return
	}
	http.Error(w, userMsg, http.StatusInternalServerError)
}

// LogBadRequest logs at warn level and answers 400.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg, backURL string) {
	e.log.Warn(msg, e.fields(r, err)...)
	if r.Header.Get("HX-Request") == "true" {
		http.Error(w, userMsg, http.StatusBadRequest)
		return
	}
	RenderServerError(w, r, http.StatusBadRequest, userMsg, backURL)
}
