package web

// errors.go turns handler errors into responses.
//
// Every error is logged with its technical detail and request ID, then
// mapped by core.MapError to a user-facing message and code. The client
// gets JSON for API calls, an HTML fragment for HTMX requests and plain
// text otherwise.

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jomardyan/ToolBox/internal/core"
	"github.com/jomardyan/ToolBox/internal/logging"
	"github.com/jomardyan/ToolBox/internal/web/templates"
)

// ErrorResponse is the JSON body of every API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// requestError marks problems with the request itself rather than the data.
type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

func missingParam(name string) error {
	return &requestError{msg: "missing parameter: " + name}
}

func invalidRequest(format string, args ...any) error {
	return &requestError{msg: "invalid request: " + fmt.Sprintf(format, args...)}
}

// statusFor maps an error to an HTTP status code.
func statusFor(err error) int {
	var (
		tooLarge *http.MaxBytesError
		reqErr   *requestError
	)
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrTooManyConversions):
		return http.StatusServiceUnavailable
	case errors.As(err, &reqErr):
		return http.StatusBadRequest
	}

	switch core.Kind(err) {
	case core.ErrMalformedInput, core.ErrUnsupportedFormat, core.ErrColumnNotFound:
		return http.StatusBadRequest
	case core.ErrEmptyResult:
		return http.StatusUnprocessableEntity
	case core.ErrNotImplemented:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

// respondError logs err and writes a response in the format the client expects.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	logFn := logger.Warn
	if status >= http.StatusInternalServerError && status != http.StatusNotImplemented {
		logFn = logger.Error
	}
	logFn("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "5")
	}

	switch {
	case isHTMX(r):
		renderErrorPartial(w, r, userMsg, status)
	case wantsJSON(r):
		respondErrorJSON(w, err, userMsg, status)
	default:
		http.Error(w, userMsg.Message+" ("+userMsg.Code+")", status)
	}
}

// respondErrorJSON writes the error body. Conversion errors carry useful
// detail (line numbers, missing columns), so their text is returned in
// Error; anything else is replaced by the mapped message.
func respondErrorJSON(w http.ResponseWriter, err error, msg core.UserMessage, status int) {
	detail := msg.Message
	if core.Kind(err) != nil || isRequestError(err) {
		detail = err.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   detail,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

func renderErrorPartial(w http.ResponseWriter, r *http.Request, msg core.UserMessage, status int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	templates.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w)
}

func isRequestError(err error) bool {
	var reqErr *requestError
	return errors.As(err, &reqErr)
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON reports whether the client prefers a JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	return strings.HasPrefix(r.URL.Path, "/api/")
}
