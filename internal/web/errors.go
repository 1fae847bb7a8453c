package web

// errors.go provides unified error response handling for the web layer.
// Technical details are logged server-side with the request ID; clients
// get a sanitized JSON message.

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"

	"github.com/gatherhall/member-import/internal/logging"
)

// ErrorResponse is the JSON structure for API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// connStringRe matches things that look like connection strings or DSNs,
// which must never leak to clients.
var connStringRe = regexp.MustCompile(`(?i)(postgres(ql)?|host=|password=|user=)\S*`)

// writeError logs the full error server-side and writes a sanitized JSON
// error body.
func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", message,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: sanitizeErrorMessage(message)})
}

// writeJSON encodes v as JSON and writes it to w.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
	}
}

// absPathRe matches absolute paths, which carry server layout.
var absPathRe = regexp.MustCompile(`(/[\w.\-]+){2,}`)

// sanitizeErrorMessage strips internals (paths, credentials) from messages
// before they reach a client.
func sanitizeErrorMessage(msg string) string {
	msg = connStringRe.ReplaceAllString(msg, "[redacted]")
	msg = absPathRe.ReplaceAllStringFunc(msg, func(p string) string {
		if i := strings.LastIndexByte(p, '/'); i > 0 {
			return p[i+1:]
		}
		return p
	})
	return msg
}
