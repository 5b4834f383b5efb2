package web

// errors.go provides unified error response handling for the web layer.
//
// Technical errors are logged server-side with the request ID for
// correlation; clients get a user-friendly message plus a stable code they
// can quote to support.
//
// Error codes are grouped by category:
//
//	DB001   - Database connection problem
//	DB002   - Operation timed out
//	FILE001 - File exceeds the size limit
//	FILE002 - File could not be parsed
//	FILE003 - No file provided
//	IMP001  - Import not found
//	IMP002  - Import already rolled back
//	IMP003  - Import still in progress
//	GEN001  - Anything unmatched

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

// ErrorResponse is the JSON structure for API error responses. It carries
// both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// userMessage is a client-safe rendering of an internal error.
type userMessage struct {
	Code    string
	Message string
	Action  string
}

// errorPattern maps substrings of internal errors to user messages. First
// match wins.
var errorPatterns = []struct {
	pattern string
	msg     userMessage
}{
	{"connection refused", userMessage{"DB001", "Unable to reach the database", "Please try again in a few moments"}},
	{"connection reset", userMessage{"DB001", "The database connection was interrupted", "Please try again"}},
	{"timeout", userMessage{"DB002", "The operation timed out", "Try a smaller file or try again later"}},
	{"context deadline exceeded", userMessage{"DB002", "The operation timed out", "Try a smaller file or try again later"}},
	{"exceeds maximum size", userMessage{"FILE001", "The file exceeds the size limit", "Split the file into smaller chunks"}},
	{"no header row", userMessage{"FILE002", "The file has no header row", "Check that the first line names the columns"}},
	{"parsing delimited text", userMessage{"FILE002", "The file could not be parsed", "Ensure the file is valid CSV or Excel"}},
	{"opening workbook", userMessage{"FILE002", "The workbook could not be opened", "Re-save the file as .xlsx and retry"}},
	{"decoding input", userMessage{"FILE002", "The file contains invalid characters", "Save the file as UTF-8 and retry"}},
	{"no file provided", userMessage{"FILE003", "No file was selected", "Choose an export file to import"}},
	{"import not found", userMessage{"IMP001", "That import does not exist", "Check the import ID and retry"}},
	{"already rolled back", userMessage{"IMP002", "This import was already rolled back", ""}},
	{"still in progress", userMessage{"IMP003", "This import is still running", "Wait for it to finish or cancel it first"}},
}

// mapError converts an internal error message to a client-safe one.
func mapError(message string) userMessage {
	lower := strings.ToLower(message)
	for _, p := range errorPatterns {
		if strings.Contains(lower, p.pattern) {
			return p.msg
		}
	}
	return userMessage{
		Code:    "GEN001",
		Message: "Something went wrong processing the request",
		Action:  "Try again, and quote code GEN001 to support if it persists",
	}
}

// respondError logs the technical error and writes the sanitized JSON
// response.
func respondError(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	msg := mapError(message)

	slog.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", message,
		"code", msg.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
