package httputil

import (
	"encoding/json"
	"net/http"
)

// Reason codes sent with 401/403 responses.
const (
	ReasonLoginRequired  = "login_required"
	ReasonSessionExpired = "session_expired"
	ReasonVerifyEmail    = "verify_email"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Reason string            `json:"reason,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// RespondWithError writes an error response in JSON format
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, ErrorResponse{Error: message})
}

// RespondWithReason writes an error carrying a machine-readable reason code,
// used by clients to decide where to redirect (e.g. "verify_email").
func RespondWithReason(w http.ResponseWriter, code int, message, reason string) {
	RespondWithJSON(w, code, ErrorResponse{Error: message, Reason: reason})
}

// RespondWithFieldErrors writes per-field validation messages keyed by JSON field name.
func RespondWithFieldErrors(w http.ResponseWriter, code int, message string, fields map[string]string) {
	RespondWithJSON(w, code, ErrorResponse{Error: message, Fields: fields})
}

// RespondWithJSON writes a JSON response
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// RespondWithAttachment streams a generated file as a download.
func RespondWithAttachment(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
