// Package httpx carries the JSON response envelope and download-header
// helpers shared by every handler.
package httpx

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// JSON writes payload with the given status. Marshaling happens before any
// byte is written so a failure never leaves partial JSON on the wire.
func JSON(w http.ResponseWriter, status int, payload any) {
	body := []byte("null")
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// JSONError writes the standard error envelope.
func JSONError(w http.ResponseWriter, status int, msg string, details any) {
	JSON(w, status, ErrorResponse{Error: msg, Details: details})
}

// SetDownloadHeaders prepares an attachment response of the given content
// type. Call before writing the first body byte.
func SetDownloadHeaders(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
}

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// SanitizeFilenamePart collapses any run of non-alphanumeric characters in
// one filename component to a single underscore.
func SanitizeFilenamePart(s string) string {
	return strings.Trim(nonAlnum.ReplaceAllString(s, "_"), "_")
}
