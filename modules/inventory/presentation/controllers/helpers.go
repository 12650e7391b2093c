package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/modules/inventory/presentation/controllers/dtos"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dtos.ErrorResponse{Code: code, Message: message})
}

// parseModTime reads the client-supplied file modification time. Multipart
// uploads carry no mtime of their own, so the optional modTime form field is
// the only source; absent or malformed values yield the zero time.
func parseModTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
