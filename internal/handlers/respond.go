// Package handlers implements the JSON request handlers for the loopstore
// REST API: catalog browsing and management, checkout, and order status
// transitions.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// writeJSON encodes v as the response body with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response failed", "error", err)
	}
}

// writeRaw writes an already-encoded JSON body. Used on catalog cache hits.
func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

// writeDetail writes a single human-readable error message.
func writeDetail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

// writeNotFound writes the standard 404 body.
func writeNotFound(w http.ResponseWriter) {
	writeDetail(w, http.StatusNotFound, "Not found.")
}

// writeFieldErrors writes a 400 with a per-field error map. Values are
// strings for scalar fields and lists for the items collection.
func writeFieldErrors(w http.ResponseWriter, errs map[string]any) {
	writeJSON(w, http.StatusBadRequest, map[string]any{"errors": errs})
}

// writeServerError logs err and writes an opaque 500 body.
func writeServerError(w http.ResponseWriter, op string, err error) {
	slog.Error(op, "error", err)
	writeDetail(w, http.StatusInternalServerError, "Internal server error.")
}
